package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	"gorm.io/gorm"
)

// DrawImageService asks the external renderer for a result image and stores
// it on R2. Invoked fire-and-forget by the executor; failures land in
// draw.image_error, never in the lifecycle.
type DrawImageService struct {
	DB          *gorm.DB
	Templates   *MessageTemplateService
	rendererURL string
	httpClient  *http.Client
}

func NewDrawImageService(db *gorm.DB, templates *MessageTemplateService, rendererURL string) *DrawImageService {
	return &DrawImageService{
		DB:          db,
		Templates:   templates,
		rendererURL: strings.TrimRight(rendererURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// RenderDrawImage renders, uploads and records the image URL for a draw.
func (s *DrawImageService) RenderDrawImage(drawID string) {
	var draw models.Draw
	err := s.DB.Preload("Game").Preload("WinnerItem").First(&draw, "id = ?", drawID).Error
	if err != nil {
		log.Printf("❌ [IMAGE] Draw %s not found: %v", drawID, err)
		return
	}

	url, err := s.render(&draw)
	if err != nil {
		log.Printf("❌ [IMAGE] Render failed for draw %s: %v", drawID, err)
		msg := err.Error()
		if dbErr := s.DB.Model(&models.Draw{}).Where("id = ?", drawID).
			Update("image_error", &msg).Error; dbErr != nil {
			log.Printf("⚠️ [IMAGE] Could not record render error for draw %s: %v", drawID, dbErr)
		}
		return
	}

	err = s.DB.Model(&models.Draw{}).Where("id = ?", drawID).
		Updates(map[string]any{"image_url": url, "image_error": nil}).Error
	if err != nil {
		log.Printf("⚠️ [IMAGE] Could not store image URL for draw %s: %v", drawID, err)
		return
	}
	log.Printf("🖼️ Image ready for draw %s: %s", drawID, url)
}

func (s *DrawImageService) render(draw *models.Draw) (string, error) {
	if s.rendererURL == "" {
		return "", fmt.Errorf("image renderer not configured")
	}

	payload, err := json.Marshal(s.Templates.PrepareDrawData(draw))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.rendererURL+"/render/draw", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("renderer unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("renderer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	png, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read rendered image: %w", err)
	}

	key := fmt.Sprintf("draws/%s.png", draw.ID)
	return utils.UploadBytesToR2(png, key, "image/png")
}
