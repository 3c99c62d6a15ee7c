package channels

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
)

// WhatsAppProvider talks to the separate WhatsApp session service over HTTP.
// Sessions (QR pairing, reconnects) live in that service; this side only asks
// it to deliver a message to each configured recipient.
type WhatsAppProvider struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client

	// pause between recipients of the same channel; group sends to the same
	// session get flagged as spam without it
	recipientDelay time.Duration
}

func NewWhatsAppProvider(baseURL, serviceToken string) *WhatsAppProvider {
	return &WhatsAppProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		recipientDelay: 1 * time.Second,
	}
}

func (p *WhatsAppProvider) Type() string {
	return models.ChannelTypeWhatsApp
}

type whatsappSendRequest struct {
	To       string `json:"to"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type whatsappSendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

func (p *WhatsAppProvider) Send(ctx context.Context, instance models.ChannelInstance, channel models.GameChannel, text, imageURL string) (*SendResult, error) {
	if len(channel.Recipients) == 0 {
		return nil, fmt.Errorf("no recipients configured for channel %s", channel.Name)
	}

	var messageIDs []string
	var lastErr error

	for i, recipient := range channel.Recipients {
		if i > 0 {
			time.Sleep(p.recipientDelay)
		}

		id, err := p.sendOne(ctx, instance.InstanceID, recipient, text, imageURL)
		if err != nil {
			log.Printf("⚠️ WhatsApp send to %s failed: %v", recipient, err)
			lastErr = err
			continue
		}
		messageIDs = append(messageIDs, id)
	}

	if len(messageIDs) == 0 {
		return nil, fmt.Errorf("all %d recipients failed: %w", len(channel.Recipients), lastErr)
	}

	return &SendResult{
		ExternalID: strings.Join(messageIDs, ","),
		SentCount:  len(messageIDs),
	}, nil
}

func (p *WhatsAppProvider) sendOne(ctx context.Context, instanceID, recipient, text, imageURL string) (string, error) {
	body, err := json.Marshal(whatsappSendRequest{
		To:       recipient,
		Text:     text,
		ImageURL: imageURL,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/instances/%s/messages", p.baseURL, instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.serviceToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whatsapp service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out whatsappSendResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("invalid whatsapp service response: %w", err)
	}
	if !out.Success {
		return "", fmt.Errorf("whatsapp send rejected: %s", out.Error)
	}
	return out.MessageID, nil
}
