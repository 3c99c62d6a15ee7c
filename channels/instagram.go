package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lottery-publish-system/models"
)

const instagramGraphURL = "https://graph.facebook.com/v19.0"

// InstagramProvider publishes a photo through the two-step container flow of
// the Instagram Graph API. Instagram enforces strict per-account rate limits;
// the registry routes this provider through the throttled sender.
type InstagramProvider struct {
	graphURL   string
	httpClient *http.Client
}

func NewInstagramProvider() *InstagramProvider {
	return &InstagramProvider{
		graphURL: instagramGraphURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *InstagramProvider) Type() string {
	return models.ChannelTypeInstagram
}

func (p *InstagramProvider) Send(ctx context.Context, instance models.ChannelInstance, channel models.GameChannel, text, imageURL string) (*SendResult, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("instagram requires an image to publish")
	}

	// Step 1: create the media container.
	form := url.Values{}
	form.Set("access_token", instance.AccessToken)
	form.Set("image_url", imageURL)
	form.Set("caption", text)

	creationID, err := p.post(ctx, fmt.Sprintf("%s/%s/media", p.graphURL, instance.AccountID), form)
	if err != nil {
		return nil, fmt.Errorf("instagram media container: %w", err)
	}

	// Step 2: publish it.
	form = url.Values{}
	form.Set("access_token", instance.AccessToken)
	form.Set("creation_id", creationID)

	mediaID, err := p.post(ctx, fmt.Sprintf("%s/%s/media_publish", p.graphURL, instance.AccountID), form)
	if err != nil {
		return nil, fmt.Errorf("instagram media publish: %w", err)
	}

	return &SendResult{ExternalID: mediaID, SentCount: 1}, nil
}

func (p *InstagramProvider) post(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out graphResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("invalid graph response (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out.Error != nil {
		return "", fmt.Errorf("graph error %d (%s): %s", out.Error.Code, out.Error.Type, out.Error.Message)
	}
	return out.ID, nil
}
