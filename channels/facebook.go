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

const facebookGraphURL = "https://graph.facebook.com/v19.0"

// FacebookProvider posts draw results to a page feed via the Graph API.
// instance.AccountID is the page id, instance.AccessToken the page token.
type FacebookProvider struct {
	graphURL   string
	httpClient *http.Client
}

func NewFacebookProvider() *FacebookProvider {
	return &FacebookProvider{
		graphURL: facebookGraphURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *FacebookProvider) Type() string {
	return models.ChannelTypeFacebook
}

func (p *FacebookProvider) Send(ctx context.Context, instance models.ChannelInstance, channel models.GameChannel, text, imageURL string) (*SendResult, error) {
	form := url.Values{}
	form.Set("access_token", instance.AccessToken)

	var endpoint string
	if imageURL != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", p.graphURL, instance.AccountID)
		form.Set("url", imageURL)
		form.Set("caption", text)
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", p.graphURL, instance.AccountID)
		form.Set("message", text)
	}

	postID, err := p.post(ctx, endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("facebook page %s: %w", instance.AccountID, err)
	}

	return &SendResult{ExternalID: postID, SentCount: 1}, nil
}

type graphResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	Error  *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (p *FacebookProvider) post(ctx context.Context, endpoint string, form url.Values) (string, error) {
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

	if out.PostID != "" {
		return out.PostID, nil
	}
	return out.ID, nil
}
