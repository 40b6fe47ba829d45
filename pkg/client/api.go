package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ripplehq/ripple/backend/internal/models"
)

// Refresh pulls the full notification list over REST and replaces the cache
// contents, the client's recovery path after connecting or reconnecting.
func (c *Cache) Refresh(ctx context.Context, httpClient *http.Client, baseURL, token string) error {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/notifications", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("list notifications: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Notifications []models.EnrichedNotification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}

	c.Replace(body.Data.Notifications)
	return nil
}
