// Package cnyes implements the structured market-news provider client.
// The cnyes media API takes a keyword or stock id plus a date range and
// returns rows with title/source/date/url.
package cnyes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wltsai/stockpulse/pkg/httputil"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// Client handles communication with the cnyes news API
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new cnyes client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.cnyes.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// newsListResponse is the envelope of the keyword search endpoint
type newsListResponse struct {
	Items struct {
		Data []NewsItem `json:"data"`
	} `json:"items"`
}

// NewsItem is a single news row from the cnyes API
type NewsItem struct {
	NewsID    int64  `json:"newsId"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	PublishAt int64  `json:"publishAt"` // unix seconds
}

// PublishedTime returns the publish time as time.Time
func (n NewsItem) PublishedTime() time.Time {
	return time.Unix(n.PublishAt, 0)
}

// URL builds the canonical article URL for a news id
func (n NewsItem) URL() string {
	return fmt.Sprintf("https://news.cnyes.com/news/id/%d", n.NewsID)
}

// SearchNews fetches news rows matching the keyword published after since
func (c *Client) SearchNews(ctx context.Context, keyword string, since time.Time) ([]NewsItem, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("startAt", strconv.FormatInt(since.Unix(), 10))
	params.Set("endAt", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("limit", "100")

	fullURL := fmt.Sprintf("%s/media/api/v1/newslist/keyword?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed newsListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse news list: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"keyword": keyword,
		"count":   len(parsed.Items.Data),
	}).Debug("Fetched cnyes news")

	return parsed.Items.Data, nil
}
