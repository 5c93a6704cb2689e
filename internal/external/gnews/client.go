// Package gnews implements the syndicated-feed fallback provider. It
// queries the Google News RSS search feed, which guarantees the pipeline
// still returns events when the structured providers come up empty.
package gnews

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/wltsai/stockpulse/pkg/httputil"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// Client fetches keyword search results from the Google News RSS feed.
// The fetch goes through the shared HTTP client so the feed path gets
// the same retry and rate-limit treatment as the structured providers.
type Client struct {
	httpClient *httputil.Client
	parser     *gofeed.Parser
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Google News RSS client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://news.google.com"
	}
	return &Client{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		logger:     log,
		baseURL:    baseURL,
	}
}

// Item is a single feed entry
type Item struct {
	Title     string
	Source    string
	Link      string
	Published string     // raw pubDate string, kept for fail-open handling
	Parsed    *time.Time // nil when the pubDate did not parse
}

// Search fetches feed items for a keyword
func (c *Client) Search(ctx context.Context, keyword string) ([]Item, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("hl", "zh-TW")
	params.Set("gl", "TW")
	params.Set("ceid", "TW:zh-Hant")

	feedURL := fmt.Sprintf("%s/rss/search?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		title, source := splitTitle(entry.Title)

		var parsed *time.Time
		if entry.PublishedParsed != nil {
			parsed = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			parsed = entry.UpdatedParsed
		}

		items = append(items, Item{
			Title:     title,
			Source:    source,
			Link:      entry.Link,
			Published: entry.Published,
			Parsed:    parsed,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"keyword": keyword,
		"count":   len(items),
	}).Debug("Fetched Google News feed")

	return items, nil
}

// splitTitle separates the publisher suffix Google News appends to every
// headline ("some headline - publisher").
func splitTitle(raw string) (title, source string) {
	idx := strings.LastIndex(raw, " - ")
	if idx <= 0 {
		return strings.TrimSpace(raw), "Google News"
	}
	title = strings.TrimSpace(raw[:idx])
	source = strings.TrimSpace(raw[idx+3:])
	if source == "" {
		source = "Google News"
	}
	return title, source
}
