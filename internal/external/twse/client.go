// Package twse implements the exchange-announcement provider client.
// The market observation post system has no JSON API for the material
// information list, so the rows are scraped out of the HTML table.
package twse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wltsai/stockpulse/pkg/httputil"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// Client handles communication with the TWSE announcement pages
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TWSE client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://www.twse.com.tw"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Announcement is one material-information row
type Announcement struct {
	StockID     string
	Title       string
	PublishedAt time.Time
	URL         string
}

// FetchAnnouncements fetches material announcements for a stock id
// published after since
func (c *Client) FetchAnnouncements(ctx context.Context, stockID string, since time.Time) ([]Announcement, error) {
	params := url.Values{}
	params.Set("stockNo", stockID)
	params.Set("startDate", since.Format("20060102"))
	params.Set("endDate", time.Now().Format("20060102"))

	fullURL := fmt.Sprintf("%s/zh/announcement/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	anns, err := c.parseAnnouncementHTML(string(body), stockID)
	if err != nil {
		return nil, fmt.Errorf("parse announcements failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_id": stockID,
		"count":    len(anns),
	}).Debug("Fetched TWSE announcements")

	return anns, nil
}

// parseAnnouncementHTML extracts announcement rows from the HTML table.
// Expected row shape: date | time | stock id | title (linked).
func (c *Client) parseAnnouncementHTML(html, stockID string) ([]Announcement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var anns []Announcement
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		dateStr := strings.TrimSpace(cells.Eq(0).Text())
		timeStr := strings.TrimSpace(cells.Eq(1).Text())
		title := strings.TrimSpace(cells.Eq(3).Text())
		if title == "" {
			return
		}

		published, err := parseROCTimestamp(dateStr, timeStr)
		if err != nil {
			// Keep the row; the normalizer fails open on bad dates
			published = time.Time{}
		}

		link := c.baseURL
		if href, ok := cells.Eq(3).Find("a").Attr("href"); ok {
			if strings.HasPrefix(href, "http") {
				link = href
			} else {
				link = c.baseURL + href
			}
		}

		anns = append(anns, Announcement{
			StockID:     stockID,
			Title:       title,
			PublishedAt: published,
			URL:         link,
		})
	})

	return anns, nil
}

// parseROCTimestamp parses "114/08/30" + "14:05:00" style timestamps.
// TWSE pages use the Republic of China calendar (year offset 1911).
func parseROCTimestamp(dateStr, timeStr string) (time.Time, error) {
	parts := strings.Split(dateStr, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unexpected date format: %q", dateStr)
	}

	var year, month, day int
	if _, err := fmt.Sscanf(dateStr, "%d/%d/%d", &year, &month, &day); err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	year += 1911

	var hour, minute, sec int
	if timeStr != "" {
		if _, err := fmt.Sscanf(timeStr, "%d:%d:%d", &hour, &minute, &sec); err != nil {
			hour, minute, sec = 0, 0, 0
		}
	}

	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc), nil
}
