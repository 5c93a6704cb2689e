package cnyes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltsai/stockpulse/pkg/httputil"
	"github.com/wltsai/stockpulse/pkg/logger"
)

func TestNewsItem_URL(t *testing.T) {
	item := NewsItem{NewsID: 5412345}
	assert.Equal(t, "https://news.cnyes.com/news/id/5412345", item.URL())
}

func TestNewsItem_PublishedTime(t *testing.T) {
	item := NewsItem{PublishAt: 1767052800}
	assert.Equal(t, time.Unix(1767052800, 0), item.PublishedTime())
}

func TestSearchNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/api/v1/newslist/keyword", r.URL.Path)
		assert.Equal(t, "2330", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.URL.Query().Get("startAt"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": {
				"data": [
					{"newsId": 101, "title": "台積電召回部分產品", "source": "鉅亨網", "publishAt": 1767052800},
					{"newsId": 102, "title": "台積電營收創新高", "source": "", "publishAt": 0}
				]
			}
		}`))
	}))
	defer server.Close()

	c := NewClient(httputil.New(nil, logger.NewNop()).DisableRetry(), logger.NewNop(), server.URL)

	items, err := c.SearchNews(context.Background(), "2330", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(101), items[0].NewsID)
	assert.Equal(t, "台積電召回部分產品", items[0].Title)
	assert.Equal(t, "鉅亨網", items[0].Source)
	assert.EqualValues(t, 0, items[1].PublishAt, "missing publish times pass through as zero")
}

func TestSearchNews_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(httputil.New(nil, logger.NewNop()).DisableRetry(), logger.NewNop(), server.URL)

	_, err := c.SearchNews(context.Background(), "2330", time.Now().Add(-48*time.Hour))
	assert.Error(t, err)
}

func TestSearchNews_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := NewClient(httputil.New(nil, logger.NewNop()).DisableRetry(), logger.NewNop(), server.URL)

	_, err := c.SearchNews(context.Background(), "2330", time.Now().Add(-48*time.Hour))
	assert.Error(t, err)
}
