package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/backend/internal/config"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

func newTestCrawler(t *testing.T, handler http.HandlerFunc) (*HTTPCrawler, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewHTTPCrawler(config.CrawlerConfig{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1 << 20,
	}, logger.NewNop())
	return c, srv.URL
}

func TestCrawlExtractsReadableText(t *testing.T) {
	c, url := newTestCrawler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>T</title><style>.x{}</style></head>
<body><nav>menu items</nav>
<h1>Market Overview</h1>
<p>The French market grew in 2025.</p>
<script>alert("no")</script>
<ul><li>Vendor one</li><li>Vendor two</li></ul>
</body></html>`))
	})

	page := c.Crawl(context.Background(), url)
	require.Empty(t, page.Err)

	assert.Contains(t, page.Content, "Market Overview")
	assert.Contains(t, page.Content, "The French market grew in 2025.")
	assert.Contains(t, page.Content, "- Vendor one")
	assert.NotContains(t, page.Content, "menu items")
	assert.NotContains(t, page.Content, "alert")
}

func TestCrawlPlainTextPassedThrough(t *testing.T) {
	c, url := newTestCrawler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("  raw text content  "))
	})

	page := c.Crawl(context.Background(), url)
	require.Empty(t, page.Err)
	assert.Equal(t, "raw text content", page.Content)
}

func TestCrawlReportsBadStatus(t *testing.T) {
	c, url := newTestCrawler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	page := c.Crawl(context.Background(), url)
	assert.Contains(t, page.Err, "HTTP 403")
	assert.Empty(t, page.Content)
}

func TestCrawlReportsUnreachableHost(t *testing.T) {
	c := NewHTTPCrawler(config.CrawlerConfig{
		Timeout:      500 * time.Millisecond,
		MaxBodyBytes: 1 << 20,
	}, logger.NewNop())

	page := c.Crawl(context.Background(), "http://127.0.0.1:1/none")
	assert.NotEmpty(t, page.Err)
}

func TestCrawlInvalidURL(t *testing.T) {
	c := NewHTTPCrawler(config.CrawlerConfig{
		Timeout:      time.Second,
		MaxBodyBytes: 1 << 20,
	}, logger.NewNop())

	page := c.Crawl(context.Background(), "://not-a-url")
	assert.NotEmpty(t, page.Err)
}
