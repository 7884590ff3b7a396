package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/dealdesk/backend/internal/config"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
	"golang.org/x/net/html"
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t]{2,}`)
)

// HTTPCrawler fetches a page and reduces it to readable text. Failures are
// reported in the returned page's Err field rather than as an error value;
// the evidence gatherer treats a bad source as skippable, never fatal.
type HTTPCrawler struct {
	cfg        config.CrawlerConfig
	httpClient *http.Client
	log        *logger.Logger
}

func NewHTTPCrawler(cfg config.CrawlerConfig, log *logger.Logger) *HTTPCrawler {
	return &HTTPCrawler{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

func (c *HTTPCrawler) Crawl(ctx context.Context, pageURL string) domain.CrawledPage {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.CrawledPage{Err: fmt.Sprintf("invalid url: %v", err)}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; dealdesk-research/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("crawl_request_failed", "url", pageURL, "error", err)
		return domain.CrawledPage{Err: fmt.Sprintf("fetch failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("crawl_bad_status", "url", pageURL, "status", resp.StatusCode)
		return domain.CrawledPage{Err: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return domain.CrawledPage{Err: fmt.Sprintf("read failed: %v", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") {
		return domain.CrawledPage{Content: strings.TrimSpace(string(body))}
	}

	text, err := extractText(string(body))
	if err != nil {
		return domain.CrawledPage{Err: fmt.Sprintf("extract failed: %v", err)}
	}

	c.log.Infow("crawl_ok", "url", pageURL, "chars", len(text))
	return domain.CrawledPage{Content: text}
}

// extractText strips markup down to readable text, keeping rough paragraph
// and list structure.
func extractText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	walk(doc, &sb, 0)
	return cleanText(sb.String()), nil
}

func walk(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 50 {
		return
	}

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "nav", "footer", "header":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6", "p", "div", "tr":
			sb.WriteString("\n\n")
		case "br":
			sb.WriteString("\n")
		case "li":
			sb.WriteString("\n- ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, sb, depth+1)
	}
}

func cleanText(s string) string {
	s = multiSpacePattern.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
