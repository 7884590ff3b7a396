package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dealdesk/backend/internal/config"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
	"golang.org/x/net/html"
)

// DuckDuckGoClient scrapes the DuckDuckGo HTML endpoint; no API key needed.
type DuckDuckGoClient struct {
	cfg        config.SearchConfig
	httpClient *http.Client
	log        *logger.Logger
}

func NewDuckDuckGoClient(cfg config.SearchConfig, log *logger.Logger) *DuckDuckGoClient {
	return &DuckDuckGoClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

func (c *DuckDuckGoClient) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	searchURL := fmt.Sprintf("%s?q=%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websearch: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Errorw("websearch_request_failed", "query", query, "error", err)
		return nil, fmt.Errorf("websearch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("websearch: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("websearch: failed to read response: %w", err)
	}

	results, err := parseResults(string(body), limit)
	if err != nil {
		return nil, err
	}
	c.log.Infow("websearch_ok", "query", query, "results", len(results))
	return results, nil
}

func parseResults(htmlContent string, limit int) ([]domain.SearchResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("websearch: failed to parse HTML: %w", err)
	}

	var results []domain.SearchResult

	// DuckDuckGo HTML marks each hit with class="result results_links ..."
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			for _, attr := range n.Attr {
				if attr.Key == "class" && strings.Contains(attr.Val, "results_links") {
					if r := extractResult(n); r.Link != "" && r.Title != "" {
						results = append(results, r)
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

func extractResult(n *html.Node) domain.SearchResult {
	var result domain.SearchResult

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "class" && strings.Contains(attr.Val, "result__a") {
					result.Link = attrValue(n, "href")
					result.Title = textContent(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)

	result.Link = unwrapRedirect(result.Link)
	return result
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect wrapper.
func unwrapRedirect(link string) string {
	const marker = "duckduckgo.com/l/?uddg="
	idx := strings.Index(link, marker)
	if idx < 0 {
		return link
	}
	decoded, err := url.QueryUnescape(link[idx+len(marker):])
	if err != nil {
		return link
	}
	if amp := strings.Index(decoded, "&"); amp > 0 {
		decoded = decoded[:amp]
	}
	return decoded
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
