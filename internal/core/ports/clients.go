package ports

import (
	"context"

	"github.com/dealdesk/backend/internal/domain"
)

// ChatCompleter is one configured chat-completion backend. The service layer
// holds two instances: a fast one for planning and a quality one for
// synthesis and SWOT extraction.
type ChatCompleter interface {
	// Complete sends one system+user exchange and returns the reply text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Configured distinguishes a missing setup from a runtime failure;
	// Complete on an unconfigured backend must fail immediately.
	Configured() bool
}

// SearchClient returns up to limit ranked web results for a query.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// PageCrawler fetches one URL and extracts its readable text. Fetch and
// extraction failures come back in the page's Err field, not as an error
// return, so callers can skip bad sources without aborting a batch.
type PageCrawler interface {
	Crawl(ctx context.Context, url string) domain.CrawledPage
}
