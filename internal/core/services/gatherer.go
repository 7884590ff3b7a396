package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

const (
	// resultsPerQuery is how many search hits are crawled per query.
	resultsPerQuery = 2
	// minSourceChars rejects pages that yielded too little text to cite.
	minSourceChars = 100
	// maxSourceChars truncates each accepted page before aggregation.
	maxSourceChars = 2000

	truncationMarker = "...[truncated]"
)

// EvidenceGatherer runs the planner's searches and crawls the top hits into
// one text aggregate. It never fails outright: a bad search, a failed crawl
// or a thin page is skipped and the rest of the batch continues.
type EvidenceGatherer struct {
	search  ports.SearchClient
	crawler ports.PageCrawler
	log     *logger.Logger
}

func NewEvidenceGatherer(search ports.SearchClient, crawler ports.PageCrawler, log *logger.Logger) *EvidenceGatherer {
	return &EvidenceGatherer{search: search, crawler: crawler, log: log}
}

// Gather returns the evidence aggregate plus provenance rows for every
// source that made it in. An empty aggregate means no usable source survived.
func (g *EvidenceGatherer) Gather(ctx context.Context, queries []string) (string, []domain.ResearchSource) {
	var sb strings.Builder
	var sources []domain.ResearchSource

	for _, query := range queries {
		results, err := g.search.Search(ctx, query, resultsPerQuery)
		if err != nil {
			g.log.Warnw("evidence_search_failed", "query", query, "error", err)
			continue
		}

		for _, result := range results {
			page := g.crawler.Crawl(ctx, result.Link)
			if page.Err != "" {
				g.log.Warnw("evidence_crawl_skipped", "url", result.Link, "reason", page.Err)
				continue
			}
			chars := utf8.RuneCountInString(page.Content)
			if chars < minSourceChars {
				g.log.Warnw("evidence_source_too_thin", "url", result.Link, "chars", chars)
				continue
			}

			content := page.Content
			if chars > maxSourceChars {
				content = truncateRunes(content, maxSourceChars)
				chars = maxSourceChars
			}

			sb.WriteString(fmt.Sprintf("### Source: %s (%s)\n", result.Title, result.Link))
			sb.WriteString(content)
			sb.WriteString(truncationMarker)
			sb.WriteString("\n\n")

			sources = append(sources, domain.ResearchSource{
				Title: result.Title,
				URL:   result.Link,
				Chars: chars,
			})
		}
	}

	g.log.Infow("evidence_gathered", "queries", len(queries), "sources", len(sources), "aggregate_bytes", sb.Len())
	return sb.String(), sources
}

// truncateRunes cuts s after n runes, never splitting a multi-byte sequence.
// Source limits count characters, not bytes; French pages are full of
// two-byte runes.
func truncateRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
