package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

const (
	// noEvidencePlaceholder tells the model explicitly that crawling came
	// back empty, instead of handing it a silent empty string.
	noEvidencePlaceholder = "No external data was found. Base the analysis on the research strategy and your own knowledge, and say so explicitly."

	// analysisFallback replaces an empty model reply so the report never
	// contains a blank analysis section.
	analysisFallback = "Analysis failed."
)

const synthesizerSystemPrompt = `You are a senior market researcher at an M&A advisory firm focused on French SMBs and mid-market companies.
Write a structured market analysis in markdown, grounded in the evidence provided and citing sources by their URL.
Use headers and bullet points, and include an explicit "Key Players" section.
Keep claims traceable to the evidence; flag anything speculative.`

// AnalysisSynthesizer produces the final market analysis from the original
// query, the strategy text and the gathered evidence, using the quality
// chat backend.
type AnalysisSynthesizer struct {
	chat ports.ChatCompleter
	log  *logger.Logger
}

func NewAnalysisSynthesizer(chat ports.ChatCompleter, log *logger.Logger) *AnalysisSynthesizer {
	return &AnalysisSynthesizer{chat: chat, log: log}
}

func (s *AnalysisSynthesizer) Synthesize(ctx context.Context, query, strategyText, evidence string) (string, error) {
	if !s.chat.Configured() {
		return "", fmt.Errorf("synthesizer: %w (quality)", ErrBackendUnavailable)
	}

	if strings.TrimSpace(evidence) == "" {
		evidence = noEvidencePlaceholder
	}

	userContent := fmt.Sprintf(
		"Research request:\n%s\n\nResearch strategy:\n%s\n\nGathered evidence:\n%s",
		query, strategyText, evidence,
	)

	analysis, err := s.chat.Complete(ctx, synthesizerSystemPrompt, userContent)
	if err != nil {
		return "", fmt.Errorf("synthesizer: %w", err)
	}

	// The reply is used verbatim; no structural validation beyond non-empty.
	if strings.TrimSpace(analysis) == "" {
		s.log.Warnw("synthesis_empty_reply", "query", query)
		return analysisFallback, nil
	}

	s.log.Infow("synthesis_ok", "query", query, "analysis_chars", len(analysis))
	return analysis, nil
}
