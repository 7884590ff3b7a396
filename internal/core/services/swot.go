package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dealdesk/backend/internal/domain"
)

const swotSystemPrompt = `You are a strategy analyst. Extract a SWOT analysis from the market research report supplied by the user.
Reply with a markdown table with the columns Strengths, Weaknesses, Opportunities, Threats, followed by a one-paragraph summary.
Use only information present in the report.`

// ExtractSwot derives a SWOT table from a completed task's full report and
// appends it as a new section. Each call appends; requesting it twice yields
// two SWOT sections. Nothing is mutated when a precondition or the backend
// call fails.
func (s *ResearchService) ExtractSwot(ctx context.Context, taskID string) error {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return ErrTaskNotFound
	}
	if task.Status != domain.TaskStatusCompleted {
		return ErrTaskNotReady
	}
	if !task.HasSection(domain.SectionAnalysis) {
		return ErrTaskNotReady
	}

	// The whole report is the input, not just the analysis section, so the
	// SWOT can draw on strategy and source context too.
	report := task.RenderSummary()
	if strings.TrimSpace(report) == "" {
		return ErrTaskNotReady
	}

	swot, err := s.qualityChat.Complete(ctx, swotSystemPrompt, report)
	if err != nil {
		s.log.Errorw("swot_extraction_failed", "task_id", taskID, "error", err)
		return fmt.Errorf("%w: %v", ErrSwotExtraction, err)
	}
	if strings.TrimSpace(swot) == "" {
		return ErrSwotExtraction
	}

	if err := s.checkpoint(ctx, taskID, domain.SectionSwot, task.NextPosition(), sectionTitleSwot, swot); err != nil {
		return fmt.Errorf("%w: %v", ErrSwotExtraction, err)
	}

	s.log.Infow("swot_extracted", "task_id", taskID, "swot_chars", len(swot))
	return nil
}
