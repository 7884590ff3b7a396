package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/backend/internal/domain"
)

func TestExtractSwotAppendsSection(t *testing.T) {
	p := newTestPipeline(4)
	id := p.submitAndRun(t)

	p.quality.reply = "| Strengths | Weaknesses | Opportunities | Threats |\n|---|---|---|---|\n| a | b | c | d |"
	require.NoError(t, p.svc.ExtractSwot(context.Background(), id))

	task, err := p.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	require.Len(t, task.Sections, 4)
	assert.Equal(t, domain.SectionSwot, task.Sections[3].Kind)

	summary := task.RenderSummary()
	assert.Contains(t, summary, "---\n\n## SWOT Analysis")
}

func TestExtractSwotReceivesWholeReport(t *testing.T) {
	p := newTestPipeline(4)
	id := p.submitAndRun(t)

	require.NoError(t, p.svc.ExtractSwot(context.Background(), id))

	// The extraction prompt carries the full report, not just the analysis
	prompt := p.quality.lastUserPrompt()
	assert.Contains(t, prompt, "## Research Strategy")
	assert.Contains(t, prompt, "## Market Analysis")
}

func TestExtractSwotTwiceAppendsTwice(t *testing.T) {
	p := newTestPipeline(4)
	id := p.submitAndRun(t)

	require.NoError(t, p.svc.ExtractSwot(context.Background(), id))
	require.NoError(t, p.svc.ExtractSwot(context.Background(), id))

	task, err := p.repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	swots := 0
	for _, sec := range task.Sections {
		if sec.Kind == domain.SectionSwot {
			swots++
		}
	}
	assert.Equal(t, 2, swots)
}

func TestExtractSwotUnknownTask(t *testing.T) {
	p := newTestPipeline(4)

	err := p.svc.ExtractSwot(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestExtractSwotRejectsUnfinishedTask(t *testing.T) {
	p := newTestPipeline(4)
	id, err := p.svc.Submit(context.Background(), "query", "user-1")
	require.NoError(t, err)

	before, err := p.repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	err = p.svc.ExtractSwot(context.Background(), id)
	assert.True(t, errors.Is(err, ErrTaskNotReady))

	// The stored record is untouched
	after, err := p.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.RenderSummary(), after.RenderSummary())
	assert.Len(t, after.Sections, 0)
}

func TestExtractSwotBackendFailureLeavesTaskUntouched(t *testing.T) {
	p := newTestPipeline(4)
	id := p.submitAndRun(t)

	before, err := p.repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	p.quality.err = errors.New("upstream 500")
	err = p.svc.ExtractSwot(context.Background(), id)
	assert.True(t, errors.Is(err, ErrSwotExtraction))

	after, err := p.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before.RenderSummary(), after.RenderSummary())
	assert.Len(t, after.Sections, len(before.Sections))
}
