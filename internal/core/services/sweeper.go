package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

// Sweeper is the reconciliation pass for abandoned work: a task stuck in
// pending or processing past the stale ceiling (crashed worker, process
// restart mid-pipeline) is definitively closed out as failed instead of
// sitting in processing forever.
type Sweeper struct {
	repo       ports.ResearchTaskRepository
	log        *logger.Logger
	staleAfter time.Duration
	interval   time.Duration
}

func NewSweeper(repo ports.ResearchTaskRepository, log *logger.Logger, staleAfter, interval time.Duration) *Sweeper {
	return &Sweeper{repo: repo, log: log, staleAfter: staleAfter, interval: interval}
}

// Run blocks until the context is cancelled, sweeping on a fixed interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce fails every stale task and reports how many were closed.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	cutoff := time.Now().Add(-s.staleAfter)
	stale, err := s.repo.ListStale(ctx, cutoff)
	if err != nil {
		s.log.Errorw("sweep_list_failed", "error", err)
		return 0
	}

	swept := 0
	for _, task := range stale {
		note := fmt.Sprintf("Research abandoned: no progress for over %s, marked failed by reconciliation sweep.", s.staleAfter)
		section := &domain.ResearchSection{
			TaskID:   task.ID,
			Kind:     domain.SectionErrorNote,
			Position: task.NextPosition(),
			Title:    sectionTitleError,
			Body:     note,
		}
		if err := s.repo.AppendSection(ctx, section); err != nil {
			s.log.Errorw("sweep_note_failed", "task_id", task.ID, "error", err)
			continue
		}
		if err := s.repo.UpdateStatus(ctx, task.ID, domain.TaskStatusFailed, "abandoned: swept by reconciliation"); err != nil {
			s.log.Errorw("sweep_fail_status_failed", "task_id", task.ID, "error", err)
			continue
		}
		swept++
	}

	if swept > 0 {
		s.log.Warnw("sweep_closed_stale_tasks", "count", swept, "stale_after", s.staleAfter)
	}
	return swept
}
