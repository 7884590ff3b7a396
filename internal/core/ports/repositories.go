package ports

import (
	"context"
	"time"

	"github.com/dealdesk/backend/internal/domain"
)

type ResearchTaskRepository interface {
	Create(ctx context.Context, task *domain.ResearchTask) error
	GetByID(ctx context.Context, id string) (*domain.ResearchTask, error)
	// GetAll returns tasks newest-first with creator display names joined.
	GetAll(ctx context.Context) ([]domain.ResearchTask, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, failureReason string) error
	AppendSection(ctx context.Context, section *domain.ResearchSection) error
	AppendSources(ctx context.Context, taskID string, sources []domain.ResearchSource) error
	// ListStale returns non-terminal tasks not touched since the cutoff,
	// for the reconciliation sweep.
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.ResearchTask, error)
}
