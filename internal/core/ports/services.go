package ports

import (
	"context"

	"github.com/dealdesk/backend/internal/domain"
)

type ResearchService interface {
	// Submit validates and persists a new task, enqueues it for a worker,
	// and returns the task id without waiting for the pipeline.
	Submit(ctx context.Context, query string, requestedBy string) (string, error)
	GetTask(ctx context.Context, id string) (*domain.ResearchTask, error)
	ListTasks(ctx context.Context) ([]domain.ResearchTask, error)
	// ExtractSwot appends a SWOT section derived from a completed task's
	// full report. Each call appends a fresh section.
	ExtractSwot(ctx context.Context, id string) error
}
