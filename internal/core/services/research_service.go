package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

const (
	sectionTitleStrategy = "Research Strategy"
	sectionTitleSources  = "Sources Scraped"
	sectionTitleAnalysis = "Market Analysis"
	sectionTitleSwot     = "SWOT Analysis"
	sectionTitleError    = "Error"

	gatheringMarker = "Gathering evidence from live web sources..."
)

type ResearchServiceConfig struct {
	Repo        ports.ResearchTaskRepository
	Planner     *StrategyPlanner
	Gatherer    *EvidenceGatherer
	Synthesizer *AnalysisSynthesizer
	QualityChat ports.ChatCompleter
	Logger      *logger.Logger
	QueueSize   int
	Workers     int
	TaskTimeout time.Duration
}

// ResearchService owns the research pipeline: it accepts submissions, runs
// the plan → gather → synthesize stages on its worker pool, checkpoints each
// stage as a section, and serves reads and SWOT extraction.
type ResearchService struct {
	repo        ports.ResearchTaskRepository
	planner     *StrategyPlanner
	gatherer    *EvidenceGatherer
	synthesizer *AnalysisSynthesizer
	qualityChat ports.ChatCompleter
	queue       *TaskQueue
	log         *logger.Logger
	workers     int
	taskTimeout time.Duration
}

func NewResearchService(cfg ResearchServiceConfig) *ResearchService {
	return &ResearchService{
		repo:        cfg.Repo,
		planner:     cfg.Planner,
		gatherer:    cfg.Gatherer,
		synthesizer: cfg.Synthesizer,
		qualityChat: cfg.QualityChat,
		queue:       NewTaskQueue(cfg.QueueSize, cfg.Logger),
		log:         cfg.Logger,
		workers:     cfg.Workers,
		taskTimeout: cfg.TaskTimeout,
	}
}

// StartWorkers launches the pipeline worker pool.
func (s *ResearchService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx, s.workers, s.runTask)
}

// Shutdown stops accepting work and drains in-flight tasks.
func (s *ResearchService) Shutdown() {
	s.queue.Stop()
}

// ==================== Submission ====================

func (s *ResearchService) Submit(ctx context.Context, query string, requestedBy string) (string, error) {
	if strings.TrimSpace(requestedBy) == "" {
		return "", ErrUnauthorized
	}
	if strings.TrimSpace(query) == "" {
		return "", ErrInvalidQuery
	}

	task := &domain.ResearchTask{
		ID:        uuid.New().String(),
		Query:     strings.TrimSpace(query),
		Status:    domain.TaskStatusPending,
		CreatedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return "", fmt.Errorf("research: failed to create task: %w", err)
	}

	if err := s.queue.Enqueue(task.ID); err != nil {
		// The record exists but no worker will ever pick it up; close it
		// out instead of leaving it pending forever, with a note so the
		// rendered report explains the failed status.
		note := "Research failed: the task queue was full at submission, so this research never started."
		if cerr := s.checkpoint(ctx, task.ID, domain.SectionErrorNote, task.NextPosition(), sectionTitleError, note); cerr != nil {
			s.log.Errorw("research_submit_fail_note", "task_id", task.ID, "error", cerr)
		}
		if uerr := s.repo.UpdateStatus(ctx, task.ID, domain.TaskStatusFailed, "task queue full at submission"); uerr != nil {
			s.log.Errorw("research_submit_fail_status", "task_id", task.ID, "error", uerr)
		}
		return "", err
	}

	s.log.Infow("research_submitted", "task_id", task.ID, "requested_by", requestedBy)
	return task.ID, nil
}

// ==================== Pipeline ====================

// runTask drives one task through the pipeline stages. Each stage's output
// is checkpointed before the next stage starts, so a late failure keeps
// everything produced so far and only appends an error note.
func (s *ResearchService) runTask(ctx context.Context, taskID string) {
	ctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		s.log.Errorw("research_task_load_failed", "task_id", taskID, "error", err)
		return
	}
	if task.Status.Terminal() {
		s.log.Warnw("research_task_already_terminal", "task_id", taskID, "status", task.Status)
		return
	}

	if err := s.repo.UpdateStatus(ctx, taskID, domain.TaskStatusProcessing, ""); err != nil {
		s.log.Errorw("research_task_start_failed", "task_id", taskID, "error", err)
		return
	}

	if err := s.runStages(ctx, task); err != nil {
		s.failTask(ctx, taskID, err)
		return
	}

	if err := s.repo.UpdateStatus(ctx, taskID, domain.TaskStatusCompleted, ""); err != nil {
		s.log.Errorw("research_task_complete_failed", "task_id", taskID, "error", err)
		return
	}
	s.log.Infow("research_task_completed", "task_id", taskID)
}

func (s *ResearchService) runStages(ctx context.Context, task *domain.ResearchTask) error {
	position := task.NextPosition()

	// Stage 1: strategy
	plan, err := s.planner.Plan(ctx, task.Query)
	if err != nil {
		return err
	}
	strategyBody := plan.StrategyText + "\n\n" + gatheringMarker
	if err := s.checkpoint(ctx, task.ID, domain.SectionStrategy, position, sectionTitleStrategy, strategyBody); err != nil {
		return err
	}
	position++

	// Stage 2: evidence. Zero planner queries is soft: the stage runs with
	// nothing to do and synthesis proceeds on strategy text alone.
	evidence, sources := s.gatherer.Gather(ctx, plan.SearchQueries)
	if err := s.repo.AppendSources(ctx, task.ID, sources); err != nil {
		return err
	}
	if err := s.checkpoint(ctx, task.ID, domain.SectionEvidenceLog, position, sectionTitleSources, renderSourcesBody(plan.SearchQueries, sources)); err != nil {
		return err
	}
	position++

	// Stage 3: analysis
	analysis, err := s.synthesizer.Synthesize(ctx, task.Query, plan.StrategyText, evidence)
	if err != nil {
		return err
	}
	return s.checkpoint(ctx, task.ID, domain.SectionAnalysis, position, sectionTitleAnalysis, analysis)
}

func (s *ResearchService) checkpoint(ctx context.Context, taskID string, kind domain.SectionKind, position int, title, body string) error {
	return s.repo.AppendSection(ctx, &domain.ResearchSection{
		TaskID:   taskID,
		Kind:     kind,
		Position: position,
		Title:    title,
		Body:     body,
	})
}

// failTask preserves the sections checkpointed so far and appends a final
// diagnostic note before moving the task to failed.
func (s *ResearchService) failTask(ctx context.Context, taskID string, cause error) {
	s.log.Errorw("research_task_failed", "task_id", taskID, "error", cause)

	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		s.log.Errorw("research_fail_load_failed", "task_id", taskID, "error", err)
		return
	}
	note := fmt.Sprintf("Research failed: %v", cause)
	if err := s.checkpoint(ctx, taskID, domain.SectionErrorNote, task.NextPosition(), sectionTitleError, note); err != nil {
		s.log.Errorw("research_fail_note_failed", "task_id", taskID, "error", err)
	}
	if err := s.repo.UpdateStatus(ctx, taskID, domain.TaskStatusFailed, cause.Error()); err != nil {
		s.log.Errorw("research_fail_status_failed", "task_id", taskID, "error", err)
	}
}

func renderSourcesBody(queries []string, sources []domain.ResearchSource) string {
	var sb strings.Builder
	sb.WriteString("Search queries used:\n")
	if len(queries) == 0 {
		sb.WriteString("- (none suggested by the planner)\n")
	}
	for _, q := range queries {
		sb.WriteString("- ")
		sb.WriteString(q)
		sb.WriteString("\n")
	}
	if len(sources) > 0 {
		sb.WriteString("\nSources kept:\n")
		for _, src := range sources {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", src.Title, src.URL))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ==================== Reads ====================

func (s *ResearchService) GetTask(ctx context.Context, id string) (*domain.ResearchTask, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *ResearchService) ListTasks(ctx context.Context) ([]domain.ResearchTask, error) {
	return s.repo.GetAll(ctx)
}
