package db

import (
	"context"
	"time"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type researchTaskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResearchTaskRepository(db *gorm.DB, log *logger.Logger) ports.ResearchTaskRepository {
	return &researchTaskRepository{db: db, log: log}
}

func (r *researchTaskRepository) Create(ctx context.Context, task *domain.ResearchTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("research_repo_create_failed", "id", task.ID, "error", err)
		return err
	}
	r.log.Infow("research_repo_create_ok", "id", task.ID, "created_by", task.CreatedBy)
	return nil
}

func (r *researchTaskRepository) GetByID(ctx context.Context, id string) (*domain.ResearchTask, error) {
	var task domain.ResearchTask
	err := r.db.WithContext(ctx).
		Select("research_tasks.*, users.display_name AS creator_name").
		Joins("LEFT JOIN users ON users.id = research_tasks.created_by").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Sources").
		First(&task, "research_tasks.id = ?", id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			r.log.Errorw("research_repo_get_failed", "id", id, "error", err)
		}
		return nil, err
	}
	return &task, nil
}

func (r *researchTaskRepository) GetAll(ctx context.Context) ([]domain.ResearchTask, error) {
	var tasks []domain.ResearchTask
	err := r.db.WithContext(ctx).
		Select("research_tasks.*, users.display_name AS creator_name").
		Joins("LEFT JOIN users ON users.id = research_tasks.created_by").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("research_tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		r.log.Errorw("research_repo_list_failed", "error", err)
		return nil, err
	}
	return tasks, nil
}

// UpdateStatus moves a task forward; terminal states are final, so the
// update is guarded against rows already completed or failed.
func (r *researchTaskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, failureReason string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}

	res := r.db.WithContext(ctx).
		Model(&domain.ResearchTask{}).
		Where("id = ? AND status NOT IN ?", id, []domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusFailed}).
		Updates(updates)
	if res.Error != nil {
		r.log.Errorw("research_repo_update_status_failed", "id", id, "status", status, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.log.Infow("research_repo_update_status_ok", "id", id, "status", status)
	return nil
}

func (r *researchTaskRepository) AppendSection(ctx context.Context, section *domain.ResearchSection) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(section).Error; err != nil {
			return err
		}
		// Touch the parent so the sweeper sees the task as alive
		return tx.Model(&domain.ResearchTask{}).
			Where("id = ?", section.TaskID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		r.log.Errorw("research_repo_append_section_failed", "task_id", section.TaskID, "kind", section.Kind, "error", err)
		return err
	}
	r.log.Infow("research_repo_append_section_ok", "task_id", section.TaskID, "kind", section.Kind, "position", section.Position)
	return nil
}

func (r *researchTaskRepository) AppendSources(ctx context.Context, taskID string, sources []domain.ResearchSource) error {
	if len(sources) == 0 {
		return nil
	}
	for i := range sources {
		sources[i].TaskID = taskID
	}
	if err := r.db.WithContext(ctx).Create(&sources).Error; err != nil {
		r.log.Errorw("research_repo_append_sources_failed", "task_id", taskID, "error", err)
		return err
	}
	return nil
}

func (r *researchTaskRepository) ListStale(ctx context.Context, cutoff time.Time) ([]domain.ResearchTask, error) {
	var tasks []domain.ResearchTask
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("status IN ? AND updated_at < ?", []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusProcessing}, cutoff).
		Find(&tasks).Error
	if err != nil {
		r.log.Errorw("research_repo_list_stale_failed", "error", err)
		return nil, err
	}
	return tasks, nil
}
