package db

import (
	"github.com/dealdesk/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.ResearchTask{},
		&domain.ResearchSection{},
		&domain.ResearchSource{},
	)
	if err != nil {
		return err
	}

	return createCustomIndexes(db)
}

func createCustomIndexes(db *gorm.DB) error {
	// One section per ordinal per task; stage checkpoints append forward only
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_research_sections_task_position
		ON research_sections (task_id, position)
	`).Error; err != nil {
		return err
	}

	// Sweep query: non-terminal tasks ordered by last touch
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_research_tasks_status_updated
		ON research_tasks (status, updated_at)
	`).Error; err != nil {
		return err
	}

	return nil
}
