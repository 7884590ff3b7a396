package domain

import (
	"strings"
	"time"
)

// ==================== ENUMS ====================

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether the status can never change again.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

type SectionKind string

const (
	SectionStrategy    SectionKind = "strategy"
	SectionEvidenceLog SectionKind = "evidence_log"
	SectionAnalysis    SectionKind = "analysis"
	SectionSwot        SectionKind = "swot"
	SectionErrorNote   SectionKind = "error_note"
)

// ==================== ENTITIES ====================

// ResearchTask tracks one market-research query through planning, evidence
// gathering, synthesis and an optional SWOT follow-on. The report body lives
// in typed, ordered Sections; the rendered markdown is derived at read time.
type ResearchTask struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Query         string     `gorm:"type:text;not null" json:"query"`
	Status        TaskStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	FailureReason string     `gorm:"type:text" json:"failure_reason,omitempty"`

	CreatedBy   string `gorm:"size:36;not null;index" json:"created_by"`
	CreatorName string `gorm:"->;-:migration" json:"creator_name,omitempty"`

	Sections []ResearchSection `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
	Sources  []ResearchSource  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"sources,omitempty"`
}

// ResearchSection is one checkpointed stage output of a task's report.
// Position fixes the render order; a task gains sections strictly forward
// (strategy, evidence_log, analysis, then any number of swot appends).
type ResearchSection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TaskID   string      `gorm:"size:36;not null;index" json:"task_id"`
	Kind     SectionKind `gorm:"size:20;not null" json:"kind"`
	Position int         `gorm:"not null" json:"position"`
	Title    string      `gorm:"size:255;not null" json:"title"`
	Body     string      `gorm:"type:text" json:"body"`
}

// ResearchSource records the provenance of one crawled evidence page.
type ResearchSource struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TaskID string `gorm:"size:36;not null;index" json:"task_id"`
	Title  string `gorm:"size:512" json:"title"`
	URL    string `gorm:"size:2048;not null" json:"url"`
	Chars  int    `json:"chars"`
}

// User is the minimal slice of the account table this subsystem reads; it is
// owned and migrated by the admin-suite CRUD layer.
type User struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	DisplayName string `gorm:"size:255" json:"display_name"`
	Email       string `gorm:"size:255;uniqueIndex" json:"email"`
}

// ==================== RENDERING ====================

// RenderSummary composes the markdown report from the task's ordered
// sections. SWOT sections are preceded by a horizontal rule; an empty
// section list renders to a short placeholder so a freshly submitted task
// never shows an empty document.
func (t *ResearchTask) RenderSummary() string {
	if len(t.Sections) == 0 {
		return "Research queued. Results will appear here as stages complete."
	}

	var sb strings.Builder
	for i, sec := range t.Sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if sec.Kind == SectionSwot {
			sb.WriteString("---\n\n")
		}
		sb.WriteString("## ")
		sb.WriteString(sec.Title)
		sb.WriteString("\n\n")
		sb.WriteString(sec.Body)
	}
	return sb.String()
}

// NextPosition returns the ordinal for a section appended now.
func (t *ResearchTask) NextPosition() int {
	max := -1
	for _, sec := range t.Sections {
		if sec.Position > max {
			max = sec.Position
		}
	}
	return max + 1
}

// HasSection reports whether any section of the given kind exists.
func (t *ResearchTask) HasSection(kind SectionKind) bool {
	for _, sec := range t.Sections {
		if sec.Kind == kind {
			return true
		}
	}
	return false
}
