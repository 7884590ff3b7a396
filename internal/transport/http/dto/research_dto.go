package dto

import (
	"time"

	"github.com/dealdesk/backend/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SubmitResearchRequest struct {
	Query string `json:"query"`
}

type SubmitResearchResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// ResearchTaskResponse is the outward shape of a task: the section list is
// already rendered into the markdown summary the admin UI displays. Callers
// must branch on Status before presenting the summary as a finished report.
type ResearchTaskResponse struct {
	ID            string                  `json:"id"`
	Query         string                  `json:"query"`
	Status        domain.TaskStatus       `json:"status"`
	ResultSummary string                  `json:"result_summary"`
	FailureReason string                  `json:"failure_reason,omitempty"`
	Sources       []domain.ResearchSource `json:"sources,omitempty"`
	CreatedBy     string                  `json:"created_by"`
	CreatorName   string                  `json:"creator_name,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func ToResearchTaskResponse(task *domain.ResearchTask) ResearchTaskResponse {
	return ResearchTaskResponse{
		ID:            task.ID,
		Query:         task.Query,
		Status:        task.Status,
		ResultSummary: task.RenderSummary(),
		FailureReason: task.FailureReason,
		Sources:       task.Sources,
		CreatedBy:     task.CreatedBy,
		CreatorName:   task.CreatorName,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

func ToResearchTaskResponses(tasks []domain.ResearchTask) []ResearchTaskResponse {
	out := make([]ResearchTaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToResearchTaskResponse(&tasks[i]))
	}
	return out
}
