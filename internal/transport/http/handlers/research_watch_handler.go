package handlers

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
	"github.com/dealdesk/backend/internal/transport/http/dto"
)

// ResearchWatchHandler streams a running task's progress to the admin UI
// over a websocket, pushing the task snapshot whenever the status or the
// section count changes and closing once the task is terminal.
type ResearchWatchHandler struct {
	service ports.ResearchService
	logger  *logger.Logger
	poll    time.Duration
}

func NewResearchWatchHandler(service ports.ResearchService, logger *logger.Logger) *ResearchWatchHandler {
	return &ResearchWatchHandler{service: service, logger: logger, poll: 2 * time.Second}
}

func (h *ResearchWatchHandler) Handle(c *websocket.Conn) {
	taskID := c.Params("id")

	task, err := h.service.GetTask(context.Background(), taskID)
	if err != nil {
		h.logger.Warnw("watch_task_not_found", "task_id", taskID)
		c.WriteJSON(dto.ErrorResponse{Error: "task not found"})
		c.Close()
		return
	}

	h.logger.Infow("watch_started", "task_id", taskID, "status", task.Status)

	lastStatus := task.Status
	lastSections := len(task.Sections)
	if err := c.WriteJSON(dto.ToResearchTaskResponse(task)); err != nil {
		c.Close()
		return
	}

	for !task.Status.Terminal() {
		time.Sleep(h.poll)

		task, err = h.service.GetTask(context.Background(), taskID)
		if err != nil {
			c.WriteJSON(dto.ErrorResponse{Error: "task no longer readable"})
			break
		}

		if task.Status == lastStatus && len(task.Sections) == lastSections {
			continue
		}
		lastStatus = task.Status
		lastSections = len(task.Sections)

		if err := c.WriteJSON(dto.ToResearchTaskResponse(task)); err != nil {
			h.logger.Warnw("watch_client_gone", "task_id", taskID, "error", err)
			break
		}
	}

	h.logger.Infow("watch_finished", "task_id", taskID, "status", lastStatus)
	c.Close()
}
