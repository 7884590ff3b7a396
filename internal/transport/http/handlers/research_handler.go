package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/core/services"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
	"github.com/dealdesk/backend/internal/transport/http/dto"
	"github.com/dealdesk/backend/internal/transport/http/middleware"
)

type ResearchHandler struct {
	service ports.ResearchService
	logger  *logger.Logger
}

func NewResearchHandler(service ports.ResearchService, logger *logger.Logger) *ResearchHandler {
	return &ResearchHandler{service: service, logger: logger}
}

// Submit accepts a research query and returns the task id immediately; the
// pipeline runs on the worker pool and the client polls or watches.
func (h *ResearchHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitResearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	taskID, err := h.service.Submit(c.Context(), req.Query, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrInvalidQuery):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrQueueFull):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.SubmitResearchResponse{
		TaskID: taskID,
		Status: "accepted",
	})
}

func (h *ResearchHandler) Get(c *fiber.Ctx) error {
	task, err := h.service.GetTask(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.ToResearchTaskResponse(task))
}

func (h *ResearchHandler) List(c *fiber.Ctx) error {
	tasks, err := h.service.ListTasks(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.ToResearchTaskResponses(tasks))
}

func (h *ResearchHandler) ExtractSwot(c *fiber.Ctx) error {
	err := h.service.ExtractSwot(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrTaskNotReady):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
