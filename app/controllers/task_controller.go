package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/scheduling"
)

// HandleListPeriodTasks lists a period's tasks ordered by sort_order.
func HandleListPeriodTasks(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid period id")
	}
	if _, err := repos.Period.GetByID(id); err != nil {
		return respondServiceError(c, err)
	}
	tasks, err := repos.Task.ListByPeriod(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tasks)
}

// CreateTaskRequest is the payload for manual task insertion.
type CreateTaskRequest struct {
	Title          string  `json:"title" validate:"required,min=2,max=200"`
	Description    string  `json:"description" validate:"max=2000"`
	Priority       string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate        string  `json:"due_date"`
	AssignedTo     *uint   `json:"assigned_to"`
	EstimatedHours float64 `json:"estimated_hours" validate:"min=0"`
	SortOrder      int     `json:"sort_order"`
}

// HandleCreateManualTask adds a task with no template link to a period.
func HandleCreateManualTask(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid period id")
	}
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	var due *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(time.DateOnly, req.DueDate)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "validation_failed", "due_date must be YYYY-MM-DD")
		}
		due = &parsed
	}

	task, err := schedService.CreateManualTask(id, scheduling.ManualTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       models.Priority(req.Priority),
		DueDate:        due,
		AssignedTo:     req.AssignedTo,
		EstimatedHours: req.EstimatedHours,
		SortOrder:      req.SortOrder,
	}, actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// HandleSetTaskStatus applies a task transition and reports any
// auto-completion and billing it cascaded into.
func HandleSetTaskStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid task id")
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	result, err := schedService.SetTaskStatus(id, status, actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := fiber.Map{
		"task":             result.Task,
		"period_completed": result.PeriodCompleted,
		"work_completed":   result.WorkCompleted,
	}
	if result.Invoice != nil {
		resp["invoice"] = result.Invoice
	}
	if result.BillingSkipped {
		resp["warning"] = "billing skipped: no billing amount configured"
	}
	return c.JSON(resp)
}
