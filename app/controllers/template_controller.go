package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
)

// CreateTemplateRequest is the payload for authoring a task template.
type CreateTemplateRequest struct {
	Title             string  `json:"title" validate:"required,min=2,max=200"`
	Description       string  `json:"description" validate:"max=2000"`
	Priority          string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDateOffsetDays int     `json:"due_date_offset_days"`
	EstimatedHours    float64 `json:"estimated_hours" validate:"min=0"`
	DisplayOrder      int     `json:"display_order"`
}

// HandleCreateTemplate authors a task template for a work. Templates only
// affect periods generated after this point; existing periods keep their
// task set.
func HandleCreateTemplate(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid work id")
	}
	var req CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	if _, err := repos.Work.GetByID(id); err != nil {
		return respondServiceError(c, err)
	}

	priority := models.Priority(req.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}
	template := &models.TaskTemplate{
		WorkID:            id,
		Title:             req.Title,
		Description:       req.Description,
		Priority:          priority,
		DueDateOffsetDays: req.DueDateOffsetDays,
		EstimatedHours:    req.EstimatedHours,
		DisplayOrder:      req.DisplayOrder,
	}
	if err := template.Validate(); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	if err := repos.Template.Create(template); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// HandleListTemplates lists a work's templates ordered by display_order.
func HandleListTemplates(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid work id")
	}
	templates, err := repos.Template.ListByWork(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(templates)
}
