package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/recurrence"
)

// CreateWorkRequest is the payload for creating a work.
type CreateWorkRequest struct {
	CustomerID        uint     `json:"customer_id" validate:"required"`
	ServiceID         uint     `json:"service_id" validate:"required"`
	Title             string   `json:"title" validate:"required,min=2,max=200"`
	Description       string   `json:"description" validate:"max=2000"`
	IsRecurring       bool     `json:"is_recurring"`
	RecurrencePattern string   `json:"recurrence_pattern" validate:"omitempty,oneof=monthly quarterly half_yearly yearly"`
	RecurrenceDay     int      `json:"recurrence_day" validate:"min=0,max=31"`
	BillingAmount     *float64 `json:"billing_amount"`
	AutoBill          bool     `json:"auto_bill"`
}

// HandleCreateWork creates a work. Recurring works are seeded with their
// bootstrap period immediately.
func HandleCreateWork(c *fiber.Ctx) error {
	var req CreateWorkRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	if req.IsRecurring {
		if _, err := recurrence.ParsePattern(req.RecurrencePattern); err != nil {
			return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
		}
		if req.RecurrenceDay < 1 {
			return respondError(c, fiber.StatusBadRequest, "validation_failed", "recurrence_day must be between 1 and 31")
		}
	}

	work := &models.Work{
		CustomerID:        req.CustomerID,
		ServiceID:         req.ServiceID,
		Title:             req.Title,
		Description:       req.Description,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: recurrence.Pattern(req.RecurrencePattern),
		RecurrenceDay:     req.RecurrenceDay,
		BillingAmount:     req.BillingAmount,
		AutoBill:          req.AutoBill,
	}
	if err := schedService.CreateWork(work, actorID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(work)
}

// HandleGetWork returns a work's detail. Opening the detail view doubles as
// the opportunistic generation trigger: a due period is generated before
// the response is built, so the listing the UI fetches next is current.
func HandleGetWork(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid work id")
	}
	if _, err := schedService.EnsureNextPeriod(id, actorID(c)); err != nil {
		return respondServiceError(c, err)
	}
	work, err := repos.Work.GetByID(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(work)
}

// HandleReconcileWork explicitly runs period generation for one work and
// reports the created period, if any.
func HandleReconcileWork(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid work id")
	}
	period, err := schedService.EnsureNextPeriod(id, actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if period == nil {
		return c.JSON(fiber.Map{"generated": false})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"generated": true,
		"period":    period,
	})
}

// StatusRequest is the payload for all status transitions.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleSetWorkStatus applies a manual work transition.
func HandleSetWorkStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid work id")
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	result, err := schedService.SetWorkStatus(id, status, actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := fiber.Map{"work": result.Work}
	if result.Invoice != nil {
		resp["invoice"] = result.Invoice
	}
	if result.BillingSkipped {
		resp["warning"] = "billing skipped: no billing amount configured"
	}
	return c.JSON(resp)
}
