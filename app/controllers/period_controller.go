package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/cache"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/scheduling"
)

// HandleListPeriods lists a work's periods, most recent due date first.
// Listings are served from the period cache when warm; every mutation of
// the work's periods or tasks invalidates it.
func HandleListPeriods(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid work id")
	}
	if payload, ok := cache.GetPeriodList(id); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(payload)
	}

	periods, err := repos.Period.ListByWork(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	payload, err := json.Marshal(periods)
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.SetPeriodList(id, string(payload))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// CreatePeriodRequest is the payload for manual period insertion.
type CreatePeriodRequest struct {
	Name          string   `json:"name" validate:"required,max=100"`
	StartDate     string   `json:"start_date" validate:"required"`
	EndDate       string   `json:"end_date" validate:"required"`
	DueDate       string   `json:"due_date" validate:"required"`
	BillingAmount *float64 `json:"billing_amount"`
	Notes         string   `json:"notes"`
}

// HandleCreateManualPeriod inserts a hand-made period for a work. The
// (work, due date) uniqueness invariant applies to manual periods too.
func HandleCreateManualPeriod(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid work id")
	}
	var req CreatePeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	start, err1 := time.Parse(time.DateOnly, req.StartDate)
	end, err2 := time.Parse(time.DateOnly, req.EndDate)
	due, err3 := time.Parse(time.DateOnly, req.DueDate)
	if err1 != nil || err2 != nil || err3 != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", "dates must be YYYY-MM-DD")
	}

	period, err := schedService.CreateManualPeriod(id, scheduling.ManualPeriodInput{
		Name:          req.Name,
		StartDate:     start,
		EndDate:       end,
		DueDate:       due,
		BillingAmount: req.BillingAmount,
		Notes:         req.Notes,
	}, actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(period)
}

// HandleSetPeriodStatus applies a manual period transition, including the
// completion override while tasks are still open.
func HandleSetPeriodStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid period id")
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	result, err := schedService.SetPeriodStatus(id, status, actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := fiber.Map{"period": result.Period}
	if result.Invoice != nil {
		resp["invoice"] = result.Invoice
	}
	if result.BillingSkipped {
		resp["warning"] = "billing skipped: no billing amount configured"
	}
	return c.JSON(resp)
}

// NotesRequest is the payload for period note updates.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// HandleUpdatePeriodNotes edits a period's notes, the only field that
// stays writable after billing.
func HandleUpdatePeriodNotes(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid period id")
	}
	var req NotesRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	if err := schedService.UpdatePeriodNotes(id, req.Notes); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"updated": true})
}
