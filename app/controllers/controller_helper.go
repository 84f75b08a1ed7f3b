package controllers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/repository"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/invoicing"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/scheduling"
)

var (
	schedService *scheduling.Service
	invService   *invoicing.Service
	repos        *repository.Repositories
	validate     = validator.New()
)

// Setup wires the controllers to the engine services. Must be called once
// before the router is installed.
func Setup(sched *scheduling.Service, inv *invoicing.Service, r *repository.Repositories) {
	schedService = sched
	invService = inv
	repos = r
}

// parseIDParam reads a positive numeric route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// respondError renders the standard JSON error shape.
func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps engine errors onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return respondError(c, fiber.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, scheduling.ErrInvalidTransition),
		errors.Is(err, scheduling.ErrCompletedImmutable),
		errors.Is(err, scheduling.ErrPeriodBilled),
		errors.Is(err, scheduling.ErrDuplicatePeriod):
		return respondError(c, fiber.StatusConflict, "conflict", err.Error())
	}
	return respondError(c, fiber.StatusInternalServerError, "internal_error", err.Error())
}

// actorID resolves the acting user from the request. Authentication is
// handled upstream of this service; the caller passes the actor through a
// header.
func actorID(c *fiber.Ctx) uint {
	raw := c.Get("X-Actor-ID")
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
