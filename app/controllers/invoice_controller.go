package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleGetInvoice returns an invoice with its line items. Accepts either
// the numeric ID or the public UUID.
func HandleGetInvoice(c *fiber.Ctx) error {
	if id, err := parseIDParam(c, "id"); err == nil {
		invoice, err := repos.Invoice.GetByID(id)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(invoice)
	}

	invoice, err := repos.Invoice.GetByPublicID(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(invoice)
}

// HandleListCustomerInvoices lists a customer's invoices, newest first.
func HandleListCustomerInvoices(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "invalid customer id")
	}
	invoices, err := repos.Invoice.ListByCustomer(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(invoices)
}
