package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "work engine api",
		})
	})

	v1 := api.Group("/v1")

	works := v1.Group("/works")
	works.Post("/", controllers.HandleCreateWork)
	works.Get("/:id", controllers.HandleGetWork)
	works.Patch("/:id/status", controllers.HandleSetWorkStatus)
	works.Post("/:id/reconcile", controllers.HandleReconcileWork)
	works.Get("/:id/periods", controllers.HandleListPeriods)
	works.Post("/:id/periods", controllers.HandleCreateManualPeriod)
	works.Get("/:id/templates", controllers.HandleListTemplates)
	works.Post("/:id/templates", controllers.HandleCreateTemplate)

	periods := v1.Group("/periods")
	periods.Get("/:id/tasks", controllers.HandleListPeriodTasks)
	periods.Post("/:id/tasks", controllers.HandleCreateManualTask)
	periods.Patch("/:id/status", controllers.HandleSetPeriodStatus)
	periods.Patch("/:id/notes", controllers.HandleUpdatePeriodNotes)

	tasks := v1.Group("/tasks")
	tasks.Patch("/:id/status", controllers.HandleSetTaskStatus)

	invoices := v1.Group("/invoices")
	invoices.Get("/:id", controllers.HandleGetInvoice)

	customers := v1.Group("/customers")
	customers.Get("/:id/invoices", controllers.HandleListCustomerInvoices)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
