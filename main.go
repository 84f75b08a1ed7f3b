package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/controllers"
	"github.com/finaccosolutions/Business-Management-Application-sub013/app/repository"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/cache"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/database"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/env"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/invoicing"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/jobqueue"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/mail"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/router"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/scheduler"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/scheduling"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalFactory().GetRepositories()

	invoiceSvc := invoicing.NewService(repos).
		WithTaxRate(env.GetEnvFloat("TAX_RATE_PERCENT", invoicing.DefaultTaxRatePercent)).
		WithNotifier(mail.NotifyInvoiceCreated)
	schedSvc := scheduling.NewService(repos, invoiceSvc).
		WithInvalidator(cache.InvalidateWork)

	controllers.Setup(schedSvc, invoiceSvc, repos)

	// Background reconciliation: the cron sweep enqueues every open
	// recurring work, the queue workers run the same idempotent
	// EnsureNextPeriod the request handlers use.
	queue := jobqueue.NewQueue(schedSvc, env.GetEnvInt("RECONCILE_WORKERS", jobqueue.DefaultWorkers))
	queue.Start()

	interval := time.Duration(env.GetEnvInt("RECONCILE_INTERVAL_MINUTES", 15)) * time.Minute
	sched := scheduler.New(time.Local)
	if _, err := sched.ScheduleInterval(interval, func() {
		if _, err := schedSvc.SweepRecurring(queue.Enqueue); err != nil {
			log.Printf("reconcile sweep: %v", err)
		}
	}); err != nil {
		log.Printf("could not schedule reconcile sweep: %v", err)
	}
	sched.Start()

	app := fiber.New(fiber.Config{
		AppName: "work-engine",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app)

	return app
}
