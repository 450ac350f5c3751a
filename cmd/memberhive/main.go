package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/memberhive/memberhive/app/repository"
	"github.com/memberhive/memberhive/internal/pkg/cache"
	"github.com/memberhive/memberhive/internal/pkg/clock"
	"github.com/memberhive/memberhive/internal/pkg/database"
	"github.com/memberhive/memberhive/internal/pkg/entitlements"
	"github.com/memberhive/memberhive/internal/pkg/env"
	"github.com/memberhive/memberhive/internal/pkg/mail"
	"github.com/memberhive/memberhive/internal/pkg/membership"
	"github.com/memberhive/memberhive/internal/pkg/payments"
	"github.com/memberhive/memberhive/internal/pkg/plans"
	"github.com/memberhive/memberhive/internal/pkg/router"
	"github.com/memberhive/memberhive/internal/pkg/sweeper"
)

func main() {
	app, sweep := NewApplication()
	sweep.Start()
	defer sweep.Stop()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

// NewApplication wires storage, cache, services and routes.
func NewApplication() (*fiber.App, *sweeper.Sweeper) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repos := repository.NewRepositories(db)

	planSvc := plans.NewService(repos.Plan, cache.Redis{})
	gateway := entitlements.NewGroupStore(db)
	notifier := mail.NewNotifier(repos.User)

	svc := membership.NewService(
		repos,
		planSvc,
		gateway,
		entitlements.NoLinkedAccounts{},
		cache.Redis{},
		clock.System(),
		notifier,
		membership.DefaultConfig(),
	)
	ingest := payments.NewIngest(repos.User, svc)

	app := fiber.New(fiber.Config{
		AppName: "memberhive",
	})
	app.Use(recover.New(), logger.New())

	router.InstallRouter(app, router.Deps{
		Ingest:     ingest,
		Plans:      planSvc,
		Membership: svc,
		Buttons:    payments.NewButtonBuilderFromEnv(),
		History:    repos.History,
	})

	sweep := sweeper.New()
	sweep.AddJob("expire_lapsed_subscriptions", 1*time.Hour, svc.RunExpirySweep)
	sweep.AddJob("notify_expiring_subscriptions", 6*time.Hour, svc.RunNotifySweep)

	return app, sweep
}
