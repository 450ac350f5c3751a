package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/memberhive/memberhive/app/controllers"
	"github.com/memberhive/memberhive/app/repository"
	"github.com/memberhive/memberhive/internal/pkg/membership"
	"github.com/memberhive/memberhive/internal/pkg/middleware"
	"github.com/memberhive/memberhive/internal/pkg/payments"
	"github.com/memberhive/memberhive/internal/pkg/plans"
)

// Deps carries the wired services the routes dispatch into.
type Deps struct {
	Ingest     *payments.Ingest
	Plans      *plans.Service
	Membership *membership.Service
	Buttons    payments.ButtonBuilder
	History    repository.HistoryRepository
}

// InstallRouter registers all routes on the Fiber app.
func InstallRouter(app *fiber.App, deps Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Payment gateway webhooks: authenticated by HMAC signature, not API key.
	ipn := controllers.NewIPNController(deps.Ingest)
	webhooks := app.Group("/webhooks/payment", limiter.New())
	webhooks.Post("/purchase", ipn.HandlePurchase)
	webhooks.Post("/refund", ipn.HandleRefund)

	// Admin JSON API.
	planCtl := controllers.NewAdminPlanController(deps.Plans, deps.Buttons)
	subCtl := controllers.NewAdminSubscriptionController(deps.Membership, deps.History)

	admin := app.Group("/api/v1/admin", middleware.AdminKeyMiddleware())

	adminPlans := admin.Group("/plans")
	adminPlans.Get("/", planCtl.List)
	adminPlans.Post("/", planCtl.Create)
	adminPlans.Get("/:id", planCtl.Get)
	adminPlans.Put("/:id", planCtl.Update)
	adminPlans.Post("/:id/toggle", planCtl.Toggle)
	adminPlans.Get("/:id/button", planCtl.Button)
	adminPlans.Delete("/:id", planCtl.Delete)

	adminSubs := admin.Group("/subscriptions")
	adminSubs.Post("/", subCtl.Add)
	adminSubs.Get("/user/:uid", subCtl.List)
	adminSubs.Get("/user/:uid/history", subCtl.History)
	adminSubs.Post("/:id/cancel", subCtl.Cancel)
	adminSubs.Post("/:id/expire", subCtl.Expire)
	adminSubs.Delete("/:id", subCtl.Delete)
}
