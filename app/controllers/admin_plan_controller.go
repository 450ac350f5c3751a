package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/memberhive/memberhive/app/models"
	"github.com/memberhive/memberhive/internal/pkg/payments"
	"github.com/memberhive/memberhive/internal/pkg/plans"
)

// AdminPlanController exposes plan catalog management as a JSON API.
type AdminPlanController struct {
	plans   *plans.Service
	buttons payments.ButtonBuilder
}

// NewAdminPlanController creates the plan admin controller.
func NewAdminPlanController(planSvc *plans.Service, buttons payments.ButtonBuilder) *AdminPlanController {
	return &AdminPlanController{plans: planSvc, buttons: buttons}
}

// List returns catalog entries; ?enabled=1 filters to enabled plans.
func (pc *AdminPlanController) List(c *fiber.Ctx) error {
	enabledOnly := c.QueryBool("enabled", false)
	list, err := pc.plans.ListPlans(enabledOnly)
	if err != nil {
		return planError(c, err)
	}
	return c.JSON(fiber.Map{"plans": list})
}

// Get returns one plan.
func (pc *AdminPlanController) Get(c *fiber.Ctx) error {
	plan, err := pc.plans.GetPlan(c.Params("id"))
	if err != nil {
		return planError(c, err)
	}
	return c.JSON(plan)
}

// Create saves a new plan; the id is generated when omitted.
func (pc *AdminPlanController) Create(c *fiber.Ctx) error {
	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan payload"})
	}
	if err := pc.plans.Save(&plan, ""); err != nil {
		return planError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// Update saves an existing plan. A changed id in the payload renames the
// plan and rewrites its subscription rows.
func (pc *AdminPlanController) Update(c *fiber.Ctx) error {
	origID := c.Params("id")
	current, err := pc.plans.GetPlan(origID)
	if err != nil {
		return planError(c, err)
	}

	plan := *current
	if err := c.BodyParser(&plan); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan payload"})
	}
	if err := pc.plans.Save(&plan, origID); err != nil {
		return planError(c, err)
	}
	return c.JSON(plan)
}

// Toggle flips the enabled flag and returns the new state.
func (pc *AdminPlanController) Toggle(c *fiber.Ctx) error {
	enabled, err := pc.plans.ToggleEnabled(c.Params("id"))
	if err != nil {
		return planError(c, err)
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "enabled": enabled})
}

// Delete removes a plan unless subscriptions still reference it.
func (pc *AdminPlanController) Delete(c *fiber.Ctx) error {
	if err := pc.plans.Delete(c.Params("id")); err != nil {
		return planError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// Button returns the buy affordance for a plan; ?upgrade=1 prices the
// upgrade path.
func (pc *AdminPlanController) Button(c *fiber.Ctx) error {
	plan, err := pc.plans.GetPlan(c.Params("id"))
	if err != nil {
		return planError(c, err)
	}
	button, err := pc.buttons.BuildButton(plan, c.QueryBool("upgrade", false))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "bad_gateway", "message": "Button generation failed"})
	}
	return c.JSON(button)
}

func planError(c *fiber.Ctx, err error) error {
	var verr *plans.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "errors": verr.Problems})
	case errors.Is(err, plans.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, plans.ErrExists), errors.Is(err, plans.ErrInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Plan operation failed"})
	}
}
