package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/memberhive/memberhive/app/repository"
	"github.com/memberhive/memberhive/internal/pkg/membership"
	"github.com/memberhive/memberhive/internal/pkg/plans"
)

// AdminSubscriptionController exposes the lifecycle operations an operator
// performs by hand: test purchases, cancellation, expiration, deletion and
// history queries.
type AdminSubscriptionController struct {
	membership *membership.Service
	history    repository.HistoryRepository
}

// NewAdminSubscriptionController creates the subscription admin controller.
func NewAdminSubscriptionController(svc *membership.Service, history repository.HistoryRepository) *AdminSubscriptionController {
	return &AdminSubscriptionController{membership: svc, history: history}
}

type adminAddRequest struct {
	UserID       uint   `json:"user_id"`
	PlanID       string `json:"plan_id"`
	Duration     int    `json:"duration"`
	DurationType string `json:"duration_type"`
	Upgrade      bool   `json:"upgrade"`
	TxnID        string `json:"txn_id"`
	Price        string `json:"price"`
}

// Add applies a purchase on behalf of an operator. A missing transaction id
// gets a generated one so the event is traceable in history.
func (sc *AdminSubscriptionController) Add(c *fiber.Ctx) error {
	var req adminAddRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request payload"})
	}

	in := membership.PurchaseInput{
		UserID:       req.UserID,
		PlanID:       req.PlanID,
		Duration:     req.Duration,
		DurationType: req.DurationType,
		IsUpgrade:    req.Upgrade,
		TxnID:        req.TxnID,
	}
	if in.TxnID == "" {
		in.TxnID = "admin:" + uuid.NewString()
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid price"})
		}
		in.Price = &price
	}

	sub, err := sc.membership.Add(c.Context(), in)
	if err != nil {
		return subscriptionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// List returns a user's subscriptions; ?status= filters by status.
func (sc *AdminSubscriptionController) List(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "uid")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid user id"})
	}

	var statuses []string
	if status := c.Query("status"); status != "" {
		statuses = append(statuses, status)
	}
	subs, err := sc.membership.GetSubscriptions(userID, statuses...)
	if err != nil {
		return subscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": subs})
}

// Cancel cancels a subscription by row id.
func (sc *AdminSubscriptionController) Cancel(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subscription id"})
	}
	if err := sc.membership.CancelByID(c.Context(), id); err != nil {
		return subscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"status": "canceled"})
}

// Expire marks a subscription expired by row id.
func (sc *AdminSubscriptionController) Expire(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subscription id"})
	}
	if err := sc.membership.ExpireByID(c.Context(), id); err != nil {
		return subscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"status": "expired"})
}

// Delete hard-removes a subscription row.
func (sc *AdminSubscriptionController) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subscription id"})
	}
	if err := sc.membership.Delete(c.Context(), id); err != nil {
		return subscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// History returns a user's purchase history.
func (sc *AdminSubscriptionController) History(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "uid")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid user id"})
	}
	entries, err := sc.history.ListByUser(userID)
	if err != nil {
		return subscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"history": entries})
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	return uint(v), err
}

func subscriptionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, membership.ErrInvalidUser):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	case errors.Is(err, membership.ErrNotFound), errors.Is(err, plans.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, membership.ErrNotUpgradable), errors.Is(err, membership.ErrRenewalTooEarly):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription operation failed"})
	}
}
