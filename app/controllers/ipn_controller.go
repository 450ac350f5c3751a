package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/memberhive/memberhive/internal/pkg/env"
	"github.com/memberhive/memberhive/internal/pkg/membership"
	"github.com/memberhive/memberhive/internal/pkg/payments"
	"github.com/memberhive/memberhive/internal/pkg/plans"
)

// IPNController receives payment gateway notifications. The gateway keys
// its redelivery on our HTTP status, so only a successfully applied event
// returns 200.
type IPNController struct {
	ingest *payments.Ingest
}

// NewIPNController creates the webhook controller.
func NewIPNController(ingest *payments.Ingest) *IPNController {
	return &IPNController{ingest: ingest}
}

// HandlePurchase processes a purchase/renewal/upgrade notification.
func (ic *IPNController) HandlePurchase(c *fiber.Ctx) error {
	n, ok := ic.authenticate(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid webhook signature"})
	}

	if err := ic.ingest.HandlePurchase(c.Context(), *n); err != nil {
		return ipnError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleRefund processes a refund notification by canceling the
// subscription it paid for.
func (ic *IPNController) HandleRefund(c *fiber.Ctx) error {
	n, ok := ic.authenticate(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid webhook signature"})
	}

	if err := ic.ingest.HandleRefund(c.Context(), *n); err != nil {
		return ipnError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// authenticate verifies the HMAC signature over the raw body before any
// parsing; nothing is processed on a bad signature.
func (ic *IPNController) authenticate(c *fiber.Ctx) (*payments.Notification, bool) {
	secret := env.GetEnv("PAYMENT_WEBHOOK_SECRET", "")
	body := c.Body()
	if !payments.VerifyWebhookSignature(body, c.Get("X-Payment-Signature"), secret) {
		log.Warnf("webhook signature verification failed from %s", c.IP())
		return nil, false
	}

	var n payments.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Warnf("webhook payload unmarshal failed: %v", err)
		return nil, false
	}
	return &n, true
}

func ipnError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payments.ErrBadItemID),
		errors.Is(err, payments.ErrUnknownPayer),
		errors.Is(err, membership.ErrInvalidUser):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	case errors.Is(err, plans.ErrNotFound), errors.Is(err, membership.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, membership.ErrNotUpgradable), errors.Is(err, membership.ErrRenewalTooEarly):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": err.Error()})
	default:
		log.Errorf("webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Event could not be applied"})
	}
}
