package payments

import (
	"fmt"

	"github.com/memberhive/memberhive/app/models"
	"github.com/memberhive/memberhive/internal/pkg/env"
)

// Button is an opaque buy affordance for a plan: the currency to display
// and markup/handle the surrounding UI embeds as-is.
type Button struct {
	Currency string `json:"currency"`
	Markup   string `json:"markup"`
}

// ButtonBuilder renders a buy affordance for a plan. Implementations wrap
// whatever payment gateway is configured; the core treats the result as
// opaque.
type ButtonBuilder interface {
	BuildButton(plan *models.Plan, upgrade bool) (Button, error)
	Currency() string
}

// EnvButtonBuilder builds a gateway-neutral hosted-checkout link from
// environment configuration.
type EnvButtonBuilder struct {
	baseURL  string
	currency string
}

// NewButtonBuilderFromEnv reads PAYMENT_CHECKOUT_URL and PAYMENT_CURRENCY.
func NewButtonBuilderFromEnv() *EnvButtonBuilder {
	return &EnvButtonBuilder{
		baseURL:  env.GetEnv("PAYMENT_CHECKOUT_URL", "https://pay.example.com/checkout"),
		currency: env.GetEnv("PAYMENT_CURRENCY", "USD"),
	}
}

func (b *EnvButtonBuilder) Currency() string { return b.currency }

func (b *EnvButtonBuilder) BuildButton(plan *models.Plan, upgrade bool) (Button, error) {
	item := fmt.Sprintf("%s:%s", itemPrefix, plan.ID)
	price := plan.Price
	if upgrade {
		item += ":upgrade"
		price = plan.UpgradePrice
	}
	markup := fmt.Sprintf(
		`<a class="buy-button" href="%s?item=%s&amount=%s&currency=%s">%s</a>`,
		b.baseURL, item, price.StringFixed(2), b.currency, plan.Name,
	)
	return Button{Currency: b.currency, Markup: markup}, nil
}
