package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDurationType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"day", DurationDay},
		{"week", DurationWeek},
		{"month", DurationMonth},
		{"year", DurationYear},
		{"fixed", DurationFixed},
		{" YEAR ", DurationYear},
		{"", DurationMonth},
		{"fortnight", DurationMonth},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDurationType(tt.in), "input %q", tt.in)
	}
}

func TestAddDuration(t *testing.T) {
	base := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		n            int
		durationType string
		want         time.Time
	}{
		{"days", 10, DurationDay, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"weeks", 2, DurationWeek, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)},
		// Jan 31 + 1 month normalizes past the short month.
		{"month overflow", 1, DurationMonth, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"years", 3, DurationYear, time.Date(2029, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"fixed is inert", 5, DurationFixed, base},
		{"unknown falls back to months", 2, "bogus", time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddDuration(base, tt.n, tt.durationType))
		})
	}
}

func TestPlanValidate(t *testing.T) {
	valid := func() *Plan {
		return &Plan{
			ID:                "silver",
			Name:              "Silver",
			Price:             decimal.NewFromFloat(9.99),
			Duration:          1,
			DurationType:      DurationMonth,
			BonusDurationType: DurationMonth,
			GroupID:           3,
		}
	}

	assert.NoError(t, valid().Validate())

	t.Run("fixed requires a date", func(t *testing.T) {
		p := valid()
		p.DurationType = DurationFixed
		assert.Error(t, p.Validate())

		d := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
		p.FixedExpiration = &d
		assert.NoError(t, p.Validate())
	})

	t.Run("relative requires a duration", func(t *testing.T) {
		p := valid()
		p.Duration = 0
		assert.Error(t, p.Validate())
	})

	t.Run("negative upgrade price", func(t *testing.T) {
		p := valid()
		p.UpgradePrice = decimal.NewFromInt(-5)
		assert.Error(t, p.Validate())
	})

	t.Run("negative trial days", func(t *testing.T) {
		p := valid()
		p.TrialDays = -1
		assert.Error(t, p.Validate())
	})
}

func TestPlanIsUpgrade(t *testing.T) {
	p := &Plan{ID: "gold"}
	assert.False(t, p.IsUpgrade())
	p.UpgradeFromID = "silver"
	assert.True(t, p.IsUpgrade())
}
