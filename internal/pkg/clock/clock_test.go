package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMidnight(t *testing.T) {
	in := time.Date(2026, 3, 15, 23, 59, 59, 123, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), Midnight(in))

	// Non-UTC instants truncate on their UTC date.
	nyc := time.FixedZone("EST", -5*3600)
	late := time.Date(2026, 3, 15, 22, 0, 0, 0, nyc)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), Midnight(late))
}

func TestFixed(t *testing.T) {
	instant := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	clk := Fixed{T: instant}

	assert.Equal(t, instant, clk.Now())
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), clk.Today())
}
