package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseItemID(t *testing.T) {
	tests := []struct {
		name    string
		itemID  string
		want    ParsedItem
		wantErr bool
	}{
		{
			name:   "plain purchase",
			itemID: "subscription:silver",
			want:   ParsedItem{PlanID: "silver"},
		},
		{
			name:   "upgrade",
			itemID: "subscription:gold:upgrade",
			want:   ParsedItem{PlanID: "gold", Upgrade: true},
		},
		{
			name:   "referral token",
			itemID: "subscription:silver:a1b2c3",
			want:   ParsedItem{PlanID: "silver", RefToken: "a1b2c3"},
		},
		{
			name:   "gateway options stripped",
			itemID: "subscription:silver|qty=1|cb=xyz",
			want:   ParsedItem{PlanID: "silver"},
		},
		{
			name:   "surrounding whitespace",
			itemID: "  subscription:silver  ",
			want:   ParsedItem{PlanID: "silver"},
		},
		{name: "wrong product family", itemID: "donation:tip", wantErr: true},
		{name: "missing plan id", itemID: "subscription:", wantErr: true},
		{name: "no separator", itemID: "subscription", wantErr: true},
		{name: "empty", itemID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseItemID(tt.itemID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadItemID)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
