package payments

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Item id prefix the payment gateway sends for this product family.
const itemPrefix = "subscription"

var (
	// ErrBadItemID means the notification's item id is not ours or is
	// malformed.
	ErrBadItemID = errors.New("payments: unrecognized item id")
	// ErrUnknownPayer means neither a user id nor a known payer email was
	// supplied.
	ErrUnknownPayer = errors.New("payments: payer could not be resolved to an account")
)

// Notification is the normalized payload of one payment gateway event.
type Notification struct {
	ItemID     string          `json:"item_id"`
	UserID     uint            `json:"uid"`
	PayerEmail string          `json:"payer_email"`
	Gross      decimal.Decimal `json:"pmt_gross"`
	TxnID      string          `json:"txn_id"`
	// Referral attribution, either an explicit user id or a token.
	RefUserID uint   `json:"ref_uid"`
	RefToken  string `json:"ref_token"`
}

// ParsedItem is the decoded item id.
type ParsedItem struct {
	PlanID   string
	Upgrade  bool
	RefToken string
}

// ParseItemID decodes "subscription:<planID>[:upgrade|<refToken>]".
// Gateway-supplied options after a "|" are discarded.
func ParseItemID(itemID string) (ParsedItem, error) {
	itemID, _, _ = strings.Cut(itemID, "|")
	parts := strings.Split(strings.TrimSpace(itemID), ":")
	if len(parts) < 2 || parts[0] != itemPrefix || parts[1] == "" {
		return ParsedItem{}, ErrBadItemID
	}
	item := ParsedItem{PlanID: parts[1]}
	if len(parts) > 2 && parts[2] != "" {
		if parts[2] == "upgrade" {
			item.Upgrade = true
		} else {
			item.RefToken = parts[2]
		}
	}
	return item, nil
}
