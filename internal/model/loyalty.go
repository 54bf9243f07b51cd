package model

import "time"

type LoyaltyEventKind string

const (
	LoyaltyEarn          LoyaltyEventKind = "earn"
	LoyaltyRedeem        LoyaltyEventKind = "redeem"
	LoyaltyRefund        LoyaltyEventKind = "refund"
	LoyaltyReferralBonus LoyaltyEventKind = "referral_bonus"
)

// LoyaltyAccount tracks a customer's star balance. ReferralCredited
// flips when the referrer has been paid out for this account's first
// qualifying order, so the bonus can never be granted twice.
type LoyaltyAccount struct {
	CustomerID       string    `json:"customer_id"`
	Balance          int64     `json:"balance"`
	ReferralCode     string    `json:"referral_code"`
	ReferredBy       string    `json:"referred_by,omitempty"`
	ReferralCredited bool      `json:"referral_credited"`
	CreatedAt        time.Time `json:"created_at"`
}

// LoyaltyEvent is one append-only ledger row.
type LoyaltyEvent struct {
	ID         string           `json:"id"`
	CustomerID string           `json:"customer_id"`
	Kind       LoyaltyEventKind `json:"kind"`
	Stars      int64            `json:"stars"`
	OrderID    string           `json:"order_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
