package model

import "time"

type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCanceled  OrderStatus = "canceled"
)

// transitions holds the legal forward edges of the order lifecycle.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCanceled},
	StatusPaid:      {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusPreparing},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusCompleted},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

type Modifier struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// CartLine is one priced line of an order. Quantity is fractional only
// for weight-priced units.
type CartLine struct {
	ItemID         string     `json:"item_id"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Unit           Unit       `json:"unit"`
	Quantity       float64    `json:"quantity"`
	Modifiers      []Modifier `json:"modifiers,omitempty"`
	Note           string     `json:"note,omitempty"`
}

// Totals is the cent-exact breakdown shown at quote time and frozen
// onto the order at checkout.
type Totals struct {
	SubtotalCents    int64 `json:"subtotal_cents"`
	DiscountCents    int64 `json:"discount_cents"`
	TaxCents         int64 `json:"tax_cents"`
	ServiceFeeCents  int64 `json:"service_fee_cents"`
	DeliveryFeeCents int64 `json:"delivery_fee_cents"`
	TipCents         int64 `json:"tip_cents"`
	TotalCents       int64 `json:"total_cents"`
}

type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	Fulfillment     FulfillmentType `json:"fulfillment"`
	Address         string          `json:"address,omitempty"`
	Lat             float64         `json:"lat,omitempty"`
	Lon             float64         `json:"lon,omitempty"`
	Lines           []CartLine      `json:"lines"`
	Totals          Totals          `json:"totals"`
	PromoCode       string          `json:"promo_code,omitempty"`
	StarsRedeemed   int64           `json:"stars_redeemed,omitempty"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	IdempotencyKey  string          `json:"-"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
