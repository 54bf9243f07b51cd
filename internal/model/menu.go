package model

import "time"

// Unit describes how a menu item is priced and how cart quantities are
// interpreted. Weight units allow fractional quantities.
type Unit string

const (
	UnitEach  Unit = "each"
	UnitPound Unit = "lb"
	UnitDozen Unit = "dozen"
)

func (u Unit) AllowsFractional() bool {
	return u == UnitPound
}

type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Unit        Unit      `json:"unit"`
	Category    string    `json:"category"`
	DietaryTags []string  `json:"dietary_tags"`
	ImageURL    string    `json:"image_url"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
