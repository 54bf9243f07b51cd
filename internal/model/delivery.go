package model

// DeliveryZone is one radius/fee/ETA tier. Zones are evaluated in
// ascending radius order; the first zone containing the straight-line
// distance from the store wins.
type DeliveryZone struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RadiusKm   float64 `json:"radius_km"`
	FeeCents   int64   `json:"fee_cents"`
	ETAMinutes int     `json:"eta_minutes"`
}
