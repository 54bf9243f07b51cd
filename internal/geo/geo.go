package geo

import (
	"math"
	"sort"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

// Quote reasons returned when no zone matches.
const (
	ReasonNoZones    = "no_zones"
	ReasonOutOfRange = "out_of_range"
)

// Quote is the result of a delivery lookup. When OK is false, Reason
// tells the caller why no tier applies.
type Quote struct {
	OK         bool    `json:"ok"`
	Reason     string  `json:"reason,omitempty"`
	ZoneID     string  `json:"zone_id,omitempty"`
	ZoneName   string  `json:"zone_name,omitempty"`
	DistanceKm float64 `json:"distance_km"`
	FeeCents   int64   `json:"fee_cents"`
	ETAMinutes int     `json:"eta_minutes"`
}

// HaversineKm returns the great-circle distance between two points,
// rounded to two decimals.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*100) / 100
}

// QuoteForDistance picks the tightest zone whose radius contains the
// distance. Zones are copied and sorted ascending by radius so caller
// ordering does not matter.
func QuoteForDistance(zones []model.DeliveryZone, distanceKm float64) Quote {
	if len(zones) == 0 {
		return Quote{Reason: ReasonNoZones, DistanceKm: distanceKm}
	}

	sorted := make([]model.DeliveryZone, len(zones))
	copy(sorted, zones)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RadiusKm < sorted[j].RadiusKm
	})

	for _, z := range sorted {
		if distanceKm <= z.RadiusKm {
			return Quote{
				OK:         true,
				ZoneID:     z.ID,
				ZoneName:   z.Name,
				DistanceKm: distanceKm,
				FeeCents:   z.FeeCents,
				ETAMinutes: z.ETAMinutes,
			}
		}
	}
	return Quote{Reason: ReasonOutOfRange, DistanceKm: distanceKm}
}

// QuoteForPoint computes the distance from the store origin and
// resolves it against the zone table.
func QuoteForPoint(zones []model.DeliveryZone, storeLat, storeLon, lat, lon float64) Quote {
	return QuoteForDistance(zones, HaversineKm(storeLat, storeLon, lat, lon))
}
