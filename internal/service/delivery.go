package service

import (
	"context"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/geo"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/logger"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/repo"
	"go.uber.org/zap"
)

// DeliveryService quotes delivery fee and ETA for a destination against
// the configured zone table.
type DeliveryService struct {
	zones    repo.ZoneRepository
	storeLat float64
	storeLon float64
}

func NewDeliveryService(zones repo.ZoneRepository, storeLat, storeLon float64) *DeliveryService {
	return &DeliveryService{zones: zones, storeLat: storeLat, storeLon: storeLon}
}

func (s *DeliveryService) Quote(ctx context.Context, lat, lon float64) (*geo.Quote, error) {
	zones, err := s.zones.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("postgres: failed to list delivery zones", zap.Error(err))
		return nil, err
	}

	q := geo.QuoteForPoint(zones, s.storeLat, s.storeLon, lat, lon)
	return &q, nil
}

func (s *DeliveryService) ListZones(ctx context.Context) ([]model.DeliveryZone, error) {
	return s.zones.List(ctx)
}

func (s *DeliveryService) CreateZone(ctx context.Context, zone *model.DeliveryZone) error {
	return s.zones.Create(ctx, zone)
}

func (s *DeliveryService) DeleteZone(ctx context.Context, id string) error {
	return s.zones.Delete(ctx, id)
}
