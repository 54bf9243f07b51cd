package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/logger"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/repo"
	"go.uber.org/zap"
)

const menuCacheKey = "menu:available"

// MenuService serves the storefront menu with a short-TTL redis cache
// in front of Postgres and owns the admin menu mutations.
type MenuService struct {
	repo     repo.MenuRepository
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewMenuService(menuRepo repo.MenuRepository, cache *redis.Client, cacheTTL time.Duration) *MenuService {
	return &MenuService{repo: menuRepo, cache: cache, cacheTTL: cacheTTL}
}

func (s *MenuService) ListAvailable(ctx context.Context) ([]model.MenuItem, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, menuCacheKey).Bytes()
		if err == nil {
			var items []model.MenuItem
			if err := json.Unmarshal(cached, &items); err == nil {
				return items, nil
			}
			// Unreadable cache entry: fall through to the database.
			s.cache.Del(ctx, menuCacheKey)
		}
	}

	items, err := s.repo.List(ctx, true)
	if err != nil {
		log.Error("postgres: failed to list menu", zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, menuCacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Warn("redis: failed to cache menu", zap.Error(err))
			}
		}
	}
	return items, nil
}

func (s *MenuService) ListAll(ctx context.Context) ([]model.MenuItem, error) {
	return s.repo.List(ctx, false)
}

func (s *MenuService) Get(ctx context.Context, id string) (*model.MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

type CreateMenuItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" binding:"required,gt=0"`
	Unit        string   `json:"unit"`
	Category    string   `json:"category"`
	DietaryTags []string `json:"dietary_tags"`
	ImageURL    string   `json:"image_url"`
}

func (s *MenuService) Create(ctx context.Context, req CreateMenuItemRequest) (*model.MenuItem, error) {
	log := logger.FromContext(ctx)

	unit := model.Unit(req.Unit)
	if unit == "" {
		unit = model.UnitEach
	}

	now := time.Now()
	item := &model.MenuItem{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Unit:        unit,
		Category:    req.Category,
		DietaryTags: req.DietaryTags,
		ImageURL:    req.ImageURL,
		Available:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		log.Error("postgres: failed to create menu item", zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx)
	return item, nil
}

type UpdateMenuItemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Category    string   `json:"category"`
	DietaryTags []string `json:"dietary_tags"`
	ImageURL    string   `json:"image_url"`
	Available   *bool    `json:"available"`
}

func (s *MenuService) Update(ctx context.Context, id string, req UpdateMenuItemRequest) (*model.MenuItem, error) {
	log := logger.FromContext(ctx)

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.PriceCents > 0 {
		item.PriceCents = req.PriceCents
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.DietaryTags != nil {
		item.DietaryTags = req.DietaryTags
	}
	if req.ImageURL != "" {
		item.ImageURL = req.ImageURL
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, item); err != nil {
		log.Error("postgres: failed to update menu item", zap.String("item_id", id), zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx)
	return item, nil
}

func (s *MenuService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, menuCacheKey).Err(); err != nil {
		logger.FromContext(ctx).Warn("redis: failed to invalidate menu cache", zap.Error(err))
	}
}
