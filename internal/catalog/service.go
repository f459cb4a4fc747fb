package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rmagsino/backend-tindahan/internal/cache"
	"github.com/rmagsino/backend-tindahan/internal/obs"
)

type repoProvider interface {
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

// Service orchestrates product lookups, unit resolution, and caching.
type Service struct {
	repo     repoProvider
	cache    *Cache
	local    *cache.Cache
	resolver Resolver
	logger   zerolog.Logger
}

// ServiceConfig groups Service dependencies. Repo is required; both caches
// are optional.
type ServiceConfig struct {
	Repo     repoProvider
	Cache    *Cache
	Local    *cache.Cache
	Resolver Resolver
	Logger   zerolog.Logger
}

// NewService validates dependencies and constructs the catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repo == nil {
		return nil, errors.New("catalog service requires a repository")
	}
	return &Service{
		repo:     cfg.Repo,
		cache:    cfg.Cache,
		local:    cfg.Local,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
	}, nil
}

// Product loads a product by id, consulting the redis cache first.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	var cached Product
	if hit, err := s.cache.GetJSON(ctx, productKey(id), &cached); err == nil && hit {
		obs.ObserveCatalogCache("redis", "hit")
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("catalog cache read failed")
	}
	obs.ObserveCatalogCache("redis", "miss")
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.cache.SetJSON(ctx, productKey(id), p); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("catalog cache write failed")
	}
	return p, nil
}

// Units resolves the full purchasable unit catalog for the product. Hot
// catalogs are served from the in-process cache, then redis; resolution is
// pure, so a stale entry only survives until Invalidate or expiry.
func (s *Service) Units(ctx context.Context, p Product) []Unit {
	if s.local != nil {
		if v, ok := s.local.Get(p.ID); ok {
			if units, ok := v.([]Unit); ok {
				obs.ObserveCatalogCache("local", "hit")
				return units
			}
		}
		obs.ObserveCatalogCache("local", "miss")
	}

	var cached []Unit
	if hit, err := s.cache.GetJSON(ctx, unitsKey(p.ID), &cached); err == nil && hit && len(cached) > 0 {
		obs.ObserveCatalogCache("redis", "hit")
		if s.local != nil {
			s.local.Set(p.ID, cached)
		}
		return cached
	} else if err != nil {
		s.logger.Warn().Err(err).Str("product_id", p.ID).Msg("unit cache read failed")
	}
	obs.ObserveCatalogCache("redis", "miss")

	units := s.resolver.Resolve(p)
	if s.local != nil && len(units) > 0 {
		s.local.Set(p.ID, units)
	}
	if err := s.cache.SetJSON(ctx, unitsKey(p.ID), units); err != nil {
		s.logger.Warn().Err(err).Str("product_id", p.ID).Msg("unit cache write failed")
	}
	return units
}

// List returns all products with configured units.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

// Invalidate evicts a product from all cache layers after a catalog edit.
func (s *Service) Invalidate(ctx context.Context, productID string) {
	if s.local != nil {
		s.local.Delete(productID)
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn().Err(err).Str("product_id", productID).Msg("catalog cache invalidate failed")
	}
}

// Measure exposes the resolver's base-measure suffix for display layers.
func (s *Service) Measure() string {
	return s.resolver.measure()
}
