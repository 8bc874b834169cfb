package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/billing"
	"github.com/buddyai/buddy-server-go/internal/config"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/metrics"
	"github.com/buddyai/buddy-server-go/internal/model"
	redisclient "github.com/buddyai/buddy-server-go/internal/redis"
)

// PremiumService exposes plans and the caller's subscription. A nil provider
// means payments are not configured.
type PremiumService struct {
	provider billing.Provider
	cache    redis.Cmdable
	metrics  *metrics.Metrics
}

func NewPremiumService(provider billing.Provider, cache redis.Cmdable, m *metrics.Metrics) *PremiumService {
	return &PremiumService{provider: provider, cache: cache, metrics: m}
}

func (s *PremiumService) GetProducts(ctx context.Context) ([]model.Product, error) {
	if s.provider == nil {
		return nil, apperrors.NotConfigured("Payments")
	}

	if products, ok := s.cachedProducts(ctx); ok {
		s.metrics.CacheResult(true)
		return products, nil
	}
	s.metrics.CacheResult(false)

	products, err := s.provider.ListProducts(ctx)
	if err != nil {
		return nil, apperrors.External("payments", err)
	}

	if data, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, redisclient.ProductsCacheKey, data, config.ProductCacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to cache products")
		}
	}

	return products, nil
}

// GetCurrentSubscription returns nil when the user has no active subscription.
func (s *PremiumService) GetCurrentSubscription(ctx context.Context, user *model.User) (*model.Subscription, error) {
	if s.provider == nil {
		return nil, apperrors.NotConfigured("Payments")
	}

	sub, err := s.provider.FindActiveSubscription(ctx, user.Email)
	if err != nil {
		return nil, apperrors.External("payments", err)
	}
	return sub, nil
}

func (s *PremiumService) cachedProducts(ctx context.Context) ([]model.Product, bool) {
	data, err := s.cache.Get(ctx, redisclient.ProductsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("failed to read product cache")
		}
		return nil, false
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Warn().Err(fmt.Errorf("decode product cache: %w", err)).Msg("ignoring corrupt product cache")
		return nil, false
	}
	return products, true
}
