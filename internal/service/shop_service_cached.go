package service

import (
	"context"
	"fmt"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shopCachePrefix = "shop"

type cachedShopService struct {
	next  ShopService
	cache *cache
}

func shopKey(id int64) string {
	return fmt.Sprintf("shop:%d", id)
}

func (s *cachedShopService) Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	return s.next.Create(ctx, shop)
}

func (s *cachedShopService) Get(ctx context.Context, id int64) (*domain.Shop, error) {
	var shop domain.Shop
	if s.cache.get(ctx, shopCachePrefix, shopKey(id), &shop) {
		return &shop, nil
	}

	res, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.set(ctx, shopKey(id), res)
	return res, nil
}

func (s *cachedShopService) List(ctx context.Context) ([]domain.Shop, error) {
	return s.next.List(ctx)
}

// Update also drops the shop's products, whose cached views carry the shop name.
func (s *cachedShopService) Update(ctx context.Context, id int64, input *domain.UpdateShopInput) (*domain.Shop, error) {
	res, err := s.next.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.cache.del(ctx, s.keys(ctx, id)...)
	return res, nil
}

// Delete cascades to products, so their keys are collected before the rows go away.
func (s *cachedShopService) Delete(ctx context.Context, id int64) error {
	keys := s.keys(ctx, id)

	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.del(ctx, keys...)
	return nil
}

func (s *cachedShopService) Products(ctx context.Context, shopID int64) ([]domain.Product, error) {
	return s.next.Products(ctx, shopID)
}

func (s *cachedShopService) keys(ctx context.Context, shopID int64) []string {
	keys := []string{shopKey(shopID)}

	products, err := s.next.Products(ctx, shopID)
	if err != nil {
		return keys
	}

	for _, p := range products {
		keys = append(keys, productKey(p.ID))
	}
	return keys
}

func NewCachedShopService(next ShopService, redisClient *redis.Client, cacheTTL time.Duration, m *metrics.Metrics, logger *zap.Logger) ShopService {
	return &cachedShopService{
		next: next,
		cache: &cache{
			client:  redisClient,
			ttl:     cacheTTL,
			metrics: m,
			logger:  logger,
		},
	}
}
