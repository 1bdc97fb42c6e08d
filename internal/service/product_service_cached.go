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

const (
	productCachePrefix  = "product"
	categoryCachePrefix = "categories"
	categoriesKey       = "categories"
)

type cachedProductService struct {
	next  ProductService
	cache *cache
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *cachedProductService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return s.next.Create(ctx, product)
}

func (s *cachedProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if s.cache.get(ctx, productCachePrefix, productKey(id), &product) {
		return &product, nil
	}

	res, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.set(ctx, productKey(id), res)
	return res, nil
}

func (s *cachedProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.next.List(ctx, filter)
}

func (s *cachedProductService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error) {
	res, err := s.next.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.cache.del(ctx, productKey(id))
	return res, nil
}

func (s *cachedProductService) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.del(ctx, productKey(id))
	return nil
}

func (s *cachedProductService) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if s.cache.get(ctx, categoryCachePrefix, categoriesKey, &categories) {
		return categories, nil
	}

	res, err := s.next.Categories(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.set(ctx, categoriesKey, res)
	return res, nil
}

func NewCachedProductService(next ProductService, redisClient *redis.Client, cacheTTL time.Duration, m *metrics.Metrics, logger *zap.Logger) ProductService {
	return &cachedProductService{
		next: next,
		cache: &cache{
			client:  redisClient,
			ttl:     cacheTTL,
			metrics: m,
			logger:  logger,
		},
	}
}
