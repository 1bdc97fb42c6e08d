package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/memory"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/testsuite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type CachedServiceSuite struct {
	testsuite.BaseSuite
	store    *memory.Store
	shops    service.ShopService
	products service.ProductService
}

func (s *CachedServiceSuite) SetupSuite() {
	s.Ctx = context.Background()
	s.SetupRedis()
}

func (s *CachedServiceSuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *CachedServiceSuite) SetupTest() {
	s.Require().NoError(s.Redis.FlushDB(s.Ctx).Err())

	logger := zap.NewNop()
	m := metrics.New()

	s.store = memory.New(logger)
	s.shops = service.NewCachedShopService(service.NewShopService(s.store, logger), s.Redis, time.Minute, m, logger)
	s.products = service.NewCachedProductService(service.NewProductService(s.store, logger), s.Redis, time.Minute, m, logger)
}

func (s *CachedServiceSuite) TestProductCachedAndInvalidated() {
	shop, err := s.shops.Create(s.Ctx, &domain.Shop{Name: "Tuck Shop"})
	s.Require().NoError(err)
	p, err := s.products.Create(s.Ctx, &domain.Product{ShopID: shop.ID, Name: "Samosa", Price: decimal.NewFromInt(40), IsAvailable: true})
	s.Require().NoError(err)

	got, err := s.products.Get(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Samosa", got.Name)

	n, err := s.Redis.Exists(s.Ctx, "product:1").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	// a write straight to the store is invisible until the key is dropped
	name := "Aloo Samosa"
	_, err = s.store.Products().Update(s.Ctx, p.ID, &domain.UpdateProductInput{Name: &name})
	s.Require().NoError(err)

	got, err = s.products.Get(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Samosa", got.Name)
	s.True(got.Price.Equal(decimal.NewFromInt(40)))

	price := decimal.NewFromInt(45)
	_, err = s.products.Update(s.Ctx, p.ID, &domain.UpdateProductInput{Price: &price})
	s.Require().NoError(err)

	got, err = s.products.Get(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Aloo Samosa", got.Name)
	s.True(got.Price.Equal(price))

	s.Require().NoError(s.products.Delete(s.Ctx, p.ID))
	_, err = s.products.Get(s.Ctx, p.ID)
	s.ErrorIs(err, repository.ErrProductNotFound)
}

func (s *CachedServiceSuite) TestShopDeleteDropsProductKeys() {
	shop, err := s.shops.Create(s.Ctx, &domain.Shop{Name: "Bakery"})
	s.Require().NoError(err)
	p, err := s.products.Create(s.Ctx, &domain.Product{ShopID: shop.ID, Name: "Rusk", Price: decimal.NewFromInt(20), IsAvailable: true})
	s.Require().NoError(err)

	_, err = s.shops.Get(s.Ctx, shop.ID)
	s.Require().NoError(err)
	_, err = s.products.Get(s.Ctx, p.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.shops.Delete(s.Ctx, shop.ID))

	_, err = s.shops.Get(s.Ctx, shop.ID)
	s.ErrorIs(err, repository.ErrShopNotFound)
	_, err = s.products.Get(s.Ctx, p.ID)
	s.ErrorIs(err, repository.ErrProductNotFound)
}

func (s *CachedServiceSuite) TestCategoriesCached() {
	first, err := s.products.Categories(s.Ctx)
	s.Require().NoError(err)

	second, err := s.products.Categories(s.Ctx)
	s.Require().NoError(err)
	s.Equal(first, second)

	n, err := s.Redis.Exists(s.Ctx, "categories").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func TestCachedServices(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(CachedServiceSuite))
}
