package service

import (
	"context"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

type ShopService interface {
	Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)
	Get(ctx context.Context, id int64) (*domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
	Update(ctx context.Context, id int64, input *domain.UpdateShopInput) (*domain.Shop, error)
	Delete(ctx context.Context, id int64) error
	Products(ctx context.Context, shopID int64) ([]domain.Product, error)
}

type shopService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewShopService(store repository.Store, logger *zap.Logger) ShopService {
	return &shopService{
		store:  store,
		logger: logger,
	}
}

func (s *shopService) Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	created, err := s.store.Shops().Create(ctx, shop)
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Shop created", zap.Int64("shop_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *shopService) Get(ctx context.Context, id int64) (*domain.Shop, error) {
	return s.store.Shops().GetByID(ctx, id)
}

func (s *shopService) List(ctx context.Context) ([]domain.Shop, error) {
	return s.store.Shops().List(ctx)
}

func (s *shopService) Update(ctx context.Context, id int64, input *domain.UpdateShopInput) (*domain.Shop, error) {
	return s.store.Shops().Update(ctx, id, input)
}

func (s *shopService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Shops().Delete(ctx, id); err != nil {
		if IsExpected(err) {
			mylogger.Warn(ctx, s.logger, "Shop not deleted", zap.Int64("shop_id", id), zap.Error(err))
		}
		return err
	}

	mylogger.Info(ctx, s.logger, "Shop deleted", zap.Int64("shop_id", id))
	return nil
}

// Products lists the menu of one shop. Unknown shops are ErrShopNotFound, not an empty menu.
func (s *shopService) Products(ctx context.Context, shopID int64) ([]domain.Product, error) {
	if _, err := s.store.Shops().GetByID(ctx, shopID); err != nil {
		return nil, err
	}

	return s.store.Products().List(ctx, domain.ProductFilter{ShopID: &shopID})
}
