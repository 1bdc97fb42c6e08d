package service

import (
	"context"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]domain.Category, error)
}

type productService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewProductService(store repository.Store, logger *zap.Logger) ProductService {
	return &productService{
		store:  store,
		logger: logger,
	}
}

func (s *productService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	product.Price = domain.Money(product.Price)

	created, err := s.store.Products().Create(ctx, product)
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Product created",
		zap.Int64("product_id", created.ID),
		zap.Int64("shop_id", created.ShopID),
	)
	return created, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.Products().GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.store.Products().List(ctx, filter)
}

func (s *productService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.Price != nil {
		price := domain.Money(*input.Price)
		input.Price = &price
	}

	return s.store.Products().Update(ctx, id, input)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		if IsExpected(err) {
			mylogger.Warn(ctx, s.logger, "Product not deleted", zap.Int64("product_id", id), zap.Error(err))
		}
		return err
	}

	mylogger.Info(ctx, s.logger, "Product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *productService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.store.Products().ListCategories(ctx)
}
