package service

import (
	"context"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
)

const (
	DefaultPopularLimit = 5
	MaxPopularLimit     = 100
)

type ReportService interface {
	// ShopSales totals non-cancelled orders placed from the start date through
	// the end date, both inclusive.
	ShopSales(ctx context.Context, shopID int64, start, end time.Time) (*domain.ShopSales, error)
	// PopularProducts uses DefaultPopularLimit when limit is zero.
	PopularProducts(ctx context.Context, shopID int64, limit int) ([]domain.PopularProduct, error)
}

type reportService struct {
	store repository.Store
}

func NewReportService(store repository.Store) ReportService {
	return &reportService{store: store}
}

func (s *reportService) ShopSales(ctx context.Context, shopID int64, start, end time.Time) (*domain.ShopSales, error) {
	start, end = startOfDay(start), startOfDay(end)
	if start.After(end) {
		return nil, domain.ErrInvalidDateRange
	}

	r := domain.SalesRange{Start: start, End: end.AddDate(0, 0, 1)}

	sales, err := s.store.Reports().ShopSales(ctx, shopID, r)
	if err != nil {
		return nil, err
	}

	sales.StartDate = start
	sales.EndDate = end
	return sales, nil
}

func (s *reportService) PopularProducts(ctx context.Context, shopID int64, limit int) ([]domain.PopularProduct, error) {
	if limit == 0 {
		limit = DefaultPopularLimit
	}
	if limit < 0 || limit > MaxPopularLimit {
		return nil, ErrInvalidLimit
	}

	return s.store.Reports().PopularProducts(ctx, shopID, limit)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
