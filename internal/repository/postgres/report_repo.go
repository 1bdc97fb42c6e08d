package postgres

import (
	"context"
	"fmt"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type reportRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newReportRepo(s *Store) *reportRepo {
	return &reportRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/report_repo"),
	}
}

func (r *reportRepo) shopExists(ctx context.Context, shopID int64) error {
	var exists bool
	if err := r.store.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shops WHERE shop_id = $1)`, shopID).
		Scan(&exists); err != nil {
		return fmt.Errorf("error checking shop: %w", err)
	}
	if !exists {
		return repository.ErrShopNotFound
	}
	return nil
}

func (r *reportRepo) ShopSales(ctx context.Context, shopID int64, rng domain.SalesRange) (*domain.ShopSales, error) {
	ctx, span := r.tracer.Start(ctx, "ReportRepository.ShopSales")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("shop_id", shopID),
		attribute.String("start", rng.Start.String()),
		attribute.String("end", rng.End.String()),
	)

	if err := rng.Validate(); err != nil {
		return nil, err
	}

	if err := r.shopExists(ctx, shopID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	query := `
		SELECT COUNT(DISTINCT o.order_id), COALESCE(SUM(oi.quantity), 0), COALESCE(SUM(oi.subtotal), 0)
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		JOIN products p ON p.product_id = oi.product_id
		WHERE p.shop_id = $1
			AND o.status <> $2
			AND o.order_date >= $3
			AND o.order_date < $4;
	`

	sales := &domain.ShopSales{
		ShopID:    shopID,
		StartDate: rng.Start,
		EndDate:   rng.End,
	}

	err := r.store.pool.QueryRow(ctx, query, shopID, domain.OrderStatusCancelled, rng.Start, rng.End).
		Scan(&sales.OrderCount, &sales.ItemsSold, &sales.TotalSales)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error computing shop sales",
			zap.Int64("shop_id", shopID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error computing shop sales: %w", err)
	}

	sales.TotalSales = domain.Money(sales.TotalSales)

	return sales, nil
}

func (r *reportRepo) PopularProducts(ctx context.Context, shopID int64, limit int) ([]domain.PopularProduct, error) {
	ctx, span := r.tracer.Start(ctx, "ReportRepository.PopularProducts")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("shop_id", shopID),
		attribute.Int("limit", limit),
	)

	if err := r.shopExists(ctx, shopID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	query := `
		SELECT p.product_id, p.name, SUM(oi.quantity) AS quantity_sold, SUM(oi.subtotal) AS revenue
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		JOIN products p ON p.product_id = oi.product_id
		WHERE p.shop_id = $1 AND o.status <> $2
		GROUP BY p.product_id, p.name
		ORDER BY quantity_sold DESC, p.product_id ASC
		LIMIT $3;
	`

	rows, err := r.store.pool.Query(ctx, query, shopID, domain.OrderStatusCancelled, limit)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error selecting popular products", zap.Int64("shop_id", shopID), zap.Error(err))

		return nil, fmt.Errorf("error selecting popular products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.PopularProduct, 0)
	for rows.Next() {
		var p domain.PopularProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.QuantitySold, &p.Revenue); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning popular product: %w", err)
		}
		p.Revenue = domain.Money(p.Revenue)
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return products, nil
}
