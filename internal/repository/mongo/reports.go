package mongo

import (
	"context"
	"fmt"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type reportRepo struct{ s *Store }

// shopLinesPipeline unwinds the lines of non-cancelled orders matching match
// and keeps those whose product currently belongs to shopID.
func shopLinesPipeline(shopID int64, match bson.D) mongo.Pipeline {
	match = append(bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: string(domain.OrderStatusCancelled)}}}}, match...)

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colProducts},
			{Key: "localField", Value: "items.product_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: "$product"}},
		{{Key: "$match", Value: bson.D{{Key: "product.shop_id", Value: shopID}}}},
	}
}

func (r reportRepo) checkShop(ctx context.Context, shopID int64) error {
	found, err := exists(ctx, r.s.col(colShops), byID(shopID))
	if err != nil {
		return err
	}
	if !found {
		return repository.ErrShopNotFound
	}
	return nil
}

func (r reportRepo) ShopSales(ctx context.Context, shopID int64, rng domain.SalesRange) (*domain.ShopSales, error) {
	ctx, span := r.s.tracer.Start(ctx, "ReportRepository.ShopSales")
	defer span.End()

	span.SetAttributes(attribute.Int64("shop_id", shopID))

	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if err := r.checkShop(ctx, shopID); err != nil {
		return nil, err
	}

	pipeline := append(
		shopLinesPipeline(shopID, bson.D{{Key: "order_date", Value: bson.D{
			{Key: "$gte", Value: rng.Start},
			{Key: "$lt", Value: rng.End},
		}}}),
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "orders", Value: bson.D{{Key: "$addToSet", Value: "$_id"}}},
			{Key: "items_sold", Value: bson.D{{Key: "$sum", Value: "$items.quantity"}}},
			{Key: "total_sales", Value: bson.D{{Key: "$sum", Value: "$items.subtotal"}}}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "order_count", Value: bson.D{{Key: "$size", Value: "$orders"}}},
			{Key: "items_sold", Value: 1},
			{Key: "total_sales", Value: 1}}}},
	)

	var rows []struct {
		OrderCount int64                `bson:"order_count"`
		ItemsSold  int64                `bson:"items_sold"`
		TotalSales primitive.Decimal128 `bson:"total_sales"`
	}
	if err := aggregate(ctx, r.s.col(colOrders), pipeline, &rows); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.s.logger, "Error computing shop sales", zap.Int64("shop_id", shopID), zap.Error(err))

		return nil, err
	}

	sales := &domain.ShopSales{
		ShopID:    shopID,
		StartDate: rng.Start,
		EndDate:   rng.End,
	}
	if len(rows) > 0 {
		sales.OrderCount = rows[0].OrderCount
		sales.ItemsSold = rows[0].ItemsSold
		sales.TotalSales = domain.Money(fromDecimal128(rows[0].TotalSales))
	}

	return sales, nil
}

func (r reportRepo) PopularProducts(ctx context.Context, shopID int64, limit int) ([]domain.PopularProduct, error) {
	ctx, span := r.s.tracer.Start(ctx, "ReportRepository.PopularProducts")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("shop_id", shopID),
		attribute.Int("limit", limit),
	)

	if err := r.checkShop(ctx, shopID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.PopularProduct{}, nil
	}

	pipeline := append(
		shopLinesPipeline(shopID, nil),
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$items.product_id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$product.name"}}},
			{Key: "quantity_sold", Value: bson.D{{Key: "$sum", Value: "$items.quantity"}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$items.subtotal"}}}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "quantity_sold", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	)

	var rows []struct {
		ProductID    int64                `bson:"_id"`
		Name         string               `bson:"name"`
		QuantitySold int64                `bson:"quantity_sold"`
		Revenue      primitive.Decimal128 `bson:"revenue"`
	}
	if err := aggregate(ctx, r.s.col(colOrders), pipeline, &rows); err != nil {
		span.RecordError(err)
		return nil, err
	}

	products := make([]domain.PopularProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.PopularProduct{
			ProductID:    row.ProductID,
			Name:         row.Name,
			QuantitySold: row.QuantitySold,
			Revenue:      domain.Money(fromDecimal128(row.Revenue)),
		})
	}

	return products, nil
}

func aggregate(ctx context.Context, c *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", c.Name(), err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s aggregate: %w", c.Name(), err)
	}
	return nil
}
