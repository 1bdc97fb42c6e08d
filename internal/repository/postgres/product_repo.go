package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const productSelect = `
	SELECT p.product_id, p.shop_id, p.category_id, p.name, p.description, p.price, p.is_available,
		s.name, COALESCE(c.name, '')
	FROM products p
	JOIN shops s ON s.shop_id = p.shop_id
	LEFT JOIN categories c ON c.category_id = p.category_id`

type productRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newProductRepo(s *Store) *productRepo {
	return &productRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/product_repo"),
	}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.ShopID,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.IsAvailable,
		&p.ShopName,
		&p.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// classifyProductWrite maps foreign key failures on products to not-found errors
// for the referenced shop or category.
func classifyProductWrite(err error) error {
	var code, constraint string
	if pgErr := asPgError(err); pgErr != nil {
		code, constraint = pgErr.Code, pgErr.ConstraintName
	}

	if code != pgForeignKeyViolation {
		return nil
	}

	if strings.Contains(constraint, "category") {
		return repository.ErrCategoryNotFound
	}
	return repository.ErrShopNotFound
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
		attribute.Int64("shop_id", product.ShopID),
	)

	query := `
		INSERT INTO products (shop_id, category_id, name, description, price, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING product_id;
	`

	var id int64
	err := r.store.pool.QueryRow(
		ctx,
		query,
		product.ShopID,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price,
		product.IsAvailable,
	).Scan(&id)
	if err != nil {
		if mapped := classifyProductWrite(err); mapped != nil {
			return nil, mapped
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating product",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating product: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	product, err := scanProduct(r.store.pool.QueryRow(ctx, productSelect+` WHERE p.product_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrProductNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error get product by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting product: %w", err)
	}

	return product, nil
}

func (r *productRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	query := productSelect
	var conditions []string
	var args []interface{}
	argId := 1

	if filter.CategoryID != nil {
		span.SetAttributes(attribute.Int64("category_id", *filter.CategoryID))
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argId))
		args = append(args, *filter.CategoryID)
		argId++
	}

	if filter.ShopID != nil {
		span.SetAttributes(attribute.Int64("shop_id", *filter.ShopID))
		conditions = append(conditions, fmt.Sprintf("p.shop_id = $%d", argId))
		args = append(args, *filter.ShopID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.product_id"

	rows, err := r.store.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error getting products", zap.Error(err))

		return nil, fmt.Errorf("error selecting products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(products)))

	return products, nil
}

func (r *productRepo) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	if input.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var args []interface{}
	var updates []string
	argId := 1

	add := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argId))
		args = append(args, value)
		argId++
	}

	if input.ShopID != nil {
		add("shop_id", *input.ShopID)
	}
	if input.CategoryID != nil {
		add("category_id", *input.CategoryID)
	}
	if input.Name != nil {
		add("name", *input.Name)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}
	if input.Price != nil {
		add("price", *input.Price)
	}
	if input.IsAvailable != nil {
		add("is_available", *input.IsAvailable)
	}

	query := `UPDATE products SET ` + strings.Join(updates, ", ") + fmt.Sprintf(" WHERE product_id = $%d", argId)
	args = append(args, id)

	commandTag, err := r.store.pool.Exec(ctx, query, args...)
	if err != nil {
		if mapped := classifyProductWrite(err); mapped != nil {
			return nil, mapped
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update product",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error updating product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return nil, repository.ErrProductNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	commandTag, err := r.store.pool.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return repository.ErrReferencedByOrders
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error deleting product by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting product by id: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

func (r *productRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ListCategories")
	defer span.End()

	rows, err := r.store.pool.Query(ctx, `SELECT category_id, name, description FROM categories ORDER BY name`)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error listing categories", zap.Error(err))

		return nil, fmt.Errorf("error selecting categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
