// Package mongo is the document-store repository.Store. Every composite
// operation runs in a multi-document transaction, so the server must be a
// replica set.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/worker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	colCounters   = "counters"
	colShops      = "shops"
	colCategories = "categories"
	colProducts   = "products"
	colCustomers  = "customers"
	colOrders     = "orders"
	colDeliveries = "deliveries"
	colEmployees  = "employees"
	colUsers      = "users"
	colOutbox     = "outbox"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	tracer trace.Tracer
}

var _ repository.Store = (*Store)(nil)

// New prepares collections, indexes and reference data in database dbName.
func New(ctx context.Context, client *mongo.Client, dbName string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
		tracer: otel.Tracer("repository/mongo"),
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	// Collections cannot be created implicitly inside every transaction, so create them up front.
	for _, name := range []string{
		colCounters, colShops, colCategories, colProducts, colCustomers,
		colOrders, colDeliveries, colEmployees, colUsers, colOutbox,
	} {
		if have[name] {
			continue
		}
		if err := s.db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}

	indexes := map[string][]mongo.IndexModel{
		colCategories: {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		colProducts: {
			{Keys: bson.D{{Key: "shop_id", Value: 1}}},
			{Keys: bson.D{{Key: "category_id", Value: 1}}},
		},
		colCustomers: {{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "email", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		}},
		colOrders: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "items.product_id", Value: 1}}},
		},
		colDeliveries: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "delivery_status", Value: 1}}},
		},
		colUsers:  {{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)}},
		colOutbox: {{Keys: bson.D{{Key: "published_at", Value: 1}, {Key: "_id", Value: 1}}}},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}

	return s.seedCategories(ctx)
}

func (s *Store) seedCategories(ctx context.Context) error {
	n, err := s.db.Collection(colCategories).CountDocuments(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, c := range domain.DefaultCategories {
		id, err := s.nextID(ctx, colCategories)
		if err != nil {
			return err
		}

		_, err = s.db.Collection(colCategories).InsertOne(ctx, categoryDoc{ID: id, Name: c.Name, Description: c.Description})
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}

	return nil
}

func (s *Store) Shops() repository.ShopRepository          { return shopRepo{s} }
func (s *Store) Products() repository.ProductRepository    { return productRepo{s} }
func (s *Store) Customers() repository.CustomerRepository  { return customerRepo{s} }
func (s *Store) Orders() repository.OrderRepository        { return orderRepo{s} }
func (s *Store) Deliveries() repository.DeliveryRepository { return deliveryRepo{s} }
func (s *Store) Employees() repository.EmployeeRepository  { return employeeRepo{s} }
func (s *Store) Users() repository.UserRepository          { return userRepo{s} }
func (s *Store) Reports() repository.ReportRepository      { return reportRepo{s} }
func (s *Store) Outbox() worker.Relay                      { return outboxRelay{s} }

func (s *Store) Ping(ctx context.Context) (time.Time, error) {
	var hello struct {
		LocalTime time.Time `bson:"localTime"`
	}
	if err := s.db.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return time.Time{}, fmt.Errorf("ping mongo: %w", err)
	}
	return hello.LocalTime.UTC(), nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// nextID hands out the next int64 id for a collection from the counters collection.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	return s.reserveIDs(ctx, name, 1)
}

// reserveIDs claims n consecutive ids and returns the first one.
func (s *Store) reserveIDs(ctx context.Context, name string, n int) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := s.col(colCounters).FindOneAndUpdate(
		ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(n)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}

	return counter.Seq - int64(n) + 1, nil
}

// now is truncated to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// inTx runs fn inside a transaction; the driver retries it on transient errors.
func (s *Store) inTx(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to start mongo session", zap.Error(err))
		return fmt.Errorf("error starting session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}

// findOne decodes a single document, mapping "no documents" to notFound.
func findOne(ctx context.Context, c *mongo.Collection, filter interface{}, out interface{}, notFound error) error {
	err := c.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("find in %s: %w", c.Name(), err)
	}
	return nil
}

func exists(ctx context.Context, c *mongo.Collection, filter interface{}) (bool, error) {
	n, err := c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count in %s: %w", c.Name(), err)
	}
	return n > 0, nil
}

func byID(id int64) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func findAll(ctx context.Context, c *mongo.Collection, filter interface{}, opts *options.FindOptions, out interface{}) error {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	cur, err := c.Find(ctx, filter, findOpts...)
	if err != nil {
		return fmt.Errorf("find in %s: %w", c.Name(), err)
	}

	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", c.Name(), err)
	}
	return nil
}

func inIDs(ids []int64) bson.D {
	return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
}

func (s *Store) shopNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var docs []shopDoc
	if err := findAll(ctx, s.col(colShops), inIDs(ids), nil, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}
