package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	outbox "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/worker"
	"go.uber.org/zap"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	outbox outbox.OutboxRepository

	shops      *shopRepo
	products   *productRepo
	customers  *customerRepo
	orders     *orderRepo
	deliveries *deliveryRepo
	employees  *employeeRepo
	users      *userRepo
	reports    *reportRepo
}

var _ repository.Store = (*Store)(nil)

func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	s := &Store{
		pool:   pool,
		logger: logger,
		outbox: outbox.NewOutboxRepository(pool, logger),
	}

	s.shops = newShopRepo(s)
	s.products = newProductRepo(s)
	s.customers = newCustomerRepo(s)
	s.orders = newOrderRepo(s)
	s.deliveries = newDeliveryRepo(s)
	s.employees = newEmployeeRepo(s)
	s.users = newUserRepo(s)
	s.reports = newReportRepo(s)

	return s
}

func (s *Store) Shops() repository.ShopRepository          { return s.shops }
func (s *Store) Products() repository.ProductRepository    { return s.products }
func (s *Store) Customers() repository.CustomerRepository  { return s.customers }
func (s *Store) Orders() repository.OrderRepository        { return s.orders }
func (s *Store) Deliveries() repository.DeliveryRepository { return s.deliveries }
func (s *Store) Employees() repository.EmployeeRepository  { return s.employees }
func (s *Store) Users() repository.UserRepository          { return s.users }
func (s *Store) Reports() repository.ReportRepository      { return s.reports }
func (s *Store) Outbox() worker.Relay                      { return s.outbox }

func (s *Store) Ping(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := s.pool.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("ping postgres: %w", err)
	}
	return now, nil
}

func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// inTx runs fn in one transaction and commits when fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("error starting transaction: %w", err)
	}

	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(cleanupCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Error(
				cleanupCtx,
				s.logger,
				"Failed to rollback transaction",
				zap.Error(err),
			)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func pgErrorCode(err error) string {
	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code
	}
	return ""
}
