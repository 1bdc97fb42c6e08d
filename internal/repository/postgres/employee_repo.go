package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const employeeColumns = `employee_id, first_name, last_name, role, contact_number, email`

type employeeRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newEmployeeRepo(s *Store) *employeeRepo {
	return &employeeRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/employee_repo"),
	}
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Role, &e.ContactNumber, &e.Email); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	ctx, span := r.tracer.Start(ctx, "EmployeeRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("role", string(employee.Role)),
	)

	query := `
		INSERT INTO employees (first_name, last_name, role, contact_number, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(r.store.pool.QueryRow(
		ctx,
		query,
		employee.FirstName,
		employee.LastName,
		employee.Role,
		employee.ContactNumber,
		employee.Email,
	))
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error creating employee", zap.Error(err))

		return nil, fmt.Errorf("error creating employee: %w", err)
	}

	return created, nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return getEmployee(ctx, r.store.pool, id)
}

func getEmployee(ctx context.Context, q querier, id int64) (*domain.Employee, error) {
	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("error getting employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepo) ListByRoles(ctx context.Context, roles []domain.EmployeeRole) ([]domain.Employee, error) {
	ctx, span := r.tracer.Start(ctx, "EmployeeRepository.ListByRoles")
	defer span.End()

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE role = ANY($1) ORDER BY first_name, last_name, employee_id`

	rows, err := r.store.pool.Query(ctx, query, names)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error listing employees", zap.Error(err))

		return nil, fmt.Errorf("error selecting employees: %w", err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning employee: %w", err)
		}
		employees = append(employees, *e)
	}

	return employees, rows.Err()
}
