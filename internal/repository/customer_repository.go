package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/eshift/customer-core/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// Constraint names created by the schema bootstrap; used to discriminate
// which uniqueness invariant fired on insert.
const (
	emailConstraint  = "customers_email_key"
	numberConstraint = "customers_customer_number_key"
)

// PostgresCustomerRepository implements domain.CustomerRepository using
// PostgreSQL. The store is the sole arbiter of email and customer-number
// uniqueness: concurrent inserts racing on the same email yield exactly one
// success and one conflict.
type PostgresCustomerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCustomerRepository creates a new customer repository
func NewPostgresCustomerRepository(db *sql.DB, logger *slog.Logger) *PostgresCustomerRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCustomerRepository{
		db:     db,
		logger: logger,
	}
}

// Insert atomically persists a customer. The store assigns the identity and
// the registration date. A unique-constraint breach comes back as a
// discriminated *domain.ConflictError.
func (r *PostgresCustomerRepository) Insert(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (customer_number, first_name, last_name, email, phone, address, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, registration_date
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		customer.CustomerNumber,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.PasswordHash,
	).Scan(&customer.ID, &customer.RegistrationDate)

	if err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		r.logger.Error("failed to insert customer",
			slog.String("email", customer.Email),
			slog.String("error", err.Error()),
		)
		return &domain.StorageError{Op: "insert customer", Err: err}
	}

	return nil
}

// GetByEmail retrieves a customer by normalized email. A missing row is a
// (nil, nil) result, not an error.
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	customer := &domain.Customer{}

	query := `
		SELECT id, customer_number, first_name, last_name, email, phone, address, password_hash, registration_date
		FROM customers
		WHERE email = $1
	`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&customer.ID,
		&customer.CustomerNumber,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&customer.PasswordHash,
		&customer.RegistrationDate,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get customer by email",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, &domain.StorageError{Op: "get customer by email", Err: err}
	}

	return customer, nil
}

// ListAll returns every customer in insertion order.
func (r *PostgresCustomerRepository) ListAll(ctx context.Context) ([]*domain.Customer, error) {
	query := `
		SELECT id, customer_number, first_name, last_name, email, phone, address, password_hash, registration_date
		FROM customers
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list customers", slog.String("error", err.Error()))
		return nil, &domain.StorageError{Op: "list customers", Err: err}
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer := &domain.Customer{}
		err := rows.Scan(
			&customer.ID,
			&customer.CustomerNumber,
			&customer.FirstName,
			&customer.LastName,
			&customer.Email,
			&customer.Phone,
			&customer.Address,
			&customer.PasswordHash,
			&customer.RegistrationDate,
		)
		if err != nil {
			r.logger.Error("failed to scan customer row", slog.String("error", err.Error()))
			return nil, &domain.StorageError{Op: "scan customer", Err: err}
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list customers", Err: err}
	}

	return customers, nil
}

// HasDependents reports whether any job records reference the customer.
func (r *PostgresCustomerRepository) HasDependents(ctx context.Context, customerID int64) (bool, error) {
	var count int64

	query := `SELECT COUNT(*) FROM jobs WHERE customer_id = $1`

	if err := r.db.QueryRowContext(ctx, query, customerID).Scan(&count); err != nil {
		r.logger.Error("failed to count dependent jobs",
			slog.Int64("customer_id", customerID),
			slog.String("error", err.Error()),
		)
		return false, &domain.StorageError{Op: "count dependent jobs", Err: err}
	}

	return count > 0, nil
}

// Delete removes a customer unconditionally. The dependent-safety check is
// the service's responsibility, not enforced again here.
func (r *PostgresCustomerRepository) Delete(ctx context.Context, customerID int64) error {
	query := `DELETE FROM customers WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, customerID)
	if err != nil {
		r.logger.Error("failed to delete customer",
			slog.Int64("customer_id", customerID),
			slog.String("error", err.Error()),
		)
		return &domain.StorageError{Op: "delete customer", Err: err}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return &domain.StorageError{Op: "delete customer", Err: err}
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// asConflict maps a Postgres unique-violation to the domain conflict kinds,
// keyed by the constraint that fired. Unknown unique constraints fall back
// to a storage error upstream.
func asConflict(err error) *domain.ConflictError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}

	switch {
	case pqErr.Constraint == emailConstraint || strings.Contains(pqErr.Detail, "(email)"):
		return &domain.ConflictError{Kind: domain.ConflictEmailTaken}
	case pqErr.Constraint == numberConstraint || strings.Contains(pqErr.Detail, "(customer_number)"):
		return &domain.ConflictError{Kind: domain.ConflictNumberCollision}
	}
	return nil
}
