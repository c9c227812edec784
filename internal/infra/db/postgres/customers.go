package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"umzugsbuero/backend/internal/domain/customer"
	apperrors "umzugsbuero/backend/internal/errors"
)

type CustomerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, number, name, phone, email, from_address, to_address,
	rooms, area, floor, elevator, move_date, notes, source, created_at, updated_at`

func scanCustomer(row pgx.Row) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.Number, &c.Name, &c.Phone, &c.Email, &c.FromAddress, &c.ToAddress,
		&c.Apartment.Rooms, &c.Apartment.Area, &c.Apartment.Floor, &c.Apartment.Elevator,
		&c.MoveDate, &c.Notes, &c.Source, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *CustomerRepository) Create(ctx context.Context, c customer.Customer) error {
	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Pool.Exec(ctx, query,
		c.ID, c.Number, c.Name, c.Phone, c.Email, c.FromAddress, c.ToAddress,
		c.Apartment.Rooms, c.Apartment.Area, c.Apartment.Floor, c.Apartment.Elevator,
		c.MoveDate, c.Notes, c.Source, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting customer: %w", mapError(err, "customer"))
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, id string) (customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return c, apperrors.NewNotFoundError(fmt.Sprintf("customer %s not found", id))
	}
	if err != nil {
		return c, fmt.Errorf("querying customer by id: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC, number DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var out []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c customer.Customer) error {
	query := `UPDATE customers SET
		name = $2, phone = $3, email = $4, from_address = $5, to_address = $6,
		rooms = $7, area = $8, floor = $9, elevator = $10, move_date = $11,
		notes = $12, updated_at = $13
		WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query,
		c.ID, c.Name, c.Phone, c.Email, c.FromAddress, c.ToAddress,
		c.Apartment.Rooms, c.Apartment.Area, c.Apartment.Floor, c.Apartment.Elevator,
		c.MoveDate, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("customer %s not found", c.ID))
	}
	return nil
}

func (r *CustomerRepository) FindDuplicate(ctx context.Context, q customer.DuplicateQuery) (*customer.Customer, error) {
	if q.Empty() {
		return nil, nil
	}
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE ($1 <> '' AND lower(email) = lower($1))
		   OR ($2 <> '' AND phone = $2)
		   OR ($3 <> '' AND lower(name) = lower($3) AND move_date = $4::date)
		ORDER BY created_at
		LIMIT 1`

	c, err := scanCustomer(r.db.Pool.QueryRow(ctx, query, q.Email, q.Phone, q.Name, q.MoveDate))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying duplicate customer: %w", err)
	}
	return &c, nil
}
