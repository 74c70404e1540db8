package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ OrderStore = (*SQLiteStore)(nil)

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	symbol           TEXT NOT NULL,
	side             TEXT NOT NULL,
	order_type       TEXT NOT NULL,
	qty              INTEGER NOT NULL,
	limit_price      REAL NOT NULL,
	time_in_force    TEXT NOT NULL,
	status           TEXT NOT NULL,
	filled_qty       INTEGER NOT NULL DEFAULT 0,
	filled_avg_price REAL NOT NULL DEFAULT 0,
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);
`

// SQLiteStore implements OrderStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(ordersSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying orders schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveOrder inserts a new order into the database.
func (s *SQLiteStore) SaveOrder(ctx context.Context, order *domain.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, symbol, side, order_type, qty, limit_price,
			time_in_force, status, filled_qty, filled_avg_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.Symbol, string(order.Side), string(order.Type),
		order.Qty, order.LimitPrice, string(order.TimeInForce), string(order.Status),
		order.FilledQty, order.FilledAvgPrice,
		order.CreatedAt.UnixMilli(), order.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting order %s: %w", order.ID, err)
	}
	return nil
}

// GetOrder retrieves a single order by its ID.
func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, side, order_type, qty, limit_price, time_in_force,
			status, filled_qty, filled_avg_price, created_at, updated_at
		FROM orders WHERE id = ?`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting order %s: %w", id, err)
	}
	return order, nil
}

// ListOrders returns all orders, most recent first. An empty status matches
// every order.
func (s *SQLiteStore) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	query := `
		SELECT id, symbol, side, order_type, qty, limit_price, time_in_force,
			status, filled_qty, filled_avg_price, created_at, updated_at
		FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// UpdateOrder persists changes to an existing order.
func (s *SQLiteStore) UpdateOrder(ctx context.Context, order *domain.Order) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET symbol = ?, side = ?, order_type = ?, qty = ?,
			limit_price = ?, time_in_force = ?, status = ?,
			filled_qty = ?, filled_avg_price = ?, updated_at = ?
		WHERE id = ?`,
		order.Symbol, string(order.Side), string(order.Type), order.Qty,
		order.LimitPrice, string(order.TimeInForce), string(order.Status),
		order.FilledQty, order.FilledAvgPrice, order.UpdatedAt.UnixMilli(),
		order.ID)
	if err != nil {
		return fmt.Errorf("updating order %s: %w", order.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		order                  domain.Order
		side, typ, tif, status string
		createdAt, updatedAt   int64
	)
	err := s.Scan(&order.ID, &order.Symbol, &side, &typ, &order.Qty,
		&order.LimitPrice, &tif, &status, &order.FilledQty,
		&order.FilledAvgPrice, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	order.Side = domain.OrderSide(side)
	order.Type = domain.OrderType(typ)
	order.TimeInForce = domain.TimeInForce(tif)
	order.Status = domain.OrderStatus(status)
	order.CreatedAt = time.UnixMilli(createdAt)
	order.UpdatedAt = time.UnixMilli(updatedAt)
	return &order, nil
}
