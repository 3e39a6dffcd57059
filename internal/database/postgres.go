package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/store"
)

const foreignKeyViolation = "23503"

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, connectionString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewStore exposes db through the store contracts.
func NewStore(db *sql.DB) store.Store {
	return store.Store{
		Orders:      &orderRepo{db: db},
		Windows:     &windowRepo{db: db},
		SubElements: &subElementRepo{db: db},
		Ping:        db.PingContext,
		Close:       db.Close,
	}
}

func translate(err error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", action, store.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("failed to %s: %w: %s", action, store.ErrConstraint, pqErr.Message)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func expectAffected(res sql.Result, action string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: %w", action, store.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// list runs the count and page statements for t and scans each row with scan.
func list[T any](ctx context.Context, db *sql.DB, t table, d query.Descriptor, scan func(scanner) (T, error)) (query.Page[T], error) {
	stmts, err := t.listStatements(d)
	if err != nil {
		return query.Page[T]{}, err
	}

	var count int
	if err := db.QueryRowContext(ctx, stmts.count, stmts.countArgs...).Scan(&count); err != nil {
		return query.Page[T]{}, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	if stmts.pastEnd {
		return query.Page[T]{Count: count, Items: []T{}}, nil
	}

	items, err := queryAll(ctx, db, t.name, scan, stmts.page, stmts.pageArgs...)
	if err != nil {
		return query.Page[T]{}, err
	}
	return query.Page[T]{Count: count, Items: items}, nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, name string, scan func(scanner) (T, error), q string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", name, err)
	}
	return items, nil
}

func scanOrder(s scanner) (models.Order, error) {
	var o models.Order
	err := s.Scan(&o.ID, &o.Name, &o.State, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func scanWindow(s scanner) (models.Window, error) {
	var w models.Window
	err := s.Scan(&w.ID, &w.OrderID, &w.Name, &w.QuantityOfWindows, &w.TotalSubElements, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func scanSubElement(s scanner) (models.SubElement, error) {
	var e models.SubElement
	err := s.Scan(&e.ID, &e.OrderID, &e.WindowID, &e.Element, &e.Type, &e.Width, &e.Height, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

type orderRepo struct {
	db *sql.DB
}

func (r *orderRepo) List(ctx context.Context, d query.Descriptor) (query.Page[models.Order], error) {
	return list(ctx, r.db, ordersTable, d, scanOrder)
}

func (r *orderRepo) Get(ctx context.Context, id int64) (models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		return models.Order{}, translate(err, "get order")
	}
	return o, nil
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (name, state)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, o.Name, o.State).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return translate(err, "create order")
	}
	return nil
}

func (r *orderRepo) Update(ctx context.Context, o *models.Order) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET name = $1, state = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING created_at, updated_at
	`, o.Name, o.State, o.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return translate(err, "update order")
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return translate(err, "delete order")
	}
	return expectAffected(res, "delete order")
}

type windowRepo struct {
	db *sql.DB
}

func (r *windowRepo) List(ctx context.Context, d query.Descriptor) (query.Page[models.Window], error) {
	return list(ctx, r.db, windowsTable, d, scanWindow)
}

func (r *windowRepo) Get(ctx context.Context, id int64) (models.Window, error) {
	w, err := scanWindow(r.db.QueryRowContext(ctx,
		"SELECT "+windowColumns+" FROM windows WHERE id = $1", id))
	if err != nil {
		return models.Window{}, translate(err, "get window")
	}
	return w, nil
}

func (r *windowRepo) ListByOrders(ctx context.Context, orderIDs []int64) ([]models.Window, error) {
	return queryAll(ctx, r.db, "windows", scanWindow,
		"SELECT "+windowColumns+" FROM windows WHERE order_id = ANY($1) ORDER BY id",
		pq.Array(orderIDs))
}

func (r *windowRepo) Create(ctx context.Context, w *models.Window) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO windows (order_id, name, quantity_of_windows)
		VALUES ($1, $2, $3)
		RETURNING id, total_sub_elements, created_at, updated_at
	`, w.OrderID, w.Name, w.QuantityOfWindows).Scan(&w.ID, &w.TotalSubElements, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return translate(err, "create window")
	}
	return nil
}

// Update writes the client-settable columns and moves the window's sub
// elements along when order_id changes.
func (r *windowRepo) Update(ctx context.Context, w *models.Window) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		UPDATE windows
		SET order_id = $1, name = $2, quantity_of_windows = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING total_sub_elements, created_at, updated_at
	`, w.OrderID, w.Name, w.QuantityOfWindows, w.ID).Scan(&w.TotalSubElements, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return translate(err, "update window")
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE sub_elements
		SET order_id = $1, updated_at = NOW()
		WHERE window_id = $2 AND order_id <> $1
	`, w.OrderID, w.ID); err != nil {
		return translate(err, "move sub elements")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit window update: %w", err)
	}
	return nil
}

func (r *windowRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM windows WHERE id = $1", id)
	if err != nil {
		return translate(err, "delete window")
	}
	return expectAffected(res, "delete window")
}

// RecountSubElements counts and stores in one statement so concurrent
// recounts cannot interleave between the read and the write.
func (r *windowRepo) RecountSubElements(ctx context.Context, windowID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		UPDATE windows w
		SET total_sub_elements = c.n,
			updated_at = CASE WHEN w.total_sub_elements <> c.n THEN NOW() ELSE w.updated_at END
		FROM (SELECT COUNT(*)::int AS n FROM sub_elements WHERE window_id = $1) c
		WHERE w.id = $1
		RETURNING w.total_sub_elements
	`, windowID).Scan(&n)
	if err != nil {
		return 0, translate(err, "recount sub elements")
	}
	return n, nil
}

type subElementRepo struct {
	db *sql.DB
}

func (r *subElementRepo) List(ctx context.Context, d query.Descriptor) (query.Page[models.SubElement], error) {
	return list(ctx, r.db, subElementsTable, d, scanSubElement)
}

func (r *subElementRepo) Get(ctx context.Context, id int64) (models.SubElement, error) {
	e, err := scanSubElement(r.db.QueryRowContext(ctx,
		"SELECT "+subElementColumns+" FROM sub_elements WHERE id = $1", id))
	if err != nil {
		return models.SubElement{}, translate(err, "get sub element")
	}
	return e, nil
}

func (r *subElementRepo) ListByWindows(ctx context.Context, windowIDs []int64) ([]models.SubElement, error) {
	return queryAll(ctx, r.db, "sub_elements", scanSubElement,
		"SELECT "+subElementColumns+" FROM sub_elements WHERE window_id = ANY($1) ORDER BY id",
		pq.Array(windowIDs))
}

func (r *subElementRepo) Create(ctx context.Context, e *models.SubElement) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sub_elements (order_id, window_id, element, type, width, height)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, e.OrderID, e.WindowID, e.Element, e.Type, e.Width, e.Height).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return translate(err, "create sub element")
	}
	return nil
}

func (r *subElementRepo) Update(ctx context.Context, e *models.SubElement) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE sub_elements
		SET order_id = $1, window_id = $2, element = $3, type = $4, width = $5, height = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING created_at, updated_at
	`, e.OrderID, e.WindowID, e.Element, e.Type, e.Width, e.Height, e.ID).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return translate(err, "update sub element")
	}
	return nil
}

func (r *subElementRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sub_elements WHERE id = $1", id)
	if err != nil {
		return translate(err, "delete sub element")
	}
	return expectAffected(res, "delete sub element")
}
