package database_test

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sales-order-backend/internal/database"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/store"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestOrderListRunsCountThenPage(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE \(name ILIKE \$1 OR state ILIKE \$1\)`).
		WithArgs("%state10%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT id, name, state, created_at, updated_at FROM orders WHERE .* ORDER BY updated_at ASC, id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("%state10%", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "state", "created_at", "updated_at"}).
			AddRow(1, "Order1", "state10", now, now).
			AddRow(3, "Order3", "state10", now, now))

	d := query.Default()
	d.SearchTerm = "state10"
	d.PageSize = 2
	page, err := s.Orders.List(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Count)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Order1", page.Items[0].Name)
	assert.Equal(t, int64(3), page.Items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmptyPageIsNotNil(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM windows`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .* FROM windows ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, err := s.Windows.List(context.Background(), query.Default())
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestListOverflowingOffsetSkipsPageQuery(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	d := query.Default()
	d.Page = math.MaxInt
	d.PageSize = 10
	page, err := s.Orders.List(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingRowIsErrNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)

	mock.ExpectQuery(`SELECT .* FROM sub_elements WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.SubElements.Get(context.Background(), 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateWindowForeignKeyViolation(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)

	mock.ExpectQuery(`INSERT INTO windows`).
		WithArgs(int64(77), "Window 1", 4).
		WillReturnError(&pq.Error{Code: "23503", Message: "insert or update on table \"windows\" violates foreign key constraint"})

	err := s.Windows.Create(context.Background(), &models.Window{OrderID: 77, Name: "Window 1", QuantityOfWindows: 4})
	assert.ErrorIs(t, err, store.ErrConstraint)
}

func TestCreateOrderFillsGeneratedColumns(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs("Test Order", "Created").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(12, now, now))

	o := models.Order{Name: "Test Order", State: "Created"}
	require.NoError(t, s.Orders.Create(context.Background(), &o))
	assert.Equal(t, int64(12), o.ID)
	assert.Equal(t, now, o.CreatedAt)
}

func TestDeleteWithoutRowsIsErrNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)

	mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Orders.Delete(context.Background(), 5), store.ErrNotFound)
}

func TestWindowUpdateMovesSubElementsInOneTransaction(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE windows`).
		WithArgs(int64(2), "Window 1", 3, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"total_sub_elements", "created_at", "updated_at"}).AddRow(6, now, now))
	mock.ExpectExec(`UPDATE sub_elements`).
		WithArgs(int64(2), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectCommit()

	w := models.Window{ID: 4, OrderID: 2, Name: "Window 1", QuantityOfWindows: 3}
	require.NoError(t, s.Windows.Update(context.Background(), &w))
	assert.Equal(t, 6, w.TotalSubElements)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecountIsSingleStatement(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)

	mock.ExpectQuery(`UPDATE windows w\s+SET total_sub_elements = c.n`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"total_sub_elements"}).AddRow(3))

	n, err := s.Windows.RecountSubElements(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecountMissingWindow(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)

	mock.ExpectQuery(`UPDATE windows w`).
		WithArgs(int64(4)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.Windows.RecountSubElements(context.Background(), 4)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListByWindowsUsesArrayParameter(t *testing.T) {
	db, mock := newMock(t)
	s := database.NewStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM sub_elements WHERE window_id = ANY\(\$1\) ORDER BY id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "window_id", "element", "type", "width", "height", "created_at", "updated_at"}).
			AddRow(1, 1, 1, 0, "Frame", 100.0, 100.0, now, now))

	subs, err := s.SubElements.ListByWindows(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Frame", subs[0].Type)
}

func TestMigratorAppliesPendingFiles(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations WHERE name = \$1`).
		WithArgs("001_create_sales_orders.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS orders`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs("001_create_sales_orders.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigratorSkipsAppliedFiles(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, database.NewMigrator(db, nil).Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
