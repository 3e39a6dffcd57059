// Package store declares the persistence contracts shared by the in-memory
// and Postgres backends.
package store

import (
	"context"
	"errors"

	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
)

var (
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConstraint is returned when a write would break a foreign key.
	ErrConstraint = errors.New("constraint violation")
)

// Repository is the CRUD surface every entity table offers. Create assigns
// ID, CreatedAt and UpdatedAt; Update refreshes UpdatedAt; Delete cascades to
// dependent rows.
type Repository[T any] interface {
	List(ctx context.Context, d query.Descriptor) (query.Page[T], error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id int64) error
}

type OrderStore interface {
	Repository[models.Order]
}

type WindowStore interface {
	Repository[models.Window]
	// ListByOrders returns the windows of the given orders ordered by id.
	ListByOrders(ctx context.Context, orderIDs []int64) ([]models.Window, error)
	// RecountSubElements recomputes and stores TotalSubElements in one atomic
	// step and returns the new value. ErrNotFound if the window is gone.
	RecountSubElements(ctx context.Context, windowID int64) (int, error)
}

type SubElementStore interface {
	Repository[models.SubElement]
	// ListByWindows returns the sub elements of the given windows ordered by id.
	ListByWindows(ctx context.Context, windowIDs []int64) ([]models.SubElement, error)
}

// Store bundles the three tables of one backend.
type Store struct {
	Orders      OrderStore
	Windows     WindowStore
	SubElements SubElementStore

	// Ping checks that the backend is reachable.
	Ping func(ctx context.Context) error
	// Close releases backend resources.
	Close func() error
}
