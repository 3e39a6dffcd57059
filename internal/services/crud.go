package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"sales-order-backend/internal/domain"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/store"
)

// Identified is implemented by update payloads, which repeat the id of the
// record they target.
type Identified interface {
	BodyID() int64
}

// CRUDService is the operation set every resource exposes. C and U are the
// create and update payloads, D the response DTO.
type CRUDService[C any, U Identified, D any] interface {
	List(ctx context.Context, d query.Descriptor) (query.Page[D], error)
	Get(ctx context.Context, id int64) (D, error)
	Create(ctx context.Context, req C) (D, error)
	Update(ctx context.Context, id int64, req U) (D, error)
	// Delete removes the record and returns it as it was before deletion.
	Delete(ctx context.Context, id int64) (D, error)
}

// resource holds the plumbing shared by the three services: lookups with
// not-found translation and paged listing through a presenter that batch
// loads children.
type resource[T any, D any] struct {
	name    string
	repo    store.Repository[T]
	present func(ctx context.Context, items []T) ([]D, error)
	logger  *zap.Logger
}

func (r resource[T, D]) list(ctx context.Context, d query.Descriptor) (query.Page[D], error) {
	if fields := d.Validate(); fields != nil {
		return query.Page[D]{}, domain.ValidationError{Fields: fields}
	}
	page, err := r.repo.List(ctx, d)
	if err != nil {
		return query.Page[D]{}, err
	}
	items, err := r.present(ctx, page.Items)
	if err != nil {
		return query.Page[D]{}, err
	}
	return query.Page[D]{Count: page.Count, Items: items}, nil
}

func (r resource[T, D]) find(ctx context.Context, id int64) (T, error) {
	entity, err := r.repo.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, r.notFound(id, err)
	}
	return entity, nil
}

func (r resource[T, D]) dto(ctx context.Context, entity T) (D, error) {
	items, err := r.present(ctx, []T{entity})
	if err != nil {
		var zero D
		return zero, err
	}
	return items[0], nil
}

func (r resource[T, D]) get(ctx context.Context, id int64) (D, error) {
	entity, err := r.find(ctx, id)
	if err != nil {
		var zero D
		return zero, err
	}
	return r.dto(ctx, entity)
}

// notFound rewrites store.ErrNotFound into a domain.NotFoundError for id and
// passes any other error through.
func (r resource[T, D]) notFound(id int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFoundError{Resource: r.name, ID: id}
	}
	return err
}

// checkUpdate compares the path id with the payload id before looking at the
// rest of the payload.
func checkUpdate(v *Validator, name string, pathID int64, req Identified) error {
	if req.BodyID() != pathID {
		return domain.IDMismatchError{Resource: name, PathID: pathID, BodyID: req.BodyID()}
	}
	return v.Struct(req)
}

// constraint turns a foreign key failure that slipped past the service checks
// into a validation error on field.
func constraint(err error, field string) error {
	if errors.Is(err, store.ErrConstraint) {
		return domain.NewValidationError(field, fmt.Sprintf("%s references a record that does not exist", field))
	}
	return err
}
