package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"sales-order-backend/internal/domain"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/store"
)

type SubElementService struct {
	resource[models.SubElement, models.SubElementDto]
	store     store.Store
	validator *Validator
	counts    *CountMaintainer
}

func newSubElementService(st store.Store, v *Validator, counts *CountMaintainer, p presenter, logger *zap.Logger) *SubElementService {
	return &SubElementService{
		resource: resource[models.SubElement, models.SubElementDto]{
			name:    "sub element",
			repo:    st.SubElements,
			present: p.subElementDtos,
			logger:  logger,
		},
		store:     st,
		validator: v,
		counts:    counts,
	}
}

// List honours the descriptor's OrderID and WindowID filters.
func (s *SubElementService) List(ctx context.Context, d query.Descriptor) (query.Page[models.SubElementDto], error) {
	return s.list(ctx, d)
}

func (s *SubElementService) Get(ctx context.Context, id int64) (models.SubElementDto, error) {
	return s.get(ctx, id)
}

// Create inserts the sub element and refreshes its window's total before
// returning.
func (s *SubElementService) Create(ctx context.Context, req models.SubElementCreateRequest) (models.SubElementDto, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.SubElementDto{}, err
	}

	unlock := s.counts.Lock(req.WindowID)
	defer unlock()

	if err := s.checkParents(ctx, req.OrderID, req.WindowID); err != nil {
		return models.SubElementDto{}, err
	}

	sub := req.Entity()
	if err := s.store.SubElements.Create(ctx, &sub); err != nil {
		return models.SubElementDto{}, constraint(fmt.Errorf("failed to create sub element: %w", err), "windowId")
	}
	s.logger.Debug("sub element created", zap.Int64("sub_element_id", sub.ID), zap.Int64("window_id", sub.WindowID))

	if err := s.counts.Recount(ctx, sub.WindowID); err != nil {
		return models.SubElementDto{}, err
	}
	return models.ToSubElementDto(sub), nil
}

// Update recounts both windows when the sub element moves between them.
func (s *SubElementService) Update(ctx context.Context, id int64, req models.SubElementUpdateRequest) (models.SubElementDto, error) {
	if err := checkUpdate(s.validator, s.name, id, req); err != nil {
		return models.SubElementDto{}, err
	}

	existing, unlock, err := s.lockCurrent(ctx, id, req.WindowID)
	if err != nil {
		return models.SubElementDto{}, err
	}
	defer unlock()

	if err := s.checkParents(ctx, req.OrderID, req.WindowID); err != nil {
		return models.SubElementDto{}, err
	}

	sub := req.Apply(existing)
	if err := s.store.SubElements.Update(ctx, &sub); err != nil {
		return models.SubElementDto{}, constraint(s.notFound(id, err), "windowId")
	}
	s.logger.Debug("sub element updated", zap.Int64("sub_element_id", id))

	if existing.WindowID != sub.WindowID {
		if err := s.counts.Recount(ctx, existing.WindowID); err != nil {
			return models.SubElementDto{}, err
		}
		if err := s.counts.Recount(ctx, sub.WindowID); err != nil {
			return models.SubElementDto{}, err
		}
	}
	return models.ToSubElementDto(sub), nil
}

func (s *SubElementService) Delete(ctx context.Context, id int64) (models.SubElementDto, error) {
	existing, unlock, err := s.lockCurrent(ctx, id)
	if err != nil {
		return models.SubElementDto{}, err
	}
	defer unlock()

	if err := s.store.SubElements.Delete(ctx, id); err != nil {
		return models.SubElementDto{}, s.notFound(id, err)
	}
	s.logger.Debug("sub element deleted", zap.Int64("sub_element_id", id), zap.Int64("window_id", existing.WindowID))

	if err := s.counts.Recount(ctx, existing.WindowID); err != nil {
		return models.SubElementDto{}, err
	}
	return models.ToSubElementDto(existing), nil
}

// lockCurrent locks the window the sub element sits in, together with extra,
// and returns the row as read under that lock. A row moved by a concurrent
// update before the lock was taken is read again under its new window.
func (s *SubElementService) lockCurrent(ctx context.Context, id int64, extra ...int64) (models.SubElement, func(), error) {
	seen, err := s.find(ctx, id)
	if err != nil {
		return models.SubElement{}, nil, err
	}
	for {
		unlock := s.counts.Lock(append([]int64{seen.WindowID}, extra...)...)
		current, err := s.find(ctx, id)
		if err != nil {
			unlock()
			return models.SubElement{}, nil, err
		}
		if current.WindowID == seen.WindowID {
			return current, unlock, nil
		}
		unlock()
		seen = current
	}
}

// checkParents requires the window to exist and to belong to orderID.
func (s *SubElementService) checkParents(ctx context.Context, orderID, windowID int64) error {
	if err := requireOrder(ctx, s.store.Orders, orderID, "orderId"); err != nil {
		return err
	}
	w, err := s.store.Windows.Get(ctx, windowID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewValidationError("windowId", fmt.Sprintf("window %d does not exist", windowID))
	}
	if err != nil {
		return err
	}
	if w.OrderID != orderID {
		return domain.NewValidationError("orderId", fmt.Sprintf("window %d belongs to order %d, not %d", windowID, w.OrderID, orderID))
	}
	return nil
}
