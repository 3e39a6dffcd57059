package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/store"
)

type WindowService struct {
	resource[models.Window, models.WindowDto]
	store     store.Store
	validator *Validator
	counts    *CountMaintainer
}

func newWindowService(st store.Store, v *Validator, counts *CountMaintainer, p presenter, logger *zap.Logger) *WindowService {
	return &WindowService{
		resource: resource[models.Window, models.WindowDto]{
			name:    "window",
			repo:    st.Windows,
			present: p.windowDtos,
			logger:  logger,
		},
		store:     st,
		validator: v,
		counts:    counts,
	}
}

// List honours the descriptor's OrderID filter.
func (s *WindowService) List(ctx context.Context, d query.Descriptor) (query.Page[models.WindowDto], error) {
	return s.list(ctx, d)
}

func (s *WindowService) Get(ctx context.Context, id int64) (models.WindowDto, error) {
	return s.get(ctx, id)
}

func (s *WindowService) Create(ctx context.Context, req models.WindowCreateRequest) (models.WindowDto, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.WindowDto{}, err
	}
	if err := requireOrder(ctx, s.store.Orders, req.OrderID, "orderId"); err != nil {
		return models.WindowDto{}, err
	}

	w := req.Entity()
	if err := s.store.Windows.Create(ctx, &w); err != nil {
		return models.WindowDto{}, constraint(fmt.Errorf("failed to create window: %w", err), "orderId")
	}
	s.logger.Debug("window created", zap.Int64("window_id", w.ID), zap.Int64("order_id", w.OrderID))

	if err := createSubElements(ctx, s.store, s.counts, w, req.SubElements); err != nil {
		return models.WindowDto{}, err
	}
	return s.get(ctx, w.ID)
}

// Update never touches TotalSubElements. Moving a window to another order
// moves its sub elements with it.
func (s *WindowService) Update(ctx context.Context, id int64, req models.WindowUpdateRequest) (models.WindowDto, error) {
	if err := checkUpdate(s.validator, s.name, id, req); err != nil {
		return models.WindowDto{}, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return models.WindowDto{}, err
	}
	if err := requireOrder(ctx, s.store.Orders, req.OrderID, "orderId"); err != nil {
		return models.WindowDto{}, err
	}

	w := req.Apply(existing)
	if err := s.store.Windows.Update(ctx, &w); err != nil {
		return models.WindowDto{}, constraint(s.notFound(id, err), "orderId")
	}
	s.logger.Debug("window updated", zap.Int64("window_id", id))

	return s.dto(ctx, w)
}

func (s *WindowService) Delete(ctx context.Context, id int64) (models.WindowDto, error) {
	unlock := s.counts.Lock(id)
	defer unlock()

	dto, err := s.get(ctx, id)
	if err != nil {
		return models.WindowDto{}, err
	}
	if err := s.store.Windows.Delete(ctx, id); err != nil {
		return models.WindowDto{}, s.notFound(id, err)
	}
	s.logger.Debug("window deleted", zap.Int64("window_id", id))
	return dto, nil
}
