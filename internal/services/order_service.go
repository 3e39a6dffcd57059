package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/store"
)

type OrderService struct {
	resource[models.Order, models.OrderDto]
	store     store.Store
	validator *Validator
	counts    *CountMaintainer
}

func newOrderService(st store.Store, v *Validator, counts *CountMaintainer, p presenter, logger *zap.Logger) *OrderService {
	return &OrderService{
		resource: resource[models.Order, models.OrderDto]{
			name:    "order",
			repo:    st.Orders,
			present: p.orderDtos,
			logger:  logger,
		},
		store:     st,
		validator: v,
		counts:    counts,
	}
}

func (s *OrderService) List(ctx context.Context, d query.Descriptor) (query.Page[models.OrderDto], error) {
	return s.list(ctx, d)
}

func (s *OrderService) Get(ctx context.Context, id int64) (models.OrderDto, error) {
	return s.get(ctx, id)
}

// Create stores the order together with any nested windows and their sub
// elements.
func (s *OrderService) Create(ctx context.Context, req models.OrderCreateRequest) (models.OrderDto, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.OrderDto{}, err
	}

	order := req.Entity()
	if err := s.store.Orders.Create(ctx, &order); err != nil {
		return models.OrderDto{}, fmt.Errorf("failed to create order: %w", err)
	}
	s.logger.Debug("order created", zap.Int64("order_id", order.ID))

	for _, wreq := range req.Windows {
		w := wreq.Entity(order.ID)
		if err := s.store.Windows.Create(ctx, &w); err != nil {
			return models.OrderDto{}, fmt.Errorf("failed to create window: %w", err)
		}
		if err := createSubElements(ctx, s.store, s.counts, w, wreq.SubElements); err != nil {
			return models.OrderDto{}, err
		}
	}

	return s.get(ctx, order.ID)
}

func (s *OrderService) Update(ctx context.Context, id int64, req models.OrderUpdateRequest) (models.OrderDto, error) {
	if err := checkUpdate(s.validator, s.name, id, req); err != nil {
		return models.OrderDto{}, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return models.OrderDto{}, err
	}
	order := req.Apply(existing)
	if err := s.store.Orders.Update(ctx, &order); err != nil {
		return models.OrderDto{}, s.notFound(id, err)
	}
	s.logger.Debug("order updated", zap.Int64("order_id", id))

	return s.dto(ctx, order)
}

// Delete removes the order, its windows and their sub elements.
func (s *OrderService) Delete(ctx context.Context, id int64) (models.OrderDto, error) {
	if _, err := s.find(ctx, id); err != nil {
		return models.OrderDto{}, err
	}
	windows, err := s.store.Windows.ListByOrders(ctx, []int64{id})
	if err != nil {
		return models.OrderDto{}, fmt.Errorf("failed to load windows of order %d: %w", id, err)
	}
	ids := make([]int64, len(windows))
	for i, w := range windows {
		ids[i] = w.ID
	}
	unlock := s.counts.Lock(ids...)
	defer unlock()

	dto, err := s.get(ctx, id)
	if err != nil {
		return models.OrderDto{}, err
	}
	if err := s.store.Orders.Delete(ctx, id); err != nil {
		return models.OrderDto{}, s.notFound(id, err)
	}
	s.logger.Debug("order deleted", zap.Int64("order_id", id))
	return dto, nil
}
