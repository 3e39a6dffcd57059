package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"sales-order-backend/internal/domain"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/store"
)

type (
	OrderCRUD      = CRUDService[models.OrderCreateRequest, models.OrderUpdateRequest, models.OrderDto]
	WindowCRUD     = CRUDService[models.WindowCreateRequest, models.WindowUpdateRequest, models.WindowDto]
	SubElementCRUD = CRUDService[models.SubElementCreateRequest, models.SubElementUpdateRequest, models.SubElementDto]
)

// Services wires the three resource services over one store.
type Services struct {
	Orders      *OrderService
	Windows     *WindowService
	SubElements *SubElementService
}

func New(st store.Store, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := NewValidator()
	counts := NewCountMaintainer(st.Windows, logger)
	p := presenter{windows: st.Windows, subElements: st.SubElements}

	return &Services{
		Orders:      newOrderService(st, v, counts, p, logger),
		Windows:     newWindowService(st, v, counts, p, logger),
		SubElements: newSubElementService(st, v, counts, p, logger),
	}
}

var (
	_ OrderCRUD      = (*OrderService)(nil)
	_ WindowCRUD     = (*WindowService)(nil)
	_ SubElementCRUD = (*SubElementService)(nil)
)

// presenter maps entities to DTOs and loads their children with one query per
// level.
type presenter struct {
	windows     store.WindowStore
	subElements store.SubElementStore
}

func (p presenter) subElementDtos(_ context.Context, items []models.SubElement) ([]models.SubElementDto, error) {
	out := make([]models.SubElementDto, 0, len(items))
	for _, s := range items {
		out = append(out, models.ToSubElementDto(s))
	}
	return out, nil
}

func (p presenter) windowDtos(ctx context.Context, items []models.Window) ([]models.WindowDto, error) {
	out := make([]models.WindowDto, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(items))
	for _, w := range items {
		ids = append(ids, w.ID)
	}
	subs, err := p.subElements.ListByWindows(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load sub elements: %w", err)
	}
	byWindow := map[int64][]models.SubElement{}
	for _, s := range subs {
		byWindow[s.WindowID] = append(byWindow[s.WindowID], s)
	}

	for _, w := range items {
		out = append(out, models.ToWindowDto(w, byWindow[w.ID]))
	}
	return out, nil
}

func (p presenter) orderDtos(ctx context.Context, items []models.Order) ([]models.OrderDto, error) {
	out := make([]models.OrderDto, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(items))
	for _, o := range items {
		ids = append(ids, o.ID)
	}
	windows, err := p.windows.ListByOrders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load windows: %w", err)
	}
	windowDtos, err := p.windowDtos(ctx, windows)
	if err != nil {
		return nil, err
	}
	byOrder := map[int64][]models.WindowDto{}
	for _, w := range windowDtos {
		byOrder[w.OrderID] = append(byOrder[w.OrderID], w)
	}

	for _, o := range items {
		out = append(out, models.ToOrderDto(o, byOrder[o.ID]))
	}
	return out, nil
}

// createSubElements inserts nested sub elements under a window and recounts it.
func createSubElements(ctx context.Context, st store.Store, counts *CountMaintainer, w models.Window, reqs []models.NestedSubElementRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	unlock := counts.Lock(w.ID)
	defer unlock()

	for _, req := range reqs {
		sub := req.Entity(w.OrderID, w.ID)
		if err := st.SubElements.Create(ctx, &sub); err != nil {
			return fmt.Errorf("failed to create sub element: %w", err)
		}
	}
	return counts.Recount(ctx, w.ID)
}

// requireOrder reports a missing order as a validation failure on field.
func requireOrder(ctx context.Context, orders store.OrderStore, id int64, field string) error {
	_, err := orders.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewValidationError(field, fmt.Sprintf("order %d does not exist", id))
	}
	return err
}
