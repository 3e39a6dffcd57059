// Package memstore is an in-process backend: three id-indexed tables guarded
// by one lock. Rows reference their parents by id only.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/store"
)

type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	orders      map[int64]models.Order
	windows     map[int64]models.Window
	subElements map[int64]models.SubElement

	nextOrderID      int64
	nextWindowID     int64
	nextSubElementID int64
}

type Option func(*Memory)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

func New(opts ...Option) *Memory {
	m := &Memory{
		now:         func() time.Time { return time.Now().UTC() },
		orders:      map[int64]models.Order{},
		windows:     map[int64]models.Window{},
		subElements: map[int64]models.SubElement{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store exposes the tables through the store contracts.
func (m *Memory) Store() store.Store {
	return store.Store{
		Orders:      orderTable{m},
		Windows:     windowTable{m},
		SubElements: subElementTable{m},
		Ping:        func(context.Context) error { return nil },
		Close:       func() error { return nil },
	}
}

// rows returns the values of table in id (insertion) order.
func rows[T any](table map[int64]T) []T {
	ids := slices.Sorted(maps.Keys(table))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, table[id])
	}
	return out
}

func (m *Memory) countSubElements(windowID int64) int {
	n := 0
	for _, s := range m.subElements {
		if s.WindowID == windowID {
			n++
		}
	}
	return n
}

func (m *Memory) deleteWindowLocked(id int64) {
	for sid, s := range m.subElements {
		if s.WindowID == id {
			delete(m.subElements, sid)
		}
	}
	delete(m.windows, id)
}

type orderTable struct{ m *Memory }

func (t orderTable) List(_ context.Context, d query.Descriptor) (query.Page[models.Order], error) {
	t.m.mu.RLock()
	all := rows(t.m.orders)
	t.m.mu.RUnlock()
	return query.Apply(d, all, models.OrderQuerySpec)
}

func (t orderTable) Get(_ context.Context, id int64) (models.Order, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	o, ok := t.m.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return o, nil
}

func (t orderTable) Create(_ context.Context, o *models.Order) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.m.nextOrderID++
	now := t.m.now()
	o.ID = t.m.nextOrderID
	o.CreatedAt, o.UpdatedAt = now, now
	t.m.orders[o.ID] = *o
	return nil
}

func (t orderTable) Update(_ context.Context, o *models.Order) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	existing, ok := t.m.orders[o.ID]
	if !ok {
		return store.ErrNotFound
	}
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = t.m.now()
	t.m.orders[o.ID] = *o
	return nil
}

func (t orderTable) Delete(_ context.Context, id int64) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.orders[id]; !ok {
		return store.ErrNotFound
	}
	for wid, w := range t.m.windows {
		if w.OrderID == id {
			t.m.deleteWindowLocked(wid)
		}
	}
	// sub elements pointing at the order through another window
	for sid, s := range t.m.subElements {
		if s.OrderID == id {
			delete(t.m.subElements, sid)
		}
	}
	delete(t.m.orders, id)
	return nil
}

type windowTable struct{ m *Memory }

func (t windowTable) List(_ context.Context, d query.Descriptor) (query.Page[models.Window], error) {
	t.m.mu.RLock()
	all := rows(t.m.windows)
	t.m.mu.RUnlock()
	return query.Apply(d, all, models.WindowQuerySpec)
}

func (t windowTable) Get(_ context.Context, id int64) (models.Window, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	w, ok := t.m.windows[id]
	if !ok {
		return models.Window{}, store.ErrNotFound
	}
	return w, nil
}

func (t windowTable) ListByOrders(_ context.Context, orderIDs []int64) ([]models.Window, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	out := []models.Window{}
	for _, w := range rows(t.m.windows) {
		if slices.Contains(orderIDs, w.OrderID) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (t windowTable) Create(_ context.Context, w *models.Window) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.orders[w.OrderID]; !ok {
		return fmt.Errorf("%w: order %d does not exist", store.ErrConstraint, w.OrderID)
	}
	t.m.nextWindowID++
	now := t.m.now()
	w.ID = t.m.nextWindowID
	w.TotalSubElements = 0
	w.CreatedAt, w.UpdatedAt = now, now
	t.m.windows[w.ID] = *w
	return nil
}

func (t windowTable) Update(_ context.Context, w *models.Window) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	existing, ok := t.m.windows[w.ID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := t.m.orders[w.OrderID]; !ok {
		return fmt.Errorf("%w: order %d does not exist", store.ErrConstraint, w.OrderID)
	}
	now := t.m.now()
	w.CreatedAt = existing.CreatedAt
	w.TotalSubElements = existing.TotalSubElements
	w.UpdatedAt = now
	t.m.windows[w.ID] = *w

	if existing.OrderID != w.OrderID {
		for sid, s := range t.m.subElements {
			if s.WindowID == w.ID {
				s.OrderID = w.OrderID
				s.UpdatedAt = now
				t.m.subElements[sid] = s
			}
		}
	}
	return nil
}

func (t windowTable) Delete(_ context.Context, id int64) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.windows[id]; !ok {
		return store.ErrNotFound
	}
	t.m.deleteWindowLocked(id)
	return nil
}

func (t windowTable) RecountSubElements(_ context.Context, windowID int64) (int, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	w, ok := t.m.windows[windowID]
	if !ok {
		return 0, store.ErrNotFound
	}
	n := t.m.countSubElements(windowID)
	if w.TotalSubElements != n {
		w.TotalSubElements = n
		w.UpdatedAt = t.m.now()
		t.m.windows[windowID] = w
	}
	return n, nil
}

type subElementTable struct{ m *Memory }

func (t subElementTable) List(_ context.Context, d query.Descriptor) (query.Page[models.SubElement], error) {
	t.m.mu.RLock()
	all := rows(t.m.subElements)
	t.m.mu.RUnlock()
	return query.Apply(d, all, models.SubElementQuerySpec)
}

func (t subElementTable) Get(_ context.Context, id int64) (models.SubElement, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	s, ok := t.m.subElements[id]
	if !ok {
		return models.SubElement{}, store.ErrNotFound
	}
	return s, nil
}

func (t subElementTable) ListByWindows(_ context.Context, windowIDs []int64) ([]models.SubElement, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	out := []models.SubElement{}
	for _, s := range rows(t.m.subElements) {
		if slices.Contains(windowIDs, s.WindowID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t subElementTable) checkParents(s *models.SubElement) error {
	if _, ok := t.m.orders[s.OrderID]; !ok {
		return fmt.Errorf("%w: order %d does not exist", store.ErrConstraint, s.OrderID)
	}
	if _, ok := t.m.windows[s.WindowID]; !ok {
		return fmt.Errorf("%w: window %d does not exist", store.ErrConstraint, s.WindowID)
	}
	return nil
}

func (t subElementTable) Create(_ context.Context, s *models.SubElement) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if err := t.checkParents(s); err != nil {
		return err
	}
	t.m.nextSubElementID++
	now := t.m.now()
	s.ID = t.m.nextSubElementID
	s.CreatedAt, s.UpdatedAt = now, now
	t.m.subElements[s.ID] = *s
	return nil
}

func (t subElementTable) Update(_ context.Context, s *models.SubElement) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	existing, ok := t.m.subElements[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	if err := t.checkParents(s); err != nil {
		return err
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = t.m.now()
	t.m.subElements[s.ID] = *s
	return nil
}

func (t subElementTable) Delete(_ context.Context, id int64) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.subElements[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.m.subElements, id)
	return nil
}
