package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"sales-order-backend/internal/store"
)

// CountMaintainer keeps Window.TotalSubElements equal to the number of sub
// elements stored under the window.
type CountMaintainer struct {
	windows store.WindowStore
	locks   *windowLocks
	logger  *zap.Logger
}

func NewCountMaintainer(windows store.WindowStore, logger *zap.Logger) *CountMaintainer {
	return &CountMaintainer{windows: windows, locks: newWindowLocks(), logger: logger}
}

// Lock serializes sub element mutations and recounts for the given windows.
// The returned func releases every lock taken.
func (m *CountMaintainer) Lock(windowIDs ...int64) (unlock func()) {
	return m.locks.lock(windowIDs...)
}

// Recount stores the current child count on the window. A window that no
// longer exists is skipped.
func (m *CountMaintainer) Recount(ctx context.Context, windowID int64) error {
	n, err := m.windows.RecountSubElements(ctx, windowID)
	if errors.Is(err, store.ErrNotFound) {
		m.logger.Debug("skipping recount for missing window", zap.Int64("window_id", windowID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to recount sub elements of window %d: %w", windowID, err)
	}
	m.logger.Debug("recounted sub elements", zap.Int64("window_id", windowID), zap.Int("total", n))
	return nil
}

// windowLocks hands out one mutex per window id and forgets it once nobody
// holds or waits for it.
type windowLocks struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newWindowLocks() *windowLocks {
	return &windowLocks{locks: map[int64]*refMutex{}}
}

func (w *windowLocks) lock(ids ...int64) func() {
	// ascending order so two callers locking the same pair cannot deadlock
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	held := make([]int64, 0, len(ids))
	for _, id := range ids {
		w.acquire(id).Lock()
		held = append(held, id)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			w.release(held[i])
		}
	}
}

func (w *windowLocks) acquire(id int64) *refMutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.locks[id]
	if !ok {
		m = &refMutex{}
		w.locks[id] = m
	}
	m.refs++
	return m
}

func (w *windowLocks) release(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m := w.locks[id]
	m.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(w.locks, id)
	}
}
