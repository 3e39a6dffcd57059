package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sales-order-backend/internal/domain"
	"sales-order-backend/internal/memstore"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/services"
	"sales-order-backend/internal/store"
)

func newServices(t *testing.T) *services.Services {
	t.Helper()
	return services.New(memstore.New().Store(), zap.NewNop())
}

func createWindow(t *testing.T, svc *services.Services) models.WindowDto {
	t.Helper()
	ctx := context.Background()
	o, err := svc.Orders.Create(ctx, models.OrderCreateRequest{Name: "Test Order", State: "Created"})
	require.NoError(t, err)
	w, err := svc.Windows.Create(ctx, models.WindowCreateRequest{OrderID: o.ID, Name: "Window 1", QuantityOfWindows: 4})
	require.NoError(t, err)
	return w
}

func subRequest(w models.WindowDto, typ string) models.SubElementCreateRequest {
	return models.SubElementCreateRequest{OrderID: w.OrderID, WindowID: w.ID, Element: 1, Type: typ, Width: 100, Height: 100}
}

func TestTotalSubElementsTracksCreatesAndDeletes(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	w := createWindow(t, svc)
	assert.Equal(t, 0, w.TotalSubElements)

	var ids []int64
	for i := 0; i < 6; i++ {
		sub, err := svc.SubElements.Create(ctx, subRequest(w, "Frame"))
		require.NoError(t, err)
		ids = append(ids, sub.ID)
	}
	for _, id := range ids[:2] {
		_, err := svc.SubElements.Delete(ctx, id)
		require.NoError(t, err)
	}

	got, err := svc.Windows.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalSubElements)
	assert.Len(t, got.SubElements, 4)
}

func TestConcurrentSubElementCreatesKeepCount(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	w := createWindow(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubElements.Create(ctx, subRequest(w, "Glass"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Windows.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.TotalSubElements)
}

func TestMovingSubElementRecountsBothWindows(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	w1 := createWindow(t, svc)
	w2, err := svc.Windows.Create(ctx, models.WindowCreateRequest{OrderID: w1.OrderID, Name: "Window 2", QuantityOfWindows: 1})
	require.NoError(t, err)

	sub, err := svc.SubElements.Create(ctx, subRequest(w1, "Frame"))
	require.NoError(t, err)

	_, err = svc.SubElements.Update(ctx, sub.ID, models.SubElementUpdateRequest{
		ID: sub.ID, OrderID: w2.OrderID, WindowID: w2.ID, Element: 2, Type: "Frame", Width: 50, Height: 50,
	})
	require.NoError(t, err)

	got1, err := svc.Windows.Get(ctx, w1.ID)
	require.NoError(t, err)
	got2, err := svc.Windows.Get(ctx, w2.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got1.TotalSubElements)
	assert.Equal(t, 1, got2.TotalSubElements)
}

// hookedSubElements runs afterGet once, after the next Get has read its row.
type hookedSubElements struct {
	store.SubElementStore
	mu       sync.Mutex
	afterGet func()
}

func (h *hookedSubElements) arm(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.afterGet = fn
}

func (h *hookedSubElements) Get(ctx context.Context, id int64) (models.SubElement, error) {
	sub, err := h.SubElementStore.Get(ctx, id)
	h.mu.Lock()
	fn := h.afterGet
	h.afterGet = nil
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
	return sub, err
}

// hookedWindows runs afterGet once, after the next Get has read its row.
type hookedWindows struct {
	store.WindowStore
	mu       sync.Mutex
	afterGet func()
}

func (h *hookedWindows) arm(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.afterGet = fn
}

func (h *hookedWindows) Get(ctx context.Context, id int64) (models.Window, error) {
	w, err := h.WindowStore.Get(ctx, id)
	h.mu.Lock()
	fn := h.afterGet
	h.afterGet = nil
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
	return w, err
}

func newHookedServices(t *testing.T) (*services.Services, *hookedWindows, *hookedSubElements) {
	t.Helper()
	st := memstore.New().Store()
	windows := &hookedWindows{WindowStore: st.Windows}
	subs := &hookedSubElements{SubElementStore: st.SubElements}
	st.Windows = windows
	st.SubElements = subs
	return services.New(st, zap.NewNop()), windows, subs
}

func moveRequest(id int64, w models.WindowDto) models.SubElementUpdateRequest {
	return models.SubElementUpdateRequest{ID: id, OrderID: w.OrderID, WindowID: w.ID, Element: 1, Type: "Frame", Width: 100, Height: 100}
}

func assertTotals(t *testing.T, svc *services.Services, want map[int64]int) {
	t.Helper()
	for id, n := range want {
		got, err := svc.Windows.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, n, got.TotalSubElements, "window %d total", id)
		assert.Len(t, got.SubElements, n, "window %d children", id)
	}
}

func TestDeleteFollowsSubElementMovedBeforeLock(t *testing.T) {
	svc, _, subs := newHookedServices(t)
	ctx := context.Background()
	a := createWindow(t, svc)
	b, err := svc.Windows.Create(ctx, models.WindowCreateRequest{OrderID: a.OrderID, Name: "Window B", QuantityOfWindows: 1})
	require.NoError(t, err)
	sub, err := svc.SubElements.Create(ctx, subRequest(a, "Frame"))
	require.NoError(t, err)

	subs.arm(func() {
		_, err := svc.SubElements.Update(ctx, sub.ID, moveRequest(sub.ID, b))
		require.NoError(t, err)
	})
	deleted, err := svc.SubElements.Delete(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.WindowID)

	assertTotals(t, svc, map[int64]int{a.ID: 0, b.ID: 0})
}

func TestUpdateFollowsSubElementMovedBeforeLock(t *testing.T) {
	svc, _, subs := newHookedServices(t)
	ctx := context.Background()
	a := createWindow(t, svc)
	b, err := svc.Windows.Create(ctx, models.WindowCreateRequest{OrderID: a.OrderID, Name: "Window B", QuantityOfWindows: 1})
	require.NoError(t, err)
	c, err := svc.Windows.Create(ctx, models.WindowCreateRequest{OrderID: a.OrderID, Name: "Window C", QuantityOfWindows: 1})
	require.NoError(t, err)
	sub, err := svc.SubElements.Create(ctx, subRequest(a, "Frame"))
	require.NoError(t, err)

	subs.arm(func() {
		_, err := svc.SubElements.Update(ctx, sub.ID, moveRequest(sub.ID, b))
		require.NoError(t, err)
	})
	_, err = svc.SubElements.Update(ctx, sub.ID, moveRequest(sub.ID, c))
	require.NoError(t, err)

	assertTotals(t, svc, map[int64]int{a.ID: 0, b.ID: 0, c.ID: 1})
}

func TestWindowDeleteSnapshotBlocksConcurrentCreate(t *testing.T) {
	svc, windows, _ := newHookedServices(t)
	ctx := context.Background()
	w := createWindow(t, svc)
	_, err := svc.SubElements.Create(ctx, subRequest(w, "Frame"))
	require.NoError(t, err)

	createErr := make(chan error, 1)
	windows.arm(func() {
		go func() {
			_, err := svc.SubElements.Create(ctx, subRequest(w, "Glass"))
			createErr <- err
		}()
		select {
		case err := <-createErr:
			createErr <- err
		case <-time.After(50 * time.Millisecond):
		}
	})

	deleted, err := svc.Windows.Delete(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, deleted.TotalSubElements, len(deleted.SubElements))
	assert.Equal(t, 1, deleted.TotalSubElements)

	err = <-createErr
	assert.True(t, domain.IsValidation(err), "create into a deleted window: %v", err)
}

func TestUpdateIDMismatchWinsOverInvalidPayload(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Orders.Update(ctx, 1, models.OrderUpdateRequest{ID: 2})
	assert.True(t, domain.IsIDMismatch(err))

	_, err = svc.Windows.Update(ctx, 5, models.WindowUpdateRequest{ID: 6, QuantityOfWindows: -1})
	assert.True(t, domain.IsIDMismatch(err))

	_, err = svc.SubElements.Update(ctx, 5, models.SubElementUpdateRequest{ID: 0})
	assert.True(t, domain.IsIDMismatch(err))
}

func TestUpdateValidatesAfterIDCheck(t *testing.T) {
	svc := newServices(t)
	_, err := svc.Orders.Update(context.Background(), 1, models.OrderUpdateRequest{ID: 1, Name: " ", State: "x"})

	var invalid domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "name is required", invalid.Fields["name"])
}

func TestUpdateAndDeleteMissingRecord(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Orders.Update(ctx, 99, models.OrderUpdateRequest{ID: 99, Name: "a", State: "b"})
	assert.True(t, domain.IsNotFound(err))

	_, err = svc.Orders.Delete(ctx, 99)
	var notFound domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "order", notFound.Resource)

	_, err = svc.SubElements.Delete(ctx, 99)
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateValidationReportsNestedPaths(t *testing.T) {
	svc := newServices(t)
	_, err := svc.Orders.Create(context.Background(), models.OrderCreateRequest{
		Name:  "",
		State: "Created",
		Windows: []models.NestedWindowRequest{{
			Name:              "Window 1",
			QuantityOfWindows: 0,
			SubElements:       []models.NestedSubElementRequest{{Type: "Frame", Width: 1, Height: -1}},
		}},
	})

	var invalid domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "name is required", invalid.Fields["name"])
	assert.Equal(t, "quantityOfWindows must be greater than 0", invalid.Fields["windows[0].quantityOfWindows"])
	assert.Equal(t, "height must be greater than 0", invalid.Fields["windows[0].subElements[0].height"])
}

func TestNestedOrderCreate(t *testing.T) {
	svc := newServices(t)
	o, err := svc.Orders.Create(context.Background(), models.OrderCreateRequest{
		Name:  "Test Order",
		State: "Created",
		Windows: []models.NestedWindowRequest{{
			Name:              "Window 1",
			QuantityOfWindows: 4,
			SubElements: []models.NestedSubElementRequest{
				{Element: 1, Type: "Frame", Width: 100, Height: 100},
				{Element: 2, Type: "Glass", Width: 100, Height: 100},
			},
		}},
	})
	require.NoError(t, err)

	require.Len(t, o.Windows, 1)
	w := o.Windows[0]
	assert.Equal(t, o.ID, w.OrderID)
	assert.Equal(t, 2, w.TotalSubElements)
	require.Len(t, w.SubElements, 2)
	assert.Equal(t, w.ID, w.SubElements[1].WindowID)
	assert.Equal(t, o.ID, w.SubElements[1].OrderID)
}

func TestSubElementParentsMustAgree(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	w := createWindow(t, svc)
	other, err := svc.Orders.Create(ctx, models.OrderCreateRequest{Name: "Other", State: "Created"})
	require.NoError(t, err)

	req := subRequest(w, "Frame")
	req.OrderID = other.ID
	_, err = svc.SubElements.Create(ctx, req)
	var invalid domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "orderId")

	req = subRequest(w, "Frame")
	req.WindowID = 404
	_, err = svc.SubElements.Create(ctx, req)
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "windowId")
}

func TestWindowCreateRequiresExistingOrder(t *testing.T) {
	svc := newServices(t)
	_, err := svc.Windows.Create(context.Background(), models.WindowCreateRequest{OrderID: 3, Name: "w", QuantityOfWindows: 1})

	var invalid domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "order 3 does not exist", invalid.Fields["orderId"])
}

func TestWindowUpdateIgnoresClientTotal(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	w := createWindow(t, svc)
	_, err := svc.SubElements.Create(ctx, subRequest(w, "Frame"))
	require.NoError(t, err)

	got, err := svc.Windows.Update(ctx, w.ID, models.WindowUpdateRequest{ID: w.ID, OrderID: w.OrderID, Name: "Renamed", QuantityOfWindows: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalSubElements)
	assert.Equal(t, "Renamed", got.Name)
}

func TestDeleteOrderReturnsSnapshotAndCascades(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	w := createWindow(t, svc)
	sub, err := svc.SubElements.Create(ctx, subRequest(w, "Frame"))
	require.NoError(t, err)

	deleted, err := svc.Orders.Delete(ctx, w.OrderID)
	require.NoError(t, err)
	require.Len(t, deleted.Windows, 1)
	assert.Len(t, deleted.Windows[0].SubElements, 1)

	_, err = svc.Windows.Get(ctx, w.ID)
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.SubElements.Get(ctx, sub.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestListSearchScenario(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	for i, state := range []string{"state10", "state2", "state10", "other"} {
		_, err := svc.Orders.Create(ctx, models.OrderCreateRequest{Name: fmt.Sprintf("Order%d", i+1), State: state})
		require.NoError(t, err)
	}

	d := query.Default()
	d.SearchTerm = "state10"
	d.PageSize = 2
	page, err := svc.Orders.List(ctx, d)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Count)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Order1", page.Items[0].Name)
	assert.Equal(t, "Order3", page.Items[1].Name)
}

func TestListRejectsBadPaging(t *testing.T) {
	svc := newServices(t)
	d := query.Default()
	d.Page = 0

	_, err := svc.Windows.List(context.Background(), d)
	var invalid domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "page")
}
