package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sales-order-backend/internal/client"
	"sales-order-backend/internal/config"
	"sales-order-backend/internal/memstore"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/server"
	"sales-order-backend/internal/services"
)

func TestClient_RetryWithBackoff(t *testing.T) {
	c := client.New("http://api.test/api", client.WithBackoff(time.Millisecond, time.Millisecond))

	callCount := 0
	err := c.RetryWithBackoff(context.Background(), func() error {
		callCount++
		if callCount < 3 {
			return assert.AnError
		}
		return nil
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	c := client.New("http://api.test/api", client.WithBackoff(time.Millisecond, time.Millisecond))

	err := c.RetryWithBackoff(context.Background(), func() error {
		return assert.AnError
	}, 3)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}

func TestClient_RetryWithBackoff_StopsOnClientError(t *testing.T) {
	c := client.New("http://api.test/api", client.WithBackoff(time.Millisecond))

	callCount := 0
	err := c.RetryWithBackoff(context.Background(), func() error {
		callCount++
		return &client.APIError{StatusCode: http.StatusNotFound}
	}, 3)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, callCount)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"result":null,"message":"internal server error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"result":{"id":5,"name":"A","state":"B","windows":[]},"message":null}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL+"/api", client.WithBackoff(time.Millisecond, time.Millisecond))
	o, err := c.Orders.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), o.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_AgainstServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := memstore.New().Store()
	logger := zap.NewNop()
	router := server.NewRouter(server.Deps{
		Config:   &config.Config{Port: "8080", StoreDriver: config.DriverMemory},
		Store:    st,
		Services: services.New(st, logger),
		Logger:   logger,
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx := context.Background()
	c := client.New(srv.URL+"/api", client.WithBackoff(time.Millisecond))

	order, err := c.Orders.Create(ctx, models.OrderCreateRequest{Name: "Test Order", State: "Created"})
	require.NoError(t, err)

	window, err := c.Windows.Create(ctx, models.WindowCreateRequest{
		OrderID: order.ID, Name: "Window 1", QuantityOfWindows: 4,
		SubElements: []models.NestedSubElementRequest{{Element: 1, Type: "Frame", Width: 100, Height: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, window.TotalSubElements)

	d := query.Default()
	d.WindowID = &window.ID
	page, err := c.SubElements.List(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)

	_, err = c.Orders.Create(ctx, models.OrderCreateRequest{Name: "", State: "Created"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "name is required", apiErr.Fields["name"])

	deleted, err := c.Orders.Delete(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, deleted.Windows, 1)

	_, err = c.Windows.Get(ctx, window.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
