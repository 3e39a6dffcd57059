package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/services"
)

type OrdersHandler struct {
	crud crudHandler[models.OrderCreateRequest, models.OrderUpdateRequest, models.OrderDto]
}

func NewOrdersHandler(service services.OrderCRUD, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{crud: crudHandler[models.OrderCreateRequest, models.OrderUpdateRequest, models.OrderDto]{
		service: service,
		idOf:    func(o models.OrderDto) int64 { return o.ID },
		logger:  logger,
	}}
}

// ListOrders godoc
// @Summary     List orders
// @Description Filters by name or state, sorts and paginates. Each order carries its windows and their sub elements.
// @Tags        orders
// @Produce     json
// @Param       searchTerm query string false "Case-insensitive substring of name or state"
// @Param       sortField  query string false "Field to sort by" default(updatedAt)
// @Param       sortOrder  query string false "asc or desc" default(asc)
// @Param       page       query int    false "1-based page number" default(1)
// @Param       pageSize   query int    false "Items per page" default(10)
// @Success     200 {object} models.Response{result=models.PageResult[models.OrderDto]}
// @Failure     400 {object} models.Response
// @Failure     500 {object} models.Response
// @Router      /Orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) { h.crud.list(c) }

// GetOrder godoc
// @Summary     Get an order
// @Tags        orders
// @Produce     json
// @Param       id path int true "Order ID"
// @Success     200 {object} models.Response{result=models.OrderDto}
// @Failure     400 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /Orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) { h.crud.get(c) }

// CreateOrder godoc
// @Summary     Create an order
// @Description Nested windows and sub elements in the payload are created with the order.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.OrderCreateRequest true "Order"
// @Success     201 {object} models.Response{result=models.OrderDto}
// @Failure     400 {object} models.Response
// @Failure     500 {object} models.Response
// @Router      /Orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) { h.crud.create(c) }

// UpdateOrder godoc
// @Summary     Update an order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       id      path int                       true "Order ID"
// @Param       request body models.OrderUpdateRequest true "Order; id must match the path"
// @Success     200 {object} models.Response{result=models.OrderDto}
// @Failure     400 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /Orders/{id} [put]
func (h *OrdersHandler) UpdateOrder(c *gin.Context) { h.crud.update(c) }

// DeleteOrder godoc
// @Summary     Delete an order
// @Description Removes the order with its windows and sub elements and returns what was deleted.
// @Tags        orders
// @Produce     json
// @Param       id path int true "Order ID"
// @Success     200 {object} models.Response{result=models.OrderDto}
// @Failure     404 {object} models.Response
// @Router      /Orders/{id} [delete]
func (h *OrdersHandler) DeleteOrder(c *gin.Context) { h.crud.delete(c) }
