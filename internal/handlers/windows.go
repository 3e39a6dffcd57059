package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/services"
)

type WindowsHandler struct {
	crud crudHandler[models.WindowCreateRequest, models.WindowUpdateRequest, models.WindowDto]
}

func NewWindowsHandler(service services.WindowCRUD, logger *zap.Logger) *WindowsHandler {
	return &WindowsHandler{crud: crudHandler[models.WindowCreateRequest, models.WindowUpdateRequest, models.WindowDto]{
		service: service,
		idOf:    func(w models.WindowDto) int64 { return w.ID },
		logger:  logger,
	}}
}

// ListWindows godoc
// @Summary     List windows
// @Tags        windows
// @Produce     json
// @Param       searchTerm query string false "Case-insensitive substring of name"
// @Param       orderId    query int    false "Only windows of this order"
// @Param       sortField  query string false "Field to sort by" default(updatedAt)
// @Param       sortOrder  query string false "asc or desc" default(asc)
// @Param       page       query int    false "1-based page number" default(1)
// @Param       pageSize   query int    false "Items per page" default(10)
// @Success     200 {object} models.Response{result=models.PageResult[models.WindowDto]}
// @Failure     400 {object} models.Response
// @Router      /Windows [get]
func (h *WindowsHandler) ListWindows(c *gin.Context) { h.crud.list(c) }

// GetWindow godoc
// @Summary     Get a window
// @Tags        windows
// @Produce     json
// @Param       id path int true "Window ID"
// @Success     200 {object} models.Response{result=models.WindowDto}
// @Failure     404 {object} models.Response
// @Router      /Windows/{id} [get]
func (h *WindowsHandler) GetWindow(c *gin.Context) { h.crud.get(c) }

// CreateWindow godoc
// @Summary     Create a window
// @Tags        windows
// @Accept      json
// @Produce     json
// @Param       request body models.WindowCreateRequest true "Window"
// @Success     201 {object} models.Response{result=models.WindowDto}
// @Failure     400 {object} models.Response
// @Router      /Windows [post]
func (h *WindowsHandler) CreateWindow(c *gin.Context) { h.crud.create(c) }

// UpdateWindow godoc
// @Summary     Update a window
// @Description totalSubElements is maintained by the server and cannot be set.
// @Tags        windows
// @Accept      json
// @Produce     json
// @Param       id      path int                        true "Window ID"
// @Param       request body models.WindowUpdateRequest true "Window; id must match the path"
// @Success     200 {object} models.Response{result=models.WindowDto}
// @Failure     400 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /Windows/{id} [put]
func (h *WindowsHandler) UpdateWindow(c *gin.Context) { h.crud.update(c) }

// DeleteWindow godoc
// @Summary     Delete a window
// @Tags        windows
// @Produce     json
// @Param       id path int true "Window ID"
// @Success     200 {object} models.Response{result=models.WindowDto}
// @Failure     404 {object} models.Response
// @Router      /Windows/{id} [delete]
func (h *WindowsHandler) DeleteWindow(c *gin.Context) { h.crud.delete(c) }
