package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/services"
)

type SubElementsHandler struct {
	crud crudHandler[models.SubElementCreateRequest, models.SubElementUpdateRequest, models.SubElementDto]
}

func NewSubElementsHandler(service services.SubElementCRUD, logger *zap.Logger) *SubElementsHandler {
	return &SubElementsHandler{crud: crudHandler[models.SubElementCreateRequest, models.SubElementUpdateRequest, models.SubElementDto]{
		service: service,
		idOf:    func(s models.SubElementDto) int64 { return s.ID },
		logger:  logger,
	}}
}

// ListSubElements godoc
// @Summary     List sub elements
// @Tags        subelements
// @Produce     json
// @Param       searchTerm query string false "Case-insensitive substring of element or type"
// @Param       orderId    query int    false "Only sub elements of this order"
// @Param       windowId   query int    false "Only sub elements of this window"
// @Param       sortField  query string false "Field to sort by" default(updatedAt)
// @Param       sortOrder  query string false "asc or desc" default(asc)
// @Param       page       query int    false "1-based page number" default(1)
// @Param       pageSize   query int    false "Items per page" default(10)
// @Success     200 {object} models.Response{result=models.PageResult[models.SubElementDto]}
// @Failure     400 {object} models.Response
// @Router      /SubElements [get]
func (h *SubElementsHandler) ListSubElements(c *gin.Context) { h.crud.list(c) }

// GetSubElement godoc
// @Summary     Get a sub element
// @Tags        subelements
// @Produce     json
// @Param       id path int true "Sub element ID"
// @Success     200 {object} models.Response{result=models.SubElementDto}
// @Failure     404 {object} models.Response
// @Router      /SubElements/{id} [get]
func (h *SubElementsHandler) GetSubElement(c *gin.Context) { h.crud.get(c) }

// CreateSubElement godoc
// @Summary     Create a sub element
// @Description The parent window's totalSubElements is updated before the response is sent.
// @Tags        subelements
// @Accept      json
// @Produce     json
// @Param       request body models.SubElementCreateRequest true "Sub element"
// @Success     201 {object} models.Response{result=models.SubElementDto}
// @Failure     400 {object} models.Response
// @Router      /SubElements [post]
func (h *SubElementsHandler) CreateSubElement(c *gin.Context) { h.crud.create(c) }

// UpdateSubElement godoc
// @Summary     Update a sub element
// @Tags        subelements
// @Accept      json
// @Produce     json
// @Param       id      path int                            true "Sub element ID"
// @Param       request body models.SubElementUpdateRequest true "Sub element; id must match the path"
// @Success     200 {object} models.Response{result=models.SubElementDto}
// @Failure     400 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /SubElements/{id} [put]
func (h *SubElementsHandler) UpdateSubElement(c *gin.Context) { h.crud.update(c) }

// DeleteSubElement godoc
// @Summary     Delete a sub element
// @Tags        subelements
// @Produce     json
// @Param       id path int true "Sub element ID"
// @Success     200 {object} models.Response{result=models.SubElementDto}
// @Failure     404 {object} models.Response
// @Router      /SubElements/{id} [delete]
func (h *SubElementsHandler) DeleteSubElement(c *gin.Context) { h.crud.delete(c) }
