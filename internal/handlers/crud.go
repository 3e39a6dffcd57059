package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"sales-order-backend/internal/domain"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/services"
)

// crudHandler serves the five endpoints of one resource. The exported
// handler types wrap it so each route carries its own API docs.
type crudHandler[C any, U services.Identified, D any] struct {
	service services.CRUDService[C, U, D]
	idOf    func(D) int64
	logger  *zap.Logger
}

func (h crudHandler[C, U, D]) list(c *gin.Context) {
	d, err := parseDescriptor(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), d)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, models.PageResult[D]{Count: page.Count, Items: page.Items})
}

func (h crudHandler[C, U, D]) get(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	dto, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, dto)
}

func (h crudHandler[C, U, D]) create(c *gin.Context) {
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	dto, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Request.URL.Path, "/"), h.idOf(dto)))
	respondOK(c, http.StatusCreated, dto)
}

func (h crudHandler[C, U, D]) update(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req U
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	dto, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, dto)
}

func (h crudHandler[C, U, D]) delete(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	dto, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, dto)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("invalid id %q", c.Param("id")), nil)
		return 0, false
	}
	return id, true
}

// parseDescriptor reads listing parameters from the query string. Parameter
// names are matched case-insensitively; absent or empty values keep their
// defaults.
func parseDescriptor(c *gin.Context) (query.Descriptor, error) {
	params := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		k := strings.ToLower(key)
		if _, seen := params[k]; !seen && len(values) > 0 {
			params[k] = strings.TrimSpace(values[0])
		}
	}

	d := query.Default()
	d.SearchTerm = params["searchterm"]
	if v := params["sortfield"]; v != "" {
		d.SortField = v
	}
	if v := params["sortorder"]; v != "" {
		d.SortOrder = v
	}

	fields := map[string]string{}
	parseInt := func(key, name string, dst *int) {
		v := params[key]
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			fields[name] = name + " must be an integer"
			return
		}
		*dst = n
	}
	parseParent := func(key, name string) *int64 {
		v := params[key]
		if v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fields[name] = name + " must be an integer"
			return nil
		}
		return &n
	}

	parseInt("page", "page", &d.Page)
	parseInt("pagesize", "pageSize", &d.PageSize)
	d.OrderID = parseParent("orderid", "orderId")
	d.WindowID = parseParent("windowid", "windowId")

	if len(fields) > 0 {
		return query.Descriptor{}, domain.ValidationError{Fields: fields}
	}
	return d, nil
}
