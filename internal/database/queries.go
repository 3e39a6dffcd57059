package database

import (
	"fmt"
	"strings"

	"sales-order-backend/internal/query"
)

const (
	orderColumns      = "id, name, state, created_at, updated_at"
	windowColumns     = "id, order_id, name, quantity_of_windows, total_sub_elements, created_at, updated_at"
	subElementColumns = "id, order_id, window_id, element, type, width, height, created_at, updated_at"
)

// table describes how a descriptor is translated into SQL for one entity.
// sortColumns is keyed exactly like the matching models query spec.
type table struct {
	name           string
	columns        string
	sortColumns    map[string]string
	searchExprs    []string
	orderIDColumn  string
	windowIDColumn string
}

var ordersTable = table{
	name:    "orders",
	columns: orderColumns,
	sortColumns: map[string]string{
		"id":        "id",
		"name":      "name",
		"state":     "state",
		"createdat": "created_at",
		"updatedat": "updated_at",
	},
	searchExprs: []string{"name", "state"},
}

var windowsTable = table{
	name:    "windows",
	columns: windowColumns,
	sortColumns: map[string]string{
		"id":                "id",
		"orderid":           "order_id",
		"name":              "name",
		"quantityofwindows": "quantity_of_windows",
		"totalsubelements":  "total_sub_elements",
		"createdat":         "created_at",
		"updatedat":         "updated_at",
	},
	searchExprs:   []string{"name"},
	orderIDColumn: "order_id",
}

var subElementsTable = table{
	name:    "sub_elements",
	columns: subElementColumns,
	sortColumns: map[string]string{
		"id":        "id",
		"orderid":   "order_id",
		"windowid":  "window_id",
		"element":   "element",
		"type":      "type",
		"width":     "width",
		"height":    "height",
		"createdat": "created_at",
		"updatedat": "updated_at",
	},
	searchExprs:    []string{"CAST(element AS TEXT)", "type"},
	orderIDColumn:  "order_id",
	windowIDColumn: "window_id",
}

// listStatements holds the two statements of a paginated listing. The count
// query uses a prefix of args; the page query appends LIMIT and OFFSET.
// pastEnd is set when the offset overflows, and the page query is left empty.
type listStatements struct {
	count     string
	page      string
	countArgs []any
	pageArgs  []any
	pastEnd   bool
}

func (t table) listStatements(d query.Descriptor) (listStatements, error) {
	column, ok := t.sortColumns[strings.ToLower(strings.TrimSpace(d.SortField))]
	if !ok {
		return listStatements{}, &query.UnknownFieldError{Field: d.SortField}
	}

	var (
		conds []string
		args  []any
	)
	if term := strings.TrimSpace(d.SearchTerm); term != "" && len(t.searchExprs) > 0 {
		args = append(args, "%"+escapeLike(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		alts := make([]string, 0, len(t.searchExprs))
		for _, expr := range t.searchExprs {
			alts = append(alts, expr+" ILIKE "+placeholder)
		}
		conds = append(conds, "("+strings.Join(alts, " OR ")+")")
	} else if term != "" {
		conds = append(conds, "FALSE")
	}
	if d.OrderID != nil && t.orderIDColumn != "" {
		args = append(args, *d.OrderID)
		conds = append(conds, fmt.Sprintf("%s = $%d", t.orderIDColumn, len(args)))
	}
	if d.WindowID != nil && t.windowIDColumn != "" {
		args = append(args, *d.WindowID)
		conds = append(conds, fmt.Sprintf("%s = $%d", t.windowIDColumn, len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	direction := "ASC"
	if d.Descending() {
		direction = "DESC"
	}

	count := "SELECT COUNT(*) FROM " + t.name + where
	offset, ok := d.Offset()
	if !ok {
		return listStatements{count: count, countArgs: args, pastEnd: true}, nil
	}

	pageArgs := append(append([]any{}, args...), d.PageSize, offset)
	return listStatements{
		count:     count,
		countArgs: args,
		page: fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
			t.columns, t.name, where, column, direction, len(args)+1, len(args)+2),
		pageArgs: pageArgs,
	}, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
