package models

import (
	"strconv"
	"time"

	"sales-order-backend/internal/query"
)

type Order struct {
	ID        int64
	Name      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Window struct {
	ID                int64
	OrderID           int64
	Name              string
	QuantityOfWindows int
	// TotalSubElements is maintained by the store; clients never set it.
	TotalSubElements int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type SubElement struct {
	ID        int64
	OrderID   int64
	WindowID  int64
	Element   int
	Type      string
	Width     float64
	Height    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sort keys are lower-cased JSON names; query.Fields resolves them
// case-insensitively, so "updatedAt" and "UpdatedAt" both work.

var OrderQuerySpec = query.Spec[Order]{
	Fields: query.Fields[Order]{
		"id":        query.IntField(func(o Order) int64 { return o.ID }),
		"name":      query.StringField(func(o Order) string { return o.Name }),
		"state":     query.StringField(func(o Order) string { return o.State }),
		"createdat": query.TimeField(func(o Order) time.Time { return o.CreatedAt }),
		"updatedat": query.TimeField(func(o Order) time.Time { return o.UpdatedAt }),
	},
	Search: func(o Order) []string { return []string{o.Name, o.State} },
}

var WindowQuerySpec = query.Spec[Window]{
	Fields: query.Fields[Window]{
		"id":                query.IntField(func(w Window) int64 { return w.ID }),
		"orderid":           query.IntField(func(w Window) int64 { return w.OrderID }),
		"name":              query.StringField(func(w Window) string { return w.Name }),
		"quantityofwindows": query.IntField(func(w Window) int64 { return int64(w.QuantityOfWindows) }),
		"totalsubelements":  query.IntField(func(w Window) int64 { return int64(w.TotalSubElements) }),
		"createdat":         query.TimeField(func(w Window) time.Time { return w.CreatedAt }),
		"updatedat":         query.TimeField(func(w Window) time.Time { return w.UpdatedAt }),
	},
	Search: func(w Window) []string { return []string{w.Name} },
	Filters: func(d query.Descriptor) []func(Window) bool {
		var preds []func(Window) bool
		if d.OrderID != nil {
			id := *d.OrderID
			preds = append(preds, func(w Window) bool { return w.OrderID == id })
		}
		return preds
	},
}

var SubElementQuerySpec = query.Spec[SubElement]{
	Fields: query.Fields[SubElement]{
		"id":        query.IntField(func(s SubElement) int64 { return s.ID }),
		"orderid":   query.IntField(func(s SubElement) int64 { return s.OrderID }),
		"windowid":  query.IntField(func(s SubElement) int64 { return s.WindowID }),
		"element":   query.IntField(func(s SubElement) int64 { return int64(s.Element) }),
		"type":      query.StringField(func(s SubElement) string { return s.Type }),
		"width":     query.FloatField(func(s SubElement) float64 { return s.Width }),
		"height":    query.FloatField(func(s SubElement) float64 { return s.Height }),
		"createdat": query.TimeField(func(s SubElement) time.Time { return s.CreatedAt }),
		"updatedat": query.TimeField(func(s SubElement) time.Time { return s.UpdatedAt }),
	},
	Search: func(s SubElement) []string { return []string{strconv.Itoa(s.Element), s.Type} },
	Filters: func(d query.Descriptor) []func(SubElement) bool {
		var preds []func(SubElement) bool
		if d.OrderID != nil {
			id := *d.OrderID
			preds = append(preds, func(s SubElement) bool { return s.OrderID == id })
		}
		if d.WindowID != nil {
			id := *d.WindowID
			preds = append(preds, func(s SubElement) bool { return s.WindowID == id })
		}
		return preds
	},
}
