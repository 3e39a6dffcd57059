package models

// Create and update payloads. Validation rules live in the validate tags and
// are enforced by the services package, not by gin binding, so that every
// failure comes back as a field -> message map.

type OrderCreateRequest struct {
	Name    string                `json:"name" validate:"notblank,max=255"`
	State   string                `json:"state" validate:"notblank,max=50"`
	Windows []NestedWindowRequest `json:"windows,omitempty" validate:"dive"`
}

type OrderUpdateRequest struct {
	ID    int64  `json:"id" validate:"required"`
	Name  string `json:"name" validate:"notblank,max=255"`
	State string `json:"state" validate:"notblank,max=50"`
}

// NestedWindowRequest is a window created together with its order.
type NestedWindowRequest struct {
	Name              string                    `json:"name" validate:"notblank,max=255"`
	QuantityOfWindows int                       `json:"quantityOfWindows" validate:"gt=0"`
	SubElements       []NestedSubElementRequest `json:"subElements,omitempty" validate:"dive"`
}

type WindowCreateRequest struct {
	OrderID           int64                     `json:"orderId" validate:"required"`
	Name              string                    `json:"name" validate:"notblank,max=255"`
	QuantityOfWindows int                       `json:"quantityOfWindows" validate:"gt=0"`
	SubElements       []NestedSubElementRequest `json:"subElements,omitempty" validate:"dive"`
}

type WindowUpdateRequest struct {
	ID                int64  `json:"id" validate:"required"`
	OrderID           int64  `json:"orderId" validate:"required"`
	Name              string `json:"name" validate:"notblank,max=255"`
	QuantityOfWindows int    `json:"quantityOfWindows" validate:"gt=0"`
}

// NestedSubElementRequest is a sub element created together with its window.
type NestedSubElementRequest struct {
	Element int     `json:"element" validate:"gte=0"`
	Type    string  `json:"type" validate:"notblank,max=50"`
	Width   float64 `json:"width" validate:"gt=0"`
	Height  float64 `json:"height" validate:"gt=0"`
}

type SubElementCreateRequest struct {
	OrderID  int64   `json:"orderId" validate:"required"`
	WindowID int64   `json:"windowId" validate:"required"`
	Element  int     `json:"element" validate:"gte=0"`
	Type     string  `json:"type" validate:"notblank,max=50"`
	Width    float64 `json:"width" validate:"gt=0"`
	Height   float64 `json:"height" validate:"gt=0"`
}

type SubElementUpdateRequest struct {
	ID       int64   `json:"id" validate:"required"`
	OrderID  int64   `json:"orderId" validate:"required"`
	WindowID int64   `json:"windowId" validate:"required"`
	Element  int     `json:"element" validate:"gte=0"`
	Type     string  `json:"type" validate:"notblank,max=50"`
	Width    float64 `json:"width" validate:"gt=0"`
	Height   float64 `json:"height" validate:"gt=0"`
}

func (r OrderUpdateRequest) BodyID() int64      { return r.ID }
func (r WindowUpdateRequest) BodyID() int64     { return r.ID }
func (r SubElementUpdateRequest) BodyID() int64 { return r.ID }
