package models

import "time"

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool    `json:"success"`
	Result  any     `json:"result"`
	Message *string `json:"message"`
}

// PageResult is the result body of list endpoints.
type PageResult[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

type OrderDto struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	State     string      `json:"state"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Windows   []WindowDto `json:"windows"`
}

type WindowDto struct {
	ID                int64           `json:"id"`
	OrderID           int64           `json:"orderId"`
	Name              string          `json:"name"`
	QuantityOfWindows int             `json:"quantityOfWindows"`
	TotalSubElements  int             `json:"totalSubElements"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	SubElements       []SubElementDto `json:"subElements"`
}

type SubElementDto struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"orderId"`
	WindowID  int64     `json:"windowId"`
	Element   int       `json:"element"`
	Type      string    `json:"type"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
