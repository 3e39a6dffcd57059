package models

import "strings"

func ToSubElementDto(s SubElement) SubElementDto {
	return SubElementDto{
		ID:        s.ID,
		OrderID:   s.OrderID,
		WindowID:  s.WindowID,
		Element:   s.Element,
		Type:      s.Type,
		Width:     s.Width,
		Height:    s.Height,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToWindowDto maps w and attaches subElements, which must belong to w.
func ToWindowDto(w Window, subElements []SubElement) WindowDto {
	dto := WindowDto{
		ID:                w.ID,
		OrderID:           w.OrderID,
		Name:              w.Name,
		QuantityOfWindows: w.QuantityOfWindows,
		TotalSubElements:  w.TotalSubElements,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
		SubElements:       make([]SubElementDto, 0, len(subElements)),
	}
	for _, s := range subElements {
		dto.SubElements = append(dto.SubElements, ToSubElementDto(s))
	}
	return dto
}

// ToOrderDto maps o and attaches its windows.
func ToOrderDto(o Order, windows []WindowDto) OrderDto {
	if windows == nil {
		windows = []WindowDto{}
	}
	return OrderDto{
		ID:        o.ID,
		Name:      o.Name,
		State:     o.State,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Windows:   windows,
	}
}

func (r OrderCreateRequest) Entity() Order {
	return Order{Name: strings.TrimSpace(r.Name), State: strings.TrimSpace(r.State)}
}

func (r OrderUpdateRequest) Apply(o Order) Order {
	o.Name = strings.TrimSpace(r.Name)
	o.State = strings.TrimSpace(r.State)
	return o
}

func (r NestedWindowRequest) Entity(orderID int64) Window {
	return Window{OrderID: orderID, Name: strings.TrimSpace(r.Name), QuantityOfWindows: r.QuantityOfWindows}
}

func (r WindowCreateRequest) Entity() Window {
	return Window{OrderID: r.OrderID, Name: strings.TrimSpace(r.Name), QuantityOfWindows: r.QuantityOfWindows}
}

// Apply copies client-settable fields only; TotalSubElements is kept.
func (r WindowUpdateRequest) Apply(w Window) Window {
	w.OrderID = r.OrderID
	w.Name = strings.TrimSpace(r.Name)
	w.QuantityOfWindows = r.QuantityOfWindows
	return w
}

func (r NestedSubElementRequest) Entity(orderID, windowID int64) SubElement {
	return SubElement{
		OrderID:  orderID,
		WindowID: windowID,
		Element:  r.Element,
		Type:     strings.TrimSpace(r.Type),
		Width:    r.Width,
		Height:   r.Height,
	}
}

func (r SubElementCreateRequest) Entity() SubElement {
	return SubElement{
		OrderID:  r.OrderID,
		WindowID: r.WindowID,
		Element:  r.Element,
		Type:     strings.TrimSpace(r.Type),
		Width:    r.Width,
		Height:   r.Height,
	}
}

func (r SubElementUpdateRequest) Apply(s SubElement) SubElement {
	s.OrderID = r.OrderID
	s.WindowID = r.WindowID
	s.Element = r.Element
	s.Type = strings.TrimSpace(r.Type)
	s.Width = r.Width
	s.Height = r.Height
	return s
}
