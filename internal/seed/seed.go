// Package seed loads a small sample order for local development.
package seed

import (
	"context"
	"fmt"

	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
	"sales-order-backend/internal/services"
)

// Fixture is the sample order: one window holding a frame and a pane.
func Fixture() models.OrderCreateRequest {
	return models.OrderCreateRequest{
		Name:  "Test Order",
		State: "Created",
		Windows: []models.NestedWindowRequest{{
			Name:              "Window 1",
			QuantityOfWindows: 4,
			SubElements: []models.NestedSubElementRequest{
				{Element: 1, Type: "Frame", Width: 100, Height: 100},
				{Element: 2, Type: "Glass", Width: 100, Height: 100},
			},
		}},
	}
}

// Run creates the fixture unless an order with the same name already exists.
// It reports whether anything was created.
func Run(ctx context.Context, orders services.OrderCRUD) (bool, error) {
	fixture := Fixture()

	d := query.Default()
	d.SearchTerm = fixture.Name
	existing, err := orders.List(ctx, d)
	if err != nil {
		return false, fmt.Errorf("failed to look for seed data: %w", err)
	}
	for _, o := range existing.Items {
		if o.Name == fixture.Name {
			return false, nil
		}
	}

	if _, err := orders.Create(ctx, fixture); err != nil {
		return false, fmt.Errorf("failed to create seed order: %w", err)
	}
	return true, nil
}
