package app

import (
	"context"
	"errors"
	"fmt"

	"flowapp/internal/board"
	"flowapp/internal/domain"
	"flowapp/internal/engine"
	"flowapp/internal/repo"
)

// Seed loads the demo dataset: two vendor groups, their restaurants, menus,
// and login accounts. Idempotent; running it twice changes nothing.
func Seed(ctx context.Context, e engine.Engine) error {
	if _, err := e.Repo.GetVendor(ctx, "vendor-1"); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	for _, v := range []struct{ id, name string }{
		{"vendor-1", "Burger Queen Group"},
		{"vendor-2", "Pizza Palace Inc."},
	} {
		if _, err := e.CreateVendor(ctx, v.id, v.name); err != nil {
			return fmt.Errorf("seed vendor %s: %w", v.id, err)
		}
	}

	boardTpl, err := e.CreateBoardTemplate(ctx, "board-1", "vendor-1", "Standard Pickup Flow", board.Default())
	if err != nil {
		return fmt.Errorf("seed board template: %w", err)
	}
	if _, err := e.CreateBoardTemplate(ctx, "board-2", "vendor-2", "Pizza Palace Flow", board.Default()); err != nil {
		return fmt.Errorf("seed board template: %w", err)
	}

	items := []domain.MenuItemTemplate{
		{ID: "item-1", VendorID: "vendor-1", Name: "Classic Queen Burger", Description: "Beef patty, lettuce, tomato, house sauce", Price: 8.99},
		{ID: "item-2", VendorID: "vendor-1", Name: "Cheese Royale", Description: "Double cheddar, caramelized onions", Price: 10.49},
		{ID: "item-3", VendorID: "vendor-1", Name: "Crispy Fries", Description: "Sea salt, skin on", Price: 3.49},
		{ID: "item-4", VendorID: "vendor-1", Name: "Vanilla Shake", Price: 4.99},
		{ID: "item-5", VendorID: "vendor-2", Name: "Margherita", Description: "San Marzano tomatoes, fresh mozzarella, basil", Price: 12.00},
		{ID: "item-6", VendorID: "vendor-2", Name: "Pepperoni", Description: "Double pepperoni, oregano", Price: 14.00},
		{ID: "item-7", VendorID: "vendor-2", Name: "Garlic Knots", Price: 5.50},
	}
	for _, it := range items {
		if _, err := e.CreateMenuItem(ctx, it); err != nil {
			return fmt.Errorf("seed menu item %s: %w", it.ID, err)
		}
	}

	menus := []domain.MenuTemplate{
		{
			ID: "menu-1", VendorID: "vendor-1", Name: "Burger Queen Core Menu",
			Sections: []domain.MenuSection{
				{ID: "sec-1", Title: "Burgers", ItemIDs: []string{"item-1", "item-2"}},
				{ID: "sec-2", Title: "Sides & Drinks", ItemIDs: []string{"item-3", "item-4"}},
			},
		},
		{
			ID: "menu-2", VendorID: "vendor-2", Name: "Pizza Palace Menu",
			Sections: []domain.MenuSection{
				{ID: "sec-3", Title: "Pizzas", ItemIDs: []string{"item-5", "item-6"}},
				{ID: "sec-4", Title: "Starters", ItemIDs: []string{"item-7"}},
			},
		},
	}
	for _, m := range menus {
		if _, err := e.CreateMenuTemplate(ctx, m); err != nil {
			return fmt.Errorf("seed menu template %s: %w", m.ID, err)
		}
	}

	restaurants := []domain.Restaurant{
		{
			ID: "rest-1", VendorID: "vendor-1", Name: "Burger Queen Downtown",
			Description:     "Flagship location",
			BoardTemplateID: &boardTpl.ID,
			MenuTemplateIDs: []string{"menu-1"},
		},
		{
			ID: "rest-2", VendorID: "vendor-1", Name: "Burger Queen Riverside",
			MenuTemplateIDs: []string{"menu-1"},
		},
		{
			ID: "rest-3", VendorID: "vendor-2", Name: "Pizza Palace Central",
			MenuTemplateIDs: []string{"menu-2"},
		},
	}
	for _, r := range restaurants {
		if _, err := e.CreateRestaurant(ctx, r); err != nil {
			return fmt.Errorf("seed restaurant %s: %w", r.ID, err)
		}
	}

	users := []domain.User{
		{ID: "user-1", Name: "Platform Admin", Username: "admin", Password: "admin", Role: domain.RoleSuperAdmin},
		{ID: "user-2", Name: "Barbara Queen", Username: "bqueen", Password: "password", Role: domain.RoleVendor, VendorID: "vendor-1"},
		{ID: "user-3", Name: "Paolo Palace", Username: "ppalace", Password: "password", Role: domain.RoleVendor, VendorID: "vendor-2"},
		{ID: "user-4", Name: "Dana Downtown", Username: "ddowntown", Password: "password", Role: domain.RoleRestaurantAdmin, VendorID: "vendor-1", RestaurantID: "rest-1"},
		{ID: "user-5", Name: "Casey Consumer", Username: "casey", Password: "password", Role: domain.RoleConsumer},
	}
	for _, u := range users {
		if _, err := e.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	return nil
}
