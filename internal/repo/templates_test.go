package repo_test

import (
	"context"
	"errors"
	"testing"

	"flowapp/internal/db"
	"flowapp/internal/domain"
	"flowapp/internal/migrate"
	"flowapp/internal/repo"
)

const seedStamp = "2024-01-01T12:00:00Z"

func newTestRepo(t *testing.T) (repo.Repo, context.Context) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := repo.Repo{DB: conn}
	ctx := context.Background()
	if err := r.InsertVendor(ctx, domain.Vendor{ID: "vendor-1", Name: "Vendor", CreatedAt: seedStamp}); err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	return r, ctx
}

func TestDeleteMenuItemPrunesSections(t *testing.T) {
	r, ctx := newTestRepo(t)
	for _, it := range []domain.MenuItemTemplate{
		{ID: "item-1", VendorID: "vendor-1", Name: "Burger", Price: 8.99},
		{ID: "item-2", VendorID: "vendor-1", Name: "Fries", Price: 3.49},
	} {
		if err := r.InsertMenuItemTemplate(ctx, it); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	err := r.InsertMenuTemplate(ctx, domain.MenuTemplate{
		ID: "menu-1", VendorID: "vendor-1", Name: "Core",
		Sections: []domain.MenuSection{
			{ID: "sec-1", Title: "Mains", ItemIDs: []string{"item-1", "item-2"}},
			{ID: "sec-2", Title: "Also Mains", ItemIDs: []string{"item-1"}},
		},
	})
	if err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	if err := r.DeleteMenuItemTemplate(ctx, "item-1"); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	menu, err := r.GetMenuTemplate(ctx, "menu-1")
	if err != nil {
		t.Fatalf("get menu: %v", err)
	}
	for _, sec := range menu.Sections {
		for _, id := range sec.ItemIDs {
			if id == "item-1" {
				t.Fatalf("item-1 still referenced in section %s", sec.ID)
			}
		}
	}
	if got := menu.Sections[0].ItemIDs; len(got) != 1 || got[0] != "item-2" {
		t.Fatalf("sec-1 items: %v", got)
	}
	if got := menu.Sections[1].ItemIDs; len(got) != 0 {
		t.Fatalf("sec-2 items: %v", got)
	}
	if _, err := r.GetMenuItemTemplate(ctx, "item-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("item-1 still exists: %v", err)
	}
}

func TestDeleteMenuTemplateUnassignsRestaurants(t *testing.T) {
	r, ctx := newTestRepo(t)
	for _, m := range []domain.MenuTemplate{
		{ID: "menu-1", VendorID: "vendor-1", Name: "Core", Sections: []domain.MenuSection{}},
		{ID: "menu-2", VendorID: "vendor-1", Name: "Seasonal", Sections: []domain.MenuSection{}},
	} {
		if err := r.InsertMenuTemplate(ctx, m); err != nil {
			t.Fatalf("seed menu: %v", err)
		}
	}
	err := r.InsertRestaurant(ctx, domain.Restaurant{
		ID: "rest-1", VendorID: "vendor-1", Name: "Downtown",
		MenuTemplateIDs: []string{"menu-1", "menu-2"},
		CreatedAt:       seedStamp,
	})
	if err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	if err := r.DeleteMenuTemplate(ctx, "menu-1"); err != nil {
		t.Fatalf("delete menu: %v", err)
	}
	rest, err := r.GetRestaurant(ctx, "rest-1")
	if err != nil {
		t.Fatalf("get restaurant: %v", err)
	}
	if len(rest.MenuTemplateIDs) != 1 || rest.MenuTemplateIDs[0] != "menu-2" {
		t.Fatalf("menu ids after delete: %v", rest.MenuTemplateIDs)
	}
	if _, err := r.GetMenuTemplate(ctx, "menu-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("menu-1 still exists: %v", err)
	}
}

func TestDeleteVendorCascades(t *testing.T) {
	r, ctx := newTestRepo(t)
	if err := r.InsertUser(ctx, domain.User{
		ID: "user-1", Name: "Owner", Username: "owner", Password: "pw",
		Role: domain.RoleVendor, VendorID: "vendor-1", CreatedAt: seedStamp,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := r.InsertBoardTemplate(ctx, domain.BoardTemplate{
		ID: "board-1", VendorID: "vendor-1", Name: "Flow", ConfigJSON: "{}",
		CreatedAt: seedStamp, UpdatedAt: seedStamp,
	}); err != nil {
		t.Fatalf("seed board template: %v", err)
	}
	if err := r.InsertRestaurant(ctx, domain.Restaurant{
		ID: "rest-1", VendorID: "vendor-1", Name: "Downtown", CreatedAt: seedStamp,
	}); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	if err := r.InsertMenuItemTemplate(ctx, domain.MenuItemTemplate{
		ID: "item-1", VendorID: "vendor-1", Name: "Burger", Price: 8.99,
	}); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	if err := r.DeleteVendor(ctx, "vendor-1"); err != nil {
		t.Fatalf("delete vendor: %v", err)
	}
	if _, err := r.GetUser(ctx, "user-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("user survived: %v", err)
	}
	if _, err := r.GetBoardTemplate(ctx, "board-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("board template survived: %v", err)
	}
	if _, err := r.GetRestaurant(ctx, "rest-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("restaurant survived: %v", err)
	}
	if _, err := r.GetMenuItemTemplate(ctx, "item-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("menu item survived: %v", err)
	}
}
