package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"flowapp/internal/board"
	"flowapp/internal/domain"
)

func orID(id, prefix string) string {
	if id != "" {
		return id
	}
	return prefix + "-" + uuid.NewString()[:8]
}

func (e Engine) CreateVendor(ctx context.Context, id, name string) (domain.Vendor, error) {
	v := domain.Vendor{
		ID:        orID(id, "vendor"),
		Name:      name,
		CreatedAt: e.stamp(),
	}
	if err := e.Repo.InsertVendor(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

func (e Engine) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	switch u.Role {
	case domain.RoleConsumer, domain.RoleVendor, domain.RoleRestaurantAdmin, domain.RoleSuperAdmin:
	default:
		return u, fmt.Errorf("invalid role %q", u.Role)
	}
	u.ID = orID(u.ID, "user")
	u.CreatedAt = e.stamp()
	if err := e.Repo.InsertUser(ctx, u); err != nil {
		return u, err
	}
	return u, nil
}

func (e Engine) CreateRestaurant(ctx context.Context, r domain.Restaurant) (domain.Restaurant, error) {
	if _, err := e.Repo.GetVendor(ctx, r.VendorID); err != nil {
		return r, err
	}
	if r.BoardTemplateID != nil {
		if _, err := e.Repo.GetBoardTemplate(ctx, *r.BoardTemplateID); err != nil {
			return r, err
		}
	}
	r.ID = orID(r.ID, "rest")
	r.CreatedAt = e.stamp()
	if err := e.Repo.InsertRestaurant(ctx, r); err != nil {
		return r, err
	}
	return r, nil
}

// CreateBoardTemplate validates the config before it can ever govern live
// orders. Warnings pass; hard errors do not.
func (e Engine) CreateBoardTemplate(ctx context.Context, id, vendorID, name string, cfg *board.Config) (domain.BoardTemplate, error) {
	var t domain.BoardTemplate
	if errs := cfg.Validate(); board.HasErrors(errs) {
		return t, fmt.Errorf("invalid board config: %s", board.ErrorList(errs))
	}
	raw, err := cfg.ToJSON()
	if err != nil {
		return t, err
	}
	now := e.stamp()
	t = domain.BoardTemplate{
		ID:         orID(id, "board"),
		VendorID:   vendorID,
		Name:       name,
		ConfigJSON: raw,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Repo.InsertBoardTemplate(ctx, t); err != nil {
		return t, err
	}
	return t, nil
}

func (e Engine) UpdateBoardTemplate(ctx context.Context, id, name string, cfg *board.Config) (domain.BoardTemplate, error) {
	t, err := e.Repo.GetBoardTemplate(ctx, id)
	if err != nil {
		return t, err
	}
	if errs := cfg.Validate(); board.HasErrors(errs) {
		return t, fmt.Errorf("invalid board config: %s", board.ErrorList(errs))
	}
	raw, err := cfg.ToJSON()
	if err != nil {
		return t, err
	}
	t.Name = name
	t.ConfigJSON = raw
	t.UpdatedAt = e.stamp()
	if err := e.Repo.UpdateBoardTemplate(ctx, t); err != nil {
		return t, err
	}
	return t, nil
}

func (e Engine) CreateMenuTemplate(ctx context.Context, t domain.MenuTemplate) (domain.MenuTemplate, error) {
	if _, err := e.Repo.GetVendor(ctx, t.VendorID); err != nil {
		return t, err
	}
	t.ID = orID(t.ID, "menu")
	if t.Sections == nil {
		t.Sections = []domain.MenuSection{}
	}
	if err := e.Repo.InsertMenuTemplate(ctx, t); err != nil {
		return t, err
	}
	return t, nil
}

func (e Engine) CreateMenuItem(ctx context.Context, it domain.MenuItemTemplate) (domain.MenuItemTemplate, error) {
	if _, err := e.Repo.GetVendor(ctx, it.VendorID); err != nil {
		return it, err
	}
	it.ID = orID(it.ID, "item")
	if err := e.Repo.InsertMenuItemTemplate(ctx, it); err != nil {
		return it, err
	}
	return it, nil
}
