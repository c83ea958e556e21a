package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"flowapp/internal/domain"
)

// --- board templates ---

func (r Repo) InsertBoardTemplate(ctx context.Context, t domain.BoardTemplate) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO board_templates(id,vendor_id,name,config_json,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		t.ID, t.VendorID, t.Name, t.ConfigJSON, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r Repo) GetBoardTemplate(ctx context.Context, id string) (domain.BoardTemplate, error) {
	var t domain.BoardTemplate
	err := r.DB.QueryRowContext(ctx, `SELECT id,vendor_id,name,config_json,created_at,updated_at FROM board_templates WHERE id=?`, id).
		Scan(&t.ID, &t.VendorID, &t.Name, &t.ConfigJSON, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

func (r Repo) ListBoardTemplates(ctx context.Context, vendorID string) ([]domain.BoardTemplate, error) {
	query := `SELECT id,vendor_id,name,config_json,created_at,updated_at FROM board_templates`
	args := []any{}
	if vendorID != "" {
		query += ` WHERE vendor_id=?`
		args = append(args, vendorID)
	}
	query += ` ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.BoardTemplate
	for rows.Next() {
		var t domain.BoardTemplate
		if err := rows.Scan(&t.ID, &t.VendorID, &t.Name, &t.ConfigJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) UpdateBoardTemplate(ctx context.Context, t domain.BoardTemplate) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE board_templates SET name=?,config_json=?,updated_at=? WHERE id=?`,
		t.Name, t.ConfigJSON, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBoardTemplate removes the template and unlinks it from every
// restaurant that referenced it, in one transaction.
func (r Repo) DeleteBoardTemplate(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `DELETE FROM board_templates WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `UPDATE restaurants SET board_template_id=NULL WHERE board_template_id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// --- menu templates ---

func (r Repo) InsertMenuTemplate(ctx context.Context, t domain.MenuTemplate) error {
	sections, err := json.Marshal(t.Sections)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO menu_templates(id,vendor_id,name,sections_json) VALUES (?,?,?,?)`,
		t.ID, t.VendorID, t.Name, string(sections))
	return err
}

func (r Repo) GetMenuTemplate(ctx context.Context, id string) (domain.MenuTemplate, error) {
	var t domain.MenuTemplate
	var sections string
	err := r.DB.QueryRowContext(ctx, `SELECT id,vendor_id,name,sections_json FROM menu_templates WHERE id=?`, id).
		Scan(&t.ID, &t.VendorID, &t.Name, &sections)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal([]byte(sections), &t.Sections); err != nil {
		return t, fmt.Errorf("menu template %s sections: %w", t.ID, err)
	}
	return t, nil
}

func (r Repo) ListMenuTemplates(ctx context.Context, vendorID string) ([]domain.MenuTemplate, error) {
	query := `SELECT id,vendor_id,name,sections_json FROM menu_templates`
	args := []any{}
	if vendorID != "" {
		query += ` WHERE vendor_id=?`
		args = append(args, vendorID)
	}
	query += ` ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.MenuTemplate
	for rows.Next() {
		var t domain.MenuTemplate
		var sections string
		if err := rows.Scan(&t.ID, &t.VendorID, &t.Name, &sections); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sections), &t.Sections); err != nil {
			return nil, fmt.Errorf("menu template %s sections: %w", t.ID, err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) UpdateMenuTemplate(ctx context.Context, t domain.MenuTemplate) error {
	sections, err := json.Marshal(t.Sections)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE menu_templates SET name=?,sections_json=? WHERE id=?`,
		t.Name, string(sections), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMenuTemplate removes the template and unassigns it from restaurants.
func (r Repo) DeleteMenuTemplate(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `DELETE FROM menu_templates WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, COALESCE(menu_template_ids,'[]') FROM restaurants`)
	if err != nil {
		return err
	}
	type patch struct {
		id  string
		ids []string
	}
	var patches []patch
	for rows.Next() {
		var rid, raw string
		if err := rows.Scan(&rid, &raw); err != nil {
			rows.Close()
			return err
		}
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			rows.Close()
			return err
		}
		kept := ids[:0]
		changed := false
		for _, mid := range ids {
			if mid == id {
				changed = true
				continue
			}
			kept = append(kept, mid)
		}
		if changed {
			patches = append(patches, patch{id: rid, ids: kept})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, p := range patches {
		b, err := json.Marshal(p.ids)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE restaurants SET menu_template_ids=? WHERE id=?`, string(b), p.id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// --- menu item templates ---

func (r Repo) InsertMenuItemTemplate(ctx context.Context, it domain.MenuItemTemplate) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO menu_item_templates(id,vendor_id,name,description,price,image_url) VALUES (?,?,?,?,?,?)`,
		it.ID, it.VendorID, it.Name, nullable(it.Description), it.Price, nullable(it.ImageURL))
	return err
}

func (r Repo) GetMenuItemTemplate(ctx context.Context, id string) (domain.MenuItemTemplate, error) {
	var it domain.MenuItemTemplate
	err := r.DB.QueryRowContext(ctx, `SELECT id,vendor_id,name,COALESCE(description,''),price,COALESCE(image_url,'') FROM menu_item_templates WHERE id=?`, id).
		Scan(&it.ID, &it.VendorID, &it.Name, &it.Description, &it.Price, &it.ImageURL)
	if err == sql.ErrNoRows {
		return it, ErrNotFound
	}
	return it, err
}

func (r Repo) ListMenuItemTemplates(ctx context.Context, vendorID string) ([]domain.MenuItemTemplate, error) {
	query := `SELECT id,vendor_id,name,COALESCE(description,''),price,COALESCE(image_url,'') FROM menu_item_templates`
	args := []any{}
	if vendorID != "" {
		query += ` WHERE vendor_id=?`
		args = append(args, vendorID)
	}
	query += ` ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.MenuItemTemplate
	for rows.Next() {
		var it domain.MenuItemTemplate
		if err := rows.Scan(&it.ID, &it.VendorID, &it.Name, &it.Description, &it.Price, &it.ImageURL); err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r Repo) UpdateMenuItemTemplate(ctx context.Context, it domain.MenuItemTemplate) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE menu_item_templates SET name=?,description=?,price=?,image_url=? WHERE id=?`,
		it.Name, nullable(it.Description), it.Price, nullable(it.ImageURL), it.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMenuItemTemplate removes the item and prunes its id from every menu
// template section referencing it.
func (r Repo) DeleteMenuItemTemplate(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `DELETE FROM menu_item_templates WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, sections_json FROM menu_templates`)
	if err != nil {
		return err
	}
	type patch struct {
		id       string
		sections []domain.MenuSection
	}
	var patches []patch
	for rows.Next() {
		var mid, raw string
		if err := rows.Scan(&mid, &raw); err != nil {
			rows.Close()
			return err
		}
		var sections []domain.MenuSection
		if err := json.Unmarshal([]byte(raw), &sections); err != nil {
			rows.Close()
			return err
		}
		changed := false
		for i := range sections {
			kept := sections[i].ItemIDs[:0]
			for _, iid := range sections[i].ItemIDs {
				if iid == id {
					changed = true
					continue
				}
				kept = append(kept, iid)
			}
			sections[i].ItemIDs = kept
		}
		if changed {
			patches = append(patches, patch{id: mid, sections: sections})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, p := range patches {
		b, err := json.Marshal(p.sections)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE menu_templates SET sections_json=? WHERE id=?`, string(b), p.id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
