package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"flowapp/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a concurrent status write; the caller should
	// re-fetch the order and retry.
	ErrConflict = errors.New("conflict: order was updated concurrently")
)

// --- vendors ---

func (r Repo) InsertVendor(ctx context.Context, v domain.Vendor) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO vendors(id,name,created_at) VALUES (?,?,?)`,
		v.ID, v.Name, v.CreatedAt)
	return err
}

func (r Repo) GetVendor(ctx context.Context, id string) (domain.Vendor, error) {
	var v domain.Vendor
	err := r.DB.QueryRowContext(ctx, `SELECT id,name,created_at FROM vendors WHERE id=?`, id).
		Scan(&v.ID, &v.Name, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return v, ErrNotFound
	}
	return v, err
}

func (r Repo) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,created_at FROM vendors ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (r Repo) UpdateVendor(ctx context.Context, v domain.Vendor) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE vendors SET name=? WHERE id=?`, v.Name, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVendor removes the vendor and everything it owns: restaurants,
// users, board templates, menu templates, and menu items. Orders are kept
// as history.
func (r Repo) DeleteVendor(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `DELETE FROM vendors WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	for _, q := range []string{
		`DELETE FROM restaurants WHERE vendor_id=?`,
		`DELETE FROM users WHERE vendor_id=?`,
		`DELETE FROM board_templates WHERE vendor_id=?`,
		`DELETE FROM menu_templates WHERE vendor_id=?`,
		`DELETE FROM menu_item_templates WHERE vendor_id=?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// --- users ---

func (r Repo) InsertUser(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO users(id,name,username,password,role,vendor_id,restaurant_id,created_at) VALUES (?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Username, u.Password, u.Role, nullable(u.VendorID), nullable(u.RestaurantID), u.CreatedAt)
	return err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Password, &u.Role, &u.VendorID, &u.RestaurantID, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

const userCols = `id,name,username,password,role,COALESCE(vendor_id,''),COALESCE(restaurant_id,''),created_at`

func (r Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=?`, id))
}

func (r Repo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username=?`, username))
}

func (r Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Password, &u.Role, &u.VendorID, &u.RestaurantID, &u.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r Repo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET name=?,username=?,password=?,role=?,vendor_id=?,restaurant_id=? WHERE id=?`,
		u.Name, u.Username, u.Password, u.Role, nullable(u.VendorID), nullable(u.RestaurantID), u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- restaurants ---

func (r Repo) InsertRestaurant(ctx context.Context, rest domain.Restaurant) error {
	menuIDs, err := json.Marshal(rest.MenuTemplateIDs)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO restaurants(id,vendor_id,name,description,board_template_id,menu_template_ids,created_at) VALUES (?,?,?,?,?,?,?)`,
		rest.ID, rest.VendorID, rest.Name, nullable(rest.Description), nullableStringPtr(rest.BoardTemplateID), string(menuIDs), rest.CreatedAt)
	return err
}

func (r Repo) scanRestaurant(rows interface{ Scan(...any) error }) (domain.Restaurant, error) {
	var rest domain.Restaurant
	var boardID sql.NullString
	var menuIDs string
	err := rows.Scan(&rest.ID, &rest.VendorID, &rest.Name, &rest.Description, &boardID, &menuIDs, &rest.CreatedAt)
	if err != nil {
		return rest, err
	}
	if boardID.Valid {
		rest.BoardTemplateID = &boardID.String
	}
	if menuIDs != "" {
		if err := json.Unmarshal([]byte(menuIDs), &rest.MenuTemplateIDs); err != nil {
			return rest, fmt.Errorf("restaurant %s menu ids: %w", rest.ID, err)
		}
	}
	return rest, nil
}

const restaurantCols = `id,vendor_id,name,COALESCE(description,''),board_template_id,COALESCE(menu_template_ids,'[]'),created_at`

func (r Repo) GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+restaurantCols+` FROM restaurants WHERE id=?`, id)
	rest, err := r.scanRestaurant(row)
	if err == sql.ErrNoRows {
		return rest, ErrNotFound
	}
	return rest, err
}

func (r Repo) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+restaurantCols+` FROM restaurants ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Restaurant
	for rows.Next() {
		rest, err := r.scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rest)
	}
	return res, rows.Err()
}

func (r Repo) UpdateRestaurant(ctx context.Context, rest domain.Restaurant) error {
	menuIDs, err := json.Marshal(rest.MenuTemplateIDs)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE restaurants SET name=?,description=?,board_template_id=?,menu_template_ids=? WHERE id=?`,
		rest.Name, nullable(rest.Description), nullableStringPtr(rest.BoardTemplateID), string(menuIDs), rest.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteRestaurant(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM restaurants WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
