package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"flowapp/internal/domain"
)

const orderCols = `id,restaurant_id,items_json,subtotal,taxes,delivery_fee,total,status,order_time,last_update_time,completion_time,rejection_reason,processed_by_user_id`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOrder(ctx context.Context, ex execer, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	_, err = ex.ExecContext(ctx, `INSERT INTO orders(`+orderCols+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.RestaurantID, string(items), o.Subtotal, o.Taxes, o.DeliveryFee, o.Total,
		o.Status, o.OrderTime, o.LastUpdateTime, o.CompletionTime,
		nullableStringPtr(o.RejectionReason), nullableStringPtr(o.ProcessedByUserID))
	return err
}

func (r Repo) InsertOrder(ctx context.Context, o domain.Order) error {
	return insertOrder(ctx, r.DB, o)
}

// InsertOrderTx inserts inside the caller's transaction so the order and its
// creation event commit together.
func (r Repo) InsertOrderTx(ctx context.Context, tx *sql.Tx, o domain.Order) error {
	return insertOrder(ctx, tx, o)
}

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	var items string
	var completion sql.NullInt64
	var reason, processedBy sql.NullString
	err := row.Scan(&o.ID, &o.RestaurantID, &items, &o.Subtotal, &o.Taxes, &o.DeliveryFee, &o.Total,
		&o.Status, &o.OrderTime, &o.LastUpdateTime, &completion, &reason, &processedBy)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return o, fmt.Errorf("order %s items: %w", o.ID, err)
	}
	if completion.Valid {
		v := int(completion.Int64)
		o.CompletionTime = &v
	}
	if reason.Valid {
		o.RejectionReason = &reason.String
	}
	if processedBy.Valid {
		o.ProcessedByUserID = &processedBy.String
	}
	return o, nil
}

func (r Repo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id=?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	return o, err
}

func (r Repo) ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+orderCols+` FROM orders WHERE restaurant_id=? ORDER BY order_time, id`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

// StatusChange carries the fields stamped alongside an order status update.
type StatusChange struct {
	NewStatus       string
	UpdateTime      string
	CompletionTime  *int
	RejectionReason *string
	ActorID         string
}

// UpdateOrderStatusTx is the only order-status write path. The update is
// guarded by the last_update_time the caller read, so of two racing writers
// exactly one succeeds and the other observes ErrConflict.
func (r Repo) UpdateOrderStatusTx(ctx context.Context, tx *sql.Tx, orderID, expectedUpdateTime string, ch StatusChange) error {
	res, err := tx.ExecContext(ctx, `UPDATE orders
SET status=?, last_update_time=?, completion_time=COALESCE(?,completion_time),
    rejection_reason=COALESCE(?,rejection_reason), processed_by_user_id=COALESCE(?,processed_by_user_id)
WHERE id=? AND last_update_time=?`,
		ch.NewStatus, ch.UpdateTime, ch.CompletionTime, nullableStringPtr(ch.RejectionReason), nullable(ch.ActorID),
		orderID, expectedUpdateTime)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id=?`, orderID).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
