package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"flowapp/internal/board"
	"flowapp/internal/domain"
	"flowapp/internal/events"
	"flowapp/internal/repo"
)

// Engine orchestrates order mutations. It is the only component allowed to
// change an order's status, and every mutation commits its audit event in the
// same transaction.
type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Now    func() time.Time
}

// New wires an Engine over an open database.
func New(conn *sql.DB) Engine {
	return Engine{
		DB:     conn,
		Repo:   repo.Repo{DB: conn},
		Events: events.Writer{DB: conn},
		Now:    time.Now,
	}
}

var (
	ErrDenied               = errors.New("transition not allowed")
	ErrReasonRequired       = errors.New("a rejection reason is required")
	ErrConfirmationRequired = errors.New("backward move requires confirmation")
	ErrUnknownStatus        = errors.New("unknown status")
	ErrUnknownColumn        = errors.New("unknown column")
	ErrEmptyOrder           = errors.New("order has no items")
)

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// stamp formats timestamps for storage. Nanosecond precision matters: the
// optimistic-concurrency guard compares last_update_time for equality, and two
// writes within the same second must still produce distinct stamps.
func (e Engine) stamp() string {
	return e.now().UTC().Format(time.RFC3339Nano)
}

// BoardConfig loads the workflow config governing a restaurant's orders. A
// restaurant with no board template assigned falls back to the standard
// workflow.
func (e Engine) BoardConfig(ctx context.Context, restaurantID string) (*board.Config, error) {
	rest, err := e.Repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if rest.BoardTemplateID == nil {
		return board.Default(), nil
	}
	tpl, err := e.Repo.GetBoardTemplate(ctx, *rest.BoardTemplateID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return board.Default(), nil
		}
		return nil, err
	}
	return board.FromJSON(tpl.ConfigJSON)
}

// CheckoutDraft is the consumer's cart at the moment of checkout.
type CheckoutDraft struct {
	RestaurantID string
	Items        []domain.OrderItem
}

const (
	taxRate     = 0.08
	deliveryFee = 5.00
)

// Checkout converts a cart into a pending order. Payment always succeeds;
// there is no processor behind this. Item names and prices are snapshotted so
// later menu edits never change what the consumer agreed to pay.
func (e Engine) Checkout(ctx context.Context, draft CheckoutDraft, actorID string) (domain.Order, error) {
	var o domain.Order
	if len(draft.Items) == 0 {
		return o, ErrEmptyOrder
	}
	if _, err := e.Repo.GetRestaurant(ctx, draft.RestaurantID); err != nil {
		return o, err
	}
	var subtotal float64
	for i, it := range draft.Items {
		if it.Quantity <= 0 {
			return o, fmt.Errorf("item %d: quantity must be positive", i)
		}
		subtotal += it.Price * float64(it.Quantity)
	}
	now := e.stamp()
	taxes := round2(subtotal * taxRate)
	o = domain.Order{
		ID:             "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
		RestaurantID:   draft.RestaurantID,
		Items:          draft.Items,
		Subtotal:       round2(subtotal),
		Taxes:          taxes,
		DeliveryFee:    deliveryFee,
		Total:          round2(subtotal + taxes + deliveryFee),
		Status:         board.StatusPending,
		OrderTime:      now,
		LastUpdateTime: now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return o, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertOrderTx(ctx, tx, o); err != nil {
		return o, err
	}
	err = e.Events.Append(ctx, tx, "order.created", o.RestaurantID, "order", o.ID, actorID, events.EventPayload{
		"status": o.Status,
		"total":  o.Total,
	})
	if err != nil {
		return o, err
	}
	if err := tx.Commit(); err != nil {
		return o, err
	}
	return o, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RequestTransition decides what moving an order to the target status would
// take, without mutating anything. The caller uses the decision to prompt for
// a reason or a confirmation before applying.
func (e Engine) RequestTransition(ctx context.Context, orderID, targetStatusID string) (board.Decision, error) {
	o, err := e.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return board.Decision{}, err
	}
	cfg, err := e.BoardConfig(ctx, o.RestaurantID)
	if err != nil {
		return board.Decision{}, err
	}
	if !cfg.HasStatus(targetStatusID) {
		return board.Decision{}, fmt.Errorf("%w: %q", ErrUnknownStatus, targetStatusID)
	}
	return board.Decide(cfg, o.Status, targetStatusID), nil
}

// RequestDrop decides what dropping an order onto a board column would take.
func (e Engine) RequestDrop(ctx context.Context, orderID, columnID string) (board.Decision, error) {
	o, err := e.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return board.Decision{}, err
	}
	cfg, err := e.BoardConfig(ctx, o.RestaurantID)
	if err != nil {
		return board.Decision{}, err
	}
	col, ok := cfg.ColumnByID(columnID)
	if !ok {
		return board.Decision{}, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	return board.ResolveDrop(cfg, o.Status, col), nil
}

// ApplyOpts parameterizes a status change. Reason satisfies a RequiresReason
// decision; Force satisfies a RequiresConfirmation one.
type ApplyOpts struct {
	OrderID        string
	TargetStatusID string
	Reason         string
	ActorID        string
	Force          bool
}

// ApplyTransition re-decides and applies a status change. The decision is
// recomputed from the stored order, never trusted from the client, so a stale
// dashboard cannot force an illegal move. Returns the updated order.
func (e Engine) ApplyTransition(ctx context.Context, opts ApplyOpts) (domain.Order, error) {
	o, err := e.Repo.GetOrder(ctx, opts.OrderID)
	if err != nil {
		return o, err
	}
	cfg, err := e.BoardConfig(ctx, o.RestaurantID)
	if err != nil {
		return o, err
	}
	if !cfg.HasStatus(opts.TargetStatusID) {
		return o, fmt.Errorf("%w: %q", ErrUnknownStatus, opts.TargetStatusID)
	}
	decision := board.Decide(cfg, o.Status, opts.TargetStatusID)
	return e.apply(ctx, o, decision, opts)
}

// ApplyDrop resolves a column drop and applies the resulting move.
func (e Engine) ApplyDrop(ctx context.Context, orderID, columnID, reason, actorID string, force bool) (domain.Order, error) {
	o, err := e.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return o, err
	}
	cfg, err := e.BoardConfig(ctx, o.RestaurantID)
	if err != nil {
		return o, err
	}
	col, ok := cfg.ColumnByID(columnID)
	if !ok {
		return o, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	decision := board.ResolveDrop(cfg, o.Status, col)
	return e.apply(ctx, o, decision, ApplyOpts{
		OrderID:        orderID,
		TargetStatusID: decision.TargetStatusID,
		Reason:         reason,
		ActorID:        actorID,
		Force:          force,
	})
}

// ConfirmRejection is the reason-gated path: it moves the order to rejected
// carrying the reason the vendor picked.
func (e Engine) ConfirmRejection(ctx context.Context, orderID, reasonMessage, actorID string) (domain.Order, error) {
	return e.ApplyTransition(ctx, ApplyOpts{
		OrderID:        orderID,
		TargetStatusID: board.StatusRejected,
		Reason:         reasonMessage,
		ActorID:        actorID,
	})
}

func (e Engine) apply(ctx context.Context, o domain.Order, decision board.Decision, opts ApplyOpts) (domain.Order, error) {
	switch decision.Kind {
	case board.Allowed:
	case board.RequiresReason:
		if strings.TrimSpace(opts.Reason) == "" {
			return o, ErrReasonRequired
		}
	case board.RequiresConfirmation:
		if !opts.Force {
			return o, ErrConfirmationRequired
		}
	default:
		return o, fmt.Errorf("%w: %s -> %s", ErrDenied, o.Status, opts.TargetStatusID)
	}

	now := e.now().UTC()
	ch := repo.StatusChange{
		NewStatus:  decision.TargetStatusID,
		UpdateTime: now.Format(time.RFC3339Nano),
		ActorID:    opts.ActorID,
	}
	if decision.TargetStatusID == board.StatusRejected {
		reason := strings.TrimSpace(opts.Reason)
		ch.RejectionReason = &reason
	}
	if decision.TargetStatusID == board.StatusCompleted {
		placed, err := time.Parse(time.RFC3339Nano, o.OrderTime)
		if err != nil {
			return o, fmt.Errorf("order %s: bad order_time: %w", o.ID, err)
		}
		minutes := int(math.Round(now.Sub(placed).Minutes()))
		ch.CompletionTime = &minutes
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return o, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateOrderStatusTx(ctx, tx, o.ID, o.LastUpdateTime, ch); err != nil {
		return o, err
	}
	payload := events.EventPayload{
		"from": o.Status,
		"to":   decision.TargetStatusID,
	}
	if ch.RejectionReason != nil {
		payload["reason"] = *ch.RejectionReason
	}
	if opts.Force {
		payload["forced"] = true
	}
	err = e.Events.Append(ctx, tx, "order.status_changed", o.RestaurantID, "order", o.ID, opts.ActorID, payload)
	if err != nil {
		return o, err
	}
	if err := tx.Commit(); err != nil {
		return o, err
	}
	return e.Repo.GetOrder(ctx, o.ID)
}
