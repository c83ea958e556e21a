package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flowapp/internal/board"
	"flowapp/internal/db"
	"flowapp/internal/domain"
	"flowapp/internal/engine"
	"flowapp/internal/migrate"
	"flowapp/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
	now    *time.Time
}

// Advance moves the fixed test clock forward.
func (e testEnv) Advance(d time.Duration) {
	*e.now = e.now.Add(d)
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	eng := engine.New(conn)
	eng.Now = func() time.Time { return now }
	eng.Events.Now = eng.Now
	ctx := context.Background()

	if _, err := eng.CreateVendor(ctx, "vendor-1", "Test Vendor"); err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	tpl, err := eng.CreateBoardTemplate(ctx, "board-1", "vendor-1", "Standard", board.Default())
	if err != nil {
		t.Fatalf("seed board template: %v", err)
	}
	if _, err := eng.CreateRestaurant(ctx, domain.Restaurant{
		ID: "rest-1", VendorID: "vendor-1", Name: "Test Restaurant", BoardTemplateID: &tpl.ID,
	}); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	if _, err := eng.CreateRestaurant(ctx, domain.Restaurant{
		ID: "rest-2", VendorID: "vendor-1", Name: "No Template Restaurant",
	}); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return testEnv{Engine: eng, Ctx: ctx, now: &now}
}

func checkout(t *testing.T, env testEnv, restaurantID string) domain.Order {
	t.Helper()
	o, err := env.Engine.Checkout(env.Ctx, engine.CheckoutDraft{
		RestaurantID: restaurantID,
		Items: []domain.OrderItem{
			{ItemID: "item-1", Name: "Burger", Price: 8.99, Quantity: 2},
			{ItemID: "item-2", Name: "Fries", Price: 3.49, Quantity: 1},
		},
	}, "user-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return o
}

func TestCheckoutTotals(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	if o.Status != "pending" {
		t.Fatalf("status: got %s", o.Status)
	}
	if len(o.ID) < 5 || o.ID[:4] != "ORD-" {
		t.Fatalf("id: got %s", o.ID)
	}
	if o.Subtotal != 21.47 {
		t.Fatalf("subtotal: got %.2f", o.Subtotal)
	}
	if o.Taxes != 1.72 {
		t.Fatalf("taxes: got %.2f", o.Taxes)
	}
	if o.DeliveryFee != 5.00 {
		t.Fatalf("delivery fee: got %.2f", o.DeliveryFee)
	}
	if o.Total != 28.19 {
		t.Fatalf("total: got %.2f", o.Total)
	}
	if o.OrderTime != o.LastUpdateTime {
		t.Fatalf("fresh order should have matching timestamps")
	}
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.Checkout(env.Ctx, engine.CheckoutDraft{RestaurantID: "rest-1"}, "user-1")
	if !errors.Is(err, engine.ErrEmptyOrder) {
		t.Fatalf("empty order: got %v", err)
	}
	_, err = env.Engine.Checkout(env.Ctx, engine.CheckoutDraft{
		RestaurantID: "nope",
		Items:        []domain.OrderItem{{ItemID: "x", Price: 1, Quantity: 1}},
	}, "user-1")
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("unknown restaurant: got %v", err)
	}
}

func TestApplyTransitionHappyPath(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	env.Advance(time.Minute)
	updated, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "accepted", ActorID: "user-1",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Status != "accepted" {
		t.Fatalf("status: got %s", updated.Status)
	}
	if updated.LastUpdateTime == o.LastUpdateTime {
		t.Fatalf("last_update_time not stamped")
	}
	if updated.ProcessedByUserID == nil || *updated.ProcessedByUserID != "user-1" {
		t.Fatalf("processed_by: %v", updated.ProcessedByUserID)
	}
}

func TestApplyTransitionDenied(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	// pending -> ready-for-pickup has no rule and is a forward column
	_, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "ready-for-pickup", ActorID: "user-1",
	})
	if !errors.Is(err, engine.ErrDenied) {
		t.Fatalf("expected denied, got %v", err)
	}
	// requesting the current status again is a denied no-op
	_, err = env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "pending", ActorID: "user-1",
	})
	if !errors.Is(err, engine.ErrDenied) {
		t.Fatalf("same-status: expected denied, got %v", err)
	}
}

func TestApplyTransitionUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	_, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "teleported", ActorID: "user-1",
	})
	if !errors.Is(err, engine.ErrUnknownStatus) {
		t.Fatalf("expected unknown status, got %v", err)
	}
}

func TestRejectionRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	_, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "rejected", ActorID: "user-1",
	})
	if !errors.Is(err, engine.ErrReasonRequired) {
		t.Fatalf("expected reason required, got %v", err)
	}
	env.Advance(time.Minute)
	updated, err := env.Engine.ConfirmRejection(env.Ctx, o.ID, "Out of stock.", "user-1")
	if err != nil {
		t.Fatalf("confirm rejection: %v", err)
	}
	if updated.Status != "rejected" {
		t.Fatalf("status: got %s", updated.Status)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != "Out of stock." {
		t.Fatalf("reason: %v", updated.RejectionReason)
	}
	// rejected is hard-terminal
	_, err = env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "pending", ActorID: "user-1", Force: true,
	})
	if !errors.Is(err, engine.ErrDenied) {
		t.Fatalf("terminal: expected denied, got %v", err)
	}
}

func TestBackwardMoveRequiresForce(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	for _, status := range []string{"accepted", "in-progress", "ready-for-pickup"} {
		env.Advance(time.Minute)
		if _, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
			OrderID: o.ID, TargetStatusID: status, ActorID: "user-1",
		}); err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
	}
	_, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "accepted", ActorID: "user-1",
	})
	if !errors.Is(err, engine.ErrConfirmationRequired) {
		t.Fatalf("expected confirmation required, got %v", err)
	}
	env.Advance(time.Minute)
	updated, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "accepted", ActorID: "user-1", Force: true,
	})
	if err != nil || updated.Status != "accepted" {
		t.Fatalf("forced backward: %v (%s)", err, updated.Status)
	}
}

func TestCompletionTimeStamped(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	for _, status := range []string{"accepted", "in-progress", "ready-for-pickup"} {
		env.Advance(5 * time.Minute)
		if _, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
			OrderID: o.ID, TargetStatusID: status, ActorID: "user-1",
		}); err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
	}
	env.Advance(8 * time.Minute) // 23 minutes since checkout
	updated, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "completed", ActorID: "user-1",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.CompletionTime == nil || *updated.CompletionTime != 23 {
		t.Fatalf("completion time: %v", updated.CompletionTime)
	}
}

func TestConcurrentStatusWriteConflict(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	stale := o.LastUpdateTime

	env.Advance(time.Minute)
	if _, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
		OrderID: o.ID, TargetStatusID: "accepted", ActorID: "user-1",
	}); err != nil {
		t.Fatalf("first writer: %v", err)
	}

	// A second writer still holding the pre-update read loses.
	tx, err := env.Engine.DB.BeginTx(env.Ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()
	err = env.Engine.Repo.UpdateOrderStatusTx(env.Ctx, tx, o.ID, stale, repo.StatusChange{
		NewStatus:  "rejected",
		UpdateTime: env.now.Format(time.RFC3339Nano),
		ActorID:    "user-2",
	})
	if !errors.Is(err, repo.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateMissingOrderIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	tx, err := env.Engine.DB.BeginTx(env.Ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()
	err = env.Engine.Repo.UpdateOrderStatusTx(env.Ctx, tx, "ORD-MISSING", "whenever", repo.StatusChange{
		NewStatus: "accepted", UpdateTime: "now", ActorID: "user-1",
	})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBoardConfigFallback(t *testing.T) {
	env := newTestEnv(t)
	cfg, err := env.Engine.BoardConfig(env.Ctx, "rest-2")
	if err != nil {
		t.Fatalf("board config: %v", err)
	}
	if !cfg.HasStatus("ready-for-pickup") {
		t.Fatalf("expected default workflow")
	}
}

func TestRequestTransitionDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	d, err := env.Engine.RequestTransition(env.Ctx, o.ID, "rejected")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if d.Kind != board.RequiresReason {
		t.Fatalf("decision: got %s", d.Kind)
	}
	after, err := env.Engine.Repo.GetOrder(env.Ctx, o.ID)
	if err != nil || after.Status != "pending" {
		t.Fatalf("order mutated by preview: %v %s", err, after.Status)
	}
}

func TestApplyDrop(t *testing.T) {
	env := newTestEnv(t)
	o := checkout(t, env, "rest-1")
	env.Advance(time.Minute)
	updated, err := env.Engine.ApplyDrop(env.Ctx, o.ID, "col-2", "", "user-1", false)
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if updated.Status != "accepted" {
		t.Fatalf("drop target: got %s", updated.Status)
	}
	_, err = env.Engine.ApplyDrop(env.Ctx, o.ID, "col-1", "", "user-1", false)
	if !errors.Is(err, engine.ErrConfirmationRequired) {
		t.Fatalf("backward drop: expected confirmation required, got %v", err)
	}
	env.Advance(time.Minute)
	updated, err = env.Engine.ApplyDrop(env.Ctx, o.ID, "col-1", "", "user-1", true)
	if err != nil || updated.Status != "pending" {
		t.Fatalf("forced backward drop: %v (%s)", err, updated.Status)
	}
	_, err = env.Engine.ApplyDrop(env.Ctx, o.ID, "col-99", "", "user-1", false)
	if !errors.Is(err, engine.ErrUnknownColumn) {
		t.Fatalf("unknown column: got %v", err)
	}
}
