package engine_test

import (
	"testing"
	"time"

	"flowapp/internal/domain"
	"flowapp/internal/engine"
)

func orderAt(id, status, ts string) domain.Order {
	return domain.Order{ID: id, RestaurantID: "rest-1", Status: status, OrderTime: ts}
}

func TestEstimateWait(t *testing.T) {
	mine := orderAt("mine", "pending", "2024-01-01T12:10:00Z")
	all := []domain.Order{
		orderAt("a", "pending", "2024-01-01T12:00:00Z"),
		orderAt("b", "accepted", "2024-01-01T12:05:00Z"),
		orderAt("c", "in-progress", "2024-01-01T12:07:00Z"),
		orderAt("d", "completed", "2024-01-01T12:01:00Z"),   // finished, not counted
		orderAt("e", "rejected", "2024-01-01T12:02:00Z"),    // rejected, not counted
		orderAt("f", "pending", "2024-01-01T12:15:00Z"),     // behind, not counted
		mine,
	}
	est := engine.EstimateWait(mine, all)
	if est.OrdersAhead != 3 {
		t.Fatalf("orders ahead: got %d", est.OrdersAhead)
	}
	if est.EstimatedMinutes != 4*engine.AveragePrepMinutes {
		t.Fatalf("minutes: got %d", est.EstimatedMinutes)
	}
}

func TestEstimateWaitIgnoresOtherRestaurants(t *testing.T) {
	mine := orderAt("mine", "pending", "2024-01-01T12:10:00Z")
	other := domain.Order{ID: "x", RestaurantID: "rest-2", Status: "pending", OrderTime: "2024-01-01T12:00:00Z"}
	est := engine.EstimateWait(mine, []domain.Order{other, mine})
	if est.OrdersAhead != 0 {
		t.Fatalf("cross-restaurant orders counted: %d", est.OrdersAhead)
	}
	if est.EstimatedMinutes != engine.AveragePrepMinutes {
		t.Fatalf("minutes: got %d", est.EstimatedMinutes)
	}
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t)
	first := checkout(t, env, "rest-1")
	env.Advance(time.Minute)
	second := checkout(t, env, "rest-1")

	_, est, err := env.Engine.Track(env.Ctx, second.ID)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if est.OrdersAhead != 1 || est.EstimatedMinutes != 14 {
		t.Fatalf("estimate: %+v", est)
	}

	// Completing the first order empties the queue ahead.
	for _, status := range []string{"accepted", "in-progress", "ready-for-pickup", "completed"} {
		env.Advance(time.Minute)
		if _, err := env.Engine.ApplyTransition(env.Ctx, engine.ApplyOpts{
			OrderID: first.ID, TargetStatusID: status, ActorID: "user-1",
		}); err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
	}
	_, est, err = env.Engine.Track(env.Ctx, second.ID)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if est.OrdersAhead != 0 || est.EstimatedMinutes != 7 {
		t.Fatalf("estimate after completion: %+v", est)
	}

	// Terminal orders get a zeroed estimate.
	env.Advance(time.Minute)
	if _, err := env.Engine.ConfirmRejection(env.Ctx, second.ID, "Closing soon.", "user-1"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, est, err = env.Engine.Track(env.Ctx, second.ID)
	if err != nil {
		t.Fatalf("track terminal: %v", err)
	}
	if est.OrdersAhead != 0 || est.EstimatedMinutes != 0 {
		t.Fatalf("terminal estimate: %+v", est)
	}
}
