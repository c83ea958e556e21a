package board_test

import (
	"testing"

	"flowapp/internal/board"
)

func TestDecideForwardTransitions(t *testing.T) {
	cfg := board.Default()

	d := board.Decide(cfg, "pending", "accepted")
	if d.Kind != board.Allowed {
		t.Fatalf("pending->accepted: got %s", d.Kind)
	}
	d = board.Decide(cfg, "accepted", "in-progress")
	if d.Kind != board.Allowed {
		t.Fatalf("accepted->in-progress: got %s", d.Kind)
	}
	d = board.Decide(cfg, "ready-for-pickup", "completed")
	if d.Kind != board.Allowed {
		t.Fatalf("ready-for-pickup->completed: got %s", d.Kind)
	}
}

func TestDecideRejectedAlwaysNeedsReason(t *testing.T) {
	cfg := board.Default()
	// pending->rejected is in the forward table, yet still reason-gated.
	d := board.Decide(cfg, "pending", "rejected")
	if d.Kind != board.RequiresReason {
		t.Fatalf("pending->rejected: got %s, want requires_reason", d.Kind)
	}
	if d.TargetStatusID != "rejected" {
		t.Fatalf("target: got %s", d.TargetStatusID)
	}
	// Also from a status whose forward table does not list rejected.
	d = board.Decide(cfg, "in-progress", "rejected")
	if d.Kind != board.RequiresReason {
		t.Fatalf("in-progress->rejected: got %s, want requires_reason", d.Kind)
	}
}

func TestDecideTerminalStatuses(t *testing.T) {
	cfg := board.Default()
	for _, from := range []string{"completed", "rejected"} {
		for _, to := range []string{"pending", "accepted", "in-progress"} {
			if d := board.Decide(cfg, from, to); d.Kind != board.Denied {
				t.Fatalf("%s->%s: got %s, want denied", from, to, d.Kind)
			}
		}
	}
}

func TestDecideSameStatusIsDenied(t *testing.T) {
	cfg := board.Default()
	if d := board.Decide(cfg, "accepted", "accepted"); d.Kind != board.Denied {
		t.Fatalf("accepted->accepted: got %s, want denied", d.Kind)
	}
}

func TestDecideBackwardNeedsConfirmation(t *testing.T) {
	cfg := board.Default()
	// ready-for-pickup (col-3) back to accepted (col-2).
	d := board.Decide(cfg, "ready-for-pickup", "accepted")
	if d.Kind != board.RequiresConfirmation {
		t.Fatalf("backward move: got %s, want requires_confirmation", d.Kind)
	}
	// in-progress back to pending (col-2 -> col-1).
	d = board.Decide(cfg, "in-progress", "pending")
	if d.Kind != board.RequiresConfirmation {
		t.Fatalf("backward to pending: got %s, want requires_confirmation", d.Kind)
	}
}

func TestDecideLateralMoveIsDenied(t *testing.T) {
	cfg := board.Default()
	// in-progress and accepted share col-2 and no forward rule exists.
	if d := board.Decide(cfg, "in-progress", "accepted"); d.Kind != board.Denied {
		t.Fatalf("lateral move: got %s, want denied", d.Kind)
	}
}

func TestDecideUnlistedStatusNeverBackward(t *testing.T) {
	cfg := board.Default()
	cfg.Statuses = append(cfg.Statuses, board.Status{ID: "archived", Label: "Archived"})
	// archived sits on no column, so a move from it to an earlier column
	// cannot be a confirmed backward move.
	if d := board.Decide(cfg, "archived", "pending"); d.Kind != board.Denied {
		t.Fatalf("unlisted source: got %s, want denied", d.Kind)
	}
	if d := board.Decide(cfg, "accepted", "archived"); d.Kind != board.Denied {
		t.Fatalf("unlisted target: got %s, want denied", d.Kind)
	}
}

func TestDecideSoftTerminalAllowsForcedBackward(t *testing.T) {
	// A custom board where accepted has no outgoing edges. Orders stop there,
	// but a confirmed backward move can still rescue them.
	cfg := board.Default()
	cfg.Transitions["accepted"] = nil
	if cfg.HasForwardTransitions("accepted") {
		t.Fatalf("expected no forward transitions")
	}
	d := board.Decide(cfg, "accepted", "pending")
	if d.Kind != board.RequiresConfirmation {
		t.Fatalf("soft-terminal backward: got %s, want requires_confirmation", d.Kind)
	}
}

func TestResolveDropForwardMatch(t *testing.T) {
	cfg := board.Default()
	col, _ := cfg.ColumnByID("col-2")
	d := board.ResolveDrop(cfg, "pending", col)
	if d.Kind != board.Allowed || d.TargetStatusID != "accepted" {
		t.Fatalf("drop pending on col-2: got %s/%s", d.Kind, d.TargetStatusID)
	}
}

func TestResolveDropPicksFirstListedMatch(t *testing.T) {
	// Both column statuses reachable from pending; the column's declared
	// order breaks the tie.
	cfg := board.Default()
	cfg.Transitions["pending"] = []string{"accepted", "in-progress"}
	col, _ := cfg.ColumnByID("col-2")
	d := board.ResolveDrop(cfg, "pending", col)
	if d.TargetStatusID != "accepted" {
		t.Fatalf("tie-break: got %s, want accepted", d.TargetStatusID)
	}
}

func TestResolveDropLateralWithinColumn(t *testing.T) {
	cfg := board.Default()
	// accepted dropped back onto its own column resolves to in-progress,
	// the forward-reachable sibling.
	col, _ := cfg.ColumnByID("col-2")
	d := board.ResolveDrop(cfg, "accepted", col)
	if d.Kind != board.Allowed || d.TargetStatusID != "in-progress" {
		t.Fatalf("lateral drop: got %s/%s", d.Kind, d.TargetStatusID)
	}
}

func TestResolveDropBackwardColumn(t *testing.T) {
	cfg := board.Default()
	col, _ := cfg.ColumnByID("col-1")
	d := board.ResolveDrop(cfg, "in-progress", col)
	if d.Kind != board.RequiresConfirmation || d.TargetStatusID != "pending" {
		t.Fatalf("backward drop: got %s/%s", d.Kind, d.TargetStatusID)
	}
}

func TestResolveDropNoRuleLaterColumn(t *testing.T) {
	cfg := board.Default()
	col, _ := cfg.ColumnByID("col-3")
	if d := board.ResolveDrop(cfg, "pending", col); d.Kind != board.Denied {
		t.Fatalf("skip-ahead drop: got %s, want denied", d.Kind)
	}
}

func TestResolveDropTerminalOrder(t *testing.T) {
	cfg := board.Default()
	col, _ := cfg.ColumnByID("col-1")
	if d := board.ResolveDrop(cfg, "completed", col); d.Kind != board.Denied {
		t.Fatalf("drop of completed order: got %s, want denied", d.Kind)
	}
}

func TestResolveDropRejectedColumnNeedsReason(t *testing.T) {
	cfg := board.Default()
	// A board that shows rejected on a column of its own.
	cfg.Columns = append(cfg.Columns, board.Column{ID: "col-4", Title: "Rejected", StatusIDs: []string{"rejected"}})
	col, _ := cfg.ColumnByID("col-4")
	d := board.ResolveDrop(cfg, "pending", col)
	if d.Kind != board.RequiresReason || d.TargetStatusID != "rejected" {
		t.Fatalf("drop on rejected column: got %s/%s", d.Kind, d.TargetStatusID)
	}
}

func TestResolveDropSyntheticColumnNeverBackward(t *testing.T) {
	cfg := board.Default()
	// Synthetic columns are not in cfg.Columns, so their index is unknown and
	// a drop from them cannot count as backward.
	synthetic := board.Column{ID: board.CompletedColumnID, StatusIDs: []string{"completed"}}
	if d := board.ResolveDrop(cfg, "in-progress", synthetic); d.Kind != board.Denied {
		t.Fatalf("drop on synthetic column: got %s, want denied", d.Kind)
	}
}
