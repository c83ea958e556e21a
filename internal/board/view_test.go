package board_test

import (
	"testing"

	"flowapp/internal/board"
	"flowapp/internal/domain"
)

func order(id, status, orderTime string) domain.Order {
	return domain.Order{ID: id, RestaurantID: "rest-1", Status: status, OrderTime: orderTime}
}

func TestViewHidesTerminalByDefault(t *testing.T) {
	cfg := board.Default()
	orders := []domain.Order{
		order("o1", "pending", "2024-01-01T10:00:00Z"),
		order("o2", "completed", "2024-01-01T09:00:00Z"),
		order("o3", "rejected", "2024-01-01T08:00:00Z"),
	}
	view := board.View(cfg, orders, board.ViewOptions{})
	if len(view) != 3 {
		t.Fatalf("expected 3 configured columns, got %d", len(view))
	}
	total := 0
	for _, col := range view {
		total += len(col.Orders)
	}
	if total != 1 {
		t.Fatalf("expected only the pending order visible, got %d", total)
	}
}

func TestViewSyntheticColumns(t *testing.T) {
	cfg := board.Default()
	orders := []domain.Order{
		order("o1", "completed", "2024-01-01T09:00:00Z"),
		order("o2", "rejected", "2024-01-01T08:00:00Z"),
	}
	view := board.View(cfg, orders, board.ViewOptions{ShowCompleted: true, ShowRejected: true})
	if len(view) != 5 {
		t.Fatalf("expected 5 columns with both toggles, got %d", len(view))
	}
	byID := map[string]board.ViewColumn{}
	for _, col := range view {
		byID[col.Column.ID] = col
	}
	if got := byID[board.CompletedColumnID].Orders; len(got) != 1 || got[0].ID != "o1" {
		t.Fatalf("completed column: %+v", got)
	}
	if got := byID[board.RejectedColumnID].Orders; len(got) != 1 || got[0].ID != "o2" {
		t.Fatalf("rejected column: %+v", got)
	}
}

func TestViewSortsByOrderTime(t *testing.T) {
	cfg := board.Default()
	orders := []domain.Order{
		order("late", "pending", "2024-01-01T10:00:00.5Z"),
		order("early", "pending", "2024-01-01T10:00:00Z"),
	}
	view := board.View(cfg, orders, board.ViewOptions{})
	col := view[0]
	if len(col.Orders) != 2 || col.Orders[0].ID != "early" {
		t.Fatalf("sort order wrong: %+v", col.Orders)
	}
}

func TestViewSortsMalformedTimestampsLast(t *testing.T) {
	cfg := board.Default()
	orders := []domain.Order{
		order("garbage-a", "pending", "not-a-timestamp"),
		order("late", "pending", "2024-01-01T11:00:00Z"),
		order("garbage-b", "pending", ""),
		order("early", "pending", "2024-01-01T10:00:00Z"),
	}
	view := board.View(cfg, orders, board.ViewOptions{})
	got := view[0].Orders
	if len(got) != 4 {
		t.Fatalf("expected all 4 orders, got %d", len(got))
	}
	want := []string{"early", "late", "garbage-a", "garbage-b"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (%+v)", i, got[i].ID, id, got)
		}
	}
}

func TestViewOmitsUnlistedStatuses(t *testing.T) {
	cfg := board.Default()
	cfg.Statuses = append(cfg.Statuses, board.Status{ID: "archived", Label: "Archived"})
	orders := []domain.Order{order("o1", "archived", "2024-01-01T10:00:00Z")}
	view := board.View(cfg, orders, board.ViewOptions{})
	for _, col := range view {
		if len(col.Orders) != 0 {
			t.Fatalf("archived order should be shown nowhere")
		}
	}
}
