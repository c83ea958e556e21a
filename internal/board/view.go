package board

import (
	"sort"
	"time"

	"flowapp/internal/domain"
)

// Synthetic column ids for the terminal statuses. These columns live outside
// the configured list and are appended only when explicitly toggled visible.
const (
	CompletedColumnID = "col-completed"
	RejectedColumnID  = "col-rejected"
)

// ViewColumn is one rendered board column with its orders.
type ViewColumn struct {
	Column Column         `json:"column"`
	Orders []domain.Order `json:"orders"`
}

// ViewOptions toggles the synthetic terminal columns.
type ViewOptions struct {
	ShowCompleted bool
	ShowRejected  bool
}

// View groups orders by column for display. Orders within a column are
// sorted by order time, oldest first. Orders in a status listed on no
// column are omitted.
func View(cfg *Config, orders []domain.Order, opts ViewOptions) []ViewColumn {
	cols := make([]Column, 0, len(cfg.Columns)+2)
	cols = append(cols, cfg.Columns...)
	if opts.ShowRejected {
		cols = append(cols, Column{
			ID: RejectedColumnID, Title: "Rejected", StatusIDs: []string{StatusRejected},
			Icon: "x-circle", TitleColor: "#DC2626", ColumnColor: "#FEF2F2",
		})
	}
	if opts.ShowCompleted {
		cols = append(cols, Column{
			ID: CompletedColumnID, Title: "Completed", StatusIDs: []string{StatusCompleted},
			Icon: "flag-checkered", TitleColor: "#16A34A", ColumnColor: "#F0FDF4",
		})
	}

	type placed struct {
		order domain.Order
		at    time.Time
		ok    bool
	}
	sorted := make([]placed, 0, len(orders))
	for _, o := range orders {
		if o.Status == StatusRejected && !opts.ShowRejected {
			continue
		}
		if o.Status == StatusCompleted && !opts.ShowCompleted {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, o.OrderTime)
		sorted = append(sorted, placed{order: o, at: at, ok: err == nil})
	}
	// Orders with an unparseable order_time keep their stored order, after
	// everything with a real timestamp.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ok != sorted[j].ok {
			return sorted[i].ok
		}
		return sorted[i].ok && sorted[i].at.Before(sorted[j].at)
	})
	visible := make([]domain.Order, 0, len(sorted))
	for _, p := range sorted {
		visible = append(visible, p.order)
	}

	out := make([]ViewColumn, 0, len(cols))
	for _, col := range cols {
		vc := ViewColumn{Column: col, Orders: []domain.Order{}}
		for _, o := range visible {
			for _, sid := range col.StatusIDs {
				if o.Status == sid {
					vc.Orders = append(vc.Orders, o)
					break
				}
			}
		}
		out = append(out, vc)
	}
	return out
}
