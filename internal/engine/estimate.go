package engine

import (
	"context"
	"time"

	"flowapp/internal/domain"
)

// AveragePrepMinutes is the assumed per-order kitchen time used by the wait
// estimator.
const AveragePrepMinutes = 7

// Estimate is what a consumer tracking their order sees.
type Estimate struct {
	OrdersAhead      int `json:"orders_ahead"`
	EstimatedMinutes int `json:"estimated_minutes"`
}

// activeStatuses are the statuses counted toward the queue. The set is fixed
// regardless of board customization: an order sitting in a custom status does
// not hold up the estimate for orders behind it.
var activeStatuses = map[string]bool{
	"pending":     true,
	"accepted":    true,
	"in-progress": true,
}

// EstimateWait counts active orders at the same restaurant placed strictly
// before this one and assumes each takes AveragePrepMinutes, including this
// order itself.
func EstimateWait(order domain.Order, all []domain.Order) Estimate {
	placed, err := time.Parse(time.RFC3339Nano, order.OrderTime)
	if err != nil {
		return Estimate{OrdersAhead: 0, EstimatedMinutes: AveragePrepMinutes}
	}
	ahead := 0
	for _, o := range all {
		if o.ID == order.ID || o.RestaurantID != order.RestaurantID {
			continue
		}
		if !activeStatuses[o.Status] {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, o.OrderTime)
		if err != nil {
			continue
		}
		if t.Before(placed) {
			ahead++
		}
	}
	return Estimate{
		OrdersAhead:      ahead,
		EstimatedMinutes: (ahead + 1) * AveragePrepMinutes,
	}
}

// Track returns an order together with its wait estimate. Terminal orders get
// a zeroed estimate since there is nothing left to wait for.
func (e Engine) Track(ctx context.Context, orderID string) (domain.Order, Estimate, error) {
	o, err := e.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return o, Estimate{}, err
	}
	if !activeStatuses[o.Status] {
		return o, Estimate{}, nil
	}
	all, err := e.Repo.ListOrdersByRestaurant(ctx, o.RestaurantID)
	if err != nil {
		return o, Estimate{}, err
	}
	return o, EstimateWait(o, all), nil
}
