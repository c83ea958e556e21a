package server

import (
	"flowapp/internal/board"
	"flowapp/internal/domain"
	"flowapp/internal/engine"
)

type VendorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func vendorResponse(v domain.Vendor) VendorResponse {
	return VendorResponse{ID: v.ID, Name: v.Name, CreatedAt: v.CreatedAt}
}

func mapVendors(items []domain.Vendor) []VendorResponse {
	res := make([]VendorResponse, 0, len(items))
	for _, v := range items {
		res = append(res, vendorResponse(v))
	}
	return res
}

type UserResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	VendorID     string `json:"vendor_id,omitempty"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Role:         u.Role,
		VendorID:     u.VendorID,
		RestaurantID: u.RestaurantID,
		CreatedAt:    u.CreatedAt,
	}
}

func mapUsers(items []domain.User) []UserResponse {
	res := make([]UserResponse, 0, len(items))
	for _, u := range items {
		res = append(res, userResponse(u))
	}
	return res
}

type RestaurantResponse struct {
	ID              string   `json:"id"`
	VendorID        string   `json:"vendor_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	BoardTemplateID *string  `json:"board_template_id,omitempty"`
	MenuTemplateIDs []string `json:"menu_template_ids"`
	CreatedAt       string   `json:"created_at"`
}

func restaurantResponse(r domain.Restaurant) RestaurantResponse {
	menuIDs := r.MenuTemplateIDs
	if menuIDs == nil {
		menuIDs = []string{}
	}
	return RestaurantResponse{
		ID:              r.ID,
		VendorID:        r.VendorID,
		Name:            r.Name,
		Description:     r.Description,
		BoardTemplateID: r.BoardTemplateID,
		MenuTemplateIDs: menuIDs,
		CreatedAt:       r.CreatedAt,
	}
}

func mapRestaurants(items []domain.Restaurant) []RestaurantResponse {
	res := make([]RestaurantResponse, 0, len(items))
	for _, r := range items {
		res = append(res, restaurantResponse(r))
	}
	return res
}

type BoardTemplateResponse struct {
	ID        string       `json:"id"`
	VendorID  string       `json:"vendor_id"`
	Name      string       `json:"name"`
	Config    board.Config `json:"config"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

func boardTemplateResponse(t domain.BoardTemplate) (BoardTemplateResponse, error) {
	cfg, err := board.FromJSON(t.ConfigJSON)
	if err != nil {
		return BoardTemplateResponse{}, err
	}
	return BoardTemplateResponse{
		ID:        t.ID,
		VendorID:  t.VendorID,
		Name:      t.Name,
		Config:    *cfg,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

type MenuTemplateResponse struct {
	ID       string               `json:"id"`
	VendorID string               `json:"vendor_id"`
	Name     string               `json:"name"`
	Sections []domain.MenuSection `json:"sections"`
}

func menuTemplateResponse(t domain.MenuTemplate) MenuTemplateResponse {
	sections := t.Sections
	if sections == nil {
		sections = []domain.MenuSection{}
	}
	return MenuTemplateResponse{ID: t.ID, VendorID: t.VendorID, Name: t.Name, Sections: sections}
}

type OrderResponse struct {
	ID                string             `json:"id"`
	RestaurantID      string             `json:"restaurant_id"`
	Items             []domain.OrderItem `json:"items"`
	Subtotal          float64            `json:"subtotal"`
	Taxes             float64            `json:"taxes"`
	DeliveryFee       float64            `json:"delivery_fee"`
	Total             float64            `json:"total"`
	Status            string             `json:"status"`
	OrderTime         string             `json:"order_time"`
	LastUpdateTime    string             `json:"last_update_time"`
	CompletionTime    *int               `json:"completion_time,omitempty"`
	RejectionReason   *string            `json:"rejection_reason,omitempty"`
	ProcessedByUserID *string            `json:"processed_by_user_id,omitempty"`
}

func orderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:                o.ID,
		RestaurantID:      o.RestaurantID,
		Items:             o.Items,
		Subtotal:          o.Subtotal,
		Taxes:             o.Taxes,
		DeliveryFee:       o.DeliveryFee,
		Total:             o.Total,
		Status:            o.Status,
		OrderTime:         o.OrderTime,
		LastUpdateTime:    o.LastUpdateTime,
		CompletionTime:    o.CompletionTime,
		RejectionReason:   o.RejectionReason,
		ProcessedByUserID: o.ProcessedByUserID,
	}
}

func mapOrders(items []domain.Order) []OrderResponse {
	res := make([]OrderResponse, 0, len(items))
	for _, o := range items {
		res = append(res, orderResponse(o))
	}
	return res
}

type DecisionResponse struct {
	Kind           string `json:"kind"`
	TargetStatusID string `json:"target_status_id,omitempty"`
}

func decisionResponse(d board.Decision) DecisionResponse {
	return DecisionResponse{Kind: string(d.Kind), TargetStatusID: d.TargetStatusID}
}

type TrackResponse struct {
	Order    OrderResponse   `json:"order"`
	Estimate engine.Estimate `json:"estimate"`
}

type BoardViewColumn struct {
	Column board.Column    `json:"column"`
	Orders []OrderResponse `json:"orders"`
}

type BoardViewResponse struct {
	RestaurantID string            `json:"restaurant_id"`
	Columns      []BoardViewColumn `json:"columns"`
}
