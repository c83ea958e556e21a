package domain

type Vendor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Password     string `json:"-"`
	Role         string `json:"role" enum:"consumer,vendor,restaurant_admin,super_admin"`
	VendorID     string `json:"vendor_id,omitempty"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	CreatedAt    string `json:"created_at" format:"date-time"`
}

const (
	RoleConsumer        = "consumer"
	RoleVendor          = "vendor"
	RoleRestaurantAdmin = "restaurant_admin"
	RoleSuperAdmin      = "super_admin"
)

type Restaurant struct {
	ID              string   `json:"id"`
	VendorID        string   `json:"vendor_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	BoardTemplateID *string  `json:"board_template_id,omitempty"`
	MenuTemplateIDs []string `json:"menu_template_ids,omitempty"`
	CreatedAt       string   `json:"created_at" format:"date-time"`
}

// BoardTemplate is a named, reusable workflow config owned by a vendor and
// assignable to restaurants. ConfigJSON holds the serialized board.Config.
type BoardTemplate struct {
	ID         string `json:"id"`
	VendorID   string `json:"vendor_id"`
	Name       string `json:"name"`
	ConfigJSON string `json:"-"`
	CreatedAt  string `json:"created_at" format:"date-time"`
	UpdatedAt  string `json:"updated_at" format:"date-time"`
}

type MenuSection struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	ItemIDs []string `json:"item_ids"`
}

type MenuTemplate struct {
	ID       string        `json:"id"`
	VendorID string        `json:"vendor_id"`
	Name     string        `json:"name"`
	Sections []MenuSection `json:"sections"`
}

type MenuItemTemplate struct {
	ID          string  `json:"id"`
	VendorID    string  `json:"vendor_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
}

type OrderItem struct {
	ItemID             string   `json:"item_id"`
	Name               string   `json:"name"`
	Price              float64  `json:"price"`
	Quantity           int      `json:"quantity"`
	Course             string   `json:"course,omitempty"`
	RemovedIngredients []string `json:"removed_ingredients,omitempty"`
}

// Order is permanent history: rows are created and status-updated, never
// deleted. Status moves only through the engine's transition path.
type Order struct {
	ID                string      `json:"id"`
	RestaurantID      string      `json:"restaurant_id"`
	Items             []OrderItem `json:"items"`
	Subtotal          float64     `json:"subtotal"`
	Taxes             float64     `json:"taxes"`
	DeliveryFee       float64     `json:"delivery_fee"`
	Total             float64     `json:"total"`
	Status            string      `json:"status"`
	OrderTime         string      `json:"order_time" format:"date-time"`
	LastUpdateTime    string      `json:"last_update_time" format:"date-time"`
	CompletionTime    *int        `json:"completion_time,omitempty"`
	RejectionReason   *string     `json:"rejection_reason,omitempty"`
	ProcessedByUserID *string     `json:"processed_by_user_id,omitempty"`
}

type Event struct {
	ID           int64  `json:"id"`
	TS           string `json:"ts" format:"date-time"`
	Type         string `json:"type"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	EntityKind   string `json:"entity_kind"`
	EntityID     string `json:"entity_id,omitempty"`
	ActorID      string `json:"actor_id"`
	Payload      string `json:"payload_json"`
}
