package board

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in status ids. Orders are always created in StatusPending;
// StatusCompleted and StatusRejected are hard-terminal regardless of the
// configured transition table.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

type Status struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// Column groups zero or more statuses for display. A status left out of
// every column is valid; its orders are simply not shown on the board.
type Column struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	StatusIDs   []string `json:"status_ids" yaml:"status_ids"`
	Icon        string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	TitleColor  string   `json:"title_color,omitempty" yaml:"title_color,omitempty"`
	ColumnColor string   `json:"column_color,omitempty" yaml:"column_color,omitempty"`
}

type RejectionReason struct {
	ID      string `json:"id" yaml:"id"`
	Message string `json:"message" yaml:"message"`
}

// Config is one restaurant board's workflow: which statuses exist, how they
// are grouped into columns, which forward transitions are legal, and which
// reasons are offered when rejecting an order.
type Config struct {
	Statuses         []Status            `json:"statuses" yaml:"statuses"`
	Columns          []Column            `json:"columns" yaml:"columns"`
	RejectionReasons []RejectionReason   `json:"rejection_reasons" yaml:"rejection_reasons"`
	Transitions      map[string][]string `json:"status_transitions" yaml:"status_transitions"`
}

// ConfigError describes one validation problem. Warnings do not block saving.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks referential integrity of the config and returns every
// problem found so the caller can display all of them at once. The config is
// saveable when no non-warning entries are returned.
func (c *Config) Validate() []ConfigError {
	var errs []ConfigError

	known := make(map[string]bool, len(c.Statuses))
	for i, s := range c.Statuses {
		if s.ID == "" {
			errs = append(errs, ConfigError{Field: fmt.Sprintf("statuses[%d].id", i), Message: "status id is required"})
			continue
		}
		if known[s.ID] {
			errs = append(errs, ConfigError{Field: fmt.Sprintf("statuses[%d].id", i), Message: fmt.Sprintf("duplicate status id %q", s.ID)})
			continue
		}
		known[s.ID] = true
	}

	seenColumn := map[string]string{}
	for i, col := range c.Columns {
		for j, sid := range col.StatusIDs {
			field := fmt.Sprintf("columns[%d].status_ids[%d]", i, j)
			if !known[sid] {
				errs = append(errs, ConfigError{Field: field, Message: fmt.Sprintf("unknown status %q", sid)})
				continue
			}
			if prev, ok := seenColumn[sid]; ok {
				errs = append(errs, ConfigError{
					Field:   field,
					Message: fmt.Sprintf("status %q already listed in column %q", sid, prev),
					Warning: true,
				})
				continue
			}
			seenColumn[sid] = col.ID
		}
	}

	for from, targets := range c.Transitions {
		if !known[from] {
			errs = append(errs, ConfigError{Field: "status_transitions." + from, Message: fmt.Sprintf("unknown status %q", from)})
		}
		for _, to := range targets {
			if !known[to] {
				errs = append(errs, ConfigError{Field: "status_transitions." + from, Message: fmt.Sprintf("unknown destination status %q", to)})
			}
		}
	}

	seenReason := map[string]bool{}
	for i, r := range c.RejectionReasons {
		if r.ID == "" {
			errs = append(errs, ConfigError{Field: fmt.Sprintf("rejection_reasons[%d].id", i), Message: "reason id is required"})
			continue
		}
		if seenReason[r.ID] {
			errs = append(errs, ConfigError{Field: fmt.Sprintf("rejection_reasons[%d].id", i), Message: fmt.Sprintf("duplicate reason id %q", r.ID)})
			continue
		}
		seenReason[r.ID] = true
	}
	return errs
}

// HasErrors reports whether any non-warning validation entries exist.
func HasErrors(errs []ConfigError) bool {
	for _, e := range errs {
		if !e.Warning {
			return true
		}
	}
	return false
}

// ErrorList joins non-warning messages for error reporting.
func ErrorList(errs []ConfigError) string {
	var parts []string
	for _, e := range errs {
		if !e.Warning {
			parts = append(parts, e.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// HasStatus reports whether id exists in the configured status list.
func (c *Config) HasStatus(id string) bool {
	for _, s := range c.Statuses {
		if s.ID == id {
			return true
		}
	}
	return false
}

// StatusByID returns the configured status, if any.
func (c *Config) StatusByID(id string) (Status, bool) {
	for _, s := range c.Statuses {
		if s.ID == id {
			return s, true
		}
	}
	return Status{}, false
}

// ColumnByID returns the configured column, if any.
func (c *Config) ColumnByID(id string) (Column, bool) {
	for _, col := range c.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnIndexOf returns the index of the column listing the status, or -1
// when the status is not shown on the board.
func (c *Config) ColumnIndexOf(statusID string) int {
	for i, col := range c.Columns {
		for _, sid := range col.StatusIDs {
			if sid == statusID {
				return i
			}
		}
	}
	return -1
}

// FromJSON parses a stored board config.
func FromJSON(data string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("invalid board config json: %w", err)
	}
	return &cfg, nil
}

// ToJSON serializes the config for storage.
func (c *Config) ToJSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromYAML parses and validates a board config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid board config yaml: %w", err)
	}
	if errs := cfg.Validate(); HasErrors(errs) {
		return nil, fmt.Errorf("invalid board config: %s", ErrorList(errs))
	}
	return &cfg, nil
}

// FromFile reads a YAML board config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// ToYAML serializes the config for export.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Default returns the standard pickup workflow used when a vendor has not
// customized a board yet.
func Default() *Config {
	return &Config{
		Statuses: []Status{
			{ID: StatusPending, Label: "Pending", Color: "#fb923c"},
			{ID: "accepted", Label: "Accepted", Color: "#3b82f6"},
			{ID: "in-progress", Label: "In Progress", Color: "#a855f7"},
			{ID: "ready-for-pickup", Label: "Ready for Pickup", Color: "#facc15"},
			{ID: StatusCompleted, Label: "Completed", Color: "#22c55e"},
			{ID: StatusRejected, Label: "Rejected", Color: "#ef4444"},
		},
		Columns: []Column{
			{ID: "col-1", Title: "New Orders", StatusIDs: []string{StatusPending}, Icon: "clipboard", TitleColor: "#374151", ColumnColor: "#F3F4F6"},
			{ID: "col-2", Title: "In Progress", StatusIDs: []string{"accepted", "in-progress"}, Icon: "chef-hat", TitleColor: "#374151", ColumnColor: "#F3F4F6"},
			{ID: "col-3", Title: "Ready for Pickup", StatusIDs: []string{"ready-for-pickup"}, Icon: "shopping-bag", TitleColor: "#374151", ColumnColor: "#F3F4F6"},
		},
		RejectionReasons: []RejectionReason{
			{ID: "reason-1", Message: "Restaurant is too busy to accept new orders."},
			{ID: "reason-2", Message: "One or more items are out of stock."},
			{ID: "reason-3", Message: "Closing soon and cannot fulfill the order in time."},
		},
		Transitions: map[string][]string{
			StatusPending:      {"accepted", StatusRejected},
			"accepted":         {"in-progress"},
			"in-progress":      {"ready-for-pickup"},
			"ready-for-pickup": {StatusCompleted},
			StatusCompleted:    {},
			StatusRejected:     {},
		},
	}
}
