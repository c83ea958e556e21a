package board

// DecisionKind classifies the outcome of a transition request. Only Allowed
// may be applied directly; RequiresReason and RequiresConfirmation are
// expected branches the caller must complete, and Denied is a no-op.
type DecisionKind string

const (
	Allowed              DecisionKind = "allowed"
	RequiresReason       DecisionKind = "requires_reason"
	RequiresConfirmation DecisionKind = "requires_confirmation"
	Denied               DecisionKind = "denied"
)

// Decision is the result of resolving a transition or column-drop request.
type Decision struct {
	Kind           DecisionKind `json:"kind"`
	TargetStatusID string       `json:"target_status_id,omitempty"`
}

// IsTerminal reports whether no mutation may ever leave the status, forced
// or not. Only the built-in completed/rejected statuses qualify; a
// configured status with an empty forward set still permits confirmed
// backward moves.
func IsTerminal(statusID string) bool {
	return statusID == StatusCompleted || statusID == StatusRejected
}

// HasForwardTransitions reports whether the status has at least one
// configured outgoing edge. Statuses without edges stop advancing on the
// board.
func (c *Config) HasForwardTransitions(statusID string) bool {
	return len(c.Transitions[statusID]) > 0
}

// Decide resolves an explicit status-to-status transition request.
//
// Entering rejected always demands a reason, even when the forward table
// lists it: a rejected order without a reason is meaningless to the
// consumer. Requesting the current status again is a no-op Denied, so a
// double-submitted button press never re-stamps the order.
func Decide(cfg *Config, current, target string) Decision {
	if target == current {
		return Decision{Kind: Denied, TargetStatusID: target}
	}
	if IsTerminal(current) {
		return Decision{Kind: Denied, TargetStatusID: target}
	}
	if target == StatusRejected {
		return Decision{Kind: RequiresReason, TargetStatusID: StatusRejected}
	}
	for _, allowed := range cfg.Transitions[current] {
		if allowed == target {
			return Decision{Kind: Allowed, TargetStatusID: target}
		}
	}
	from := cfg.ColumnIndexOf(current)
	to := cfg.ColumnIndexOf(target)
	if from >= 0 && to >= 0 && to < from {
		return Decision{Kind: RequiresConfirmation, TargetStatusID: target}
	}
	return Decision{Kind: Denied, TargetStatusID: target}
}

// ResolveDrop resolves a drop onto a column to a concrete status decision.
// A column may hold several statuses, so the drop target is ambiguous:
// prefer the first status in the column's declared order that the forward
// table allows from the current status. With no forward match, a drop onto
// a strictly earlier column is a backward move targeting the column's first
// status, pending confirmation. Anything else is denied: lateral drops
// within the current column, drops onto later columns with no rule, and
// drops involving statuses shown on no column.
func ResolveDrop(cfg *Config, current string, column Column) Decision {
	if IsTerminal(current) {
		return Decision{Kind: Denied}
	}
	allowed := cfg.Transitions[current]
	for _, sid := range column.StatusIDs {
		if !cfg.HasStatus(sid) {
			continue
		}
		for _, a := range allowed {
			if a == sid {
				if sid == StatusRejected {
					return Decision{Kind: RequiresReason, TargetStatusID: StatusRejected}
				}
				return Decision{Kind: Allowed, TargetStatusID: sid}
			}
		}
	}
	from := cfg.ColumnIndexOf(current)
	to := -1
	for i, col := range cfg.Columns {
		if col.ID == column.ID {
			to = i
			break
		}
	}
	if from >= 0 && to >= 0 && to < from && len(column.StatusIDs) > 0 {
		return Decision{Kind: RequiresConfirmation, TargetStatusID: column.StatusIDs[0]}
	}
	return Decision{Kind: Denied}
}
