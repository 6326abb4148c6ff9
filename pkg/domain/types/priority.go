package types

import "fmt"

// Priority represents the urgency of an intervention
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AllPriorities returns all valid priorities
func AllPriorities() []Priority {
	return []Priority{
		PriorityLow,
		PriorityNormal,
		PriorityHigh,
		PriorityUrgent,
	}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Normalize returns the priority, treating empty as PriorityNormal.
func (p Priority) Normalize() Priority {
	if p == "" {
		return PriorityNormal
	}
	return p
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a string into a Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}
