package types

import "fmt"

// InterventionStatus represents the lifecycle status of an intervention ticket
type InterventionStatus string

const (
	InterventionStatusTodo       InterventionStatus = "todo"
	InterventionStatusInProgress InterventionStatus = "in_progress"
	InterventionStatusOrdering   InterventionStatus = "ordering"
	InterventionStatusCompleted  InterventionStatus = "completed"
	InterventionStatusCancelled  InterventionStatus = "cancelled"
)

// AllInterventionStatuses returns all valid intervention statuses
func AllInterventionStatuses() []InterventionStatus {
	return []InterventionStatus{
		InterventionStatusTodo,
		InterventionStatusInProgress,
		InterventionStatusOrdering,
		InterventionStatusCompleted,
		InterventionStatusCancelled,
	}
}

// IsValid checks if the intervention status is valid
func (s InterventionStatus) IsValid() bool {
	switch s {
	case InterventionStatusTodo,
		InterventionStatusInProgress,
		InterventionStatusOrdering,
		InterventionStatusCompleted,
		InterventionStatusCancelled:
		return true
	default:
		return false
	}
}

// IsClosed reports whether the status is terminal in practice. Leaving it
// requires an explicit reopen (a transition back to todo).
func (s InterventionStatus) IsClosed() bool {
	return s == InterventionStatusCompleted || s == InterventionStatusCancelled
}

// String returns the string representation of the intervention status
func (s InterventionStatus) String() string {
	return string(s)
}

// ParseInterventionStatus parses a string into an InterventionStatus
func ParseInterventionStatus(s string) (InterventionStatus, error) {
	status := InterventionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid intervention status: %s", s)
	}
	return status, nil
}
