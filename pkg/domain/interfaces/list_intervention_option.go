package interfaces

import "github.com/hotelops/intervention/pkg/domain/types"

// ListInterventionOption is a functional option for filtering interventions in List
type ListInterventionOption func(*listInterventionConfig)

type listInterventionConfig struct {
	status     *types.InterventionStatus
	assignedTo *string
}

// WithStatus filters interventions by status
func WithStatus(status types.InterventionStatus) ListInterventionOption {
	return func(c *listInterventionConfig) {
		c.status = &status
	}
}

// WithAssignee filters interventions assigned to a technician
func WithAssignee(technicianID string) ListInterventionOption {
	return func(c *listInterventionConfig) {
		c.assignedTo = &technicianID
	}
}

// BuildListInterventionConfig builds a listInterventionConfig from options
func BuildListInterventionConfig(opts ...ListInterventionOption) *listInterventionConfig {
	cfg := &listInterventionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listInterventionConfig) Status() *types.InterventionStatus {
	return c.status
}

// AssignedTo returns the assignee filter value, or nil if not set
func (c *listInterventionConfig) AssignedTo() *string {
	return c.assignedTo
}
