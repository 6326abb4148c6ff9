package interfaces

import (
	"context"

	"github.com/hotelops/intervention/pkg/domain/model"
)

// InterventionRepository defines the interface for Intervention data access
type InterventionRepository interface {
	// Create stores a new intervention with Version 1
	Create(ctx context.Context, x *model.Intervention) (*model.Intervention, error)

	// Get retrieves an intervention by ID
	Get(ctx context.Context, establishmentID string, id model.InterventionID) (*model.Intervention, error)

	// List retrieves interventions of an establishment, newest first
	List(ctx context.Context, establishmentID string, opts ...ListInterventionOption) ([]*model.Intervention, error)

	// Update replaces the stored intervention when its version equals
	// expectedVersion and returns it with the version incremented.
	// Returns ErrStaleWrite on mismatch.
	Update(ctx context.Context, x *model.Intervention, expectedVersion int64) (*model.Intervention, error)

	// Subscribe streams changes of the establishment's interventions until
	// ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context, establishmentID string) (<-chan *model.ChangeEvent, error)
}
