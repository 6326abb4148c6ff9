package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type interventionRepository struct {
	mu            sync.RWMutex
	interventions map[string]map[model.InterventionID]*model.Intervention
	feed          *feed
}

func newInterventionRepository() *interventionRepository {
	return &interventionRepository{
		interventions: make(map[string]map[model.InterventionID]*model.Intervention),
		feed:          newFeed(),
	}
}

func (r *interventionRepository) ensureEstablishment(establishmentID string) {
	if _, exists := r.interventions[establishmentID]; !exists {
		r.interventions[establishmentID] = make(map[model.InterventionID]*model.Intervention)
	}
}

func interventionEvent(kind types.ChangeKind, x *model.Intervention) *model.ChangeEvent {
	return &model.ChangeEvent{
		Collection:   types.CollectionInterventions,
		Kind:         kind,
		DocumentID:   string(x.ID),
		Intervention: x.Copy(),
		OccurredAt:   x.UpdatedAt,
	}
}

func (r *interventionRepository) Create(ctx context.Context, x *model.Intervention) (*model.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureEstablishment(x.EstablishmentID)

	created := x.Copy()
	if created.ID == "" {
		created.ID = model.NewInterventionID()
	}
	if _, exists := r.interventions[x.EstablishmentID][created.ID]; exists {
		return nil, goerr.New("intervention already exists", goerr.V("id", created.ID))
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}
	created.Version = 1

	r.interventions[x.EstablishmentID][created.ID] = created
	r.feed.publish(created.EstablishmentID, interventionEvent(types.ChangeKindAdded, created))
	return created.Copy(), nil
}

func (r *interventionRepository) Get(ctx context.Context, establishmentID string, id model.InterventionID) (*model.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	x, exists := r.interventions[establishmentID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "intervention not found", goerr.V("id", id))
	}

	return x.Copy(), nil
}

func (r *interventionRepository) List(ctx context.Context, establishmentID string, opts ...interfaces.ListInterventionOption) ([]*model.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListInterventionConfig(opts...)

	result := make([]*model.Intervention, 0, len(r.interventions[establishmentID]))
	for _, x := range r.interventions[establishmentID] {
		if s := cfg.Status(); s != nil && x.Status != *s {
			continue
		}
		if a := cfg.AssignedTo(); a != nil && x.AssignedTo != *a {
			continue
		}
		result = append(result, x.Copy())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *interventionRepository) Update(ctx context.Context, x *model.Intervention, expectedVersion int64) (*model.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.interventions[x.EstablishmentID][x.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "intervention not found", goerr.V("id", x.ID))
	}
	if existing.Version != expectedVersion {
		return nil, goerr.Wrap(interfaces.ErrStaleWrite, "intervention version mismatch",
			goerr.V("id", x.ID),
			goerr.V("expected_version", expectedVersion),
			goerr.V("stored_version", existing.Version))
	}

	updated := x.Copy()
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	if updated.UpdatedAt.IsZero() {
		updated.UpdatedAt = time.Now().UTC()
	}
	updated.Version = expectedVersion + 1

	r.interventions[x.EstablishmentID][x.ID] = updated
	r.feed.publish(updated.EstablishmentID, interventionEvent(types.ChangeKindModified, updated))
	return updated.Copy(), nil
}

func (r *interventionRepository) Subscribe(ctx context.Context, establishmentID string) (<-chan *model.ChangeEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	initial := make([]*model.ChangeEvent, 0, len(r.interventions[establishmentID]))
	for _, x := range r.interventions[establishmentID] {
		initial = append(initial, interventionEvent(types.ChangeKindAdded, x))
	}
	sort.Slice(initial, func(i, j int) bool {
		return initial[i].Intervention.CreatedAt.Before(initial[j].Intervention.CreatedAt)
	})

	return r.feed.subscribe(ctx, establishmentID, initial), nil
}
