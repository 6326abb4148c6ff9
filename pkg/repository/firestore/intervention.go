package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type interventionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newInterventionRepository(client *firestore.Client) *interventionRepository {
	return &interventionRepository{
		client: client,
	}
}

func (r *interventionRepository) interventionsCollection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, string(types.CollectionInterventions)))
}

func (r *interventionRepository) Create(ctx context.Context, x *model.Intervention) (*model.Intervention, error) {
	created := x.Copy()
	if created.ID == "" {
		created.ID = model.NewInterventionID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}
	created.Version = 1

	if _, err := r.interventionsCollection().Doc(string(created.ID)).Create(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create intervention", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *interventionRepository) Get(ctx context.Context, establishmentID string, id model.InterventionID) (*model.Intervention, error) {
	doc, err := r.interventionsCollection().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "intervention not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get intervention", goerr.V("id", id))
	}

	var x model.Intervention
	if err := doc.DataTo(&x); err != nil {
		return nil, goerr.Wrap(err, "failed to decode intervention", goerr.V("id", id))
	}

	// IDs are global; a document of another establishment is invisible
	if x.EstablishmentID != establishmentID {
		return nil, goerr.Wrap(ErrNotFound, "intervention not found", goerr.V("id", id))
	}

	return &x, nil
}

func (r *interventionRepository) List(ctx context.Context, establishmentID string, opts ...interfaces.ListInterventionOption) ([]*model.Intervention, error) {
	cfg := interfaces.BuildListInterventionConfig(opts...)

	q := r.interventionsCollection().Where("EstablishmentID", "==", establishmentID)
	if s := cfg.Status(); s != nil {
		q = q.Where("Status", "==", string(*s))
	}
	if a := cfg.AssignedTo(); a != nil {
		q = q.Where("AssignedTo", "==", *a)
	}

	iter := q.OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var interventions []*model.Intervention
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate interventions")
		}

		var x model.Intervention
		if err := doc.DataTo(&x); err != nil {
			return nil, goerr.Wrap(err, "failed to decode intervention", goerr.V("doc_id", doc.Ref.ID))
		}
		interventions = append(interventions, &x)
	}

	return interventions, nil
}

func (r *interventionRepository) Update(ctx context.Context, x *model.Intervention, expectedVersion int64) (*model.Intervention, error) {
	docRef := r.interventionsCollection().Doc(string(x.ID))

	var updated *model.Intervention
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var existing model.Intervention
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode intervention")
		}
		if existing.EstablishmentID != x.EstablishmentID {
			return goerr.Wrap(ErrNotFound, "intervention not found")
		}
		if existing.Version != expectedVersion {
			return goerr.Wrap(errCollided, "stored version differs",
				goerr.V("stored_version", existing.Version))
		}

		updated = x.Copy()
		updated.CreatedAt = existing.CreatedAt
		updated.CreatedBy = existing.CreatedBy
		if updated.UpdatedAt.IsZero() {
			updated.UpdatedAt = time.Now().UTC()
		}
		updated.Version = expectedVersion + 1

		return tx.Set(docRef, updated)
	})
	if err != nil {
		switch {
		case isNotFound(err) || errors.Is(err, ErrNotFound):
			return nil, goerr.Wrap(ErrNotFound, "intervention not found", goerr.V("id", x.ID))
		case isCollision(err):
			return nil, goerr.Wrap(interfaces.ErrStaleWrite, "intervention version mismatch",
				goerr.V("id", x.ID),
				goerr.V("expected_version", expectedVersion),
				goerr.V("cause", err.Error()))
		}
		return nil, goerr.Wrap(err, "failed to update intervention", goerr.V("id", x.ID))
	}

	return updated, nil
}

func (r *interventionRepository) Subscribe(ctx context.Context, establishmentID string) (<-chan *model.ChangeEvent, error) {
	q := r.interventionsCollection().Where("EstablishmentID", "==", establishmentID)

	return listen(ctx, q, func(kind types.ChangeKind, doc *firestore.DocumentSnapshot) (*model.ChangeEvent, error) {
		ev := &model.ChangeEvent{
			Collection: types.CollectionInterventions,
			Kind:       kind,
			DocumentID: doc.Ref.ID,
			OccurredAt: doc.UpdateTime,
		}
		if kind == types.ChangeKindRemoved {
			return ev, nil
		}

		var x model.Intervention
		if err := doc.DataTo(&x); err != nil {
			return nil, goerr.Wrap(err, "failed to decode intervention", goerr.V("doc_id", doc.Ref.ID))
		}
		ev.Intervention = &x
		ev.OccurredAt = x.UpdatedAt
		return ev, nil
	}), nil
}
