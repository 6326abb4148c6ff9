package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/utils/async"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Clock returns the current time. Tests replace it to get stable stamps.
type Clock func() time.Time

type UseCases struct {
	repo           interfaces.Repository
	clock          Clock
	publisher      interfaces.NotificationPublisher
	establishments *model.EstablishmentRegistry

	Intervention *InterventionUseCase
	RoomBlock    *RoomBlockUseCase
	Coordinator  *Coordinator
	Notification *NotificationUseCase
}

type Option func(*UseCases)

// WithClock replaces time.Now as the source of every stamp
func WithClock(clock Clock) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithPublisher forwards every emitted notification to an external
// delivery collaborator after it is stored
func WithPublisher(publisher interfaces.NotificationPublisher) Option {
	return func(uc *UseCases) {
		uc.publisher = publisher
	}
}

// WithEstablishments restricts rooms to the establishment catalogs
func WithEstablishments(registry *model.EstablishmentRegistry) Option {
	return func(uc *UseCases) {
		uc.establishments = registry
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Intervention = &InterventionUseCase{uc: uc}
	uc.RoomBlock = &RoomBlockUseCase{uc: uc}
	uc.Coordinator = &Coordinator{uc: uc}
	uc.Notification = &NotificationUseCase{uc: uc}

	return uc
}

func (uc *UseCases) now() time.Time {
	return uc.clock()
}

// loadIntervention fetches a ticket and maps a missing record to
// ErrInterventionNotFound
func (uc *UseCases) loadIntervention(ctx context.Context, establishmentID string, id model.InterventionID) (*model.Intervention, error) {
	x, err := uc.repo.Intervention().Get(ctx, establishmentID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrInterventionNotFound, "intervention not found",
				goerr.V(EstablishmentIDKey, establishmentID),
				goerr.V(InterventionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get intervention", goerr.V(InterventionIDKey, id))
	}
	return x, nil
}

// saveIntervention writes next over the stored ticket read as prev
func (uc *UseCases) saveIntervention(ctx context.Context, prev, next *model.Intervention) (*model.Intervention, error) {
	saved, err := uc.repo.Intervention().Update(ctx, next, prev.Version)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save intervention", goerr.V(InterventionIDKey, prev.ID))
	}
	return saved, nil
}

func (uc *UseCases) checkRooms(establishmentID string, rooms ...types.RoomID) error {
	if err := uc.establishments.CheckRooms(establishmentID, rooms...); err != nil {
		if errors.Is(err, model.ErrEstablishmentNotFound) {
			return err
		}
		return goerr.Wrap(ErrInvalidRoom, "room is not in the establishment catalog",
			goerr.V(EstablishmentIDKey, establishmentID),
			goerr.V("cause", err.Error()))
	}
	return nil
}

// emit stores a notification request and hands it to the publisher
func (uc *UseCases) emit(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	stored, err := uc.repo.Notification().Create(ctx, n)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store notification",
			goerr.V("type", n.Type), goerr.V(InterventionIDKey, n.InterventionID))
	}

	logging.From(ctx).Info("notification emitted",
		"type", stored.Type,
		"notification_id", stored.ID,
		"intervention_id", stored.InterventionID,
		"user_id", stored.UserID)

	if uc.publisher != nil {
		published := *stored
		async.Dispatch(ctx, "publish-notification", func(ctx context.Context) error {
			return uc.publisher.Publish(ctx, &published)
		})
	}

	return stored, nil
}

func authorize(actor model.Actor, allowed bool, action string) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !allowed {
		return goerr.Wrap(ErrForbidden, "role may not "+action,
			goerr.V(ActorKey, actor.ID), goerr.V("role", actor.Role))
	}
	return nil
}
