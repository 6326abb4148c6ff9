package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = interfaces.ErrNotFound

type Firestore struct {
	client       *firestore.Client
	intervention *interventionRepository
	roomBlock    *roomBlockRepository
	notification *notificationRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces every collection, e.g. "test" turns
// "interventions" into "test_interventions".
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.intervention.collectionPrefix = prefix
		f.roomBlock.collectionPrefix = prefix
		f.notification.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		intervention: newInterventionRepository(client),
		roomBlock:    newRoomBlockRepository(client),
		notification: newNotificationRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Intervention() interfaces.InterventionRepository {
	return f.intervention
}

func (f *Firestore) RoomBlock() interfaces.RoomBlockRepository {
	return f.roomBlock
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notification
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// CollectionName returns the physical name of a collection under prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// isNotFound reports whether err is a gRPC NotFound, as returned by
// DocumentRef.Get and Transaction.Get for a missing document.
func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// errCollided is returned from a transaction body when the stored version
// does not match. It never leaves this package: the callers translate it
// into interfaces.ErrStaleWrite with the relevant values attached.
var errCollided = errors.New("version collided")

// isCollision reports whether a write lost a race, either detected by the
// version check or rejected by the server.
func isCollision(err error) bool {
	if errors.Is(err, errCollided) {
		return true
	}
	switch status.Code(err) {
	case codes.AlreadyExists, codes.Aborted:
		return true
	}
	return false
}

// isCanceled reports whether a listener stopped because its context ended
func isCanceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled)
}
