package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type notificationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newNotificationRepository(client *firestore.Client) *notificationRepository {
	return &notificationRepository{
		client: client,
	}
}

func (r *notificationRepository) notificationsCollection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, string(types.CollectionNotifications)))
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	created := *n
	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.notificationsCollection().Doc(string(created.ID)).Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create notification", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, establishmentID, userID string, unreadOnly bool) ([]*model.Notification, error) {
	q := r.notificationsCollection().
		Where("EstablishmentID", "==", establishmentID).
		Where("UserID", "in", []string{userID, ""})
	if unreadOnly {
		q = q.Where("Read", "==", false)
	}

	iter := q.OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var notifications []*model.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate notifications")
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc_id", doc.Ref.ID))
		}
		notifications = append(notifications, &n)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, establishmentID string, id model.NotificationID) error {
	docRef := r.notificationsCollection().Doc(string(id))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return goerr.Wrap(err, "failed to decode notification")
		}
		if n.EstablishmentID != establishmentID {
			return goerr.Wrap(ErrNotFound, "notification belongs to another establishment")
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "Read", Value: true},
		})
	})
	if err != nil {
		if isNotFound(err) || errors.Is(err, ErrNotFound) {
			return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to mark notification as read", goerr.V("id", id))
	}

	return nil
}
