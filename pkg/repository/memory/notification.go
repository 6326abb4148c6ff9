package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]map[model.NotificationID]*model.Notification
}

func newNotificationRepository() *notificationRepository {
	return &notificationRepository{
		notifications: make(map[string]map[model.NotificationID]*model.Notification),
	}
}

func copyNotification(n *model.Notification) *model.Notification {
	copied := *n
	return &copied
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notifications[n.EstablishmentID]; !exists {
		r.notifications[n.EstablishmentID] = make(map[model.NotificationID]*model.Notification)
	}

	created := copyNotification(n)
	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.notifications[n.EstablishmentID][created.ID] = created
	return copyNotification(created), nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, establishmentID, userID string, unreadOnly bool) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Notification
	for _, n := range r.notifications[establishmentID] {
		if n.UserID != "" && n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		result = append(result, copyNotification(n))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, establishmentID string, id model.NotificationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notifications[establishmentID][id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	n.Read = true
	return nil
}
