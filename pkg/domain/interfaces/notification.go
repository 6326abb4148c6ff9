package interfaces

import (
	"context"

	"github.com/hotelops/intervention/pkg/domain/model"
)

// NotificationRepository defines the interface for Notification data access
type NotificationRepository interface {
	// Create stores a notification request
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// ListForUser retrieves notifications addressed to userID plus the
	// establishment-wide ones, newest first
	ListForUser(ctx context.Context, establishmentID, userID string, unreadOnly bool) ([]*model.Notification, error)

	// MarkRead flags a notification as read
	MarkRead(ctx context.Context, establishmentID string, id model.NotificationID) error
}
