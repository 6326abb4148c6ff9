package interfaces

import (
	"context"

	"github.com/hotelops/intervention/pkg/domain/model"
)

// NotificationPublisher forwards emitted notification requests to an
// external delivery collaborator (message broker, push gateway, ...).
type NotificationPublisher interface {
	Publish(ctx context.Context, n *model.Notification) error
}
