package usecase

import (
	"context"
	"errors"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type NotificationUseCase struct {
	uc *UseCases
}

// ListNotifications returns the notifications addressed to actor plus the
// establishment-wide ones, newest first
func (u *NotificationUseCase) ListNotifications(ctx context.Context, establishmentID string, actor model.Actor, unreadOnly bool) ([]*model.Notification, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	notifications, err := u.uc.repo.Notification().ListForUser(ctx, establishmentID, actor.ID, unreadOnly)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications")
	}
	return notifications, nil
}

func (u *NotificationUseCase) MarkNotificationRead(ctx context.Context, establishmentID string, id model.NotificationID, actor model.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	if err := u.uc.repo.Notification().MarkRead(ctx, establishmentID, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrNotificationNotFound, "notification not found", goerr.V("notification_id", id))
		}
		return goerr.Wrap(err, "failed to mark notification as read", goerr.V("notification_id", id))
	}
	return nil
}
