package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestNotificationRepository(t *testing.T) {
	eachRepository(t, runNotificationRepositoryTest)
}

func runNotificationRepositoryTest(t *testing.T, newRepo repoFactory) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("ListForUser includes broadcasts and own notifications only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		eid := establishment(t)

		for i, userID := range []string{"", "u-1", "u-2"} {
			_, err := repo.Notification().Create(ctx, &model.Notification{
				EstablishmentID: eid,
				UserID:          userID,
				Type:            types.NotificationTypeRoomBlocked,
				Title:           "Room blocked",
				CreatedAt:       base.Add(time.Duration(i) * time.Minute),
			})
			gt.NoError(t, err).Required()
		}

		got, err := repo.Notification().ListForUser(ctx, eid, "u-1", false)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].UserID).Equal("u-1")
		gt.Value(t, got[1].UserID).Equal("")
	})

	t.Run("MarkRead hides notification from unread listing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		eid := establishment(t)

		created, err := repo.Notification().Create(ctx, &model.Notification{
			EstablishmentID: eid,
			UserID:          "u-1",
			Type:            types.NotificationTypeInterventionCompleted,
			Title:           "Intervention completed",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual(model.NotificationID(""))

		gt.NoError(t, repo.Notification().MarkRead(ctx, eid, created.ID))

		unread, err := repo.Notification().ListForUser(ctx, eid, "u-1", true)
		gt.NoError(t, err).Required()
		gt.Array(t, unread).Length(0)

		all, err := repo.Notification().ListForUser(ctx, eid, "u-1", false)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(1).Required()
		gt.Value(t, all[0].Read).Equal(true)
	})

	t.Run("MarkRead returns ErrNotFound for unknown notification", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.Notification().MarkRead(context.Background(), establishment(t), model.NewNotificationID())
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})
}
