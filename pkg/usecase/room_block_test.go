package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/repository/memory"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestRoomBlockUseCase_ToggleRoomBlock(t *testing.T) {
	ctx := context.Background()

	t.Run("two toggles on a fresh room block then unblock", func(t *testing.T) {
		uc := newUseCases(t, nil)

		first, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager, "leak")
		gt.NoError(t, err).Required()
		gt.Bool(t, first.Activated).True()
		gt.Bool(t, first.Block.Blocked).True()
		gt.Value(t, first.Block.UnblockedAt).Nil()

		second, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, second.Activated).False()
		gt.Bool(t, second.Block.Blocked).False()
		gt.Value(t, second.Block.UnblockedAt).NotNil()
		gt.Value(t, second.Block.Version).Equal(first.Block.Version + 1)
	})

	t.Run("activation without reason leaves the record untouched", func(t *testing.T) {
		uc := newUseCases(t, nil)

		_, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager, "   ")
		gt.Bool(t, errors.Is(err, usecase.ErrMissingReason)).True()

		blocks, err := uc.RoomBlock.ListRoomBlocks(ctx, testEstablishmentID, false)
		gt.NoError(t, err).Required()
		gt.Array(t, blocks).Length(0)
	})

	t.Run("technician may not toggle", func(t *testing.T) {
		uc := newUseCases(t, nil)

		_, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", technician, "leak")
		gt.Bool(t, errors.Is(err, usecase.ErrForbidden)).True()
	})

	t.Run("malformed room is rejected", func(t *testing.T) {
		uc := newUseCases(t, nil)

		_, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "room/1", manager, "leak")
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidRoom)).True()
	})

	t.Run("record without version is toggled in place", func(t *testing.T) {
		blockedAt := time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)
		repo := memory.New(memory.WithRoomBlocks(&model.RoomBlock{
			ID:              "legacy-101",
			EstablishmentID: testEstablishmentID,
			Room:            "101",
			Blocked:         true,
			Reason:          "old leak",
			BlockedAt:       &blockedAt,
			UpdatedAt:       blockedAt,
		}))
		uc := newUseCases(t, repo)

		off, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, off.Block.Blocked).False()
		gt.Value(t, off.Block.ID).Equal("legacy-101")
		gt.Value(t, off.Block.Version).Equal(int64(1))

		on, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager, "leak again")
		gt.NoError(t, err).Required()
		gt.Bool(t, on.Block.Blocked).True()
		gt.Value(t, on.Block.Version).Equal(int64(2))

		blocks, err := uc.RoomBlock.ListRoomBlocks(ctx, testEstablishmentID, false)
		gt.NoError(t, err).Required()
		gt.Array(t, blocks).Length(1)
	})

	t.Run("pinned version guards against concurrent toggles", func(t *testing.T) {
		uc := newUseCases(t, nil)

		// both callers saw the fresh room (version 0)
		_, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager, "leak",
			usecase.WithExpectedVersion(0))
		gt.NoError(t, err).Required()
		_, err = uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager2, "paint",
			usecase.WithExpectedVersion(0))
		gt.Bool(t, errors.Is(err, usecase.ErrStaleWrite)).True()

		b, err := uc.RoomBlock.GetRoomBlock(ctx, testEstablishmentID, "101")
		gt.NoError(t, err).Required()
		gt.Value(t, b.Reason).Equal("leak")
		gt.Bool(t, b.Blocked).True()
	})
}

func TestRoomBlockUseCase_IsAnyBlocked(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, nil)

	_, err := uc.RoomBlock.ToggleRoomBlock(ctx, testEstablishmentID, "101", manager, "leak")
	gt.NoError(t, err).Required()

	check, err := uc.RoomBlock.IsAnyBlocked(ctx, testEstablishmentID, []types.RoomID{"101", "102"})
	gt.NoError(t, err).Required()
	gt.Bool(t, check.AnyBlocked).True()
	gt.Array(t, check.BlockedRooms).Equal([]types.RoomID{"101"})

	none, err := uc.RoomBlock.IsAnyBlocked(ctx, testEstablishmentID, []types.RoomID{"102"})
	gt.NoError(t, err).Required()
	gt.Bool(t, none.AnyBlocked).False()
	gt.Array(t, none.BlockedRooms).Length(0)

	empty, err := uc.RoomBlock.IsAnyBlocked(ctx, testEstablishmentID, nil)
	gt.NoError(t, err).Required()
	gt.Bool(t, empty.AnyBlocked).False()

	active, err := uc.RoomBlock.ListRoomBlocks(ctx, testEstablishmentID, true)
	gt.NoError(t, err).Required()
	gt.Array(t, active).Length(1)
}
