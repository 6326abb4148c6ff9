package model_test

import (
	"testing"
	"time"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestRoomBlock_Toggle(t *testing.T) {
	t.Run("fresh room blocks then unblocks", func(t *testing.T) {
		fresh := model.NewRoomBlock("hotel-a", "205")

		blocked, err := fresh.Toggle(testActor, "leak", testNow)
		gt.NoError(t, err).Required()
		gt.Bool(t, blocked.Blocked).True()
		gt.Value(t, blocked.Reason).Equal("leak")
		gt.Value(t, blocked.BlockedBy).Equal("u-manager")
		gt.Value(t, blocked.BlockedByName).Equal("Alice")
		gt.Value(t, *blocked.BlockedAt).Equal(testNow)
		gt.Value(t, blocked.UnblockedAt).Nil()

		later := testNow.Add(time.Hour)
		unblocked, err := blocked.Toggle(testActor, "", later)
		gt.NoError(t, err).Required()
		gt.Bool(t, unblocked.Blocked).False()
		gt.Value(t, *unblocked.UnblockedAt).Equal(later)
		gt.Value(t, unblocked.Reason).Equal("leak")
	})

	t.Run("blocking without reason is rejected", func(t *testing.T) {
		fresh := model.NewRoomBlock("hotel-a", "205")
		_, err := fresh.Toggle(testActor, "   ", testNow)
		gt.Error(t, err).Is(model.ErrMissingReason)
		gt.Bool(t, fresh.Blocked).False()
	})

	t.Run("re-block overwrites activation stamps and clears unblock", func(t *testing.T) {
		b, err := model.NewRoomBlock("hotel-a", "205").Toggle(testActor, "leak", testNow)
		gt.NoError(t, err).Required()
		b, err = b.Toggle(testActor, "", testNow.Add(time.Hour))
		gt.NoError(t, err).Required()

		other := model.Actor{ID: "u-admin", Name: "Bob", Role: types.RoleSuperAdmin}
		reblocked, err := b.Toggle(other, "mould", testNow.Add(2*time.Hour))
		gt.NoError(t, err).Required()
		gt.Value(t, reblocked.ID).Equal(b.ID)
		gt.Value(t, reblocked.Reason).Equal("mould")
		gt.Value(t, reblocked.BlockedBy).Equal("u-admin")
		gt.Value(t, reblocked.UnblockedAt).Nil()
	})

	t.Run("document ID is derived from the key", func(t *testing.T) {
		gt.Value(t, model.RoomBlockID("hotel-a", "205")).Equal(model.RoomBlockID("hotel-a", "205"))
		gt.Value(t, model.RoomBlockID("hotel-a", "205")).NotEqual(model.RoomBlockID("hotel-b", "205"))
	})
}

func TestCheckBlocked(t *testing.T) {
	blocked, err := model.NewRoomBlock("hotel-a", "101").Toggle(testActor, "leak", testNow)
	gt.NoError(t, err).Required()

	check := model.CheckBlocked([]types.RoomID{"101", "102"}, map[types.RoomID]*model.RoomBlock{
		"101": blocked,
		"102": model.NewRoomBlock("hotel-a", "102"),
	})
	gt.Bool(t, check.AnyBlocked).True()
	gt.Value(t, check.BlockedRooms).Equal([]types.RoomID{"101"})

	none := model.CheckBlocked([]types.RoomID{"102"}, nil)
	gt.Bool(t, none.AnyBlocked).False()
	gt.Array(t, none.BlockedRooms).Length(0)
}

func TestPreferredRoomBlock(t *testing.T) {
	old := &model.RoomBlock{ID: "a", Room: "205", UpdatedAt: testNow}
	newer := &model.RoomBlock{ID: "b", Room: "205", UpdatedAt: testNow.Add(time.Hour)}
	active := &model.RoomBlock{ID: "c", Room: "205", Blocked: true, UpdatedAt: testNow.Add(-time.Hour)}

	gt.Value(t, model.PreferredRoomBlock(nil)).Nil()
	gt.Value(t, model.PreferredRoomBlock([]*model.RoomBlock{old, newer}).ID).Equal("b")
	gt.Value(t, model.PreferredRoomBlock([]*model.RoomBlock{old, active, newer}).ID).Equal("c")
}
