package usecase

import (
	"context"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// RoomBlockUseCase is the blocked-rooms registry backed by the repository
type RoomBlockUseCase struct {
	uc *UseCases
}

// ToggleResult is the stored record after a toggle
type ToggleResult struct {
	Block *model.RoomBlock
	// Activated is true when this toggle flipped the room to blocked
	Activated bool
}

// ToggleRoomBlock flips the block state of room. Only roles allowed to
// manage blocks may call it.
func (u *RoomBlockUseCase) ToggleRoomBlock(ctx context.Context, establishmentID string, room types.RoomID, actor model.Actor, reason string, opts ...MutationOption) (*ToggleResult, error) {
	if err := authorize(actor, actor.Role.CanToggleRoomBlock(), "toggle room blocks"); err != nil {
		return nil, err
	}
	if err := room.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRoom, "invalid room", goerr.V(RoomKey, room), goerr.V("cause", err.Error()))
	}
	if err := u.uc.checkRooms(establishmentID, room); err != nil {
		return nil, err
	}

	return u.toggle(ctx, establishmentID, room, actor, reason, buildMutationConfig(opts...))
}

// toggle finds or creates the record for room and stores its flipped state
// with a version check
func (u *RoomBlockUseCase) toggle(ctx context.Context, establishmentID string, room types.RoomID, actor model.Actor, reason string, cfg *mutationConfig) (*ToggleResult, error) {
	current, err := u.uc.repo.RoomBlock().FindByRoom(ctx, establishmentID, room)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find room block", goerr.V(RoomKey, room))
	}
	exists := current != nil
	if !exists {
		current = model.NewRoomBlock(establishmentID, room)
	}

	if err := cfg.checkVersion(current.Version); err != nil {
		return nil, goerr.Wrap(err, "room block changed", goerr.V(RoomKey, room))
	}

	next, err := current.Toggle(actor, reason, u.uc.now())
	if err != nil {
		return nil, err
	}

	var stored *model.RoomBlock
	if exists {
		stored, err = u.uc.repo.RoomBlock().Update(ctx, next, current.Version)
	} else {
		stored, err = u.uc.repo.RoomBlock().Create(ctx, next)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store room block", goerr.V(RoomKey, room))
	}

	logging.From(ctx).Info("room block toggled",
		"establishment_id", establishmentID,
		"room", room,
		"blocked", stored.Blocked,
		"actor_id", actor.ID)

	return &ToggleResult{Block: stored, Activated: stored.Blocked}, nil
}

// GetRoomBlock returns the record of room, or an unblocked unpersisted one
// when the room was never blocked
func (u *RoomBlockUseCase) GetRoomBlock(ctx context.Context, establishmentID string, room types.RoomID) (*model.RoomBlock, error) {
	if err := room.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRoom, "invalid room", goerr.V(RoomKey, room), goerr.V("cause", err.Error()))
	}

	b, err := u.uc.repo.RoomBlock().FindByRoom(ctx, establishmentID, room)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find room block", goerr.V(RoomKey, room))
	}
	if b == nil {
		return model.NewRoomBlock(establishmentID, room), nil
	}
	return b, nil
}

// IsBlocked reports whether room has an active block
func (u *RoomBlockUseCase) IsBlocked(ctx context.Context, establishmentID string, room types.RoomID) (bool, error) {
	b, err := u.GetRoomBlock(ctx, establishmentID, room)
	if err != nil {
		return false, err
	}
	return b.Blocked, nil
}

// IsAnyBlocked reports which of rooms have an active block, in input order
func (u *RoomBlockUseCase) IsAnyBlocked(ctx context.Context, establishmentID string, rooms []types.RoomID) (model.BlockCheck, error) {
	if len(rooms) == 0 {
		return model.CheckBlocked(nil, nil), nil
	}

	blocks, err := u.uc.repo.RoomBlock().FindByRooms(ctx, establishmentID, rooms)
	if err != nil {
		return model.BlockCheck{}, goerr.Wrap(err, "failed to find room blocks", goerr.V("rooms", rooms))
	}
	return model.CheckBlocked(rooms, blocks), nil
}

// ListRoomBlocks returns the establishment's block records sorted by room
func (u *RoomBlockUseCase) ListRoomBlocks(ctx context.Context, establishmentID string, activeOnly bool) ([]*model.RoomBlock, error) {
	blocks, err := u.uc.repo.RoomBlock().List(ctx, establishmentID, activeOnly)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list room blocks")
	}
	return blocks, nil
}
