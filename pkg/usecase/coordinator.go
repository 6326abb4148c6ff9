package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Coordinator sequences operations that touch a ticket together with the
// room block registry or the notification requests. Each step is a single
// document write; there is no cross-document transaction.
type Coordinator struct {
	uc *UseCases
}

// BlockResult is the outcome of BlockRoomForTicket
type BlockResult struct {
	Block        *model.RoomBlock
	Notification *model.Notification // nil unless the room became blocked
}

// BlockRoomForTicket toggles the block of a room the ticket touches. A
// reason is always required, whatever the current state of the room. When
// the toggle activates the block an establishment-wide room_blocked
// notification is emitted.
func (c *Coordinator) BlockRoomForTicket(ctx context.Context, establishmentID string, id model.InterventionID, room types.RoomID, actor model.Actor, reason string, opts ...MutationOption) (*BlockResult, error) {
	if err := authorize(actor, actor.Role.CanToggleRoomBlock(), "toggle room blocks"); err != nil {
		return nil, err
	}

	x, err := c.uc.loadIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}

	if err := room.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRoom, "invalid room", goerr.V(RoomKey, room), goerr.V("cause", err.Error()))
	}
	if !x.HasRoom(room) {
		return nil, goerr.Wrap(ErrRoomNotInTicket, "room is not part of the intervention",
			goerr.V(RoomKey, room), goerr.V(InterventionIDKey, id))
	}
	if strings.TrimSpace(reason) == "" {
		return nil, goerr.Wrap(ErrMissingReason, "reason is required to block a room for an intervention",
			goerr.V(RoomKey, room), goerr.V(InterventionIDKey, id))
	}

	toggled, err := c.uc.RoomBlock.toggle(ctx, establishmentID, room, actor, reason, buildMutationConfig(opts...))
	if err != nil {
		return nil, err
	}

	result := &BlockResult{Block: toggled.Block}
	if !toggled.Activated {
		return result, nil
	}

	n, err := c.uc.emit(ctx, model.NewRoomBlockedNotification(x, toggled.Block, c.uc.now()))
	if err != nil {
		return result, &PartialApplyError{
			CompletedStep: StepRoomBlock,
			FailedStep:    StepNotification,
			Cause:         err,
		}
	}
	result.Notification = n
	return result, nil
}

// StatusResult is the outcome of ChangeStatus
type StatusResult struct {
	Intervention *model.Intervention
	Notification *model.Notification // nil unless the ticket was completed
}

// ChangeStatus moves the ticket to status. Completing it emits an
// intervention_completed notification to the ticket creator. Rooms stay
// blocked; unblocking is always an explicit action.
func (c *Coordinator) ChangeStatus(ctx context.Context, establishmentID string, id model.InterventionID, status types.InterventionStatus, actor model.Actor, comment string, opts ...MutationOption) (*StatusResult, error) {
	if err := authorize(actor, actor.Role.CanChangeStatus(), "change intervention status"); err != nil {
		return nil, err
	}

	cfg := buildMutationConfig(opts...)

	x, err := c.uc.loadIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	if err := cfg.checkVersion(x.Version); err != nil {
		return nil, goerr.Wrap(err, "intervention changed", goerr.V(InterventionIDKey, id))
	}

	next, err := model.Transition(x, status, actor, comment, c.uc.now())
	if err != nil {
		return nil, err
	}

	saved, err := c.uc.saveIntervention(ctx, x, next)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{Intervention: saved}
	if saved.Status != types.InterventionStatusCompleted {
		return result, nil
	}

	n, err := c.uc.emit(ctx, model.NewInterventionCompletedNotification(saved, c.uc.now()))
	if err != nil {
		return result, &PartialApplyError{
			CompletedStep: StepStatus,
			FailedStep:    StepNotification,
			Cause:         err,
		}
	}
	result.Notification = n
	return result, nil
}

// EditIntervention applies a metadata edit. History is left alone; the
// editor is recorded in UpdatedBy.
func (c *Coordinator) EditIntervention(ctx context.Context, establishmentID string, id model.InterventionID, set model.EditSet, actor model.Actor, opts ...MutationOption) (*model.Intervention, error) {
	if err := authorize(actor, actor.Role.CanEditIntervention(), "edit interventions"); err != nil {
		return nil, err
	}

	cfg := buildMutationConfig(opts...)

	x, err := c.uc.loadIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	if err := cfg.checkVersion(x.Version); err != nil {
		return nil, goerr.Wrap(err, "intervention changed", goerr.V(InterventionIDKey, id))
	}

	next, err := model.ApplyEdit(x, set, actor, c.uc.now())
	if err != nil {
		return nil, err
	}
	if _, ok := set[model.EditFieldRooms]; ok {
		if err := c.uc.checkRooms(establishmentID, next.Rooms...); err != nil {
			return nil, err
		}
	}

	return c.uc.saveIntervention(ctx, x, next)
}

// Subscribe merges the intervention and room block change feeds of an
// establishment. The returned channel closes once ctx ends and both feeds
// are drained.
func (c *Coordinator) Subscribe(ctx context.Context, establishmentID string) (<-chan *model.ChangeEvent, error) {
	ctx, cancel := context.WithCancel(ctx)

	interventions, err := c.uc.repo.Intervention().Subscribe(ctx, establishmentID)
	if err != nil {
		cancel()
		return nil, goerr.Wrap(err, "failed to subscribe to interventions")
	}
	blocks, err := c.uc.repo.RoomBlock().Subscribe(ctx, establishmentID)
	if err != nil {
		cancel()
		return nil, goerr.Wrap(err, "failed to subscribe to room blocks")
	}

	out := make(chan *model.ChangeEvent)
	var wg sync.WaitGroup
	forward := func(in <-chan *model.ChangeEvent) {
		defer wg.Done()
		// a feed closed by its backend ends the merged subscription
		defer cancel()
		for ev := range in {
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
	}

	wg.Add(2)
	go forward(interventions)
	go forward(blocks)
	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}
