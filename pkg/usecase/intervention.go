package usecase

import (
	"context"
	"strings"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type InterventionUseCase struct {
	uc *UseCases
}

// CreateInterventionInput carries the fields a caller may set when opening
// a ticket. Status always starts at todo.
type CreateInterventionInput struct {
	Rooms            []string
	RoomType         types.RoomType
	MissionType      string
	InterventionType string
	Priority         types.Priority
	AssignedTo       string
	MissionSummary   string
	MissionComment   string
	SuppliesNeeded   []model.Supply
}

func (u *InterventionUseCase) CreateIntervention(ctx context.Context, establishmentID string, actor model.Actor, input CreateInterventionInput) (*model.Intervention, error) {
	if err := authorize(actor, actor.Role.IsValid(), "create interventions"); err != nil {
		return nil, err
	}

	rooms, err := types.ParseRoomIDs(input.Rooms)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidRoom, "invalid room in new intervention",
			goerr.V("cause", err.Error()))
	}
	if err := u.uc.checkRooms(establishmentID, rooms...); err != nil {
		return nil, err
	}

	roomType := input.RoomType
	if roomType == "" {
		roomType = types.RoomTypeRoom
	}

	now := u.uc.now()
	x := &model.Intervention{
		ID:               model.NewInterventionID(),
		EstablishmentID:  establishmentID,
		Rooms:            rooms,
		RoomType:         roomType,
		MissionType:      strings.TrimSpace(input.MissionType),
		InterventionType: strings.TrimSpace(input.InterventionType),
		Status:           types.InterventionStatusTodo,
		Priority:         input.Priority.Normalize(),
		AssignedTo:       strings.TrimSpace(input.AssignedTo),
		MissionSummary:   strings.TrimSpace(input.MissionSummary),
		MissionComment:   input.MissionComment,
		CreatedAt:        now,
		CreatedBy:        actor.ID,
		UpdatedAt:        now,
		UpdatedBy:        actor.ID,
	}

	if len(input.SuppliesNeeded) > 0 {
		withSupplies, err := model.SetSupplies(x, actor, input.SuppliesNeeded, now)
		if err != nil {
			return nil, err
		}
		x = withSupplies
	}

	if err := model.ValidateNew(x); err != nil {
		return nil, err
	}

	created, err := u.uc.repo.Intervention().Create(ctx, x)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create intervention")
	}
	return created, nil
}

// GetIntervention returns the ticket decorated with its blocked rooms
func (u *InterventionUseCase) GetIntervention(ctx context.Context, establishmentID string, id model.InterventionID) (*model.InterventionView, error) {
	x, err := u.uc.loadIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}

	check, err := u.uc.RoomBlock.IsAnyBlocked(ctx, establishmentID, x.Rooms)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decorate intervention", goerr.V(InterventionIDKey, id))
	}

	return &model.InterventionView{Intervention: x, BlockedRooms: check.BlockedRooms}, nil
}

// ListInterventions returns the establishment's tickets, newest first, each
// decorated with its blocked rooms. Block records are fetched once for the
// whole page.
func (u *InterventionUseCase) ListInterventions(ctx context.Context, establishmentID string, opts ...interfaces.ListInterventionOption) ([]*model.InterventionView, error) {
	interventions, err := u.uc.repo.Intervention().List(ctx, establishmentID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list interventions")
	}

	seen := make(map[types.RoomID]struct{})
	var rooms []types.RoomID
	for _, x := range interventions {
		for _, r := range x.Rooms {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				rooms = append(rooms, r)
			}
		}
	}

	blocks := map[types.RoomID]*model.RoomBlock{}
	if len(rooms) > 0 {
		blocks, err = u.uc.repo.RoomBlock().FindByRooms(ctx, establishmentID, rooms)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up room blocks")
		}
	}

	views := make([]*model.InterventionView, 0, len(interventions))
	for _, x := range interventions {
		views = append(views, &model.InterventionView{
			Intervention: x,
			BlockedRooms: model.CheckBlocked(x.Rooms, blocks).BlockedRooms,
		})
	}
	return views, nil
}

// AddMessage appends a message to the ticket thread. Any valid role may
// post.
func (u *InterventionUseCase) AddMessage(ctx context.Context, establishmentID string, id model.InterventionID, actor model.Actor, text string, photos []string, opts ...MutationOption) (*model.Intervention, error) {
	return u.mutate(ctx, establishmentID, id, actor, opts, func(x *model.Intervention) (*model.Intervention, error) {
		return model.AddMessage(x, actor, text, photos, u.uc.now())
	})
}

// SetSupplies replaces the supplies list of the ticket
func (u *InterventionUseCase) SetSupplies(ctx context.Context, establishmentID string, id model.InterventionID, actor model.Actor, supplies []model.Supply, opts ...MutationOption) (*model.Intervention, error) {
	return u.mutate(ctx, establishmentID, id, actor, opts, func(x *model.Intervention) (*model.Intervention, error) {
		return model.SetSupplies(x, actor, supplies, u.uc.now())
	})
}

// MarkSupplyOrdered flags one supply of the ticket as ordered
func (u *InterventionUseCase) MarkSupplyOrdered(ctx context.Context, establishmentID string, id model.InterventionID, actor model.Actor, index int, opts ...MutationOption) (*model.Intervention, error) {
	return u.mutate(ctx, establishmentID, id, actor, opts, func(x *model.Intervention) (*model.Intervention, error) {
		return model.MarkSupplyOrdered(x, actor, index, u.uc.now())
	})
}

// mutate runs the read-check-write cycle shared by the thread and supplies
// operations
func (u *InterventionUseCase) mutate(ctx context.Context, establishmentID string, id model.InterventionID, actor model.Actor, opts []MutationOption, apply func(*model.Intervention) (*model.Intervention, error)) (*model.Intervention, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	cfg := buildMutationConfig(opts...)

	x, err := u.uc.loadIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	if err := cfg.checkVersion(x.Version); err != nil {
		return nil, goerr.Wrap(err, "intervention changed", goerr.V(InterventionIDKey, id))
	}

	next, err := apply(x)
	if err != nil {
		return nil, err
	}

	return u.uc.saveIntervention(ctx, x, next)
}
