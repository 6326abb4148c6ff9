package model

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Editable intervention fields. Status is deliberately absent: it only moves
// through Transition.
const (
	EditFieldMissionSummary   = "missionSummary"
	EditFieldMissionComment   = "missionComment"
	EditFieldAssignedTo       = "assignedTo"
	EditFieldRooms            = "rooms"
	EditFieldRoomType         = "roomType"
	EditFieldMissionType      = "missionType"
	EditFieldInterventionType = "interventionType"
	EditFieldPriority         = "priority"
)

// AllowedEditFields returns the field names accepted by ApplyEdit
func AllowedEditFields() []string {
	return []string{
		EditFieldMissionSummary,
		EditFieldMissionComment,
		EditFieldAssignedTo,
		EditFieldRooms,
		EditFieldRoomType,
		EditFieldMissionType,
		EditFieldInterventionType,
		EditFieldPriority,
	}
}

// EditSet is a partial update keyed by field name. Values are strings, except
// rooms ([]string, []any of strings or []types.RoomID) and assignedTo which
// may be nil to unassign.
type EditSet map[string]any

// Transition moves x to status and appends the matching history event. A
// technician's non-blank comment also becomes the ticket's TechComment. It
// returns a new intervention; x is never modified, including on rejection.
func Transition(x *Intervention, status types.InterventionStatus, actor Actor, comment string, now time.Time) (*Intervention, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(ErrInvalidStatus, "unknown status",
			goerr.V(StatusKey, status))
	}
	if status == x.Status {
		return nil, goerr.Wrap(ErrNoOpTransition, "status unchanged",
			goerr.V(StatusKey, status), goerr.V("intervention_id", x.ID))
	}

	updated := AppendHistory(x, HistoryEvent{
		Status:  status,
		Comment: comment,
		ByID:    actor.ID,
		ByName:  actor.Name,
		Date:    now,
	})
	updated.Status = status
	if actor.Role == types.RoleTechnician && strings.TrimSpace(comment) != "" {
		updated.TechComment = comment
	}
	updated.UpdatedAt = now
	updated.UpdatedBy = actor.ID
	return updated, nil
}

// ApplyEdit merges set into a copy of x. Every key is validated before
// anything is merged so a rejected edit leaves no partial state. Edits stamp
// UpdatedBy/UpdatedAt but never touch History, which stays a status timeline.
func ApplyEdit(x *Intervention, set EditSet, actor Actor, now time.Time) (*Intervention, error) {
	if len(set) == 0 {
		return nil, goerr.Wrap(ErrInvalidField, "no field to edit")
	}

	updated := x.Copy()
	for _, field := range slices.Sorted(maps.Keys(set)) {
		if err := applyField(updated, field, set[field]); err != nil {
			return nil, err
		}
	}

	if err := validateRooms(updated); err != nil {
		return nil, err
	}

	updated.UpdatedAt = now
	updated.UpdatedBy = actor.ID
	return updated, nil
}

func applyField(x *Intervention, field string, value any) error {
	switch field {
	case EditFieldMissionSummary:
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		x.MissionSummary = s

	case EditFieldMissionComment:
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		x.MissionComment = s

	case EditFieldMissionType:
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		x.MissionType = s

	case EditFieldInterventionType:
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		x.InterventionType = s

	case EditFieldAssignedTo:
		if value == nil {
			x.AssignedTo = ""
			return nil
		}
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		x.AssignedTo = strings.TrimSpace(s)

	case EditFieldPriority:
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		p := types.Priority(s)
		if !p.IsValid() {
			return goerr.Wrap(ErrInvalidField, "unknown priority",
				goerr.V(FieldKey, field), goerr.V("value", s))
		}
		x.Priority = p

	case EditFieldRoomType:
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		rt := types.RoomType(s)
		if !rt.IsValid() {
			return goerr.Wrap(ErrInvalidField, "unknown room type",
				goerr.V(FieldKey, field), goerr.V("value", s))
		}
		x.RoomType = rt

	case EditFieldRooms:
		rooms, err := roomsValue(value)
		if err != nil {
			return goerr.Wrap(ErrInvalidField, "invalid rooms",
				goerr.V(FieldKey, field), goerr.V("cause", err.Error()))
		}
		x.Rooms = rooms

	default:
		return goerr.Wrap(ErrInvalidField, "field is not editable",
			goerr.V(FieldKey, field), goerr.V("allowed", AllowedEditFields()))
	}

	return nil
}

func stringValue(field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", goerr.Wrap(ErrInvalidField, "field expects a string",
			goerr.V(FieldKey, field), goerr.V("value", value))
	}
	return s, nil
}

func roomsValue(value any) ([]types.RoomID, error) {
	var raw []string
	switch v := value.(type) {
	case []string:
		raw = v
	case []types.RoomID:
		raw = make([]string, len(v))
		for i, r := range v {
			raw[i] = string(r)
		}
	case []any:
		raw = make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, goerr.New("room must be a string", goerr.V("value", item))
			}
			raw[i] = s
		}
	default:
		return nil, goerr.New("rooms must be a list", goerr.V("value", value))
	}
	return types.ParseRoomIDs(raw)
}

func validateRooms(x *Intervention) error {
	if x.RoomType.IsRoomBound() && len(x.Rooms) == 0 {
		return goerr.Wrap(ErrInvalidField, "room intervention requires at least one room",
			goerr.V(FieldKey, EditFieldRooms), goerr.V("intervention_id", x.ID))
	}
	return nil
}

// ValidateNew checks an intervention about to be created
func ValidateNew(x *Intervention) error {
	if x.EstablishmentID == "" {
		return goerr.Wrap(ErrInvalidField, "establishment ID is required")
	}
	if !x.RoomType.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown room type",
			goerr.V(FieldKey, EditFieldRoomType), goerr.V("value", x.RoomType))
	}
	if !x.Priority.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown priority",
			goerr.V(FieldKey, EditFieldPriority), goerr.V("value", x.Priority))
	}
	for _, r := range x.Rooms {
		if err := r.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidField, "invalid room",
				goerr.V(FieldKey, EditFieldRooms), goerr.V(RoomKey, r), goerr.V("cause", err.Error()))
		}
	}
	return validateRooms(x)
}
