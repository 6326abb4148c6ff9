package types

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// RoomID identifies a physical room of an establishment, e.g. "205" or "B-12".
type RoomID string

const maxRoomIDLength = 32

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+([-_][A-Za-z0-9]+)*$`)

// Validate checks if the RoomID is valid
func (r RoomID) Validate() error {
	if r == "" {
		return goerr.New("room ID cannot be empty")
	}
	if len(r) > maxRoomIDLength {
		return goerr.New("room ID is too long", goerr.V("room", r), goerr.V("max", maxRoomIDLength))
	}
	if !roomIDPattern.MatchString(string(r)) {
		return goerr.New("room ID must be alphanumeric with hyphens or underscores", goerr.V("room", r))
	}
	return nil
}

func (r RoomID) String() string {
	return string(r)
}

// ParseRoomID trims surrounding spaces and validates s.
func ParseRoomID(s string) (RoomID, error) {
	r := RoomID(strings.TrimSpace(s))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// ParseRoomIDs validates every entry and drops duplicates while keeping the
// first-seen order.
func ParseRoomIDs(values []string) ([]RoomID, error) {
	seen := make(map[RoomID]struct{}, len(values))
	rooms := make([]RoomID, 0, len(values))
	for _, v := range values {
		r, err := ParseRoomID(v)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

// RoomType is the kind of location an intervention targets
type RoomType string

const (
	RoomTypeRoom       RoomType = "room"
	RoomTypeCommonArea RoomType = "common_area"
	RoomTypeTechnical  RoomType = "technical"
	RoomTypeExterior   RoomType = "exterior"
)

// IsValid checks if the room type is valid
func (t RoomType) IsValid() bool {
	switch t {
	case RoomTypeRoom, RoomTypeCommonArea, RoomTypeTechnical, RoomTypeExterior:
		return true
	default:
		return false
	}
}

// IsRoomBound reports whether tickets of this type must reference at least
// one room.
func (t RoomType) IsRoomBound() bool {
	return t == RoomTypeRoom
}

func (t RoomType) String() string {
	return string(t)
}
