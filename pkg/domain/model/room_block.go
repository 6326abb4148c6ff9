package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

var roomBlockNamespace = uuid.MustParse("6f1c7a52-4b1e-4c55-9a57-0d1f7f6b2d11")

// RoomBlockID returns the document ID used when a room gets its first block
// record. It is derived from the key so that two racing creators collide on
// the same document instead of producing two active blocks. Records created
// elsewhere may carry any ID; lookups always go through the room key.
func RoomBlockID(establishmentID string, room types.RoomID) string {
	return uuid.NewSHA1(roomBlockNamespace, []byte(establishmentID+"\x00"+string(room))).String()
}

// RoomBlock marks a physical room as unusable. Records are never deleted:
// unblocking flips Blocked and stamps UnblockedAt, and a later block reuses
// the same record.
type RoomBlock struct {
	ID              string
	EstablishmentID string
	Room            types.RoomID
	Blocked         bool
	Reason          string
	BlockedBy       string
	BlockedByName   string
	BlockedAt       *time.Time
	UnblockedAt     *time.Time
	UpdatedAt       time.Time
	Version         int64 // 0 until first persisted
}

// NewRoomBlock returns the initial, unblocked and unpersisted record for room
func NewRoomBlock(establishmentID string, room types.RoomID) *RoomBlock {
	return &RoomBlock{
		ID:              RoomBlockID(establishmentID, room),
		EstablishmentID: establishmentID,
		Room:            room,
	}
}

// Copy returns a copy that does not share the timestamp pointers
func (b *RoomBlock) Copy() *RoomBlock {
	if b == nil {
		return nil
	}
	copied := *b
	if b.BlockedAt != nil {
		t := *b.BlockedAt
		copied.BlockedAt = &t
	}
	if b.UnblockedAt != nil {
		t := *b.UnblockedAt
		copied.UnblockedAt = &t
	}
	return &copied
}

// Toggle returns the flipped state of b. Activating requires a non-blank
// reason; deactivating ignores it. b is never modified.
func (b *RoomBlock) Toggle(actor Actor, reason string, now time.Time) (*RoomBlock, error) {
	updated := b.Copy()
	updated.UpdatedAt = now

	if b.Blocked {
		updated.Blocked = false
		updated.UnblockedAt = &now
		return updated, nil
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, goerr.Wrap(ErrMissingReason, "cannot block room without reason",
			goerr.V(RoomKey, b.Room))
	}

	updated.Blocked = true
	updated.Reason = reason
	updated.BlockedBy = actor.ID
	updated.BlockedByName = actor.Name
	updated.BlockedAt = &now
	updated.UnblockedAt = nil
	return updated, nil
}

// BlockCheck is the result of looking up a set of rooms in the registry
type BlockCheck struct {
	AnyBlocked   bool
	BlockedRooms []types.RoomID
}

// CheckBlocked reports which of rooms have an active block in blocks, keeping
// the order of rooms.
func CheckBlocked(rooms []types.RoomID, blocks map[types.RoomID]*RoomBlock) BlockCheck {
	check := BlockCheck{BlockedRooms: []types.RoomID{}}
	for _, r := range rooms {
		if b, ok := blocks[r]; ok && b.Blocked {
			check.BlockedRooms = append(check.BlockedRooms, r)
		}
	}
	check.AnyBlocked = len(check.BlockedRooms) > 0
	return check
}

// PreferredRoomBlock picks the record that represents a room when a store
// holds several for the same key: the active one first, then the most
// recently updated. Returns nil for an empty slice.
func PreferredRoomBlock(records []*RoomBlock) *RoomBlock {
	var picked *RoomBlock
	for _, b := range records {
		switch {
		case picked == nil:
			picked = b
		case b.Blocked != picked.Blocked:
			if b.Blocked {
				picked = b
			}
		case b.UpdatedAt.After(picked.UpdatedAt):
			picked = b
		}
	}
	return picked
}
