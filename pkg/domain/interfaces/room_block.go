package interfaces

import (
	"context"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
)

// RoomBlockRepository defines the interface for RoomBlock data access.
// The room is an application-level key: implementations look records up by
// querying on it and never rely on store-level uniqueness.
type RoomBlockRepository interface {
	// FindByRoom returns the record for room, or nil, nil when the room was
	// never blocked. When several records share the room, the active one
	// (or else the most recently updated) wins.
	FindByRoom(ctx context.Context, establishmentID string, room types.RoomID) (*model.RoomBlock, error)

	// FindByRooms is the batch form of FindByRoom. Rooms without a record
	// are absent from the map.
	FindByRooms(ctx context.Context, establishmentID string, rooms []types.RoomID) (map[types.RoomID]*model.RoomBlock, error)

	// List retrieves room block records of an establishment
	List(ctx context.Context, establishmentID string, activeOnly bool) ([]*model.RoomBlock, error)

	// Create stores the first record of a room. Returns ErrStaleWrite when
	// any record already holds the room. The stored record has version 1.
	Create(ctx context.Context, b *model.RoomBlock) (*model.RoomBlock, error)

	// Update replaces the record identified by b.ID when its stored version
	// equals expectedVersion. Records written before versioning existed
	// carry version 0 and are updated with expectedVersion 0. The stored
	// record is returned with the version incremented. Returns ErrNotFound
	// when the record is missing and ErrStaleWrite on mismatch.
	Update(ctx context.Context, b *model.RoomBlock, expectedVersion int64) (*model.RoomBlock, error)

	// Subscribe streams changes of the establishment's room blocks until ctx
	// is cancelled, then closes the channel.
	Subscribe(ctx context.Context, establishmentID string) (<-chan *model.ChangeEvent, error)
}
