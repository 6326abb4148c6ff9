package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type roomBlockRepository struct {
	mu sync.RWMutex
	// establishmentID -> record ID -> record
	blocks map[string]map[string]*model.RoomBlock
	feed   *feed
}

func newRoomBlockRepository() *roomBlockRepository {
	return &roomBlockRepository{
		blocks: make(map[string]map[string]*model.RoomBlock),
		feed:   newFeed(),
	}
}

func roomBlockEvent(kind types.ChangeKind, b *model.RoomBlock) *model.ChangeEvent {
	return &model.ChangeEvent{
		Collection: types.CollectionBlockedRooms,
		Kind:       kind,
		DocumentID: b.ID,
		RoomBlock:  b.Copy(),
		OccurredAt: b.UpdatedAt,
	}
}

// findLocked resolves room the same way a query on the room field would.
// Callers must hold r.mu.
func (r *roomBlockRepository) findLocked(establishmentID string, room types.RoomID) *model.RoomBlock {
	var matched []*model.RoomBlock
	for _, b := range r.blocks[establishmentID] {
		if b.Room == room {
			matched = append(matched, b)
		}
	}
	return model.PreferredRoomBlock(matched)
}

func (r *roomBlockRepository) FindByRoom(ctx context.Context, establishmentID string, room types.RoomID) (*model.RoomBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findLocked(establishmentID, room).Copy(), nil
}

func (r *roomBlockRepository) FindByRooms(ctx context.Context, establishmentID string, rooms []types.RoomID) (map[types.RoomID]*model.RoomBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[types.RoomID]*model.RoomBlock, len(rooms))
	for _, room := range rooms {
		if b := r.findLocked(establishmentID, room); b != nil {
			result[room] = b.Copy()
		}
	}
	return result, nil
}

func (r *roomBlockRepository) List(ctx context.Context, establishmentID string, activeOnly bool) ([]*model.RoomBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.RoomBlock, 0, len(r.blocks[establishmentID]))
	for _, b := range r.blocks[establishmentID] {
		if activeOnly && !b.Blocked {
			continue
		}
		result = append(result, b.Copy())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Room < result[j].Room
	})

	return result, nil
}

// stampLocked fills the fields a caller may leave empty and makes sure the
// establishment map exists. Callers must hold r.mu.
func (r *roomBlockRepository) stampLocked(b *model.RoomBlock) *model.RoomBlock {
	if _, exists := r.blocks[b.EstablishmentID]; !exists {
		r.blocks[b.EstablishmentID] = make(map[string]*model.RoomBlock)
	}

	stored := b.Copy()
	if stored.ID == "" {
		stored.ID = model.RoomBlockID(b.EstablishmentID, b.Room)
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	return stored
}

func (r *roomBlockRepository) Create(ctx context.Context, b *model.RoomBlock) (*model.RoomBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.stampLocked(b)
	_, idTaken := r.blocks[b.EstablishmentID][stored.ID]
	if idTaken || r.findLocked(b.EstablishmentID, b.Room) != nil {
		return nil, goerr.Wrap(interfaces.ErrStaleWrite, "room block already exists",
			goerr.V("room", b.Room), goerr.V("id", stored.ID))
	}

	stored.Version = 1
	r.blocks[b.EstablishmentID][stored.ID] = stored
	r.feed.publish(stored.EstablishmentID, roomBlockEvent(types.ChangeKindAdded, stored))
	return stored.Copy(), nil
}

func (r *roomBlockRepository) Update(ctx context.Context, b *model.RoomBlock, expectedVersion int64) (*model.RoomBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.stampLocked(b)
	existing, exists := r.blocks[b.EstablishmentID][stored.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "room block not found",
			goerr.V("room", b.Room), goerr.V("id", stored.ID))
	}
	if existing.Version != expectedVersion {
		return nil, goerr.Wrap(interfaces.ErrStaleWrite, "room block version mismatch",
			goerr.V("room", b.Room),
			goerr.V("expected_version", expectedVersion),
			goerr.V("stored_version", existing.Version))
	}

	stored.Version = expectedVersion + 1
	r.blocks[b.EstablishmentID][stored.ID] = stored
	r.feed.publish(stored.EstablishmentID, roomBlockEvent(types.ChangeKindModified, stored))
	return stored.Copy(), nil
}

// load stores records as they are, keeping their IDs and versions
func (r *roomBlockRepository) load(blocks []*model.RoomBlock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range blocks {
		stored := r.stampLocked(b)
		r.blocks[b.EstablishmentID][stored.ID] = stored
	}
}

func (r *roomBlockRepository) Subscribe(ctx context.Context, establishmentID string) (<-chan *model.ChangeEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	initial := make([]*model.ChangeEvent, 0, len(r.blocks[establishmentID]))
	for _, b := range r.blocks[establishmentID] {
		initial = append(initial, roomBlockEvent(types.ChangeKindAdded, b))
	}
	sort.Slice(initial, func(i, j int) bool {
		return initial[i].RoomBlock.Room < initial[j].RoomBlock.Room
	})

	return r.feed.subscribe(ctx, establishmentID, initial), nil
}
