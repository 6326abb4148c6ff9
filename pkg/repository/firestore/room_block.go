package firestore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
)

// Firestore caps the number of values of an "in" filter
const inQueryBatchSize = 30

type roomBlockRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRoomBlockRepository(client *firestore.Client) *roomBlockRepository {
	return &roomBlockRepository{
		client: client,
	}
}

func (r *roomBlockRepository) blocksCollection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, string(types.CollectionBlockedRooms)))
}

func (r *roomBlockRepository) roomQuery(establishmentID string, room types.RoomID) firestore.Query {
	return r.blocksCollection().
		Where("EstablishmentID", "==", establishmentID).
		Where("Room", "==", string(room))
}

// decodeRoomBlock takes the ID from the document reference since records
// written before the ID field existed do not carry it
func decodeRoomBlock(doc *firestore.DocumentSnapshot) (*model.RoomBlock, error) {
	var b model.RoomBlock
	if err := doc.DataTo(&b); err != nil {
		return nil, goerr.Wrap(err, "failed to decode room block", goerr.V("doc_id", doc.Ref.ID))
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

func decodeRoomBlocks(iter *firestore.DocumentIterator) ([]*model.RoomBlock, error) {
	defer iter.Stop()

	var blocks []*model.RoomBlock
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate room blocks")
		}

		b, err := decodeRoomBlock(doc)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (r *roomBlockRepository) FindByRoom(ctx context.Context, establishmentID string, room types.RoomID) (*model.RoomBlock, error) {
	blocks, err := decodeRoomBlocks(r.roomQuery(establishmentID, room).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find room block", goerr.V("room", room))
	}
	return model.PreferredRoomBlock(blocks), nil
}

func (r *roomBlockRepository) FindByRooms(ctx context.Context, establishmentID string, rooms []types.RoomID) (map[types.RoomID]*model.RoomBlock, error) {
	var (
		mu      sync.Mutex
		matched = make(map[types.RoomID][]*model.RoomBlock, len(rooms))
	)

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < len(rooms); i += inQueryBatchSize {
		end := min(i+inQueryBatchSize, len(rooms))

		keys := make([]string, 0, end-i)
		for _, room := range rooms[i:end] {
			keys = append(keys, string(room))
		}

		eg.Go(func() error {
			q := r.blocksCollection().
				Where("EstablishmentID", "==", establishmentID).
				Where("Room", "in", keys)
			blocks, err := decodeRoomBlocks(q.Documents(ctx))
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, b := range blocks {
				matched[b.Room] = append(matched[b.Room], b)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to find room blocks", goerr.V("rooms", rooms))
	}

	result := make(map[types.RoomID]*model.RoomBlock, len(matched))
	for room, blocks := range matched {
		result[room] = model.PreferredRoomBlock(blocks)
	}
	return result, nil
}

func (r *roomBlockRepository) List(ctx context.Context, establishmentID string, activeOnly bool) ([]*model.RoomBlock, error) {
	q := r.blocksCollection().Where("EstablishmentID", "==", establishmentID)
	if activeOnly {
		q = q.Where("Blocked", "==", true)
	}

	blocks, err := decodeRoomBlocks(q.Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list room blocks")
	}

	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Room < blocks[j].Room
	})
	return blocks, nil
}

func stampRoomBlock(b *model.RoomBlock) *model.RoomBlock {
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
	stored := stampRoomBlock(b)
	stored.Version = 1
	docRef := r.blocksCollection().Doc(stored.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// The room is the key: any record already holding it wins,
		// whatever its document ID.
		existing, err := tx.Documents(r.roomQuery(b.EstablishmentID, b.Room)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query room block")
		}
		if len(existing) > 0 {
			return goerr.Wrap(errCollided, "room already has a record")
		}
		return tx.Create(docRef, stored)
	})
	if err != nil {
		if isCollision(err) {
			return nil, goerr.Wrap(interfaces.ErrStaleWrite, "room block already exists",
				goerr.V("room", b.Room),
				goerr.V("id", stored.ID),
				goerr.V("cause", err.Error()))
		}
		return nil, goerr.Wrap(err, "failed to create room block", goerr.V("room", b.Room))
	}

	return stored, nil
}

func (r *roomBlockRepository) Update(ctx context.Context, b *model.RoomBlock, expectedVersion int64) (*model.RoomBlock, error) {
	stored := stampRoomBlock(b)
	stored.Version = expectedVersion + 1
	docRef := r.blocksCollection().Doc(stored.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var current model.RoomBlock
		if err := doc.DataTo(&current); err != nil {
			return goerr.Wrap(err, "failed to decode room block")
		}
		if current.Version != expectedVersion {
			return goerr.Wrap(errCollided, "stored version differs",
				goerr.V("stored_version", current.Version))
		}
		// The document read above is part of the transaction, so a
		// concurrent writer aborts this commit even when both saw a record
		// without version.
		return tx.Set(docRef, stored)
	})
	if err != nil {
		switch {
		case isNotFound(err) || errors.Is(err, ErrNotFound):
			return nil, goerr.Wrap(ErrNotFound, "room block not found",
				goerr.V("room", b.Room), goerr.V("id", stored.ID))
		case isCollision(err):
			return nil, goerr.Wrap(interfaces.ErrStaleWrite, "room block version mismatch",
				goerr.V("room", b.Room),
				goerr.V("expected_version", expectedVersion),
				goerr.V("cause", err.Error()))
		}
		return nil, goerr.Wrap(err, "failed to update room block", goerr.V("room", b.Room))
	}

	return stored, nil
}

func (r *roomBlockRepository) Subscribe(ctx context.Context, establishmentID string) (<-chan *model.ChangeEvent, error) {
	q := r.blocksCollection().Where("EstablishmentID", "==", establishmentID)

	return listen(ctx, q, func(kind types.ChangeKind, doc *firestore.DocumentSnapshot) (*model.ChangeEvent, error) {
		ev := &model.ChangeEvent{
			Collection: types.CollectionBlockedRooms,
			Kind:       kind,
			DocumentID: doc.Ref.ID,
			OccurredAt: doc.UpdateTime,
		}
		if kind == types.ChangeKindRemoved {
			return ev, nil
		}

		b, err := decodeRoomBlock(doc)
		if err != nil {
			return nil, err
		}
		ev.RoomBlock = b
		ev.OccurredAt = b.UpdatedAt
		return ev, nil
	}), nil
}
