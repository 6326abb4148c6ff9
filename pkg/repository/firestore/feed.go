package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/utils/errutil"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const feedBufferSize = 64

// decodeFunc turns a changed document into a change event
type decodeFunc func(kind types.ChangeKind, doc *firestore.DocumentSnapshot) (*model.ChangeEvent, error)

func changeKind(k firestore.DocumentChangeKind) types.ChangeKind {
	switch k {
	case firestore.DocumentAdded:
		return types.ChangeKindAdded
	case firestore.DocumentRemoved:
		return types.ChangeKindRemoved
	default:
		return types.ChangeKindModified
	}
}

// listen runs a snapshot listener on q and forwards each document change to
// the returned channel until ctx ends. The first snapshot reports every
// existing document as added.
func listen(ctx context.Context, q firestore.Query, decode decodeFunc) <-chan *model.ChangeEvent {
	ch := make(chan *model.ChangeEvent, feedBufferSize)

	go func() {
		defer close(ch)

		iter := q.Snapshots(ctx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if !isCanceled(ctx, err) {
					errutil.Handle(ctx, goerr.Wrap(err, "snapshot listener stopped"), "change feed closed")
				}
				return
			}

			for _, change := range snap.Changes {
				ev, err := decode(changeKind(change.Kind), change.Doc)
				if err != nil {
					logging.From(ctx).Warn("skipping undecodable document",
						"doc_id", change.Doc.Ref.ID,
						"error", err)
					continue
				}

				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch
}
