package model

import (
	"time"

	"github.com/hotelops/intervention/pkg/domain/types"
)

// ChangeEvent is one entry of a repository change feed. Exactly one of
// Intervention and RoomBlock is set, matching Collection.
type ChangeEvent struct {
	Collection   types.Collection
	Kind         types.ChangeKind
	DocumentID   string
	Intervention *Intervention
	RoomBlock    *RoomBlock
	OccurredAt   time.Time
}
