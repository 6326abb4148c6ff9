package memory

import (
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every record in process memory. It is meant for development
// and tests; the change feed only reaches subscribers of the same process.
type Memory struct {
	intervention *interventionRepository
	roomBlock    *roomBlockRepository
	notification *notificationRepository
}

var _ interfaces.Repository = &Memory{}

type Option func(*Memory)

// WithRoomBlocks preloads room block records as they are, including IDs and
// versions, e.g. records exported from a store written before versioning.
func WithRoomBlocks(blocks ...*model.RoomBlock) Option {
	return func(m *Memory) {
		m.roomBlock.load(blocks)
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		intervention: newInterventionRepository(),
		roomBlock:    newRoomBlockRepository(),
		notification: newNotificationRepository(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Intervention() interfaces.InterventionRepository {
	return m.intervention
}

func (m *Memory) RoomBlock() interfaces.RoomBlockRepository {
	return m.roomBlock
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

// Close terminates every open subscription
func (m *Memory) Close() error {
	m.intervention.feed.closeAll()
	m.roomBlock.feed.closeAll()
	return nil
}
