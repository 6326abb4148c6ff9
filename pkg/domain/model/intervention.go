package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/intervention/pkg/domain/types"
)

// InterventionID is a UUID-based identifier for Intervention
type InterventionID string

// NewInterventionID generates a new UUID v4 InterventionID
func NewInterventionID() InterventionID {
	return InterventionID(uuid.New().String())
}

func (id InterventionID) String() string {
	return string(id)
}

// Supply is a consumable a technician needs to complete an intervention
type Supply struct {
	Name     string
	Quantity float64
	Unit     string
	Ordered  bool
}

// Message is an entry of the intervention conversation thread
type Message struct {
	SenderID  string
	Text      string
	Photos    []string // photo URLs
	Timestamp time.Time
}

// HistoryEvent records one status transition. Never modified once appended.
type HistoryEvent struct {
	Status  types.InterventionStatus
	Comment string
	ByID    string
	ByName  string
	Date    time.Time
}

// Intervention is a maintenance ticket tracked through its status lifecycle
type Intervention struct {
	ID               InterventionID
	EstablishmentID  string
	Rooms            []types.RoomID
	RoomType         types.RoomType
	MissionType      string
	InterventionType string
	Status           types.InterventionStatus
	Priority         types.Priority
	AssignedTo       string // technician ID, empty when unassigned
	MissionSummary   string
	MissionComment   string
	TechComment      string
	SuppliesNeeded   []Supply
	Messages         []Message
	History          []HistoryEvent
	CreatedAt        time.Time
	CreatedBy        string
	UpdatedAt        time.Time
	UpdatedBy        string
	Version          int64
}

// HasRoom reports whether room is one of the rooms the intervention touches
func (x *Intervention) HasRoom(room types.RoomID) bool {
	return slices.Contains(x.Rooms, room)
}

// Copy returns a deep copy so callers can derive a new state without
// aliasing the slices of the original.
func (x *Intervention) Copy() *Intervention {
	if x == nil {
		return nil
	}

	copied := *x
	copied.Rooms = slices.Clone(x.Rooms)
	copied.SuppliesNeeded = slices.Clone(x.SuppliesNeeded)
	copied.History = slices.Clone(x.History)
	if x.Messages != nil {
		copied.Messages = make([]Message, len(x.Messages))
		for i, m := range x.Messages {
			m.Photos = slices.Clone(m.Photos)
			copied.Messages[i] = m
		}
	}
	return &copied
}

// InterventionView decorates an intervention with the rooms currently under
// an active block. It is computed on read and never persisted.
type InterventionView struct {
	*Intervention
	BlockedRooms []types.RoomID
}
