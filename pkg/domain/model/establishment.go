package model

import (
	"slices"

	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Establishment represents a hotel's identity and its room catalog
type Establishment struct {
	ID   string
	Name string
	// Rooms lists the valid room IDs. Empty means any well-formed room ID
	// is accepted.
	Rooms []types.RoomID
}

var (
	// ErrEstablishmentNotFound is returned when an establishment is not in the registry
	ErrEstablishmentNotFound = goerr.New("establishment not found")

	// ErrUnknownRoom is returned when a room is not in the establishment catalog
	ErrUnknownRoom = goerr.New("room is not in the establishment catalog")
)

// EstablishmentRegistry holds the establishment catalogs loaded at startup.
// An empty registry accepts every establishment and room.
type EstablishmentRegistry struct {
	entries map[string]*Establishment
	order   []string // preserves registration order
}

// NewEstablishmentRegistry creates a new empty EstablishmentRegistry
func NewEstablishmentRegistry() *EstablishmentRegistry {
	return &EstablishmentRegistry{
		entries: make(map[string]*Establishment),
	}
}

// Register adds an establishment to the registry, replacing any entry with
// the same ID
func (r *EstablishmentRegistry) Register(e *Establishment) {
	if _, exists := r.entries[e.ID]; !exists {
		r.order = append(r.order, e.ID)
	}
	r.entries[e.ID] = e
}

// Get retrieves an establishment by ID
func (r *EstablishmentRegistry) Get(establishmentID string) (*Establishment, error) {
	e, ok := r.entries[establishmentID]
	if !ok {
		return nil, goerr.Wrap(ErrEstablishmentNotFound, "establishment not found",
			goerr.V("establishment_id", establishmentID))
	}
	return e, nil
}

// List returns all registered establishments in registration order
func (r *EstablishmentRegistry) List() []*Establishment {
	result := make([]*Establishment, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// CheckRooms verifies that every room belongs to the establishment catalog.
// A nil or empty registry accepts everything.
func (r *EstablishmentRegistry) CheckRooms(establishmentID string, rooms ...types.RoomID) error {
	if r == nil || len(r.entries) == 0 {
		return nil
	}

	e, err := r.Get(establishmentID)
	if err != nil {
		return err
	}
	if len(e.Rooms) == 0 {
		return nil
	}

	for _, room := range rooms {
		if !slices.Contains(e.Rooms, room) {
			return goerr.Wrap(ErrUnknownRoom, "room is not in the catalog",
				goerr.V("establishment_id", establishmentID),
				goerr.V(RoomKey, room))
		}
	}
	return nil
}
