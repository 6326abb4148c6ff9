package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// establishmentIDPattern allows lowercase slugs such as "hotel-paris-01"
var establishmentIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// EstablishmentFile is the TOML layout of an establishment catalog:
//
//	[[establishment]]
//	id = "hotel-paris"
//	name = "Hotel Paris"
//	rooms = ["101", "102", "lobby"]
type EstablishmentFile struct {
	Establishments []EstablishmentEntry `toml:"establishment"`
}

// EstablishmentEntry is one establishment of the catalog
type EstablishmentEntry struct {
	ID    string   `toml:"id"`
	Name  string   `toml:"name"`
	Rooms []string `toml:"rooms"`
}

// Validate checks the entry and returns the domain value
func (e *EstablishmentEntry) Validate() (*model.Establishment, error) {
	if !establishmentIDPattern.MatchString(e.ID) {
		return nil, goerr.Wrap(ErrInvalidEstablishmentID, "establishment ID must be a lowercase slug",
			goerr.V(EstablishmentIDKey, e.ID))
	}
	if strings.TrimSpace(e.Name) == "" {
		return nil, goerr.Wrap(ErrMissingName, "establishment name is required",
			goerr.V(EstablishmentIDKey, e.ID))
	}

	rooms := make([]types.RoomID, 0, len(e.Rooms))
	for i, raw := range e.Rooms {
		room, err := types.ParseRoomID(raw)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid room in catalog",
				goerr.V(EstablishmentIDKey, e.ID),
				goerr.V(RoomIndexKey, i),
				goerr.V("cause", err.Error()))
		}
		if slices.Contains(rooms, room) {
			return nil, goerr.Wrap(ErrDuplicateRoom, "room listed twice",
				goerr.V(EstablishmentIDKey, e.ID), goerr.V(RoomKey, room))
		}
		rooms = append(rooms, room)
	}

	return &model.Establishment{
		ID:    e.ID,
		Name:  strings.TrimSpace(e.Name),
		Rooms: rooms,
	}, nil
}

// LoadEstablishmentFile reads and validates one catalog file
func LoadEstablishmentFile(path string) ([]*model.Establishment, error) {
	// #nosec G304 - path is provided by CLI argument
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "establishment file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read establishment file", goerr.V(ConfigPathKey, path))
	}

	var file EstablishmentFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	result := make([]*model.Establishment, 0, len(file.Establishments))
	for _, entry := range file.Establishments {
		e, err := entry.Validate()
		if err != nil {
			return nil, goerr.Wrap(err, "invalid establishment", goerr.V(ConfigPathKey, path))
		}
		result = append(result, e)
	}
	return result, nil
}

// Establishment holds CLI flags for the establishment catalog
type Establishment struct {
	paths []string
}

// Flags returns CLI flags for the establishment catalog
func (x *Establishment) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "establishments",
			Aliases:     []string{"e"},
			Usage:       "Establishment catalog TOML file (repeatable). Without it any establishment and room is accepted",
			Sources:     cli.EnvVars("INTERVENTION_ESTABLISHMENTS"),
			Destination: &x.paths,
		},
	}
}

// Configure loads every catalog file into a registry. An establishment ID
// may appear only once across all files.
func (x *Establishment) Configure() (*model.EstablishmentRegistry, error) {
	registry := model.NewEstablishmentRegistry()

	for _, path := range x.paths {
		list, err := LoadEstablishmentFile(path)
		if err != nil {
			return nil, err
		}
		for _, e := range list {
			if _, err := registry.Get(e.ID); err == nil {
				return nil, goerr.Wrap(ErrDuplicateEstablishment, "establishment defined twice",
					goerr.V(EstablishmentIDKey, e.ID), goerr.V(ConfigPathKey, path))
			}
			registry.Register(e)
		}
	}

	return registry, nil
}
