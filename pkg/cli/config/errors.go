package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound          = goerr.New("configuration file not found")
	ErrInvalidConfig           = goerr.New("invalid configuration")
	ErrDuplicateEstablishment  = goerr.New("duplicate establishment ID")
	ErrInvalidEstablishmentID  = goerr.New("invalid establishment ID format")
	ErrDuplicateRoom           = goerr.New("duplicate room ID")
	ErrMissingName             = goerr.New("name is required")
	ErrInvalidRepositoryConfig = goerr.New("invalid repository configuration")
)

// Context keys for error values
const (
	ConfigPathKey      = "config_path"
	EstablishmentIDKey = "establishment_id"
	RoomKey            = "room"
	RoomIndexKey       = "room_index"
	BackendKey         = "backend"
)
