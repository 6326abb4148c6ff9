package model

import "github.com/m-mizutani/goerr/v2"

// Business rule violations raised by the lifecycle and the room block registry
var (
	ErrInvalidStatus  = goerr.New("invalid intervention status")
	ErrNoOpTransition = goerr.New("intervention already has this status")
	ErrInvalidField   = goerr.New("invalid intervention field")
	ErrMissingReason  = goerr.New("reason is required to block a room")
	ErrInvalidActor   = goerr.New("invalid actor")
)

// Context keys for error values
const (
	StatusKey = "status"
	FieldKey  = "field"
	RoomKey   = "room"
	ActorKey  = "actor_id"
)
