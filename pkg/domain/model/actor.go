package model

import (
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Actor is the identity performing a mutation, supplied by the identity
// provider and trusted as-is.
type Actor struct {
	ID   string
	Name string
	Role types.Role
}

// Validate checks that the actor carries an ID and a known role
func (a Actor) Validate() error {
	if a.ID == "" {
		return goerr.Wrap(ErrInvalidActor, "actor ID is required")
	}
	if _, err := types.ParseRole(string(a.Role)); err != nil {
		return goerr.Wrap(ErrInvalidActor, "unknown actor role",
			goerr.V(ActorKey, a.ID), goerr.V("role", a.Role), goerr.V("cause", err.Error()))
	}
	return nil
}
