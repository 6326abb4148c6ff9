package usecase

import (
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// MutationOption tunes a single mutating call
type MutationOption func(*mutationConfig)

type mutationConfig struct {
	expectedVersion *int64
}

// WithExpectedVersion pins the version the caller based its decision on.
// The mutation fails with ErrStaleWrite when the stored record moved on.
func WithExpectedVersion(version int64) MutationOption {
	return func(c *mutationConfig) {
		c.expectedVersion = &version
	}
}

func buildMutationConfig(opts ...MutationOption) *mutationConfig {
	cfg := &mutationConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// checkVersion compares the loaded version with the pinned one, if any
func (c *mutationConfig) checkVersion(loaded int64) error {
	if c.expectedVersion != nil && *c.expectedVersion != loaded {
		return goerr.Wrap(interfaces.ErrStaleWrite, "record changed since it was read",
			goerr.V("expected_version", *c.expectedVersion),
			goerr.V("stored_version", loaded))
	}
	return nil
}
