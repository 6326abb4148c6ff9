package config

import (
	"context"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/repository/firestore"
	"github.com/hotelops/intervention/pkg/repository/memory"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("INTERVENTION_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix prepended to every Firestore collection name",
			Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidRepositoryConfig, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.collectionPrefix,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidRepositoryConfig, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
