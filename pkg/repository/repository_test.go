package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/repository/firestore"
	"github.com/hotelops/intervention/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("INTERVENTION_TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("INTERVENTION_TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("INTERVENTION_TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// establishment returns a scope tag unique to the test so that runs against
// a shared Firestore database do not see each other's documents.
func establishment(t *testing.T) string {
	return fmt.Sprintf("hotel-%d", time.Now().UnixNano())
}

func eachRepository(t *testing.T, run func(t *testing.T, newRepo repoFactory)) {
	t.Run("memory", func(t *testing.T) {
		run(t, newMemoryRepository)
	})
	t.Run("firestore", func(t *testing.T) {
		run(t, newFirestoreRepository)
	})
}
