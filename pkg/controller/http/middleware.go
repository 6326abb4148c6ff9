package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Identity headers set by the upstream identity provider. They are trusted
// as-is.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorName = "X-Actor-Name"
	HeaderActorRole = "X-Actor-Role"
)

type actorCtxKey struct{}

// actorMiddleware reads the actor headers into the request context. Missing
// or malformed headers are not rejected here; operations that need an actor
// fail with ErrInvalidActor.
func actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := model.Actor{
			ID:   strings.TrimSpace(r.Header.Get(HeaderActorID)),
			Name: strings.TrimSpace(r.Header.Get(HeaderActorName)),
			Role: types.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole)))),
		}

		ctx := context.WithValue(r.Context(), actorCtxKey{}, actor)
		if actor.ID != "" {
			ctx = logging.With(ctx, logging.From(ctx).With("actor_id", actor.ID))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFrom(ctx context.Context) model.Actor {
	actor, _ := ctx.Value(actorCtxKey{}).(model.Actor)
	return actor
}

func establishmentID(r *http.Request) string {
	return chi.URLParam(r, "eid")
}

// mutationOptions turns an If-Match header carrying a record version into
// a version pin
func mutationOptions(r *http.Request) ([]usecase.MutationOption, error) {
	v := strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`)
	if v == "" {
		return nil, nil
	}

	version, err := strconv.ParseInt(v, 10, 64)
	if err != nil || version < 0 {
		return nil, goerr.Wrap(errBadRequest, "If-Match must be a record version", goerr.V("if_match", v))
	}
	return []usecase.MutationOption{usecase.WithExpectedVersion(version)}, nil
}
