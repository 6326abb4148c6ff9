package http

import (
	"encoding/json"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/hotelops/intervention/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const defaultKeepAlive = 15 * time.Second

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	establishments *model.EstablishmentRegistry
	keepAlive      time.Duration
}

type Options func(*Server)

// WithEstablishments exposes the establishment catalog at /api/establishments
func WithEstablishments(registry *model.EstablishmentRegistry) Options {
	return func(s *Server) {
		s.establishments = registry
	}
}

// WithKeepAlive sets the interval of comment frames on the event stream
func WithKeepAlive(d time.Duration) Options {
	return func(s *Server) {
		s.keepAlive = d
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		uc:        uc,
		keepAlive: defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.establishments != nil {
		r.Get("/api/establishments", establishmentsHandler(s.establishments))
	}

	r.Route("/api/establishments/{eid}", func(r chi.Router) {
		r.Use(actorMiddleware)

		r.Route("/interventions", func(r chi.Router) {
			r.Post("/", s.createIntervention)
			r.Get("/", s.listInterventions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getIntervention)
				r.Patch("/", s.editIntervention)
				r.Post("/status", s.changeStatus)
				r.Post("/messages", s.addMessage)
				r.Put("/supplies", s.setSupplies)
				r.Post("/supplies/{index}/ordered", s.markSupplyOrdered)
				r.Post("/rooms/{room}/block", s.blockRoomForTicket)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/blocked", s.listRoomBlocks)
			r.Get("/check", s.checkRooms)
			r.Get("/{room}", s.getRoomBlock)
			r.Post("/{room}/toggle", s.toggleRoomBlock)
		})

		r.Get("/notifications", s.listNotifications)
		r.Post("/notifications/{nid}/read", s.markNotificationRead)

		r.Get("/events", s.events)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a logger carrying the request ID to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// establishmentsHandler serves the establishment catalog as JSON
func establishmentsHandler(registry *model.EstablishmentRegistry) http.HandlerFunc {
	type establishmentResponse struct {
		ID    string   `json:"id"`
		Name  string   `json:"name"`
		Rooms []string `json:"rooms"`
	}
	type response struct {
		Establishments []establishmentResponse `json:"establishments"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		list := registry.List()
		resp := response{
			Establishments: make([]establishmentResponse, len(list)),
		}
		for i, e := range list {
			resp.Establishments[i] = establishmentResponse{
				ID:    e.ID,
				Name:  e.Name,
				Rooms: roomStrings(e.Rooms),
			}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
