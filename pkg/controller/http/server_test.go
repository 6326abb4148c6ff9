package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpctrl "github.com/hotelops/intervention/pkg/controller/http"
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/repository/memory"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/m-mizutani/gt"
)

const testEstablishmentID = "hotel-lyon"

type testActor struct {
	id, name string
	role     types.Role
}

var (
	manager    = testActor{"u-manager", "Maria", types.RoleManager}
	technician = testActor{"u-tech", "Theo", types.RoleTechnician}
	reception  = testActor{"u-reception", "Rita", types.RoleReception}
)

func setupServer(t *testing.T, repo interfaces.Repository, opts ...httpctrl.Options) *httpctrl.Server {
	t.Helper()
	if repo == nil {
		repo = memory.New()
	}
	uc := usecase.New(repo)
	return httpctrl.New(uc, opts...)
}

func doRequest(t *testing.T, h http.Handler, actor testActor, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor.id != "" {
		req.Header.Set(httpctrl.HeaderActorID, actor.id)
		req.Header.Set(httpctrl.HeaderActorName, actor.name)
		req.Header.Set(httpctrl.HeaderActorRole, string(actor.role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)).Required()
	return v
}

type interventionResponse struct {
	ID           string   `json:"id"`
	Rooms        []string `json:"rooms"`
	Status       string   `json:"status"`
	Closed       bool     `json:"closed"`
	TechComment  string   `json:"techComment"`
	Version      int64    `json:"version"`
	BlockedRooms []string `json:"blockedRooms"`
	History      []struct {
		Status string `json:"status"`
	} `json:"history"`
	Messages []struct {
		Text string `json:"text"`
	} `json:"messages"`
}

type roomBlockResponse struct {
	Room    string `json:"room"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
	Version int64  `json:"version"`
}

type errorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CompletedStep string `json:"completed_step"`
	FailedStep    string `json:"failed_step"`
}

func basePath(suffix string) string {
	return "/api/establishments/" + testEstablishmentID + suffix
}

func createTicket(t *testing.T, h http.Handler, rooms ...string) interventionResponse {
	t.Helper()
	rec := doRequest(t, h, reception, http.MethodPost, basePath("/interventions"), map[string]any{
		"rooms":          rooms,
		"missionType":    "plumbing",
		"missionSummary": "Leaking tap",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated).Required()
	return decode[interventionResponse](t, rec)
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, nil)
	rec := doRequest(t, srv, testActor{}, http.MethodGet, "/health", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.S(t, rec.Body.String()).Contains(`"ok"`)
}

func TestCreateAndGetIntervention(t *testing.T) {
	srv := setupServer(t, nil)

	created := createTicket(t, srv, "101", "102")
	gt.Value(t, created.Status).Equal("todo")
	gt.Value(t, created.Version).Equal(int64(1))
	gt.A(t, created.Rooms).Length(2)
	gt.A(t, created.History).Length(0)

	rec := doRequest(t, srv, technician, http.MethodGet, basePath("/interventions/"+created.ID), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	got := decode[interventionResponse](t, rec)
	gt.Value(t, got.ID).Equal(created.ID)

	t.Run("unknown ticket is 404", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodGet, basePath("/interventions/missing"), nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("intervention_not_found")
	})

	t.Run("ticket is invisible from another establishment", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodGet, "/api/establishments/other/interventions/"+created.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestCreateInterventionValidation(t *testing.T) {
	srv := setupServer(t, nil)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, basePath("/interventions"), strings.NewReader("{"))
		req.Header.Set(httpctrl.HeaderActorID, reception.id)
		req.Header.Set(httpctrl.HeaderActorRole, string(reception.role))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("bad_request")
	})

	t.Run("missing actor", func(t *testing.T) {
		rec := doRequest(t, srv, testActor{}, http.MethodPost, basePath("/interventions"), map[string]any{
			"rooms": []string{"101"},
		})
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("invalid room", func(t *testing.T) {
		rec := doRequest(t, srv, reception, http.MethodPost, basePath("/interventions"), map[string]any{
			"rooms":          []string{" "},
			"missionSummary": "x",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestListInterventions(t *testing.T) {
	srv := setupServer(t, nil)
	first := createTicket(t, srv, "101")
	createTicket(t, srv, "102")

	rec := doRequest(t, srv, manager, http.MethodPost, basePath("/rooms/101/toggle"), map[string]string{"reason": "water damage"})
	gt.Value(t, rec.Code).Equal(http.StatusOK).Required()

	rec = doRequest(t, srv, manager, http.MethodGet, basePath("/interventions"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	resp := decode[struct {
		Interventions []interventionResponse `json:"interventions"`
	}](t, rec)
	gt.A(t, resp.Interventions).Length(2)

	for _, x := range resp.Interventions {
		if x.ID == first.ID {
			gt.A(t, x.BlockedRooms).Length(1)
			gt.Value(t, x.BlockedRooms[0]).Equal("101")
		} else {
			gt.A(t, x.BlockedRooms).Length(0)
		}
	}

	t.Run("status filter", func(t *testing.T) {
		rec := doRequest(t, srv, manager, http.MethodGet, basePath("/interventions?status=completed"), nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		resp := decode[struct {
			Interventions []interventionResponse `json:"interventions"`
		}](t, rec)
		gt.A(t, resp.Interventions).Length(0)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		rec := doRequest(t, srv, manager, http.MethodGet, basePath("/interventions?status=done"), nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("invalid_status")
	})
}

func TestChangeStatus(t *testing.T) {
	srv := setupServer(t, nil)
	x := createTicket(t, srv, "101")
	path := basePath("/interventions/" + x.ID + "/status")

	rec := doRequest(t, srv, technician, http.MethodPost, path, map[string]string{"status": "in_progress", "comment": "on it"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	resp := decode[struct {
		Intervention interventionResponse `json:"intervention"`
		Notification *struct {
			Type string `json:"type"`
		} `json:"notification"`
	}](t, rec)
	gt.Value(t, resp.Intervention.Status).Equal("in_progress")
	gt.Value(t, resp.Intervention.TechComment).Equal("on it")
	gt.B(t, resp.Intervention.Closed).False()
	gt.A(t, resp.Intervention.History).Length(1)
	gt.Value(t, resp.Notification).Nil()

	t.Run("same status is a conflict", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodPost, path, map[string]string{"status": "in_progress"})
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("no_op_transition")
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodPost, path, map[string]string{"status": "paused"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("invalid_status")
	})

	t.Run("stale If-Match", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodPost, path, map[string]string{"status": "ordering"}, "If-Match", "1")
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("stale_write")
	})

	t.Run("malformed If-Match", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodPost, path, map[string]string{"status": "ordering"}, "If-Match", "abc")
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("completion notifies the creator", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodPost, path, map[string]string{"status": "completed"}, "If-Match", "2")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		resp := decode[struct {
			Intervention interventionResponse `json:"intervention"`
			Notification *struct {
				Type   string `json:"type"`
				UserID string `json:"userId"`
			} `json:"notification"`
		}](t, rec)
		gt.B(t, resp.Intervention.Closed).True()
		gt.Value(t, resp.Intervention.TechComment).Equal("on it")
		gt.Value(t, resp.Notification).NotNil().Required()
		gt.Value(t, resp.Notification.Type).Equal("intervention_completed")
		gt.Value(t, resp.Notification.UserID).Equal(reception.id)
	})
}

func TestEditIntervention(t *testing.T) {
	srv := setupServer(t, nil)
	x := createTicket(t, srv, "101")
	path := basePath("/interventions/" + x.ID)

	rec := doRequest(t, srv, reception, http.MethodPatch, path, map[string]any{
		"rooms":          []string{"101", "103"},
		"missionSummary": "Leaking tap and shower",
	})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	got := decode[interventionResponse](t, rec)
	gt.A(t, got.Rooms).Length(2)
	gt.A(t, got.History).Length(0)

	t.Run("technician may not edit", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodPatch, path, map[string]any{"missionSummary": "x"})
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("field outside the allow-list", func(t *testing.T) {
		rec := doRequest(t, srv, reception, http.MethodPatch, path, map[string]any{"status": "completed"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("invalid_field")
	})
}

func TestThreadAndSupplies(t *testing.T) {
	srv := setupServer(t, nil)
	x := createTicket(t, srv, "101")

	rec := doRequest(t, srv, technician, http.MethodPost, basePath("/interventions/"+x.ID+"/messages"), map[string]any{
		"text": "Need a new cartridge",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	gt.A(t, decode[interventionResponse](t, rec).Messages).Length(1)

	rec = doRequest(t, srv, technician, http.MethodPut, basePath("/interventions/"+x.ID+"/supplies"), map[string]any{
		"supplies": []map[string]any{{"name": "cartridge", "quantity": 1, "unit": "pc"}},
	})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doRequest(t, srv, technician, http.MethodPost, basePath("/interventions/"+x.ID+"/supplies/0/ordered"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doRequest(t, srv, technician, http.MethodPost, basePath("/interventions/"+x.ID+"/supplies/5/ordered"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec = doRequest(t, srv, technician, http.MethodPost, basePath("/interventions/"+x.ID+"/supplies/first/ordered"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestRoomBlocks(t *testing.T) {
	srv := setupServer(t, nil)

	t.Run("technician may not toggle", func(t *testing.T) {
		rec := doRequest(t, srv, technician, http.MethodPost, basePath("/rooms/101/toggle"), map[string]string{"reason": "x"})
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("blocking needs a reason", func(t *testing.T) {
		rec := doRequest(t, srv, manager, http.MethodPost, basePath("/rooms/101/toggle"), nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("missing_reason")
	})

	rec := doRequest(t, srv, manager, http.MethodPost, basePath("/rooms/101/toggle"), map[string]string{"reason": "mold"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	block := decode[roomBlockResponse](t, rec)
	gt.B(t, block.Blocked).True()
	gt.Value(t, block.Reason).Equal("mold")

	rec = doRequest(t, srv, reception, http.MethodGet, basePath("/rooms/101"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.B(t, decode[roomBlockResponse](t, rec).Blocked).True()

	rec = doRequest(t, srv, reception, http.MethodGet, basePath("/rooms/check?rooms=101,102"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	check := decode[struct {
		AnyBlocked   bool     `json:"anyBlocked"`
		BlockedRooms []string `json:"blockedRooms"`
	}](t, rec)
	gt.B(t, check.AnyBlocked).True()
	gt.A(t, check.BlockedRooms).Length(1)

	rec = doRequest(t, srv, reception, http.MethodGet, basePath("/rooms/blocked"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.A(t, decode[struct {
		RoomBlocks []roomBlockResponse `json:"roomBlocks"`
	}](t, rec).RoomBlocks).Length(1)

	t.Run("stale version is rejected", func(t *testing.T) {
		rec := doRequest(t, srv, manager, http.MethodPost, basePath("/rooms/101/toggle"), nil, "If-Match", "7")
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
	})

	rec = doRequest(t, srv, manager, http.MethodPost, basePath("/rooms/101/toggle"), nil, "If-Match", "1")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.B(t, decode[roomBlockResponse](t, rec).Blocked).False()

	rec = doRequest(t, srv, reception, http.MethodGet, basePath("/rooms/blocked?all=true"), nil)
	gt.A(t, decode[struct {
		RoomBlocks []roomBlockResponse `json:"roomBlocks"`
	}](t, rec).RoomBlocks).Length(1)
}

func TestToggleRoomBlockBody(t *testing.T) {
	srv := setupServer(t, nil)
	path := basePath("/rooms/105/toggle")

	rec := doRequest(t, srv, manager, http.MethodPost, path, map[string]string{"reason": "broken heater"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	newRequest := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		// chunked uploads do not announce their length
		req.ContentLength = -1
		req.Header.Set(httpctrl.HeaderActorID, manager.id)
		req.Header.Set(httpctrl.HeaderActorName, manager.name)
		req.Header.Set(httpctrl.HeaderActorRole, string(manager.role))
		return req
	}

	t.Run("malformed body is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, newRequest("{"))
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("empty body of unknown length unblocks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, newRequest(""))
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.B(t, decode[roomBlockResponse](t, rec).Blocked).False()
	})
}

func TestBlockRoomForTicket(t *testing.T) {
	srv := setupServer(t, nil)
	x := createTicket(t, srv, "101", "102")
	path := basePath("/interventions/" + x.ID + "/rooms/102/block")

	t.Run("room outside the ticket", func(t *testing.T) {
		rec := doRequest(t, srv, manager, http.MethodPost, basePath("/interventions/"+x.ID+"/rooms/999/block"), map[string]string{"reason": "leak"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, rec).Code).Equal("room_not_in_ticket")
	})

	rec := doRequest(t, srv, manager, http.MethodPost, path, map[string]string{"reason": "leak"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	resp := decode[struct {
		RoomBlock    roomBlockResponse `json:"roomBlock"`
		Notification *struct {
			Type string `json:"type"`
			Room string `json:"room"`
		} `json:"notification"`
	}](t, rec)
	gt.B(t, resp.RoomBlock.Blocked).True()
	gt.Value(t, resp.Notification).NotNil().Required()
	gt.Value(t, resp.Notification.Type).Equal("room_blocked")
	gt.Value(t, resp.Notification.Room).Equal("102")

	rec = doRequest(t, srv, technician, http.MethodGet, basePath("/notifications?unread=true"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	list := decode[struct {
		Notifications []struct {
			ID string `json:"id"`
		} `json:"notifications"`
	}](t, rec)
	gt.A(t, list.Notifications).Length(1).Required()

	rec = doRequest(t, srv, technician, http.MethodPost, basePath("/notifications/"+list.Notifications[0].ID+"/read"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	rec = doRequest(t, srv, technician, http.MethodPost, basePath("/notifications/missing/read"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

// failingNotifications rejects every notification write
type failingNotifications struct {
	interfaces.NotificationRepository
}

func (failingNotifications) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	return nil, errors.New("notification store unavailable")
}

type repoWithFailingNotifications struct {
	*memory.Memory
}

func (r repoWithFailingNotifications) Notification() interfaces.NotificationRepository {
	return failingNotifications{r.Memory.Notification()}
}

func TestPartialApplyResponse(t *testing.T) {
	srv := setupServer(t, repoWithFailingNotifications{memory.New()})
	x := createTicket(t, srv, "101")

	rec := doRequest(t, srv, manager, http.MethodPost, basePath("/interventions/"+x.ID+"/rooms/101/block"), map[string]string{"reason": "leak"})
	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
	resp := decode[errorResponse](t, rec)
	gt.Value(t, resp.Code).Equal("partial_apply")
	gt.Value(t, resp.CompletedStep).Equal("room_block")
	gt.Value(t, resp.FailedStep).Equal("notification")

	rec = doRequest(t, srv, reception, http.MethodGet, basePath("/rooms/101"), nil)
	gt.B(t, decode[roomBlockResponse](t, rec).Blocked).True()
}

func TestEstablishments(t *testing.T) {
	registry := model.NewEstablishmentRegistry()
	registry.Register(&model.Establishment{
		ID:    testEstablishmentID,
		Name:  "Hotel Lyon",
		Rooms: []types.RoomID{"101", "102"},
	})

	srv := setupServer(t, nil, httpctrl.WithEstablishments(registry))
	rec := doRequest(t, srv, testActor{}, http.MethodGet, "/api/establishments", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("Hotel Lyon")
}

func TestEvents(t *testing.T) {
	srv := setupServer(t, nil, httpctrl.WithKeepAlive(20*time.Millisecond))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	x := createTicket(t, srv, "101")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+basePath("/events"), nil)
	gt.NoError(t, err).Required()
	req.Header.Set(httpctrl.HeaderActorID, manager.id)
	req.Header.Set(httpctrl.HeaderActorRole, string(manager.role))

	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	gt.Value(t, resp.Header.Get("Content-Type")).Equal("text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	next := func(prefix string) string {
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, prefix) {
				return line
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, scanner.Err())
		return ""
	}

	// initial state
	gt.Value(t, next("event:")).Equal("event: interventions.added")
	gt.Value(t, next("id:")).Equal("id: " + x.ID)

	rec := doRequest(t, srv, manager, http.MethodPost, basePath("/rooms/101/toggle"), map[string]string{"reason": "leak"})
	gt.Value(t, rec.Code).Equal(http.StatusOK).Required()

	gt.Value(t, next("event:")).Equal("event: blockedRooms.added")
	gt.S(t, next("data:")).Contains(`"blocked":true`)

	gt.Value(t, next(":")).Equal(": keep-alive")
}
