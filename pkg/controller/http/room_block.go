package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

type reasonRequest struct {
	Reason string `json:"reason"`
}

func roomParam(r *http.Request) types.RoomID {
	return types.RoomID(chi.URLParam(r, "room"))
}

// decodeReason accepts an empty body, which unblocking requests commonly send
func decodeReason(w http.ResponseWriter, r *http.Request) (string, error) {
	var req reasonRequest
	if err := decodeOptionalBody(w, r, &req); err != nil {
		return "", err
	}
	return req.Reason, nil
}

func (s *Server) blockRoomForTicket(w http.ResponseWriter, r *http.Request) {
	opts, err := mutationOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reason, err := decodeReason(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.Coordinator.BlockRoomForTicket(r.Context(), establishmentID(r), interventionID(r), roomParam(r), actorFrom(r.Context()), reason, opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		RoomBlock    *roomBlockJSON    `json:"roomBlock"`
		Notification *notificationJSON `json:"notification,omitempty"`
	}{
		RoomBlock: toRoomBlockJSON(result.Block),
	}
	if result.Notification != nil {
		resp.Notification = toNotificationJSON(result.Notification)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) toggleRoomBlock(w http.ResponseWriter, r *http.Request) {
	opts, err := mutationOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reason, err := decodeReason(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.RoomBlock.ToggleRoomBlock(r.Context(), establishmentID(r), roomParam(r), actorFrom(r.Context()), reason, opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRoomBlockJSON(result.Block))
}

func (s *Server) getRoomBlock(w http.ResponseWriter, r *http.Request) {
	b, err := s.uc.RoomBlock.GetRoomBlock(r.Context(), establishmentID(r), roomParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRoomBlockJSON(b))
}

func (s *Server) listRoomBlocks(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	blocks, err := s.uc.RoomBlock.ListRoomBlocks(r.Context(), establishmentID(r), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		RoomBlocks []*roomBlockJSON `json:"roomBlocks"`
	}{
		RoomBlocks: make([]*roomBlockJSON, len(blocks)),
	}
	for i, b := range blocks {
		resp.RoomBlocks[i] = toRoomBlockJSON(b)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// checkRooms answers ?rooms=101,102 with the rooms under an active block
func (s *Server) checkRooms(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("rooms")
	var values []string
	if raw != "" {
		values = strings.Split(raw, ",")
	}

	rooms, err := types.ParseRoomIDs(values)
	if err != nil {
		writeError(w, r, goerr.Wrap(usecase.ErrInvalidRoom, "invalid rooms query", goerr.V("cause", err.Error())))
		return
	}

	check, err := s.uc.RoomBlock.IsAnyBlocked(r.Context(), establishmentID(r), rooms)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		AnyBlocked   bool     `json:"anyBlocked"`
		BlockedRooms []string `json:"blockedRooms"`
	}{
		AnyBlocked:   check.AnyBlocked,
		BlockedRooms: roomStrings(check.BlockedRooms),
	})
}
