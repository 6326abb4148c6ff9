package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/hotelops/intervention/pkg/utils/errutil"
	"github.com/hotelops/intervention/pkg/utils/safe"
)

// errBadRequest marks malformed requests that never reached a use case
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CompletedStep string `json:"completed_step,omitempty"`
	FailedStep    string `json:"failed_step,omitempty"`
}

var errorStatuses = []struct {
	target error
	status int
	code   string
}{
	{errBadRequest, http.StatusBadRequest, "bad_request"},
	{usecase.ErrInvalidActor, http.StatusUnauthorized, "invalid_actor"},
	{usecase.ErrForbidden, http.StatusForbidden, "forbidden"},
	{usecase.ErrInterventionNotFound, http.StatusNotFound, "intervention_not_found"},
	{usecase.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found"},
	{usecase.ErrEstablishmentNotFound, http.StatusNotFound, "establishment_not_found"},
	{usecase.ErrStaleWrite, http.StatusConflict, "stale_write"},
	{usecase.ErrNoOpTransition, http.StatusConflict, "no_op_transition"},
	{usecase.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{usecase.ErrInvalidField, http.StatusBadRequest, "invalid_field"},
	{usecase.ErrMissingReason, http.StatusBadRequest, "missing_reason"},
	{usecase.ErrInvalidRoom, http.StatusBadRequest, "invalid_room"},
	{usecase.ErrRoomNotInTicket, http.StatusBadRequest, "room_not_in_ticket"},
}

// writeError maps business errors to 4xx responses. Everything else is a
// store or internal failure: it is logged, reported and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error(), Code: "internal"}
	status := http.StatusInternalServerError

	var partial *usecase.PartialApplyError
	if errors.As(err, &partial) {
		resp.Code = "partial_apply"
		resp.CompletedStep = string(partial.CompletedStep)
		resp.FailedStep = string(partial.FailedStep)
	} else {
		for _, e := range errorStatuses {
			if errors.Is(err, e.target) {
				status, resp.Code = e.status, e.code
				break
			}
		}
	}

	if status >= http.StatusInternalServerError {
		_ = errutil.Handle(r.Context(), err, "request failed")
		if resp.Code == "internal" {
			resp.Error = "internal server error"
		}
	}

	data, mErr := json.Marshal(resp)
	if mErr != nil {
		errutil.HandleHTTP(r.Context(), w, mErr, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
