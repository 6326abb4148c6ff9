package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

// maxBodySize bounds request bodies
const maxBodySize = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}

// decodeOptionalBody is decodeBody for requests whose body may be omitted.
// v is left untouched when the body is empty, whatever Content-Length says.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}

func interventionID(r *http.Request) model.InterventionID {
	return model.InterventionID(chi.URLParam(r, "id"))
}

type createInterventionRequest struct {
	Rooms            []string     `json:"rooms"`
	RoomType         string       `json:"roomType"`
	MissionType      string       `json:"missionType"`
	InterventionType string       `json:"interventionType"`
	Priority         string       `json:"priority"`
	AssignedTo       string       `json:"assignedTo"`
	MissionSummary   string       `json:"missionSummary"`
	MissionComment   string       `json:"missionComment"`
	SuppliesNeeded   []supplyJSON `json:"suppliesNeeded"`
}

func toSupplies(in []supplyJSON) []model.Supply {
	out := make([]model.Supply, len(in))
	for i, s := range in {
		out[i] = model.Supply(s)
	}
	return out
}

func (s *Server) createIntervention(w http.ResponseWriter, r *http.Request) {
	var req createInterventionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	x, err := s.uc.Intervention.CreateIntervention(r.Context(), establishmentID(r), actorFrom(r.Context()), usecase.CreateInterventionInput{
		Rooms:            req.Rooms,
		RoomType:         types.RoomType(req.RoomType),
		MissionType:      req.MissionType,
		InterventionType: req.InterventionType,
		Priority:         types.Priority(req.Priority),
		AssignedTo:       req.AssignedTo,
		MissionSummary:   req.MissionSummary,
		MissionComment:   req.MissionComment,
		SuppliesNeeded:   toSupplies(req.SuppliesNeeded),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toInterventionJSON(x))
}

func (s *Server) listInterventions(w http.ResponseWriter, r *http.Request) {
	var opts []interfaces.ListInterventionOption
	if v := r.URL.Query().Get("status"); v != "" {
		status, err := types.ParseInterventionStatus(v)
		if err != nil {
			writeError(w, r, goerr.Wrap(usecase.ErrInvalidStatus, "invalid status filter", goerr.V("status", v)))
			return
		}
		opts = append(opts, interfaces.WithStatus(status))
	}
	if v := r.URL.Query().Get("assignedTo"); v != "" {
		opts = append(opts, interfaces.WithAssignee(v))
	}

	views, err := s.uc.Intervention.ListInterventions(r.Context(), establishmentID(r), opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		Interventions []*interventionJSON `json:"interventions"`
	}{
		Interventions: make([]*interventionJSON, len(views)),
	}
	for i, v := range views {
		resp.Interventions[i] = toInterventionViewJSON(v)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) getIntervention(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Intervention.GetIntervention(r.Context(), establishmentID(r), interventionID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toInterventionViewJSON(view))
}

func (s *Server) editIntervention(w http.ResponseWriter, r *http.Request) {
	opts, err := mutationOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var set map[string]any
	if err := decodeBody(w, r, &set); err != nil {
		writeError(w, r, err)
		return
	}

	x, err := s.uc.Coordinator.EditIntervention(r.Context(), establishmentID(r), interventionID(r), model.EditSet(set), actorFrom(r.Context()), opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toInterventionJSON(x))
}

type changeStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	opts, err := mutationOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req changeStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.Coordinator.ChangeStatus(r.Context(), establishmentID(r), interventionID(r),
		types.InterventionStatus(req.Status), actorFrom(r.Context()), req.Comment, opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		Intervention *interventionJSON `json:"intervention"`
		Notification *notificationJSON `json:"notification,omitempty"`
	}{
		Intervention: toInterventionJSON(result.Intervention),
	}
	if result.Notification != nil {
		resp.Notification = toNotificationJSON(result.Notification)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type addMessageRequest struct {
	Text   string   `json:"text"`
	Photos []string `json:"photos"`
}

func (s *Server) addMessage(w http.ResponseWriter, r *http.Request) {
	opts, err := mutationOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req addMessageRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	x, err := s.uc.Intervention.AddMessage(r.Context(), establishmentID(r), interventionID(r), actorFrom(r.Context()), req.Text, req.Photos, opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toInterventionJSON(x))
}

func (s *Server) setSupplies(w http.ResponseWriter, r *http.Request) {
	opts, err := mutationOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Supplies []supplyJSON `json:"supplies"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	x, err := s.uc.Intervention.SetSupplies(r.Context(), establishmentID(r), interventionID(r), actorFrom(r.Context()), toSupplies(req.Supplies), opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toInterventionJSON(x))
}

func (s *Server) markSupplyOrdered(w http.ResponseWriter, r *http.Request) {
	opts, err := mutationOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, goerr.Wrap(errBadRequest, "supply index must be a number"))
		return
	}

	x, err := s.uc.Intervention.MarkSupplyOrdered(r.Context(), establishmentID(r), interventionID(r), actorFrom(r.Context()), index, opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toInterventionJSON(x))
}
