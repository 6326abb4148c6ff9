package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hotelops/intervention/pkg/domain/model"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := s.uc.Notification.ListNotifications(r.Context(), establishmentID(r), actorFrom(r.Context()), unreadOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		Notifications []*notificationJSON `json:"notifications"`
	}{
		Notifications: make([]*notificationJSON, len(notifications)),
	}
	for i, n := range notifications {
		resp.Notifications[i] = toNotificationJSON(n)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := model.NotificationID(chi.URLParam(r, "nid"))

	if err := s.uc.Notification.MarkNotificationRead(r.Context(), establishmentID(r), id, actorFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
