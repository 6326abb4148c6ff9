package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/hotelops/intervention/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// events streams the establishment change feed as server-sent events. The
// first frames replay the current state as "added" events.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	feed, err := s.uc.Coordinator.Subscribe(ctx, establishmentID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logging.From(ctx).Warn("event stream not flushable", "error", err)
	}

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			if !safe.Write(ctx, w, []byte(": keep-alive\n\n")) {
				return
			}
			_ = rc.Flush()

		case ev, ok := <-feed:
			if !ok {
				return
			}

			data, err := json.Marshal(toChangeEventJSON(ev))
			if err != nil {
				logging.From(ctx).Error("failed to encode change event",
					"error", goerr.Wrap(err, "marshal change event"),
					"document_id", ev.DocumentID)
				continue
			}

			frame := fmt.Sprintf("event: %s.%s\nid: %s\ndata: %s\n\n", ev.Collection, ev.Kind, ev.DocumentID, data)
			if !safe.Write(ctx, w, []byte(frame)) {
				return
			}
			_ = rc.Flush()
		}
	}
}
