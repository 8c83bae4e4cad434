package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
)

const streamHeartbeat = 25 * time.Second

// StreamScorecards serves newly ingested match reports as server-sent
// events. Heartbeat comments keep intermediaries from closing the idle
// connection.
func (h *Handler) StreamScorecards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamScorecards")
	defer span.End()

	if h.stream == nil {
		writeError(ctx, w, fmt.Errorf("scorecard streaming is not enabled"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(ctx, w, fmt.Errorf("streaming is not supported by this connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id, events := h.stream.Subscribe()
	defer h.stream.Unsubscribe(id)

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case report, open := <-events:
			if !open {
				return
			}
			payload, err := sonic.Marshal(report)
			if err != nil {
				h.logger.WarnContext(ctx, "encode stream event failed", "report_id", report.ID, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: scorecard\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
