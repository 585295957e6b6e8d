package events

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// SessionResolver maps a request to the session whose events it may see.
type SessionResolver func(r *http.Request) (string, bool)

// envelope is the wire shape for both transports.
func envelope(evt Event) []byte {
	return []byte(fmt.Sprintf(`{"kind":%q,"data":%s}`, evt.Kind, evt.Payload))
}

func kindFilter(r *http.Request) map[string]bool {
	q := r.URL.Query().Get("kinds")
	if q == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, k := range strings.Split(q, ",") {
		if k = strings.TrimSpace(k); k != "" {
			filter[k] = true
		}
	}
	return filter
}

// SSEHandler streams session events as server-sent events. Clients may filter
// kinds via ?kinds=navigation,documents.
func SSEHandler(broker *Broker, resolve SessionResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolve(r)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		filter := kindFilter(r)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe(session)
		defer broker.Unsubscribe(id)

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if filter != nil && !filter[evt.Kind] {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Kind, evt.Payload)
				flusher.Flush()
			}
		}
	}
}

// WebSocketHandler streams session events as websocket text frames.
func WebSocketHandler(broker *Broker, resolve SessionResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolve(r)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		filter := kindFilter(r)

		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("websocket upgrade failed", "error", err)
			return
		}
		defer func() {
			_ = conn.Close()
		}()

		id, ch := broker.Subscribe(session)
		defer broker.Unsubscribe(id)

		// The read side only watches for the client going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		slog.Debug("websocket subscriber attached", "session", session, "subscriber", id)
		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if filter != nil && !filter[evt.Kind] {
					continue
				}
				if err := wsutil.WriteServerText(conn, envelope(evt)); err != nil {
					slog.Debug("websocket write failed", "session", session, "error", err)
					return
				}
			}
		}
	}
}
