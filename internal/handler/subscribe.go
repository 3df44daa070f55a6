package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msomdec/library-catalog/internal/service"
)

// SubscriptionHandler streams broadcast events to WebSocket clients.
type SubscriptionHandler struct {
	events   *service.Broadcaster
	upgrader websocket.Upgrader
}

// NewSubscriptionHandler creates a new SubscriptionHandler reading from the
// given broadcaster.
func NewSubscriptionHandler(events *service.Broadcaster) *SubscriptionHandler {
	return &SubscriptionHandler{
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Subscribers authenticate nothing and receive public catalog
			// data only, so cross-origin clients are allowed.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

const writeTimeout = 10 * time.Second

// HandleBookAdded upgrades the connection and forwards every book added
// after the subscription was opened, as one JSON message per book. Past
// events are never replayed. The subscription ends when the client
// disconnects; its registration is released without affecting other
// subscribers.
// GET /api/subscriptions/book-added
func (h *SubscriptionHandler) HandleBookAdded(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade subscription", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.events.Subscribe(service.TopicBookAdded)
	defer cancel()

	// Drain the read side so close frames and client disconnects are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(toBookDTO(event)); err != nil {
				slog.Debug("write subscription event", "error", err)
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
