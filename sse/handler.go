package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/chatgate/logger"
)

// ConnectedEvent is the first message on a subscription.
type ConnectedEvent struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
	Filter   string `json:"filter"`
}

// ServeSubscription registers c with hub and streams its events to w until
// the request ends or the hub stops.
func ServeSubscription(hub *Hub, w http.ResponseWriter, r *http.Request, c *Client, keepAlive time.Duration) {
	sw, err := NewWriter(w)
	if err != nil {
		logger.Error("sse: streaming not supported", logger.Fields("client_id", c.ID()))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	if !hub.Register(c) {
		http.Error(w, "activity feed closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(c)

	w.WriteHeader(http.StatusOK)
	if err := sw.WriteJSON(ConnectedEvent{Type: EventTypeConnected, ClientID: c.ID(), Filter: c.Filter()}); err != nil {
		return
	}

	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("sse: subscriber left", logger.Fields("client_id", c.ID()))
			return
		case data, ok := <-c.Events():
			if !ok {
				return
			}
			if err := sw.WriteData(data); err != nil {
				return
			}
		case <-ticker.C:
			if err := sw.WriteComment(fmt.Sprintf("keepalive %d", time.Now().Unix())); err != nil {
				return
			}
		}
	}
}
