package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// LiveUpdate is the event fanned out to stream subscribers: the raw patch
// plus the snapshot it produced.
type LiveUpdate struct {
	Update   KPIUpdate   `json:"update"`
	Snapshot KPISnapshot `json:"snapshot"`
}

// StreamHub fans KPI updates out to in-process subscribers and to
// downstream websocket/SSE clients.
type StreamHub struct {
	mu   sync.RWMutex
	subs map[int]chan LiveUpdate
	next int
}

// NewStreamHub creates an empty hub.
func NewStreamHub() *StreamHub {
	return &StreamHub{subs: make(map[int]chan LiveUpdate)}
}

// Publish delivers the update to every subscriber. Slow subscribers drop
// events rather than blocking the stream reader.
func (h *StreamHub) Publish(_ context.Context, update LiveUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- update:
		default:
		}
	}
}

// Subscribe returns a channel of updates and a cancel func.
func (h *StreamHub) Subscribe() (<-chan LiveUpdate, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan LiveUpdate, 8)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams KPI updates as JSON.
func (h *StreamHub) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		return
	}
	defer conn.Close()

	updates, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for KPI updates.
func (h *StreamHub) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	updates, cancel := h.Subscribe()
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(update); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
