package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the slice of a websocket connection the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Hub tracks the connected listeners and pushes report notifications to
// them. Membership changes are safe to interleave with a broadcast: the
// broadcast iterates a snapshot and drops any conn whose send fails.
type Hub struct {
	mu    sync.Mutex
	conns map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[Conn]struct{})}
}

func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

type ReportUpdate struct {
	Type      string `json:"type"`
	ReportID  string `json:"report_id"`
	Timestamp string `json:"timestamp"`
}

// BroadcastReportUpdate notifies every listener that a report completed.
// Delivery is best effort: a failed send unregisters that conn, no retry.
func (h *Hub) BroadcastReportUpdate(reportID string) {
	payload, err := json.Marshal(ReportUpdate{
		Type:      "report_update",
		ReportID:  reportID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Error("error marshaling report update", "error", err)
		return
	}

	h.mu.Lock()
	snapshot := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	var dropped int
	for _, c := range snapshot {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.Unregister(c)
			dropped++
		}
	}

	slog.Info("report update broadcast", "report_id", reportID, "listeners", len(snapshot), "dropped", dropped)
}
