package api

import (
	"net/http"
	"sync"
	"time"

	"MeetMind/internal/models"
	"MeetMind/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ProgressEvent is one ingestion stage change pushed to subscribers.
type ProgressEvent struct {
	MeetingID string    `json:"meeting_id"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressHub fans ingestion progress out to websocket subscribers. It
// implements service.ProgressNotifier, so the memory service stays
// unaware of the transport.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	log     *logger.Logger
}

func NewProgressHub(log *logger.Logger) *ProgressHub {
	return &ProgressHub{clients: make(map[*websocket.Conn]bool), log: log}
}

// Notify broadcasts a stage change to every connected client. Clients
// that fail to receive are dropped.
func (h *ProgressHub) Notify(meetingID, stage string) {
	event := ProgressEvent{MeetingID: meetingID, Stage: stage, Timestamp: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// HandleWS upgrades the request to a websocket subscription. The read
// loop exists only to detect the client going away.
func (h *ProgressHub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.WithError(models.ErrorInfo{Message: err.Error()}).Warn("websocket upgrade failed")
		}
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
