package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/manager"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/eventbus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// outbound messages buffered per connection; slow clients lose events
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP middleware
	},
}

// Message is a client request
type Message struct {
	Type string `json:"type"`
}

// Handler streams apply events to WebSocket clients
type Handler struct {
	events   *eventbus.Bus[manager.AppliedEvent]
	registry *manager.Registry
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler. metrics and logger may be nil.
func NewHandler(events *eventbus.Bus[manager.AppliedEvent], registry *manager.Registry, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		events:   events,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// connection owns the single writer of one socket
type connection struct {
	conn *websocket.Conn
	send chan map[string]interface{}
	done chan struct{}
	once sync.Once
}

func (c *connection) close() {
	c.once.Do(func() { close(c.done) })
}

// enqueue drops the message when the client is not keeping up
func (c *connection) enqueue(msg map[string]interface{}) bool {
	select {
	case <-c.done:
		return false
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.track(1)
	defer h.track(-1)

	cn := &connection{
		conn: conn,
		send: make(chan map[string]interface{}, sendBuffer),
		done: make(chan struct{}),
	}

	unsubscribe := h.events.Subscribe(func(ev manager.AppliedEvent) {
		if !cn.enqueue(map[string]interface{}{
			"type":      "applied",
			"event":     ev,
			"timestamp": time.Now().Unix(),
		}) {
			h.logger.Warn("dropping apply event for slow client",
				zap.String("apply_id", ev.ID.String()),
				zap.String("remote", conn.RemoteAddr().String()))
		}
	})
	defer unsubscribe()

	cn.enqueue(map[string]interface{}{
		"type":    "system",
		"message": "Connected to Overlay Picker (Go)",
		"domains": h.registry.Statuses(),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(cn)
	}()

	h.readLoop(cn)
	cn.close()
	wg.Wait()
	conn.Close()
}

func (h *Handler) readLoop(cn *connection) {
	cn.conn.SetReadLimit(4096)
	_ = cn.conn.SetReadDeadline(time.Now().Add(pongWait))
	cn.conn.SetPongHandler(func(string) error {
		return cn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := cn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "ping":
			cn.enqueue(map[string]interface{}{"type": "pong"})
		case "status":
			cn.enqueue(map[string]interface{}{
				"type":      "status",
				"domains":   h.registry.Statuses(),
				"timestamp": time.Now().Unix(),
			})
		default:
			cn.enqueue(errorMessage("unknown message type"))
		}
	}
}

func (h *Handler) writeLoop(cn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cn.done:
			_ = cn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = cn.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-cn.send:
			_ = cn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cn.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("websocket write error", zap.Error(err))
				cn.close()
				cn.conn.Close()
				return
			}
			if t, ok := msg["type"].(string); ok {
				h.record("out", t)
			}
		case <-ticker.C:
			_ = cn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cn.close()
				cn.conn.Close()
				return
			}
		}
	}
}

func (h *Handler) track(delta int) {
	if h.metrics == nil {
		return
	}
	if delta > 0 {
		h.metrics.IncWSConnections()
	} else {
		h.metrics.DecWSConnections()
	}
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

func errorMessage(msg string) map[string]interface{} {
	return map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	}
}
