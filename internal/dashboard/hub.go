package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
)

// Hub fans out run updates to connected websocket clients. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan *RunView
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	latest     *RunView
	metrics    *metrics.Metrics
}

// NewHub creates a hub; call Run to start it.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *RunView, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		metrics:    m,
	}
}

// Run is the hub loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.quit)
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.metrics.WSClients.Set(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.WSClients.Set(float64(len(h.clients)))
			if h.latest != nil {
				c.send <- h.latest
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.metrics.WSClients.Set(float64(len(h.clients)))
			}

		case msg := <-h.broadcast:
			h.latest = msg
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.metrics.WSClients.Set(float64(len(h.clients)))
		}
	}
}

// Publish queues res for every client. It never blocks the caller: when the
// queue is full the update is dropped, the next run supersedes it anyway.
func (h *Hub) Publish(res *model.RunResult) {
	select {
	case h.broadcast <- NewRunView(res):
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &Client{hub: s.hub, conn: conn, send: make(chan *RunView, 8)}
	select {
	case s.hub.register <- client:
	case <-s.hub.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
