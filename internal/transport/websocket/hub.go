package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"forest-ca/internal/sims/forestfire"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Frames queued per client before it is dropped as too slow.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one JSON frame pushed to viewers.
type Message struct {
	Event   string `json:"event"`
	Step    int    `json:"step"`
	Burning int    `json:"burning"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Cells   string `json:"cells,omitempty"` // row-major state digits
	Series  []int  `json:"series,omitempty"`
}

// StepMessage encodes a driver frame.
func StepMessage(f forestfire.Frame) *Message {
	h, w := f.Grid.Dimensions()
	var sb strings.Builder
	sb.Grow(h * w)
	for _, v := range f.Grid.Cells() {
		sb.WriteByte('0' + v)
	}
	return &Message{
		Event:   "step",
		Step:    f.Step,
		Burning: f.Burning,
		Width:   w,
		Height:  h,
		Cells:   sb.String(),
	}
}

// FinishedMessage announces the end of a run with its full series.
func FinishedMessage(series forestfire.Series) *Message {
	last := series.Len() - 1
	return &Message{
		Event:   "finished",
		Step:    last,
		Burning: series.At(last),
		Series:  series.Values(),
	}
}

// Client is one websocket viewer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected viewer.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
	log        *zap.Logger
}

// NewHub creates a new hub. Run must be started before publishing.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.unregisterClient(client)
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Publish queues a message for every viewer. It reports false once the hub
// has stopped.
func (h *Hub) Publish(m *Message) bool {
	select {
	case h.broadcast <- m:
		return true
	case <-h.done:
		return false
	}
}

// Observer publishes every driver frame.
func (h *Hub) Observer() forestfire.Observer {
	return func(f forestfire.Frame) error {
		h.Publish(StepMessage(f))
		return nil
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// ServeWS upgrades the request and attaches a viewer.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.count.Store(int64(len(h.clients)))
	h.log.Debug("viewer connected", zap.Int("viewers", len(h.clients)))
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
	h.log.Debug("viewer disconnected", zap.Int("viewers", len(h.clients)))
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("marshal frame", zap.Error(err))
		return
	}
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.log.Warn("dropping slow viewer")
			h.unregisterClient(client)
		}
	}
}

// readPump drains the connection so pongs and close frames are processed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read", zap.Error(err))
			}
			return
		}
	}
}

// writePump sends one websocket message per frame and keeps the peer alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
