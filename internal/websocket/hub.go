package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const maxMessageSize = 4096

// Client is one dashboard connection. Inbound frames are handed to
// OnMessage; OnClose fires once when the connection goes away.
type Client struct {
	Hub       *Hub
	ID        string
	Conn      *websocket.Conn
	Send      chan []byte
	OnMessage func([]byte)
	OnClose   func()
}

// Hub tracks connected dashboard clients.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// Message is the envelope for every frame pushed to a client. Rev carries
// the session revision that produced the payload, so a client can discard
// frames older than the last one it applied.
type Message struct {
	Type      string      `json:"type"`
	Rev       uint64      `json:"rev"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()
			logrus.Infof("Dashboard client %s connected", client.ID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				logrus.Infof("Dashboard client %s disconnected", client.ID)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}

// Push queues one frame for delivery. It reports false when the frame was
// dropped because the client's queue is full; the next refresh resends.
func (c *Client) Push(msg Message) bool {
	msg.Timestamp = time.Now()
	raw, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	select {
	case c.Send <- raw:
		return true
	default:
		return false
	}
}

func (c *Client) ReadPump() {
	defer func() {
		if c.OnClose != nil {
			c.OnClose()
		}
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		if c.OnMessage != nil {
			c.OnMessage(raw)
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		c.Conn.Close()
	}()
	for message := range c.Send {
		c.Conn.WriteMessage(websocket.TextMessage, message)
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// ServeWs upgrades the request and starts the client pumps. bind runs
// before any pump starts, so handlers can attach OnMessage and OnClose
// without racing inbound frames.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, allowedOrigins []string, bind func(*Client)) {
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}

	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		Hub:  hub,
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	if bind != nil {
		bind(client)
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
