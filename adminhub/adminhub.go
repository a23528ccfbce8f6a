// Package adminhub implements the Admin Monitor Hub (A6, SPEC_FULL.md §2):
// a secondary, read-only WebSocket fan-out distinct from the player
// transport, streaming dispatch/kill/chat/flood events to connected admin
// consoles. Grounded on the teacher's register/unregister/broadcast hub
// idiom (server/websocket.go), repurposed here for one-way observability
// instead of two-way gameplay.
package adminhub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// EventKind tags an AdminEvent's payload shape.
type EventKind string

const (
	EventKill          EventKind = "kill"
	EventFlood         EventKind = "flood"
	EventRedirect      EventKind = "redirect"
	EventWarp          EventKind = "warp"
	EventObsceneReload EventKind = "obscene_reload"
	EventSpecToggle    EventKind = "spec_toggle"
)

// Event is the tagged union broadcast on the admin hub (SPEC_FULL.md §3
// "AdminEvent").
type Event struct {
	Kind EventKind   `json:"kind"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan Event
}

// Hub fans admin events out to every connected console. Inbound frames
// from admin connections are read only to notice disconnects and are
// otherwise discarded: this is a read-only monitor, not a second control
// plane.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan Event

	// Limiter caps how often Publish will actually enqueue an event,
	// protecting slow admin consoles from a storm of kill/chat events
	// during a busy arena. nil means unlimited.
	Limiter *rate.Limiter
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 256),
	}
}

// Run drives the hub's event loop; call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case evt := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- evt:
				default:
					log.Printf("adminhub: client send buffer full, dropping %s event", evt.Kind)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish enqueues evt for every connected admin console. Never blocks.
func (h *Hub) Publish(evt Event) {
	if h.Limiter != nil && !h.Limiter.Allow() {
		return
	}
	evt.At = time.Now()
	select {
	case h.broadcast <- evt:
	default:
		log.Printf("adminhub: broadcast queue full, dropping %s event", evt.Kind)
	}
}

// ServeHTTP upgrades the connection and registers it as a read-only
// consumer of every future Publish call.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("adminhub: upgrade failed: %v", err)
		return
	}

	c := &client{id: uuid.New(), conn: conn, send: make(chan Event, 64)}
	h.register <- c
	log.Printf("adminhub: console %s connected", c.id)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump drains c.send to the socket until the channel is closed.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for evt := range c.send {
		payload, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump exists only to notice the console closing the connection; an
// admin console has nothing to send, so every inbound frame is discarded.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		log.Printf("adminhub: console %s disconnected", c.id)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
