package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Hub manages websocket rooms keyed by chatroom ID.
type Hub struct {
	mu    sync.RWMutex
	rooms map[primitive.ObjectID]*Room
}

var hub = &Hub{rooms: make(map[primitive.ObjectID]*Room)}

func getHub() *Hub { return hub }

var logger = zap.NewNop().Sugar()

// SetLogger wires the hub to the process logger. Call once during startup.
func SetLogger(l *zap.SugaredLogger) { logger = l }

// PresenceMarker flips a chatroom presence flag when a role's first session
// connects or its last session disconnects.
type PresenceMarker func(roomID primitive.ObjectID, role string, active bool)

var markPresence PresenceMarker

// SetPresenceMarker wires the hub to the chatroom service. Call once during
// startup, before any connection is served.
func SetPresenceMarker(fn PresenceMarker) { markPresence = fn }

// Room maintains active clients and broadcasts messages to them. Presence is
// reference-counted per role so multiple tabs or devices for the same role
// keep the flag set until the last one disconnects.
type Room struct {
	id         primitive.ObjectID
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	roleCounts map[string]int
}

// newRoom constructs a room and starts its event loop goroutine.
func newRoom(id primitive.ObjectID) *Room {
	r := &Room{
		id:         id,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		roleCounts: make(map[string]int),
	}
	go r.run()
	return r
}

// run is the room event loop; it serializes all room state changes and fans
// out broadcasts.
func (r *Room) run() {
	for {
		select {
		case c := <-r.register:
			r.clients[c] = true
			logger.Debugw("ws session joined", "session_id", c.id.String(), "room", r.id.Hex(), "role", c.role)
			if r.incrementRole(c.role) && markPresence != nil {
				markPresence(r.id, c.role, true)
			}
		case c := <-r.unregister:
			if _, ok := r.clients[c]; ok {
				delete(r.clients, c)
				close(c.send)
				logger.Debugw("ws session left", "session_id", c.id.String(), "room", r.id.Hex(), "role", c.role)
				if r.decrementRole(c.role) && markPresence != nil {
					markPresence(r.id, c.role, false)
				}
			}
		case msg := <-r.broadcast:
			r.broadcastToClients(msg)
		}
	}
}

// incrementRole bumps the session count for a role, returning true on the
// first session.
func (r *Room) incrementRole(role string) bool {
	count := r.roleCounts[role]
	r.roleCounts[role] = count + 1
	return count == 0
}

// decrementRole drops the session count for a role, returning true when the
// last session is gone.
func (r *Room) decrementRole(role string) bool {
	count := r.roleCounts[role]
	if count <= 1 {
		delete(r.roleCounts, role)
		return true
	}
	r.roleCounts[role] = count - 1
	return false
}

// broadcastToClients sends a raw websocket message to all connected clients,
// dropping slow consumers.
func (r *Room) broadcastToClients(msg []byte) {
	for c := range r.clients {
		select {
		case c.send <- msg:
		default:
			// slow client; drop
		}
	}
}

// GetRoom returns the existing room or creates a new one.
func GetRoom(id primitive.ObjectID) *Room {
	h := getHub()
	h.mu.RLock()
	r := h.rooms[id]
	h.mu.RUnlock()
	if r != nil {
		return r
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if r = h.rooms[id]; r == nil {
		r = newRoom(id)
		h.rooms[id] = r
	}
	return r
}

// BroadcastMessage sends the given event to all websocket clients in a room.
func BroadcastMessage(roomID primitive.ObjectID, event WsEvent) {
	b, err := json.Marshal(event)
	if err != nil {
		logger.Warnw("ws event marshal failed", "err", err)
		return
	}
	GetRoom(roomID).broadcast <- b
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ServeChatroomWS upgrades a connection and joins the specified chatroom as
// the given presence role.
func ServeChatroomWS(w http.ResponseWriter, r *http.Request, roomID primitive.ObjectID, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnw("ws upgrade failed", "err", err)
		return
	}

	room := GetRoom(roomID)
	client := newClient(room, conn, role)
	room.register <- client

	go client.writePump()
	client.readPump()
}
