package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// NormalizeRole maps an incoming session role onto one of the four presence
// flags. Unknown staff roles count as super_admin; an empty role is a user
// session.
func NormalizeRole(role string) string {
	switch role {
	case "user", "super_admin", "owner", "admin":
		return role
	case "":
		return "user"
	default:
		return "super_admin"
	}
}

// Client represents a single websocket connection.
type Client struct {
	id   uuid.UUID
	room *Room
	conn *websocket.Conn
	role string
	send chan []byte
}

func newClient(room *Room, conn *websocket.Conn, role string) *Client {
	return &Client{
		id:   uuid.New(),
		room: room,
		conn: conn,
		role: role,
		send: make(chan []byte, 256),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.room.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20)
	c.conn.SetCloseHandler(func(code int, text string) error { return nil })
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var evt WsEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			// Ignore malformed input; keep the connection alive.
			continue
		}

		switch evt.Type {
		case "typing", "joined", "left":
			// Fan out ephemeral status events to everyone in the room,
			// stamped with the sender's session id.
			evt.SessionID = c.id.String()
			out, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			c.room.broadcast <- out
		default:
			// Ignore other incoming event types.
		}
	}
}

func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
