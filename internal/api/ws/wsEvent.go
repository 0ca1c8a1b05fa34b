package ws

import "encoding/json"

// WsEvent is the envelope for all websocket traffic in a room. SessionID is
// server-assigned on status events so receivers can tell sessions of the same
// role apart; clients cannot forge it.
type WsEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}
