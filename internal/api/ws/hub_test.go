package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"user", "user"},
		{"super_admin", "super_admin"},
		{"owner", "owner"},
		{"admin", "admin"},
		{"", "user"},
		{"support_lead", "super_admin"},
	}
	for _, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

type presenceCall struct {
	roomID primitive.ObjectID
	role   string
	active bool
}

func awaitCall(t *testing.T, calls <-chan presenceCall) presenceCall {
	t.Helper()
	select {
	case c := <-calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a presence call")
		return presenceCall{}
	}
}

func TestRoomPresenceRefcount(t *testing.T) {
	calls := make(chan presenceCall, 16)
	SetPresenceMarker(func(roomID primitive.ObjectID, role string, active bool) {
		calls <- presenceCall{roomID: roomID, role: role, active: active}
	})
	defer SetPresenceMarker(nil)

	roomID := primitive.NewObjectID()
	room := GetRoom(roomID)

	first := newClient(room, nil, "user")
	second := newClient(room, nil, "user")
	staff := newClient(room, nil, "owner")

	room.register <- first
	got := awaitCall(t, calls)
	if got.roomID != roomID || got.role != "user" || !got.active {
		t.Fatalf("first session: unexpected call %+v", got)
	}

	// a second session for the same role must not re-mark presence; the
	// next call observed has to be the staff join
	room.register <- second
	room.register <- staff
	got = awaitCall(t, calls)
	if got.role != "owner" || !got.active {
		t.Fatalf("staff session: unexpected call %+v", got)
	}

	// dropping one of two user sessions keeps the flag
	room.unregister <- second
	room.unregister <- first
	got = awaitCall(t, calls)
	if got.role != "user" || got.active {
		t.Fatalf("last user session: unexpected call %+v", got)
	}

	room.unregister <- staff
	got = awaitCall(t, calls)
	if got.role != "owner" || got.active {
		t.Fatalf("last staff session: unexpected call %+v", got)
	}
}

func TestBroadcastMessage(t *testing.T) {
	roomID := primitive.NewObjectID()
	room := GetRoom(roomID)

	client := newClient(room, nil, "user")
	room.register <- client

	BroadcastMessage(roomID, WsEvent{Type: "message", Data: json.RawMessage(`{"body":"hi"}`)})

	select {
	case raw := <-client.send:
		var evt WsEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if evt.Type != "message" {
			t.Fatalf("event type = %q, want message", evt.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the broadcast")
	}

	room.unregister <- client
}

// dialRoom connects a websocket client to the test server as the given role
// and waits for the server to register the session via the presence marker.
func dialRoom(t *testing.T, srvURL, role string, registered <-chan presenceCall) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srvURL, "http") + "?role=" + role
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", role, err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	awaitCall(t, registered)
	return conn
}

func TestStatusEventsCarrySessionID(t *testing.T) {
	registered := make(chan presenceCall, 16)
	SetPresenceMarker(func(roomID primitive.ObjectID, role string, active bool) {
		if active {
			registered <- presenceCall{roomID: roomID, role: role, active: active}
		}
	})
	defer SetPresenceMarker(nil)

	roomID := primitive.NewObjectID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeChatroomWS(w, r, roomID, NormalizeRole(r.URL.Query().Get("role")))
	}))
	defer srv.Close()

	sender := dialRoom(t, srv.URL, "user", registered)
	receiver := dialRoom(t, srv.URL, "owner", registered)

	if err := sender.WriteMessage(websocket.TextMessage, []byte(`{"type":"typing"}`)); err != nil {
		t.Fatalf("write typing event: %v", err)
	}

	_ = receiver.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := receiver.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var evt WsEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if evt.Type != "typing" {
		t.Fatalf("event type = %q, want typing", evt.Type)
	}
	if evt.SessionID == "" {
		t.Fatal("fanned-out status event must carry the sender's session id")
	}
}

func TestGetRoomReturnsSameInstance(t *testing.T) {
	roomID := primitive.NewObjectID()
	if GetRoom(roomID) != GetRoom(roomID) {
		t.Fatal("expected one room instance per id")
	}
	if GetRoom(roomID) == GetRoom(primitive.NewObjectID()) {
		t.Fatal("distinct ids must map to distinct rooms")
	}
}
