package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testClient struct {
	conn   *Connection
	client *websocket.Conn
	server *httptest.Server
}

func (c *testClient) close() {
	_ = c.client.Close()
	c.server.Close()
}

// read returns the next envelope delivered to the client side.
func (c *testClient) read(t *testing.T) Envelope {
	t.Helper()

	_ = c.client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.client.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	var envelope Envelope
	if err = json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return envelope
}

func newTestClient(t *testing.T, userID string) *testClient {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade: %v", err)
			return
		}
		serverConns <- ws
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("failed to dial: %v", err)
	}

	ws := <-serverConns
	tc := &testClient{
		conn:   NewConnection(userID, ws),
		client: client,
		server: srv,
	}
	t.Cleanup(tc.close)
	return tc
}

func TestHubRoomBroadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := newTestClient(t, "alice")
	bob := newTestClient(t, "bob")

	hub.Attach(alice.conn)
	hub.Attach(bob.conn)

	// Attaching bob announces him to alice.
	status := alice.read(t)
	if status.Event != EventUserStatusChanged {
		t.Fatalf("expected %s, got %s", EventUserStatusChanged, status.Event)
	}

	hub.Join("room-1", alice.conn)
	hub.Join("room-1", bob.conn)

	hub.Broadcast("room-1", EventChatMessage, map[string]string{"text": "hi"}, "")

	for _, c := range []*testClient{alice, bob} {
		envelope := c.read(t)
		if envelope.Event != EventChatMessage {
			t.Errorf("expected %s, got %s", EventChatMessage, envelope.Event)
		}
	}
}

func TestHubBroadcastExcludesSender(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := newTestClient(t, "alice")
	bob := newTestClient(t, "bob")

	hub.Attach(alice.conn)
	hub.Attach(bob.conn)
	_ = alice.read(t) // bob's online status

	hub.Join("room-1", alice.conn)
	hub.Join("room-1", bob.conn)

	hub.Broadcast("room-1", EventTyping, map[string]string{"user": "alice"}, "alice")

	envelope := bob.read(t)
	if envelope.Event != EventTyping {
		t.Errorf("expected %s, got %s", EventTyping, envelope.Event)
	}

	_ = alice.client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := alice.client.ReadMessage(); err == nil {
		t.Error("expected no message for the excluded sender")
	}
}

func TestHubNotifyUser(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := newTestClient(t, "alice")
	hub.Attach(alice.conn)

	if !hub.NotifyUser("alice", EventDirectMessage, map[string]string{"text": "hey"}) {
		t.Fatal("expected delivery to attached user")
	}
	envelope := alice.read(t)
	if envelope.Event != EventDirectMessage {
		t.Errorf("expected %s, got %s", EventDirectMessage, envelope.Event)
	}

	if hub.NotifyUser("nobody", EventDirectMessage, nil) {
		t.Error("expected no delivery for unknown user")
	}
}

func TestHubReconnectReplacesConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	first := newTestClient(t, "alice")
	second := newTestClient(t, "alice")

	hub.Attach(first.conn)
	hub.Attach(second.conn)

	if !hub.NotifyUser("alice", EventDirectMessage, map[string]string{"text": "hey"}) {
		t.Fatal("expected delivery to the replacing connection")
	}
	envelope := second.read(t)
	if envelope.Event != EventDirectMessage {
		t.Errorf("expected %s, got %s", EventDirectMessage, envelope.Event)
	}

	// The replaced socket gets closed by the hub.
	_ = first.client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := first.client.ReadMessage(); err != nil {
			break
		}
	}
}
