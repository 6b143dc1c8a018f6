package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oparinlab/protocell/internal/chem"
)

// wsTestServer upgrades incoming connections and registers them with the
// notifier.
func wsTestServer(t *testing.T, wsn *WebSocketNotifier) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := wsn.Upgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		wsn.RegisterClient(conn)
	}))
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	return conn
}

func TestWebSocketNotifier_Broadcast(t *testing.T) {
	wsn := NewWebSocketNotifier("ws-1")
	defer wsn.Close()

	server := wsTestServer(t, wsn)
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	waitForClients(t, wsn, 1)

	event := chem.Event{
		NetworkID: "net",
		Type:      chem.EventCompartmentDivided,
		TimeStep:  42,
	}
	if err := wsn.Notify(context.Background(), event); err != nil {
		t.Fatalf("Expected notify to succeed, got %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Reading broadcast: %v", err)
	}
	var got chem.Event
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("Decoding broadcast: %v", err)
	}
	if got.Type != chem.EventCompartmentDivided || got.TimeStep != 42 {
		t.Errorf("Unexpected broadcast event: %+v", got)
	}
}

func TestWebSocketNotifier_MultipleClients(t *testing.T) {
	wsn := NewWebSocketNotifier("ws-1")
	defer wsn.Close()

	server := wsTestServer(t, wsn)
	defer server.Close()

	c1 := dialWS(t, server)
	defer c1.Close()
	c2 := dialWS(t, server)
	defer c2.Close()

	waitForClients(t, wsn, 2)

	if err := wsn.Notify(context.Background(), chem.Event{Type: chem.EventCompartmentFormed}); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	for i, conn := range []*websocket.Conn{c1, c2} {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Errorf("Client %d did not receive broadcast: %v", i, err)
		}
	}
}

func TestWebSocketNotifier_UnregisterClient(t *testing.T) {
	wsn := NewWebSocketNotifier("ws-1")
	defer wsn.Close()

	server := wsTestServer(t, wsn)
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()
	waitForClients(t, wsn, 1)

	wsn.mu.Lock()
	var registered *websocket.Conn
	for c := range wsn.clients {
		registered = c
	}
	wsn.mu.Unlock()

	wsn.UnregisterClient(registered)
	if got := wsn.ClientCount(); got != 0 {
		t.Errorf("Expected 0 clients after unregister, got %d", got)
	}
}

func TestWebSocketNotifier_NotifyAfterClose(t *testing.T) {
	wsn := NewWebSocketNotifier("ws-1")
	if err := wsn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := wsn.Close(); err != nil {
		t.Errorf("Expected idempotent close, got %v", err)
	}
	if err := wsn.Notify(context.Background(), chem.Event{}); err == nil {
		t.Error("Expected error notifying a closed notifier")
	}
}

func waitForClients(t *testing.T, wsn *WebSocketNotifier, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if wsn.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients, got %d", want, wsn.ClientCount())
}
