package notifiers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oparinlab/protocell/internal/chem"
)

const (
	wsWriteDeadline = 10 * time.Second
	wsQueueTimeout  = time.Second
)

// WebSocketNotifier broadcasts events to every connected WebSocket client.
// A single writer goroutine owns all connection writes; registration and
// removal go through the client map under the mutex.
type WebSocketNotifier struct {
	id       string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool

	events chan chem.Event
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewWebSocketNotifier creates the notifier and starts its writer
// goroutine.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	wsn := &WebSocketNotifier{
		id:      id,
		clients: make(map[*websocket.Conn]struct{}),
		events:  make(chan chem.Event, 256),
		done:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	wsn.wg.Add(1)
	go wsn.writeLoop()
	return wsn
}

// ID returns the notifier ID.
func (wsn *WebSocketNotifier) ID() string { return wsn.id }

// Type returns "websocket".
func (wsn *WebSocketNotifier) Type() string { return "websocket" }

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (wsn *WebSocketNotifier) Upgrader() websocket.Upgrader {
	return wsn.upgrader
}

// RegisterClient adds a client connection to the broadcast set.
func (wsn *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	if wsn.closed {
		conn.Close()
		return
	}
	wsn.clients[conn] = struct{}{}
}

// UnregisterClient removes and closes a client connection.
func (wsn *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	if _, ok := wsn.clients[conn]; ok {
		delete(wsn.clients, conn)
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (wsn *WebSocketNotifier) ClientCount() int {
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	return len(wsn.clients)
}

// Notify queues the event for broadcast. Fails if the queue stays full for
// a second or the context expires.
func (wsn *WebSocketNotifier) Notify(ctx context.Context, event chem.Event) error {
	select {
	case wsn.events <- event:
		return nil
	case <-wsn.done:
		return fmt.Errorf("notifier closed")
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wsQueueTimeout):
		return fmt.Errorf("broadcast queue full")
	}
}

func (wsn *WebSocketNotifier) writeLoop() {
	defer wsn.wg.Done()
	for {
		select {
		case <-wsn.done:
			return
		case event := <-wsn.events:
			payload, err := event.JSON()
			if err != nil {
				continue
			}
			wsn.broadcast(payload)
		}
	}
}

// broadcast writes the payload to every client, dropping any connection
// that fails.
func (wsn *WebSocketNotifier) broadcast(payload []byte) {
	wsn.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(wsn.clients))
	for conn := range wsn.clients {
		conns = append(conns, conn)
	}
	wsn.mu.Unlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			failed = append(failed, conn)
		}
	}

	if len(failed) > 0 {
		wsn.mu.Lock()
		for _, conn := range failed {
			delete(wsn.clients, conn)
			conn.Close()
		}
		wsn.mu.Unlock()
	}
}

// Close stops the writer goroutine and closes every client connection.
func (wsn *WebSocketNotifier) Close() error {
	wsn.mu.Lock()
	if wsn.closed {
		wsn.mu.Unlock()
		return nil
	}
	wsn.closed = true
	for conn := range wsn.clients {
		conn.Close()
		delete(wsn.clients, conn)
	}
	wsn.mu.Unlock()

	close(wsn.done)
	wsn.wg.Wait()
	return nil
}
