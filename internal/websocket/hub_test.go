package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	// Should not panic
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(Message{Type: FeedShared, RecipeID: "716429", Title: "Pasta", Username: "alice"})

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != FeedShared || got.RecipeID != "716429" || got.Username != "alice" {
				t.Errorf("got %+v", got)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(testLogger())

	c := mockClient(hub)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(Message{Type: FeedShared})
	}
	// This should drop the message, not block
	hub.Broadcast(Message{Type: FeedUnshared})

	count := 0
	for len(c.send) > 0 {
		<-c.send
		count++
	}
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(testLogger())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(Message{Type: FeedShared})
			for len(c.send) > 0 {
				<-c.send
			}
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketDeliversBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(HandleWebSocket(hub, nil, testLogger()))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", hub.ClientCount())
	}

	hub.Broadcast(Message{Type: FeedUnshared, RecipeID: "created_3"})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != FeedUnshared || got.RecipeID != "created_3" {
		t.Errorf("got %+v", got)
	}
}

func TestClientSendingDataIsDisconnected(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(HandleWebSocket(hub, nil, testLogger()))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := conn.Write(ctx, ws.MessageText, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("client count = %d, want 0 after the browser sent data", got)
	}
}
