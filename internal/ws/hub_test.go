package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.clients[client] {
		t.Fatal("client not registered")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.clients[client] {
		t.Fatal("client still registered after unregister")
	}
	if _, ok := <-client.send; ok {
		t.Fatal("send channel should be closed after unregister")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub)
	client2 := mockClient(hub)
	client3 := mockClient(hub)

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	testPayload := json.RawMessage(`{"order_id":"test-123","status":"preparing"}`)
	hub.Broadcast(Event{Type: EventOrderUpdated, Payload: testPayload})

	for i, client := range []*Client{client1, client2, client3} {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventOrderUpdated {
				t.Errorf("client%d: expected type %q, got %q", i+1, EventOrderUpdated, received.Type)
			}
			if string(received.Payload) != string(testPayload) {
				t.Errorf("client%d: payload mismatch: %s", i+1, received.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestBroadcastJSON(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastJSON(EventTableUpdated, map[string]string{"table_id": "t-1", "status": "occupied"})

	select {
	case msg := <-client.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if received.Type != EventTableUpdated {
			t.Errorf("expected type %q, got %q", EventTableUpdated, received.Type)
		}
		var payload map[string]string
		if err := json.Unmarshal(received.Payload, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload["status"] != "occupied" {
			t.Errorf("payload status: got %q, want occupied", payload["status"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client did not receive message")
	}
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// A client whose buffer is already full cannot take another message.
	slow := &Client{hub: hub, send: make(chan []byte)}
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(Event{Type: EventOrderUpdated, Payload: json.RawMessage(`{}`)})
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.clients[slow] {
		t.Fatal("slow client should have been dropped")
	}
}
