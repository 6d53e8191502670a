package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/ariavision/svnwatch/internal/logging"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", logging.Nop{})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestHealthz(t *testing.T) {
	s := startServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", s.Addr()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Clients != 0 {
		t.Errorf("healthz = %+v", body)
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	s := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/ws", s.Addr()), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Connection registration races the broadcast; wait for the client
	// count to settle first.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.ClientCount() != 1 {
		t.Fatal("client never registered")
	}

	feed := NewFeed(s)
	feed.CycleFinished(80, 12)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != TypeCycleFinished {
		t.Fatalf("type = %q, want %q", msg.Type, TypeCycleFinished)
	}
	var payload CycleFinishedData
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Committed != 80 || payload.Failed != 12 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestStopDisconnectsClients(t *testing.T) {
	s := NewServer("127.0.0.1:0", logging.Nop{})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/ws", s.Addr()), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if s.ClientCount() != 0 {
		t.Errorf("%d clients after stop", s.ClientCount())
	}

	if _, _, err := conn.Read(ctx); err == nil {
		t.Error("read after server stop must fail")
	}
}
