package publish

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/mood"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewClientGetsLatestSnapshot(t *testing.T) {
	h := NewHub(zerolog.Nop())

	b := engine.DefaultBeast(time.Now())
	b.Mood = mood.MoodHappy
	h.Publish(b)

	conn := dialHub(t, h)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got engine.Beast
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Mood != mood.MoodHappy {
		t.Fatalf("expected the latest snapshot on connect, got mood %s", got.Mood)
	}
}

func TestPublishFansOutChanges(t *testing.T) {
	h := NewHub(zerolog.Nop())
	conn := dialHub(t, h)

	// Wait for registration before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("client never registered")
	}

	b := engine.DefaultBeast(time.Now())
	b.Energy = 42
	h.Publish(b)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got engine.Beast
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Energy != 42 {
		t.Fatalf("expected published snapshot, got energy %f", got.Energy)
	}
}
