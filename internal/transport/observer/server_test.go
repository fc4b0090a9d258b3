package observer

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestServer(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.WSHandler())
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSubscribeAndReceiveDayFrame(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	conn := dialTestServer(t, s)

	if err := conn.WriteJSON(subscribeMsg{Type: "SUBSCRIBE", ProtocolVersion: Version}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Broadcast(DayFrame{Day: 3, Paper: "quiet day", OpenCases: 1})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f DayFrame
	if err := json.Unmarshal(msg, &f); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if f.Type != "DAY" || f.Day != 3 || f.Paper != "quiet day" {
		t.Fatalf("frame = %+v", f)
	}
}

func TestBadHandshakeIsRejected(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	conn := dialTestServer(t, s)

	if err := conn.WriteJSON(subscribeMsg{Type: "HELLO", ProtocolVersion: Version}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected close after bad handshake")
	}
	if s.ClientCount() != 0 {
		t.Fatalf("clients = %d", s.ClientCount())
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	conn := dialTestServer(t, s)

	if err := conn.WriteJSON(subscribeMsg{Type: "SUBSCRIBE", ProtocolVersion: Version}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Swamp the buffer without reading; the hub must shed the client
	// rather than block the day loop. Frames are padded so the socket
	// buffer cannot absorb them all.
	pad := strings.Repeat("x", 512*1024)
	for i := 0; i < 64; i++ {
		s.Broadcast(DayFrame{Day: i, Paper: pad})
	}
	if s.ClientCount() != 0 {
		t.Fatalf("slow client still registered (%d)", s.ClientCount())
	}
}
