// Package observer streams the town's public record to local
// dashboard clients over websockets. Observers see exactly what the
// newspaper sees: PUBLIC events and day summaries, never hidden state.
package observer

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"ashvale.town/internal/persistence/store"
)

const Version = 1

// DayFrame is one day's broadcast to every subscribed observer.
type DayFrame struct {
	Type         string        `json:"type"` // always "DAY"
	Day          int           `json:"day"`
	Paper        string        `json:"paper"`
	PublicEvents []store.Event `json:"public_events"`
	OpenCases    int           `json:"open_cases"`
	KnownGroups  []string      `json:"known_groups"`
}

type subscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`
}

type Server struct {
	log      *log.Logger
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[string]chan []byte
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log:     logger,
		clients: make(map[string]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Broadcast fans a frame out to every subscribed client. A client
// whose buffer is full is dropped; the day loop never blocks on a
// slow dashboard.
func (s *Server) Broadcast(f DayFrame) {
	f.Type = "DAY"
	b, err := json.Marshal(f)
	if err != nil {
		s.log.Printf("observer: marshal day %d failed: %v", f.Day, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.clients {
		select {
		case ch <- b:
		default:
			s.log.Printf("observer: dropping slow client %s", id)
			close(ch)
			delete(s.clients, id)
		}
	}
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub subscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"),
				time.Now().Add(time.Second))
			return
		}
		if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != Version {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"),
				time.Now().Add(time.Second))
			return
		}

		id := fmt.Sprintf("O%d", s.nextID.Add(1))
		out := make(chan []byte, 16)
		s.mu.Lock()
		s.clients[id] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			if _, ok := s.clients[id]; ok {
				close(out)
				delete(s.clients, id)
			}
			s.mu.Unlock()
		}()
		s.log.Printf("observer: %s subscribed", id)

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for b := range out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
			writeErr <- nil
		}()

		// Reader loop: keep the connection alive, ignore payloads.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
