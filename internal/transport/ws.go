// Package transport exposes the game over websocket connections. Each
// accepted connection gets a fresh identity, a read loop that dispatches
// request frames into the arena service and a buffered egress writer so a
// slow client never blocks a broadcast.
package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/omok-arena/internal/arena"
	"github.com/park285/omok-arena/internal/obslog"
	"github.com/park285/omok-arena/pkg/omokdto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	egressBuffer = 64
	writeTimeout = 5 * time.Second
)

// conn is one connected client with its outbound queue.
type conn struct {
	id     string
	ws     *websocket.Conn
	egress chan omokdto.Event
	done   chan struct{}
	once   sync.Once
}

func (c *conn) close() {
	c.once.Do(func() { close(c.done) })
}

// Server accepts websocket clients and implements arena.Broadcaster. The
// arena service is attached after construction to break the wiring cycle
// between transport and service.
type Server struct {
	mu    sync.RWMutex
	conns map[string]*conn
	rooms map[string]map[string]struct{}

	svc *arena.Service
}

func NewServer() *Server {
	return &Server{
		conns: make(map[string]*conn),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Attach binds the request handler. Must be called before serving.
func (s *Server) Attach(svc *arena.Service) { s.svc = svc }

// ServeHTTP upgrades the request and runs the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_failed", zap.Error(err))
		return
	}

	c := &conn{
		id:     uuid.NewString(),
		ws:     ws,
		egress: make(chan omokdto.Event, egressBuffer),
		done:   make(chan struct{}),
	}
	s.register(c)
	obslog.L().Info("ws_connect", zap.String("identity", c.id))

	go s.writeLoop(c)
	s.readLoop(r.Context(), c)

	s.unregister(c)
	c.close()
	_ = ws.Close(websocket.StatusNormalClosure, "bye")
	obslog.L().Info("ws_disconnect", zap.String("identity", c.id))
	s.svc.Disconnect(context.Background(), c.id)
}

func (s *Server) readLoop(ctx context.Context, c *conn) {
	for {
		var req omokdto.Request
		if err := wsjson.Read(ctx, c.ws, &req); err != nil {
			return
		}
		s.svc.HandleRequest(ctx, c.id, &req)
	}
}

func (s *Server) writeLoop(c *conn) {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.egress:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := wsjson.Write(ctx, c.ws, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) register(c *conn) {
	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()
}

func (s *Server) unregister(c *conn) {
	s.mu.Lock()
	delete(s.conns, c.id)
	for roomID, members := range s.rooms {
		delete(members, c.id)
		if len(members) == 0 {
			delete(s.rooms, roomID)
		}
	}
	s.mu.Unlock()
}

// send queues the event, dropping it when the client's queue is full.
func (s *Server) send(c *conn, ev omokdto.Event) {
	select {
	case c.egress <- ev:
	default:
		obslog.L().Warn("ws_egress_drop",
			zap.String("identity", c.id),
			zap.String("event", ev.Type),
		)
	}
}

// arena.Broadcaster implementation.

func (s *Server) ToIdentity(id string, ev omokdto.Event) {
	s.mu.RLock()
	c, ok := s.conns[id]
	s.mu.RUnlock()
	if ok {
		s.send(c, ev)
	}
}

func (s *Server) ToRoom(roomID string, ev omokdto.Event) {
	s.mu.RLock()
	members := make([]*conn, 0, len(s.rooms[roomID]))
	for id := range s.rooms[roomID] {
		if c, ok := s.conns[id]; ok {
			members = append(members, c)
		}
	}
	s.mu.RUnlock()
	for _, c := range members {
		s.send(c, ev)
	}
}

func (s *Server) ToAll(ev omokdto.Event) {
	s.mu.RLock()
	all := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		all = append(all, c)
	}
	s.mu.RUnlock()
	for _, c := range all {
		s.send(c, ev)
	}
}

func (s *Server) Join(id, roomID string) {
	s.mu.Lock()
	members, ok := s.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		s.rooms[roomID] = members
	}
	members[id] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) Leave(id, roomID string) {
	s.mu.Lock()
	if members, ok := s.rooms[roomID]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(s.rooms, roomID)
		}
	}
	s.mu.Unlock()
}

func (s *Server) DropRoom(roomID string) {
	s.mu.Lock()
	delete(s.rooms, roomID)
	s.mu.Unlock()
}

// CloseAll disconnects every client, for graceful shutdown.
func (s *Server) CloseAll() {
	s.mu.Lock()
	all := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		all = append(all, c)
	}
	s.conns = make(map[string]*conn)
	s.rooms = make(map[string]map[string]struct{})
	s.mu.Unlock()
	for _, c := range all {
		c.close()
		_ = c.ws.Close(websocket.StatusGoingAway, "server shutdown")
	}
}
