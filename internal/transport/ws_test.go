package transport

import (
	"testing"

	"github.com/park285/omok-arena/pkg/omokdto"
)

func addConn(s *Server, id string) *conn {
	c := &conn{
		id:     id,
		egress: make(chan omokdto.Event, egressBuffer),
		done:   make(chan struct{}),
	}
	s.register(c)
	return c
}

func drain(c *conn) []omokdto.Event {
	var out []omokdto.Event
	for {
		select {
		case ev := <-c.egress:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHubRoutesToRoomMembersOnly(t *testing.T) {
	s := NewServer()
	a := addConn(s, "a")
	b := addConn(s, "b")
	c := addConn(s, "c")
	s.Join("a", "ROOM01")
	s.Join("b", "ROOM01")

	s.ToRoom("ROOM01", omokdto.Event{Type: omokdto.EvGameStarted})

	if len(drain(a)) != 1 || len(drain(b)) != 1 {
		t.Fatalf("room members missed the event")
	}
	if len(drain(c)) != 0 {
		t.Fatalf("non-member received a room event")
	}
}

func TestHubToAllAndToIdentity(t *testing.T) {
	s := NewServer()
	a := addConn(s, "a")
	b := addConn(s, "b")

	s.ToAll(omokdto.Event{Type: omokdto.EvRoomList})
	s.ToIdentity("a", omokdto.Event{Type: omokdto.EvError})
	s.ToIdentity("ghost", omokdto.Event{Type: omokdto.EvError})

	if got := drain(a); len(got) != 2 {
		t.Fatalf("identity a events = %d, want 2", len(got))
	}
	if got := drain(b); len(got) != 1 || got[0].Type != omokdto.EvRoomList {
		t.Fatalf("identity b events: %+v", got)
	}
}

func TestHubLeaveAndDropRoom(t *testing.T) {
	s := NewServer()
	a := addConn(s, "a")
	b := addConn(s, "b")
	s.Join("a", "ROOM01")
	s.Join("b", "ROOM01")

	s.Leave("a", "ROOM01")
	s.ToRoom("ROOM01", omokdto.Event{Type: omokdto.EvTurnChanged})
	if len(drain(a)) != 0 || len(drain(b)) != 1 {
		t.Fatalf("leave did not stop room delivery")
	}

	s.DropRoom("ROOM01")
	s.ToRoom("ROOM01", omokdto.Event{Type: omokdto.EvTurnChanged})
	if len(drain(b)) != 0 {
		t.Fatalf("dropped room still delivers")
	}
}

func TestHubUnregisterRemovesMembership(t *testing.T) {
	s := NewServer()
	a := addConn(s, "a")
	s.Join("a", "ROOM01")
	s.unregister(a)

	s.ToRoom("ROOM01", omokdto.Event{Type: omokdto.EvTurnChanged})
	s.ToIdentity("a", omokdto.Event{Type: omokdto.EvError})
	if len(drain(a)) != 0 {
		t.Fatalf("unregistered connection still receives events")
	}
}

func TestHubDropsWhenEgressFull(t *testing.T) {
	s := NewServer()
	a := addConn(s, "a")
	for i := 0; i < egressBuffer+10; i++ {
		s.ToIdentity("a", omokdto.Event{Type: omokdto.EvRoomList})
	}
	if got := drain(a); len(got) != egressBuffer {
		t.Fatalf("queued events = %d, want cap %d", len(got), egressBuffer)
	}
}
