package room

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestReconnectTrackerExpires(t *testing.T) {
	tr := NewReconnectTracker(20 * time.Millisecond)
	var fired atomic.Int32
	done := make(chan struct{})
	tr.Track("ROOM01", "철수", func() {
		fired.Add(1)
		close(done)
	})
	if !tr.Pending("ROOM01", "철수") {
		t.Fatalf("countdown not pending after Track")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("grace expiry never fired")
	}
	if fired.Load() != 1 {
		t.Fatalf("expiry fired %d times", fired.Load())
	}
	if tr.Pending("ROOM01", "철수") {
		t.Fatalf("entry still pending after expiry")
	}
}

func TestReconnectTrackerCancel(t *testing.T) {
	tr := NewReconnectTracker(30 * time.Millisecond)
	var fired atomic.Int32
	tr.Track("ROOM01", "철수", func() { fired.Add(1) })
	if !tr.Cancel("ROOM01", "철수") {
		t.Fatalf("cancel found no pending countdown")
	}
	if tr.Cancel("ROOM01", "철수") {
		t.Fatalf("second cancel reported a countdown")
	}
	time.Sleep(80 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("expiry fired after cancel")
	}
}

func TestReconnectTrackerIgnoresDuplicateTrack(t *testing.T) {
	tr := NewReconnectTracker(20 * time.Millisecond)
	var first, second atomic.Int32
	tr.Track("ROOM01", "철수", func() { first.Add(1) })
	tr.Track("ROOM01", "철수", func() { second.Add(1) })
	time.Sleep(80 * time.Millisecond)
	if first.Load() != 1 || second.Load() != 0 {
		t.Fatalf("duplicate track not ignored: first=%d second=%d", first.Load(), second.Load())
	}
}

func TestReconnectTrackerKeyedByNickname(t *testing.T) {
	tr := NewReconnectTracker(time.Hour)
	tr.Track("ROOM01", "철수", func() {})
	tr.Track("ROOM01", "영희", func() {})
	tr.Track("ROOM02", "철수", func() {})

	if !tr.Cancel("ROOM01", "철수") {
		t.Fatalf("cancel missed the keyed entry")
	}
	if !tr.Pending("ROOM01", "영희") || !tr.Pending("ROOM02", "철수") {
		t.Fatalf("cancel removed unrelated entries")
	}
}

func TestReconnectTrackerCancelRoom(t *testing.T) {
	tr := NewReconnectTracker(time.Hour)
	tr.Track("ROOM01", "철수", func() {})
	tr.Track("ROOM01", "영희", func() {})
	tr.Track("ROOM02", "민수", func() {})

	tr.CancelRoom("ROOM01")
	if tr.Pending("ROOM01", "철수") || tr.Pending("ROOM01", "영희") {
		t.Fatalf("room teardown left countdowns behind")
	}
	if !tr.Pending("ROOM02", "민수") {
		t.Fatalf("room teardown removed another room's countdown")
	}
}
