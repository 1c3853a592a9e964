package realtime

import (
	"errors"
	"testing"
)

// fakeConn records events sent to it and can be told to fail.
type fakeConn struct {
	sent   []Event
	fail   bool
	closed bool
}

func (c *fakeConn) Send(ev Event) error {
	if c.fail {
		return errors.New("broken pipe")
	}
	c.sent = append(c.sent, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestRegistryLastIdentifyWins(t *testing.T) {
	r := NewRegistry()
	old := &fakeConn{}
	replacement := &fakeConn{}

	r.Identify(1, old)
	r.Identify(1, replacement)

	got, ok := r.Get(1)
	if !ok || got != Conn(replacement) {
		t.Fatalf("expected replacement connection to be registered")
	}
}

func TestRegistryDisconnectIsCompareAndSwap(t *testing.T) {
	r := NewRegistry()
	old := &fakeConn{}
	replacement := &fakeConn{}

	r.Identify(1, old)
	r.Identify(1, replacement)

	if r.Disconnect(1, old) {
		t.Fatalf("disconnect of stale connection must be a no-op")
	}
	if !r.Online(1) {
		t.Fatalf("user must stay online after stale disconnect")
	}
	if !r.Disconnect(1, replacement) {
		t.Fatalf("disconnect of current connection must remove the entry")
	}
	if r.Online(1) {
		t.Fatalf("user must be offline after current connection disconnects")
	}
}

func TestHubPublishReachesRoomMembers(t *testing.T) {
	h := NewHub(NewRegistry())
	a, b, outsider := &fakeConn{}, &fakeConn{}, &fakeConn{}
	room := RoomFor(1, 2)

	h.Join(room, a)
	h.Join(room, b)
	h.Join(RoomFor(1, 3), outsider)

	ev := NewEvent(EventMessageReceived, map[string]string{"body": "oi"})
	if got := h.Publish(room, ev); got != 2 {
		t.Fatalf("Publish = %d receivers, want 2", got)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("both members should receive the event")
	}
	if len(outsider.sent) != 0 {
		t.Fatalf("outsider must not receive room events")
	}
}

func TestHubPublishSkipsFailingConn(t *testing.T) {
	h := NewHub(NewRegistry())
	ok, bad := &fakeConn{}, &fakeConn{fail: true}
	room := RoomFor(1, 2)
	h.Join(room, ok)
	h.Join(room, bad)

	if got := h.Publish(room, NewEvent(EventMessageReceived, nil)); got != 1 {
		t.Fatalf("Publish = %d receivers, want 1", got)
	}
}

func TestHubEvictRemovesFromAllRooms(t *testing.T) {
	h := NewHub(NewRegistry())
	c := &fakeConn{}
	h.Join(RoomFor(1, 2), c)
	h.Join(RoomFor(1, 3), c)

	h.Evict(c)

	if h.Publish(RoomFor(1, 2), NewEvent(EventMessageReceived, nil)) != 0 {
		t.Fatalf("evicted connection still receives room events")
	}
	if h.Publish(RoomFor(1, 3), NewEvent(EventMessageReceived, nil)) != 0 {
		t.Fatalf("evicted connection still receives room events")
	}
}

func TestHubPublishToUser(t *testing.T) {
	reg := NewRegistry()
	h := NewHub(reg)
	c := &fakeConn{}
	reg.Identify(9, c)

	if !h.PublishToUser(9, NewEvent(EventNotificationCreated, nil)) {
		t.Fatalf("expected delivery to online user")
	}
	if h.PublishToUser(10, NewEvent(EventNotificationCreated, nil)) {
		t.Fatalf("expected no delivery to offline user")
	}
	if len(c.sent) != 1 {
		t.Fatalf("online user should have received exactly one event")
	}
}
