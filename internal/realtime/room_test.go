package realtime

import "testing"

func TestRoomForIsSymmetric(t *testing.T) {
	if got, want := RoomFor(7, 3), "3--7"; got != want {
		t.Fatalf("RoomFor(7,3) = %q, want %q", got, want)
	}
	if RoomFor(3, 7) != RoomFor(7, 3) {
		t.Fatalf("room name must not depend on argument order")
	}
}

func TestRoomForSelf(t *testing.T) {
	if got, want := RoomFor(5, 5), "5--5"; got != want {
		t.Fatalf("RoomFor(5,5) = %q, want %q", got, want)
	}
}
