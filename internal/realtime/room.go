// Package realtime implements the presence registry and room router
// behind the chat and notification pushes. Nothing in this package is
// persistent: every message or notification is durably stored by its
// owning component before this layer sees it, so delivery here is purely
// a latency optimization.
package realtime

import "strconv"

// roomSeparator joins the two participant ids of a conversation room.
const roomSeparator = "--"

// RoomFor derives the conversation room shared by two users. It is
// symmetric: the smaller id always comes first, so both participants
// compute the same room name regardless of who asks.
func RoomFor(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatUint(a, 10) + roomSeparator + strconv.FormatUint(b, 10)
}
