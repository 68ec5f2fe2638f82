package domain

// RoomID is the opaque token handed out at creation. It is the only
// handle clients ever hold on a room.
type RoomID string

type Room struct {
	ID RoomID
}
