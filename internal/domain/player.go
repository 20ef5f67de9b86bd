package domain

// Player identifies a participant. ID is the volatile transport session id
// (reassigned on every reconnect); Nickname is the stable identity key.
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	IsGuest  bool   `json:"isGuest"`
}

// GameMode selects whether a finished game adjusts ranked points.
type GameMode string

const (
	ModeRanked   GameMode = "ranked"
	ModeFriendly GameMode = "friendly"
)

// RoomStatus is the room lifecycle state.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)
