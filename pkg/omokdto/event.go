package omokdto

// Event type tags.
const (
	EvRoomList          = "roomList"
	EvRoomUpdated       = "roomUpdated"
	EvRoomDeleted       = "roomDeleted"
	EvJoinedRoom        = "joinedRoom"
	EvJoinedAsSpectator = "joinedAsSpectator"
	EvPlayerJoined      = "playerJoined"
	EvPlayerLeft        = "playerLeft"
	EvSpectatorJoined   = "spectatorJoined"
	EvSpectatorLeft     = "spectatorLeft"
	EvGameStarted       = "gameStarted"
	EvStonePlaced       = "stonePlaced"
	EvTurnChanged       = "turnChanged"
	EvGameEnded         = "gameEnded"
	EvGameReset         = "gameReset"
	EvNewMessage        = "newMessage"
	EvChatHistory       = "chatHistory"
	EvError             = "error"
)

// Event is one outbound server frame. Type names the variant; Payload holds
// the variant body and serializes as-is.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// PlayerView is the client-facing projection of a player.
type PlayerView struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	IsGuest  bool   `json:"isGuest,omitempty"`
}

// RoomView describes a room to its members.
type RoomView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Host       PlayerView   `json:"host"`
	Guest      *PlayerView  `json:"guest,omitempty"`
	Spectators []PlayerView `json:"spectators"`
	Status     string       `json:"status"`
	GameMode   string       `json:"gameMode"`
}

// RoomListEntry is the lobby listing projection.
type RoomListEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	HostNickname   string `json:"hostNickname"`
	PlayerCount    int    `json:"playerCount"`
	SpectatorCount int    `json:"spectatorCount"`
	Status         string `json:"status"`
	GameMode       string `json:"gameMode"`
}

// GameStateView mirrors the session snapshot for clients.
type GameStateView struct {
	Board         [][]string  `json:"board"`
	CurrentTurn   string      `json:"currentTurn"`
	BlackPlayer   *PlayerView `json:"blackPlayer,omitempty"`
	WhitePlayer   *PlayerView `json:"whitePlayer,omitempty"`
	Winner        string      `json:"winner,omitempty"`
	Status        string      `json:"status"`
	TurnStartTime int64       `json:"turnStartTime,omitempty"`
}

// JoinedRoomPayload answers createRoom, joinRoom and rejoinRoom.
type JoinedRoomPayload struct {
	Room   RoomView       `json:"room"`
	IsHost bool           `json:"isHost"`
	State  *GameStateView `json:"state,omitempty"`
}

// SpectatePayload answers spectateRoom.
type SpectatePayload struct {
	Room   RoomView       `json:"room"`
	State  *GameStateView `json:"state,omitempty"`
	Rejoin bool           `json:"rejoin,omitempty"`
}

// StonePlacedPayload reports one applied move, manual or automatic.
type StonePlacedPayload struct {
	RoomID string `json:"roomId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Color  string `json:"color"`
	Auto   bool   `json:"auto,omitempty"`
}

// TurnChangedPayload announces whose turn begins and when it started, so
// clients can render the countdown from the same epoch the server uses.
type TurnChangedPayload struct {
	RoomID        string `json:"roomId"`
	Color         string `json:"color"`
	TurnStartTime int64  `json:"turnStartTime"`
}

// GameEndedPayload announces the outcome. Reason is "five_in_a_row" or
// "forfeit".
type GameEndedPayload struct {
	RoomID         string         `json:"roomId"`
	Winner         string         `json:"winner"`
	WinnerNickname string         `json:"winnerNickname,omitempty"`
	Reason         string         `json:"reason"`
	State          *GameStateView `json:"state,omitempty"`
}

// ChatMessageView is one chat line delivered to clients.
type ChatMessageView struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	IsSystem    bool   `json:"isSystem,omitempty"`
	IsSpectator bool   `json:"isSpectator,omitempty"`
}

// ErrorPayload carries a user-facing error message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Game end reasons.
const (
	ReasonFiveInARow = "five_in_a_row"
	ReasonForfeit    = "forfeit"
)
