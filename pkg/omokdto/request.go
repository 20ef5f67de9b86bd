// Package omokdto defines the wire types exchanged with game clients over
// the websocket transport. Requests are type-tagged client frames; events
// are server frames broadcast to rooms or single connections.
package omokdto

import "encoding/json"

// Request type tags.
const (
	ReqCreateRoom    = "createRoom"
	ReqJoinRoom      = "joinRoom"
	ReqRejoinRoom    = "rejoinRoom"
	ReqLeaveRoom     = "leaveRoom"
	ReqSpectateRoom  = "spectateRoom"
	ReqLeaveSpectate = "leaveSpectate"
	ReqPlaceStone    = "placeStone"
	ReqResetGame     = "resetGame"
	ReqGetRooms      = "getRooms"
	ReqSendMessage   = "sendMessage"
)

// Request is one inbound client frame. Type selects which payload field is
// meaningful; the rest stay nil.
type Request struct {
	Type string `json:"type"`

	CreateRoom   *CreateRoomPayload  `json:"createRoom,omitempty"`
	JoinRoom     *JoinRoomPayload    `json:"joinRoom,omitempty"`
	RejoinRoom   *JoinRoomPayload    `json:"rejoinRoom,omitempty"`
	SpectateRoom *JoinRoomPayload    `json:"spectateRoom,omitempty"`
	PlaceStone   *PlaceStonePayload  `json:"placeStone,omitempty"`
	SendMessage  *SendMessagePayload `json:"sendMessage,omitempty"`
}

type CreateRoomPayload struct {
	RoomName string `json:"roomName"`
	Nickname string `json:"nickname"`
	GameMode string `json:"gameMode,omitempty"`
	IsGuest  bool   `json:"isGuest,omitempty"`
}

type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
	IsGuest  bool   `json:"isGuest,omitempty"`
}

type PlaceStonePayload struct {
	RoomID string `json:"roomId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// DecodeRequest parses one raw frame.
func DecodeRequest(raw []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
