// Package arena orchestrates rooms, sessions, chat and rank settlement,
// translating client requests into state changes and state changes into
// broadcast events.
package arena

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/chat"
	"github.com/park285/omok-arena/internal/domain"
	"github.com/park285/omok-arena/internal/game"
	"github.com/park285/omok-arena/internal/msgcat"
	"github.com/park285/omok-arena/internal/obslog"
	"github.com/park285/omok-arena/internal/rank"
	"github.com/park285/omok-arena/internal/room"
	"github.com/park285/omok-arena/internal/stats"
	"github.com/park285/omok-arena/pkg/omokdto"
	"go.uber.org/zap"
)

// Broadcaster delivers events to connected clients and tracks which
// connections belong to which room. The transport layer implements it;
// identities are per-connection ids handed out on accept.
type Broadcaster interface {
	ToIdentity(id string, ev omokdto.Event)
	ToRoom(roomID string, ev omokdto.Event)
	ToAll(ev omokdto.Event)
	Join(id, roomID string)
	Leave(id, roomID string)
	DropRoom(roomID string)
}

// connState tracks where one connection currently lives.
type connState struct {
	roomID     string
	player     domain.Player
	spectating bool
}

// Service is the application core behind the websocket transport.
type Service struct {
	rooms   *room.Manager
	tracker *room.ReconnectTracker
	stats   stats.Repository
	chat    *chat.Store
	msg     *msgcat.Catalog
	bc      Broadcaster

	mu    sync.Mutex
	conns map[string]*connState
}

// New wires the service. chatStore may be nil when no Redis is configured;
// chat then degrades to broadcast-only with no history.
func New(rooms *room.Manager, tracker *room.ReconnectTracker, repo stats.Repository, chatStore *chat.Store, msg *msgcat.Catalog, bc Broadcaster) *Service {
	return &Service{
		rooms:   rooms,
		tracker: tracker,
		stats:   repo,
		chat:    chatStore,
		msg:     msg,
		bc:      bc,
		conns:   make(map[string]*connState),
	}
}

// text renders a catalog message, falling back to the built-in Korean
// default when the key is missing or the template fails.
func (s *Service) text(key, fallback string, data any) string {
	if s.msg == nil {
		return fallback
	}
	out, err := s.msg.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}

func (s *Service) sendError(identity, msg string) {
	s.bc.ToIdentity(identity, omokdto.Event{
		Type:    omokdto.EvError,
		Payload: omokdto.ErrorPayload{Message: msg},
	})
}

func (s *Service) broadcastRoomList() {
	s.bc.ToAll(omokdto.Event{Type: omokdto.EvRoomList, Payload: listView(s.rooms.List())})
}

func (s *Service) setConn(identity string, st *connState) {
	s.mu.Lock()
	s.conns[identity] = st
	s.mu.Unlock()
}

func (s *Service) conn(identity string) (connState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.conns[identity]
	if !ok {
		return connState{}, false
	}
	return *st, true
}

func (s *Service) clearConn(identity string) {
	s.mu.Lock()
	delete(s.conns, identity)
	s.mu.Unlock()
}

// HandleRequest dispatches one inbound frame for the connection.
func (s *Service) HandleRequest(ctx context.Context, identity string, req *omokdto.Request) {
	switch req.Type {
	case omokdto.ReqGetRooms:
		s.bc.ToIdentity(identity, omokdto.Event{Type: omokdto.EvRoomList, Payload: listView(s.rooms.List())})
	case omokdto.ReqCreateRoom:
		s.handleCreateRoom(ctx, identity, req.CreateRoom)
	case omokdto.ReqJoinRoom:
		s.handleJoinRoom(ctx, identity, req.JoinRoom)
	case omokdto.ReqRejoinRoom:
		s.handleRejoinRoom(ctx, identity, req.RejoinRoom)
	case omokdto.ReqLeaveRoom:
		s.handleLeaveRoom(ctx, identity)
	case omokdto.ReqSpectateRoom:
		s.handleSpectateRoom(ctx, identity, req.SpectateRoom)
	case omokdto.ReqLeaveSpectate:
		s.handleLeaveSpectate(ctx, identity)
	case omokdto.ReqPlaceStone:
		s.handlePlaceStone(ctx, identity, req.PlaceStone)
	case omokdto.ReqResetGame:
		s.handleResetGame(ctx, identity)
	case omokdto.ReqSendMessage:
		s.handleSendMessage(ctx, identity, req.SendMessage)
	default:
		s.sendError(identity, s.text("error.unknown_request", "알 수 없는 요청입니다.", nil))
	}
}

func (s *Service) handleCreateRoom(ctx context.Context, identity string, p *omokdto.CreateRoomPayload) {
	if p == nil || p.RoomName == "" || p.Nickname == "" {
		s.sendError(identity, s.text("error.invalid_request", "요청이 올바르지 않습니다.", nil))
		return
	}
	mode := domain.ModeRanked
	if p.GameMode == string(domain.ModeFriendly) {
		mode = domain.ModeFriendly
	}
	host := domain.Player{ID: identity, Nickname: p.Nickname, IsGuest: p.IsGuest}
	r, err := s.rooms.CreateRoom(p.RoomName, host, mode)
	if err != nil {
		s.sendError(identity, s.text("error.room_create", "방을 만들 수 없습니다.", nil))
		return
	}
	s.hookSession(r.ID)
	s.setConn(identity, &connState{roomID: r.ID, player: host})
	s.bc.Join(identity, r.ID)

	s.bc.ToIdentity(identity, omokdto.Event{
		Type: omokdto.EvJoinedRoom,
		Payload: omokdto.JoinedRoomPayload{
			Room:   roomView(r),
			IsHost: true,
			State:  stateView(r.Session.State()),
		},
	})
	s.broadcastRoomList()
}

func (s *Service) handleJoinRoom(ctx context.Context, identity string, p *omokdto.JoinRoomPayload) {
	if p == nil || p.RoomID == "" || p.Nickname == "" {
		s.sendError(identity, s.text("error.invalid_request", "요청이 올바르지 않습니다.", nil))
		return
	}
	guest := domain.Player{ID: identity, Nickname: p.Nickname, IsGuest: p.IsGuest}
	r, err := s.rooms.JoinRoom(p.RoomID, guest)
	if err != nil {
		s.sendError(identity, s.text("error.room_join", "방에 입장할 수 없습니다.", nil))
		return
	}
	s.setConn(identity, &connState{roomID: r.ID, player: guest})
	s.bc.Join(identity, r.ID)

	st := r.Session.State()
	s.bc.ToIdentity(identity, omokdto.Event{
		Type: omokdto.EvJoinedRoom,
		Payload: omokdto.JoinedRoomPayload{
			Room:  roomView(r),
			State: stateView(st),
		},
	})
	s.bc.ToRoom(r.ID, omokdto.Event{Type: omokdto.EvPlayerJoined, Payload: playerView(guest)})
	s.bc.ToRoom(r.ID, omokdto.Event{Type: omokdto.EvGameStarted, Payload: stateView(st)})
	s.systemChat(ctx, r.ID, s.text("chat.game_started", "게임이 시작되었습니다.", nil))
	s.broadcastRoomList()
}

func (s *Service) handleRejoinRoom(ctx context.Context, identity string, p *omokdto.JoinRoomPayload) {
	if p == nil || p.RoomID == "" || p.Nickname == "" {
		s.sendError(identity, s.text("error.invalid_request", "요청이 올바르지 않습니다.", nil))
		return
	}
	s.tracker.Cancel(p.RoomID, p.Nickname)

	player := domain.Player{ID: identity, Nickname: p.Nickname, IsGuest: p.IsGuest}
	r, isHost, err := s.rooms.RejoinRoom(p.RoomID, player)
	if err != nil {
		s.sendError(identity, s.text("error.room_gone", "방을 찾을 수 없습니다. 로비로 이동합니다.", nil))
		return
	}
	s.setConn(identity, &connState{roomID: r.ID, player: player})
	s.bc.Join(identity, r.ID)

	s.bc.ToIdentity(identity, omokdto.Event{
		Type: omokdto.EvJoinedRoom,
		Payload: omokdto.JoinedRoomPayload{
			Room:   roomView(r),
			IsHost: isHost,
			State:  stateView(r.Session.State()),
		},
	})
	s.sendChatHistory(ctx, identity, r.ID)
}

func (s *Service) handleLeaveRoom(ctx context.Context, identity string) {
	st, ok := s.conn(identity)
	if !ok || st.roomID == "" {
		return
	}
	s.tracker.Cancel(st.roomID, st.player.Nickname)
	s.bc.Leave(identity, st.roomID)
	s.leaveRoomAs(ctx, st.roomID, identity)
	s.clearConn(identity)
}

// leaveRoomAs runs the shared departure path: destroy on host leave, reset
// on guest leave, then refresh listings.
func (s *Service) leaveRoomAs(ctx context.Context, roomID, playerID string) {
	deleted, r, err := s.rooms.LeaveRoom(roomID, playerID)
	if err != nil {
		return
	}
	if deleted {
		s.tracker.CancelRoom(roomID)
		if s.chat != nil {
			if cerr := s.chat.Clear(ctx, roomID); cerr != nil {
				obslog.L().Warn("chat_clear_failed", zap.String("room_id", roomID), zap.Error(cerr))
			}
		}
		s.bc.ToRoom(roomID, omokdto.Event{
			Type:    omokdto.EvError,
			Payload: omokdto.ErrorPayload{Message: s.text("room.host_left", "방장이 나가서 방이 삭제되었습니다.", nil)},
		})
		s.bc.ToAll(omokdto.Event{Type: omokdto.EvRoomDeleted, Payload: roomID})
		s.bc.DropRoom(roomID)
	} else if r != nil {
		s.hookSession(roomID)
		s.bc.ToRoom(roomID, omokdto.Event{Type: omokdto.EvPlayerLeft, Payload: playerID})
		if info, ierr := s.rooms.Info(roomID); ierr == nil {
			s.bc.ToAll(omokdto.Event{Type: omokdto.EvRoomUpdated, Payload: listView([]room.Info{info})[0]})
		}
	}
	s.broadcastRoomList()
}

func (s *Service) handleSpectateRoom(ctx context.Context, identity string, p *omokdto.JoinRoomPayload) {
	if p == nil || p.RoomID == "" || p.Nickname == "" {
		s.sendError(identity, s.text("error.invalid_request", "요청이 올바르지 않습니다.", nil))
		return
	}
	spec := domain.Player{ID: identity, Nickname: p.Nickname, IsGuest: p.IsGuest}
	r, rejoin, err := s.rooms.SpectateRoom(p.RoomID, spec)
	if err != nil {
		s.sendError(identity, s.spectateErrorText(err))
		return
	}
	s.setConn(identity, &connState{roomID: r.ID, player: spec, spectating: true})
	s.bc.Join(identity, r.ID)

	s.bc.ToIdentity(identity, omokdto.Event{
		Type: omokdto.EvJoinedAsSpectator,
		Payload: omokdto.SpectatePayload{
			Room:   roomView(r),
			State:  stateView(r.Session.State()),
			Rejoin: rejoin,
		},
	})
	if !rejoin {
		s.bc.ToRoom(r.ID, omokdto.Event{Type: omokdto.EvSpectatorJoined, Payload: playerView(spec)})
	}
	s.sendChatHistory(ctx, identity, r.ID)
	s.broadcastRoomList()
}

func (s *Service) spectateErrorText(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return s.text("error.room_gone_short", "방을 찾을 수 없습니다.", nil)
	case errors.Is(err, room.ErrNotPlaying):
		return s.text("error.spectate_waiting", "게임 중인 방만 관전할 수 있습니다.", nil)
	case errors.Is(err, room.ErrPlayerSpectating):
		return s.text("error.spectate_player", "플레이어는 관전할 수 없습니다.", nil)
	case errors.Is(err, room.ErrSpectatorsFull):
		return s.text("error.spectate_full", "관전자가 가득 찼습니다. (최대 5명)", nil)
	default:
		return s.text("error.spectate", "관전할 수 없습니다.", nil)
	}
}

func (s *Service) handleLeaveSpectate(ctx context.Context, identity string) {
	st, ok := s.conn(identity)
	if !ok || !st.spectating {
		return
	}
	s.bc.Leave(identity, st.roomID)
	if _, err := s.rooms.LeaveSpectate(st.roomID, identity); err == nil {
		s.bc.ToRoom(st.roomID, omokdto.Event{Type: omokdto.EvSpectatorLeft, Payload: identity})
	}
	s.clearConn(identity)
	s.broadcastRoomList()
}

func (s *Service) handlePlaceStone(ctx context.Context, identity string, p *omokdto.PlaceStonePayload) {
	if p == nil || p.RoomID == "" {
		s.sendError(identity, s.text("error.invalid_request", "요청이 올바르지 않습니다.", nil))
		return
	}
	sess := s.rooms.Session(p.RoomID)
	if sess == nil {
		s.sendError(identity, s.text("error.game_gone", "게임을 찾을 수 없습니다.", nil))
		return
	}
	if !sess.PlaceStone(p.Row, p.Col, identity) {
		s.sendError(identity, s.text("error.bad_move", "돌을 놓을 수 없습니다.", nil))
		return
	}

	st := sess.State()
	last := st.MoveHistory[len(st.MoveHistory)-1]
	s.bc.ToRoom(p.RoomID, omokdto.Event{
		Type: omokdto.EvStonePlaced,
		Payload: omokdto.StonePlacedPayload{
			RoomID: p.RoomID,
			Row:    last.Position.Row,
			Col:    last.Position.Col,
			Color:  string(last.Color),
		},
	})
	s.afterMove(ctx, p.RoomID, st)
}

// afterMove emits the post-move event: gameEnded with settlement when a
// winner exists, turnChanged otherwise.
func (s *Service) afterMove(ctx context.Context, roomID string, st game.State) {
	if st.Winner != board.Empty {
		s.finishGame(ctx, roomID, st, omokdto.ReasonFiveInARow)
		return
	}
	s.bc.ToRoom(roomID, omokdto.Event{
		Type: omokdto.EvTurnChanged,
		Payload: omokdto.TurnChangedPayload{
			RoomID:        roomID,
			Color:         string(st.CurrentTurn),
			TurnStartTime: st.TurnStartMilli,
		},
	})
}

// finishGame broadcasts the outcome, flips the room to FINISHED and kicks
// off settlement.
func (s *Service) finishGame(ctx context.Context, roomID string, st game.State, reason string) {
	winner, loser := st.BlackPlayer, st.WhitePlayer
	if st.Winner == board.White {
		winner, loser = st.WhitePlayer, st.BlackPlayer
	}
	var winnerNick string
	if winner != nil {
		winnerNick = winner.Nickname
	}
	s.bc.ToRoom(roomID, omokdto.Event{
		Type: omokdto.EvGameEnded,
		Payload: omokdto.GameEndedPayload{
			RoomID:         roomID,
			Winner:         string(st.Winner),
			WinnerNickname: winnerNick,
			Reason:         reason,
			State:          stateView(st),
		},
	})
	if err := s.rooms.SetStatus(roomID, domain.RoomFinished); err == nil {
		s.broadcastRoomList()
	}
	obslog.L().Info("game_end",
		zap.String("room_id", roomID),
		zap.String("winner", string(st.Winner)),
		zap.String("reason", reason),
	)

	r, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return
	}
	if winner != nil && loser != nil {
		// 저장 실패는 로그만 남기고 게임 진행은 막지 않는다
		go s.settle(r.Mode, *winner, *loser)
	}
}

// settle persists the outcome. Ranked games move points by the tier-based
// delta; friendly games bump counters only. Guests are skipped entirely.
func (s *Service) settle(mode domain.GameMode, winner, loser domain.Player) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if mode == domain.ModeFriendly {
		if !winner.IsGuest {
			if err := s.stats.RecordFriendlyWin(ctx, winner.Nickname); err != nil {
				obslog.L().Warn("settle_failed", zap.String("nickname", winner.Nickname), zap.Error(err))
			}
		}
		if !loser.IsGuest {
			if err := s.stats.RecordFriendlyLoss(ctx, loser.Nickname); err != nil {
				obslog.L().Warn("settle_failed", zap.String("nickname", loser.Nickname), zap.Error(err))
			}
		}
		return
	}

	winTier := s.tierOf(ctx, winner)
	loseTier := s.tierOf(ctx, loser)
	if !winner.IsGuest {
		delta := rank.PointsChange(winTier, loseTier, true)
		if err := s.stats.RecordWin(ctx, winner.Nickname, delta); err != nil {
			obslog.L().Warn("settle_failed", zap.String("nickname", winner.Nickname), zap.Error(err))
		}
	}
	if !loser.IsGuest {
		delta := rank.PointsChange(loseTier, winTier, false)
		if err := s.stats.RecordLoss(ctx, loser.Nickname, delta); err != nil {
			obslog.L().Warn("settle_failed", zap.String("nickname", loser.Nickname), zap.Error(err))
		}
	}
}

// tierOf resolves a player's tier for delta computation. Unranked and
// unknown players count as BRONZE so newcomers get sane first deltas.
func (s *Service) tierOf(ctx context.Context, p domain.Player) rank.Tier {
	if p.IsGuest {
		return rank.Bronze
	}
	us, err := s.stats.GetByNickname(ctx, p.Nickname)
	if err != nil || !us.Ranked {
		return rank.Bronze
	}
	return us.Tier
}

func (s *Service) handleResetGame(ctx context.Context, identity string) {
	st, ok := s.conn(identity)
	if !ok || st.roomID == "" || st.spectating {
		s.sendError(identity, s.text("error.game_gone", "게임을 찾을 수 없습니다.", nil))
		return
	}
	sess := s.rooms.Session(st.roomID)
	if sess == nil {
		s.sendError(identity, s.text("error.game_gone", "게임을 찾을 수 없습니다.", nil))
		return
	}
	sess.Reset()
	if err := s.rooms.SetStatus(st.roomID, domain.RoomPlaying); err != nil {
		return
	}
	s.bc.ToRoom(st.roomID, omokdto.Event{Type: omokdto.EvGameReset, Payload: stateView(sess.State())})
	s.broadcastRoomList()
	obslog.L().Info("game_reset", zap.String("room_id", st.roomID))
}

func (s *Service) handleSendMessage(ctx context.Context, identity string, p *omokdto.SendMessagePayload) {
	if p == nil || p.RoomID == "" || p.Message == "" {
		return
	}
	st, ok := s.conn(identity)
	if !ok || st.roomID != p.RoomID {
		return
	}
	msg := chat.NewMessage(st.player.Nickname, p.Message, st.spectating)
	if s.chat != nil {
		if err := s.chat.Append(ctx, p.RoomID, msg); err != nil {
			obslog.L().Warn("chat_append_failed", zap.String("room_id", p.RoomID), zap.Error(err))
		}
	}
	s.bc.ToRoom(p.RoomID, omokdto.Event{Type: omokdto.EvNewMessage, Payload: chatView(msg)})
}

func (s *Service) systemChat(ctx context.Context, roomID, text string) {
	msg := chat.NewSystemMessage(text)
	if s.chat != nil {
		if err := s.chat.Append(ctx, roomID, msg); err != nil {
			obslog.L().Warn("chat_append_failed", zap.String("room_id", roomID), zap.Error(err))
		}
	}
	s.bc.ToRoom(roomID, omokdto.Event{Type: omokdto.EvNewMessage, Payload: chatView(msg)})
}

func (s *Service) sendChatHistory(ctx context.Context, identity, roomID string) {
	if s.chat == nil {
		return
	}
	msgs, err := s.chat.History(ctx, roomID)
	if err != nil {
		obslog.L().Warn("chat_history_failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	views := make([]omokdto.ChatMessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, chatView(m))
	}
	s.bc.ToIdentity(identity, omokdto.Event{Type: omokdto.EvChatHistory, Payload: views})
}

// hookSession registers the auto-move broadcast on the room's current
// session. Re-invoked whenever the manager swaps in a fresh session.
func (s *Service) hookSession(roomID string) {
	sess := s.rooms.Session(roomID)
	if sess == nil {
		return
	}
	sess.OnAutoMove(func(mv game.Move, st game.State) {
		s.bc.ToRoom(roomID, omokdto.Event{
			Type: omokdto.EvStonePlaced,
			Payload: omokdto.StonePlacedPayload{
				RoomID: roomID,
				Row:    mv.Position.Row,
				Col:    mv.Position.Col,
				Color:  string(mv.Color),
				Auto:   true,
			},
		})
		s.afterMove(context.Background(), roomID, st)
	})
}

// Disconnect handles a transport-level connection loss. Spectators are
// removed at once; players get the reconnection grace window, and its
// expiry forfeits any live game before the normal leave path runs.
func (s *Service) Disconnect(ctx context.Context, identity string) {
	st, ok := s.conn(identity)
	if !ok {
		return
	}
	if st.spectating {
		s.bc.Leave(identity, st.roomID)
		if _, err := s.rooms.LeaveSpectate(st.roomID, identity); err == nil {
			s.bc.ToRoom(st.roomID, omokdto.Event{Type: omokdto.EvSpectatorLeft, Payload: identity})
		}
		s.clearConn(identity)
		s.broadcastRoomList()
		return
	}

	roomID, player := st.roomID, st.player
	s.clearConn(identity)
	s.tracker.Track(roomID, player.Nickname, func() {
		s.forfeitIfLive(roomID, player)
		s.leaveRoomAs(context.Background(), roomID, identity)
	})
}

// forfeitIfLive declares the remaining player the winner when the departed
// one was seated in a game still in progress.
func (s *Service) forfeitIfLive(roomID string, gone domain.Player) {
	sess := s.rooms.Session(roomID)
	if sess == nil {
		return
	}
	st := sess.State()
	if st.Status != game.StatusInProgress {
		return
	}
	goneColor := sess.PlayerColor(gone.Nickname)
	if goneColor == board.Empty {
		return
	}
	sess.SetWinner(goneColor.Opponent())
	s.finishGame(context.Background(), roomID, sess.State(), omokdto.ReasonForfeit)
}
