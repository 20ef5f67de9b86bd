package arena

import (
	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/chat"
	"github.com/park285/omok-arena/internal/domain"
	"github.com/park285/omok-arena/internal/game"
	"github.com/park285/omok-arena/internal/room"
	"github.com/park285/omok-arena/pkg/omokdto"
)

func playerView(p domain.Player) omokdto.PlayerView {
	return omokdto.PlayerView{ID: p.ID, Nickname: p.Nickname, IsGuest: p.IsGuest}
}

func playerViewPtr(p *domain.Player) *omokdto.PlayerView {
	if p == nil {
		return nil
	}
	v := playerView(*p)
	return &v
}

func roomView(r *room.Room) omokdto.RoomView {
	v := omokdto.RoomView{
		ID:         r.ID,
		Name:       r.Name,
		Host:       playerView(r.Host),
		Spectators: make([]omokdto.PlayerView, 0, len(r.Spectators)),
		Status:     string(r.Status),
		GameMode:   string(r.Mode),
	}
	if r.Guest != nil {
		g := playerView(*r.Guest)
		v.Guest = &g
	}
	for _, s := range r.Spectators {
		v.Spectators = append(v.Spectators, playerView(s))
	}
	return v
}

func stateView(st game.State) *omokdto.GameStateView {
	grid := make([][]string, len(st.Board))
	for i, row := range st.Board {
		grid[i] = make([]string, len(row))
		for j, c := range row {
			grid[i][j] = string(c)
		}
	}
	v := &omokdto.GameStateView{
		Board:         grid,
		CurrentTurn:   string(st.CurrentTurn),
		BlackPlayer:   playerViewPtr(st.BlackPlayer),
		WhitePlayer:   playerViewPtr(st.WhitePlayer),
		Status:        string(st.Status),
		TurnStartTime: st.TurnStartMilli,
	}
	if st.Winner != board.Empty {
		v.Winner = string(st.Winner)
	}
	return v
}

func listView(infos []room.Info) []omokdto.RoomListEntry {
	out := make([]omokdto.RoomListEntry, 0, len(infos))
	for _, in := range infos {
		out = append(out, omokdto.RoomListEntry{
			ID:             in.ID,
			Name:           in.Name,
			HostNickname:   in.HostNickname,
			PlayerCount:    in.PlayerCount,
			SpectatorCount: in.SpectatorCount,
			Status:         string(in.Status),
			GameMode:       string(in.Mode),
		})
	}
	return out
}

func chatView(m chat.Message) omokdto.ChatMessageView {
	return omokdto.ChatMessageView{
		ID:          m.ID,
		Sender:      m.Sender,
		Message:     m.Message,
		Timestamp:   m.Timestamp,
		IsSystem:    m.IsSystem,
		IsSpectator: m.IsSpectator,
	}
}
