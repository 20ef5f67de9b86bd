// Package httpapi serves the thin HTTP surface next to the websocket
// transport: health, the lobby listing and per-player stats, plus a PNG
// snapshot of a live board.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/park285/omok-arena/internal/obslog"
	"github.com/park285/omok-arena/internal/render"
	"github.com/park285/omok-arena/internal/room"
	"github.com/park285/omok-arena/internal/stats"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type Server struct {
	rooms    *room.Manager
	stats    stats.Repository
	renderer *render.BoardRenderer

	srv *fasthttp.Server
}

func NewServer(rooms *room.Manager, repo stats.Repository, renderer *render.BoardRenderer) *Server {
	s := &Server{rooms: rooms, stats: repo, renderer: renderer}
	s.srv = &fasthttp.Server{
		Handler:      s.handle,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Name:         "omok-arena",
	}
	return s
}

// ListenAndServe blocks until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("http_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error { return s.srv.Shutdown() }

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	if string(ctx.Method()) != fasthttp.MethodGet {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}
	switch string(ctx.Path()) {
	case "/health":
		s.handleHealth(ctx)
	case "/api/rooms":
		s.handleRooms(ctx)
	case "/api/stats":
		s.handleStats(ctx)
	case "/api/board.png":
		s.handleBoard(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(body)
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  len(s.rooms.List()),
	})
}

func (s *Server) handleRooms(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, s.rooms.List())
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	nickname := string(ctx.QueryArgs().Peek("nickname"))
	if nickname == "" {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "nickname is required"})
		return
	}
	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	us, err := s.stats.GetByNickname(reqCtx, nickname)
	if errors.Is(err, stats.ErrNotFound) {
		writeJSON(ctx, fasthttp.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	if err != nil {
		obslog.L().Warn("stats_query_failed", zap.String("nickname", nickname), zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, us)
}

func (s *Server) handleBoard(ctx *fasthttp.RequestCtx) {
	if s.renderer == nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	roomID := string(ctx.QueryArgs().Peek("roomId"))
	sess := s.rooms.Session(roomID)
	if sess == nil {
		writeJSON(ctx, fasthttp.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}
	png, err := s.renderer.RenderState(sess.State())
	if err != nil {
		obslog.L().Warn("board_render_failed", zap.String("room_id", roomID), zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.SetBody(png)
}
