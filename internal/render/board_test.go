package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/game"
)

func emptyGrid() [][]board.StoneColor {
	grid := make([][]board.StoneColor, board.Size)
	for i := range grid {
		grid[i] = make([]board.StoneColor, board.Size)
		for j := range grid[i] {
			grid[i][j] = board.Empty
		}
	}
	return grid
}

func TestRenderStateProducesPNG(t *testing.T) {
	grid := emptyGrid()
	grid[7][7] = board.Black
	grid[7][8] = board.White
	st := game.State{
		Board: grid,
		MoveHistory: []game.Move{
			{Position: board.Position{Row: 7, Col: 7}, Color: board.Black},
			{Position: board.Position{Row: 7, Col: 8}, Color: board.White},
		},
	}

	data, err := NewBoardRenderer().RenderState(st)
	if err != nil {
		t.Fatalf("RenderState: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	want := cellSize*(board.Size-1) + margin*2
	if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Fatalf("canvas = %dx%d, want %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), want, want)
	}

	// The black stone covers its intersection, so its center pixel must be
	// darker than the untouched wood.
	c := intersection(board.Position{Row: 7, Col: 7})
	r, g, b, _ := img.At(c.X, c.Y).RGBA()
	wr, wg, wb, _ := img.At(margin/4, margin/4).RGBA()
	if r+g+b >= wr+wg+wb {
		t.Fatalf("black stone pixel is not darker than the board")
	}
}

func TestRenderStateRejectsBadGrid(t *testing.T) {
	if _, err := NewBoardRenderer().RenderState(game.State{}); err == nil {
		t.Fatalf("nil grid accepted")
	}
	grid := emptyGrid()
	grid[3] = grid[3][:10]
	if _, err := NewBoardRenderer().RenderState(game.State{Board: grid}); err == nil {
		t.Fatalf("short row accepted")
	}
}

func TestStoneImageCacheReturnsSameInstance(t *testing.T) {
	a, err := renderStoneImage(board.Black, stoneSize)
	if err != nil {
		t.Fatalf("renderStoneImage: %v", err)
	}
	b, err := renderStoneImage(board.Black, stoneSize)
	if err != nil {
		t.Fatalf("renderStoneImage: %v", err)
	}
	if a != b {
		t.Fatalf("cache miss on identical key")
	}
}
