// Package render rasterizes a board snapshot into a PNG, for the HTTP
// board endpoint. Stones are rasterized from embedded SVG assets and
// cached per size.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/game"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cellSize   = 36
	margin     = 40
	stoneSize  = cellSize - 4
	lineWidth  = 2
	starRadius = 4
	markRadius = 5
)

var (
	woodColor     = color.RGBA{219, 180, 122, 255}
	lineColor     = color.RGBA{66, 46, 22, 255}
	labelColor    = color.RGBA{66, 46, 22, 255}
	lastMoveColor = color.NRGBA{R: 214, G: 48, B: 49, A: 230}
)

// starPoints are the customary 화점 on a 15x15 board.
var starPoints = []board.Position{
	{Row: 3, Col: 3}, {Row: 3, Col: 11},
	{Row: 7, Col: 7},
	{Row: 11, Col: 3}, {Row: 11, Col: 11},
}

type BoardRenderer struct{}

func NewBoardRenderer() *BoardRenderer { return &BoardRenderer{} }

// RenderState draws the grid, stones and a marker on the most recent move.
func (r *BoardRenderer) RenderState(st game.State) ([]byte, error) {
	if len(st.Board) != board.Size {
		return nil, fmt.Errorf("render: grid is %dx?, want %d", len(st.Board), board.Size)
	}

	span := cellSize * (board.Size - 1)
	total := span + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(woodColor), image.Point{}, imagedraw.Src)

	drawGrid(img, span)
	drawStarPoints(img)
	drawCoordinates(img)

	if err := drawStones(img, st.Board); err != nil {
		return nil, err
	}
	if n := len(st.MoveHistory); n > 0 {
		drawMoveMarker(img, st.MoveHistory[n-1].Position)
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

// intersection returns the pixel center of a grid point.
func intersection(p board.Position) image.Point {
	return image.Point{
		X: margin + p.Col*cellSize,
		Y: margin + p.Row*cellSize,
	}
}

func drawGrid(img *image.RGBA, span int) {
	fill := image.NewUniform(lineColor)
	half := lineWidth / 2
	for i := 0; i < board.Size; i++ {
		x := margin + i*cellSize
		imagedraw.Draw(img,
			image.Rect(x-half, margin-half, x-half+lineWidth, margin+span+half),
			fill, image.Point{}, imagedraw.Src)
		y := margin + i*cellSize
		imagedraw.Draw(img,
			image.Rect(margin-half, y-half, margin+span+half, y-half+lineWidth),
			fill, image.Point{}, imagedraw.Src)
	}
}

func drawStarPoints(img *image.RGBA) {
	for _, p := range starPoints {
		drawDisc(img, intersection(p), starRadius, lineColor)
	}
}

func drawStones(img *image.RGBA, grid [][]board.StoneColor) error {
	for row := range grid {
		if len(grid[row]) != board.Size {
			return fmt.Errorf("render: row %d is %d wide, want %d", row, len(grid[row]), board.Size)
		}
		for col, clr := range grid[row] {
			if clr != board.Black && clr != board.White {
				continue
			}
			stone, err := renderStoneImage(clr, stoneSize)
			if err != nil {
				return err
			}
			c := intersection(board.Position{Row: row, Col: col})
			rect := image.Rect(
				c.X-stoneSize/2, c.Y-stoneSize/2,
				c.X-stoneSize/2+stoneSize, c.Y-stoneSize/2+stoneSize,
			)
			imagedraw.Draw(img, rect, stone, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawMoveMarker(img *image.RGBA, p board.Position) {
	drawDisc(img, intersection(p), markRadius, lastMoveColor)
}

// drawCoordinates labels columns A-O along the bottom and rows 1-15 on the
// left, matching what the lobby client shows.
func drawCoordinates(img *image.RGBA) {
	drawer := &font.Drawer{
		Dst:  img,
		Face: basicfont.Face7x13,
		Src:  image.NewUniform(labelColor),
	}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()

	for i := 0; i < board.Size; i++ {
		colLabel := string(rune('A' + i))
		c := intersection(board.Position{Row: board.Size - 1, Col: i})
		drawCenteredLabel(drawer, colLabel, c.X, c.Y+cellSize/2+ascent+2)

		rowLabel := fmt.Sprintf("%d", i+1)
		c = intersection(board.Position{Row: i, Col: 0})
		drawCenteredLabel(drawer, rowLabel, margin/2-4, c.Y+ascent/2)
	}
}

func drawCenteredLabel(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}

	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	srcR := float64(sr) / 65535.0
	srcG := float64(sg) / 65535.0
	srcB := float64(sb) / 65535.0

	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255.0

	var dstR, dstG, dstB float64
	if dstA > 0 {
		inv := 1.0 / dstA
		dstR = float64(dst.R) / 255.0 * inv
		dstG = float64(dst.G) / 255.0 * inv
		dstB = float64(dst.B) / 255.0 * inv
	}

	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		img.SetRGBA(x, y, color.RGBA{})
		return
	}

	outR := (srcR*srcA + dstR*dstA*(1-srcA)) / outA
	outG := (srcG*srcA + dstG*dstA*(1-srcA)) / outA
	outB := (srcB*srcA + dstB*dstA*(1-srcA)) / outA

	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(outR * outA * 255.0),
		G: floatToUint8(outG * outA * 255.0),
		B: floatToUint8(outB * outA * 255.0),
		A: floatToUint8(outA * 255.0),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
