package rules

import (
	"testing"

	"github.com/park285/omok-arena/internal/board"
)

func TestCheckForbiddenWhiteAlwaysAllowed(t *testing.T) {
	b := board.New()
	// Five consecutive WHITE stones; a sixth would be overline for BLACK.
	for col := 2; col <= 6; col++ {
		mustPlace(t, b, 7, col, board.White)
	}
	if got := CheckForbidden(b, board.NewPosition(7, 7), board.White); got != ForbiddenNone {
		t.Fatalf("white must be exempt, got %s", got)
	}
}

func TestCheckForbiddenOverline(t *testing.T) {
	b := board.New()
	for col := 2; col <= 6; col++ {
		mustPlace(t, b, 7, col, board.Black)
	}
	if got := CheckForbidden(b, board.NewPosition(7, 7), board.Black); got != Overline {
		t.Fatalf("expected OVERLINE, got %q", got)
	}
}

func TestCheckForbiddenDoubleThree(t *testing.T) {
	b := board.New()
	// Two stones horizontally and two vertically around (7,7); placing there
	// completes _XXX_ on both lines.
	mustPlace(t, b, 7, 5, board.Black)
	mustPlace(t, b, 7, 6, board.Black)
	mustPlace(t, b, 5, 7, board.Black)
	mustPlace(t, b, 6, 7, board.Black)
	if got := CheckForbidden(b, board.NewPosition(7, 7), board.Black); got != DoubleThree {
		t.Fatalf("expected DOUBLE_THREE, got %q", got)
	}
}

func TestCheckForbiddenBrokenThreePatterns(t *testing.T) {
	b := board.New()
	// Horizontal (7,4),(7,5) with a gap at (7,6): candidate (7,7) makes
	// _XX_X_. Vertical (5,7),(8,7) with a gap at (6,7): candidate makes
	// _X_XX_. Two broken open threes form a double-three.
	mustPlace(t, b, 7, 4, board.Black)
	mustPlace(t, b, 7, 5, board.Black)
	mustPlace(t, b, 5, 7, board.Black)
	mustPlace(t, b, 8, 7, board.Black)
	if got := CheckForbidden(b, board.NewPosition(7, 7), board.Black); got != DoubleThree {
		t.Fatalf("expected DOUBLE_THREE from broken threes, got %q", got)
	}
}

func TestCheckForbiddenDoubleFour(t *testing.T) {
	b := board.New()
	// Three in a row on both lines: candidate (7,7) completes _XXXX_
	// horizontally and vertically. A four-run window contains no open
	// three pattern, so double-three does not fire first.
	mustPlace(t, b, 7, 4, board.Black)
	mustPlace(t, b, 7, 5, board.Black)
	mustPlace(t, b, 7, 6, board.Black)
	mustPlace(t, b, 4, 7, board.Black)
	mustPlace(t, b, 5, 7, board.Black)
	mustPlace(t, b, 6, 7, board.Black)
	if got := CheckForbidden(b, board.NewPosition(7, 7), board.Black); got != DoubleFour {
		t.Fatalf("expected DOUBLE_FOUR, got %q", got)
	}
}

func TestCheckForbiddenReportsFirstMatchOnly(t *testing.T) {
	b := board.New()
	// Overline plus a double-three still reports OVERLINE.
	for col := 2; col <= 6; col++ {
		mustPlace(t, b, 7, col, board.Black)
	}
	mustPlace(t, b, 5, 7, board.Black)
	mustPlace(t, b, 6, 7, board.Black)
	if got := CheckForbidden(b, board.NewPosition(7, 7), board.Black); got != Overline {
		t.Fatalf("expected OVERLINE to win priority, got %q", got)
	}
}

func TestCheckForbiddenDoesNotMutateBoard(t *testing.T) {
	b := board.New()
	mustPlace(t, b, 7, 5, board.Black)
	mustPlace(t, b, 7, 6, board.Black)
	mustPlace(t, b, 5, 7, board.Black)
	mustPlace(t, b, 6, 7, board.Black)
	before := b.Clone()
	_ = CheckForbidden(b, board.NewPosition(7, 7), board.Black)
	if !b.Equal(before) {
		t.Fatalf("CheckForbidden mutated the board")
	}
	if !b.IsEmpty(board.NewPosition(7, 7)) {
		t.Fatalf("candidate position left occupied")
	}
}

func TestCheckForbiddenOpenThreeWindow(t *testing.T) {
	// BLACK at (5,5),(5,6),(5,7) with both ends empty: the horizontal
	// window around (5,6) contains _XXX_ and counts as one open three.
	b := board.New()
	mustPlace(t, b, 5, 5, board.Black)
	mustPlace(t, b, 5, 6, board.Black)
	mustPlace(t, b, 5, 7, board.Black)
	if !isOpenThree(b, board.NewPosition(5, 6), board.Black, 0, 1) {
		t.Fatalf("expected _XXX_ open three in horizontal window")
	}
	if isOpenThree(b, board.NewPosition(5, 6), board.Black, 1, 0) {
		t.Fatalf("vertical direction should not match")
	}
}

func TestCheckForbiddenEdgeIsNotOpen(t *testing.T) {
	b := board.New()
	// Three stones ending at the edge: the border blocks one end, so no
	// open three and a single open three elsewhere is not a double.
	mustPlace(t, b, 0, 0, board.Black)
	mustPlace(t, b, 0, 1, board.Black)
	mustPlace(t, b, 1, 3, board.Black)
	mustPlace(t, b, 2, 3, board.Black)
	if got := CheckForbidden(b, board.NewPosition(0, 2), board.Black); got != ForbiddenNone {
		t.Fatalf("edge-blocked three treated as open: %q", got)
	}
}
