package mines

import (
	"fmt"
	"math"
)

type Params struct {
	Width, Height, MineCount int
}

var DefaultParams = Params{Width: 10, Height: 10, MineCount: 10}

func (p Params) Cells() int {
	return p.Width * p.Height
}

// Validate reports ErrInvalidConfiguration unless the grid is non-empty and
// leaves at least one safe cell.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf(
			"%w: grid must be at least 1x1, got %dx%d",
			ErrInvalidConfiguration, p.Width, p.Height,
		)
	}
	if p.Width > math.MaxInt/p.Height {
		return fmt.Errorf(
			"%w: grid %dx%d is too large",
			ErrInvalidConfiguration, p.Width, p.Height,
		)
	}
	if p.MineCount < 0 || p.MineCount >= p.Cells() {
		return fmt.Errorf(
			"%w: mine count must be in [0, %d), got %d",
			ErrInvalidConfiguration, p.Cells(), p.MineCount,
		)
	}
	return nil
}

func (p Params) PointInBounds(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}

func (p Params) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Width, p.Height, p.MineCount)
}
