package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

type Cell struct {
	Mine          bool `json:"mine"`
	Revealed      bool `json:"revealed"`
	Flagged       bool `json:"flagged"`
	NeighborMines int  `json:"neighbor_mines"`
}

type Point struct {
	X, Y int
}

// Board is a height x width minefield stored row-major. It is not safe for
// concurrent use.
type Board struct {
	params   Params
	cells    []Cell
	gameOver bool
	won      bool
}

// New builds a board and places params.MineCount mines by sampling cells
// uniformly at random, resampling on collision.
func New(params Params, r *rand.Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		params: params,
		cells:  make([]Cell, params.Cells()),
	}

	placed := 0
	for placed < params.MineCount {
		x := r.IntN(params.Width)
		y := r.IntN(params.Height)
		if c := b.at(x, y); !c.Mine {
			c.Mine = true
			placed++
		}
	}

	b.countNeighbors()
	return b, nil
}

// NewWithMines builds a board with mines at exactly the given points.
func NewWithMines(width, height int, mines []Point) (*Board, error) {
	params := Params{Width: width, Height: height, MineCount: len(mines)}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		params: params,
		cells:  make([]Cell, params.Cells()),
	}
	for _, p := range mines {
		if !params.PointInBounds(p.X, p.Y) {
			return nil, fmt.Errorf(
				"%w: mine at (%d, %d) outside %dx%d grid",
				ErrInvalidConfiguration, p.X, p.Y, width, height,
			)
		}
		c := b.at(p.X, p.Y)
		if c.Mine {
			return nil, fmt.Errorf(
				"%w: duplicate mine at (%d, %d)",
				ErrInvalidConfiguration, p.X, p.Y,
			)
		}
		c.Mine = true
	}
	b.countNeighbors()
	return b, nil
}

func (b *Board) at(x, y int) *Cell {
	return &b.cells[y*b.params.Width+x]
}

func (b *Board) countNeighbors() {
	for y := range b.params.Height {
		for x := range b.params.Width {
			c := b.at(x, y)
			if c.Mine {
				continue
			}
			n := 0
			b.forEachNeighbor(x, y, func(xx, yy int) {
				if b.at(xx, yy).Mine {
					n++
				}
			})
			c.NeighborMines = n
		}
	}
}

// forEachNeighbor calls fn for every in-bounds cell of the 3x3 block
// centered on x,y, excluding the center.
func (b *Board) forEachNeighbor(x, y int, fn func(xx, yy int)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			xx, yy := x+dx, y+dy
			if b.params.PointInBounds(xx, yy) {
				fn(xx, yy)
			}
		}
	}
}

func (b *Board) checkBounds(x, y int) error {
	if !b.params.PointInBounds(x, y) {
		return fmt.Errorf(
			"%w: (%d, %d) outside %dx%d grid",
			ErrOutOfBounds, x, y, b.params.Width, b.params.Height,
		)
	}
	return nil
}

func (b *Board) Params() Params {
	return b.params
}

func (b *Board) Width() int {
	return b.params.Width
}

func (b *Board) Height() int {
	return b.params.Height
}

func (b *Board) MineCount() int {
	return b.params.MineCount
}

// GameOver reports whether a mine was revealed.
func (b *Board) GameOver() bool {
	return b.gameOver
}

// Won reports whether every safe cell is revealed.
func (b *Board) Won() bool {
	return b.won
}

// Over reports whether the board accepts no more moves.
func (b *Board) Over() bool {
	return b.gameOver || b.won
}

// Cell returns a copy of the cell at x,y.
func (b *Board) Cell(x, y int) (Cell, error) {
	if err := b.checkBounds(x, y); err != nil {
		return Cell{}, err
	}
	return *b.at(x, y), nil
}

func (b *Board) FlagCount() int {
	n := 0
	for _, c := range b.cells {
		if c.Flagged {
			n++
		}
	}
	return n
}

// Reveal opens the cell at x,y. Hitting a mine ends the game and exposes
// every mine, dropping any flags on them; opening a cell with no mined
// neighbors opens the surrounding area until it is bounded by numbered or
// flagged cells.
func (b *Board) Reveal(x, y int) error {
	if err := b.checkBounds(x, y); err != nil {
		return err
	}
	c := b.at(x, y)
	if b.Over() || c.Flagged || c.Revealed {
		return nil
	}

	if c.Mine {
		for i := range b.cells {
			if b.cells[i].Mine {
				b.cells[i].Revealed = true
				b.cells[i].Flagged = false
			}
		}
		b.gameOver = true
		return nil
	}

	b.floodFill(x, y)

	if b.safeCellsHidden() == 0 {
		b.won = true
	}
	return nil
}

func (b *Board) floodFill(x, y int) {
	b.at(x, y).Revealed = true
	stack := []Point{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b.at(p.X, p.Y).NeighborMines != 0 {
			continue
		}
		b.forEachNeighbor(p.X, p.Y, func(xx, yy int) {
			n := b.at(xx, yy)
			if n.Revealed || n.Flagged {
				return
			}
			n.Revealed = true
			stack = append(stack, Point{xx, yy})
		})
	}
}

func (b *Board) safeCellsHidden() int {
	n := 0
	for _, c := range b.cells {
		if !c.Mine && !c.Revealed {
			n++
		}
	}
	return n
}

// ToggleFlag flips the flag on a hidden cell.
func (b *Board) ToggleFlag(x, y int) error {
	if err := b.checkBounds(x, y); err != nil {
		return err
	}
	c := b.at(x, y)
	if b.Over() || c.Revealed {
		return nil
	}
	c.Flagged = !c.Flagged
	return nil
}

// Grid returns what the player is allowed to see.
func (b *Board) Grid() Grid {
	g := make(Grid, len(b.cells))
	for i, c := range b.cells {
		switch {
		case c.Revealed && c.Mine:
			g[i] = Mine
		case c.Revealed:
			g[i] = CellState(c.NeighborMines)
		case c.Flagged:
			g[i] = Flagged
		default:
			g[i] = Unknown
		}
	}
	return g
}

func (b *Board) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d (%d mines)", b.params.Width, b.params.Height, b.params.MineCount)
	switch {
	case b.gameOver:
		sb.WriteString(" dead")
	case b.won:
		sb.WriteString(" won")
	}
	sb.WriteString("\n")
	sb.WriteString(b.Grid().ToString(b.params.Width))
	return sb.String()
}
