package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Unknown CellState = -2
	Flagged CellState = -1
	Mine    CellState = 64
	/*
	 * Each item in a Grid is one of the following values:
	 *
	 * 	- 0 to 8 mean the cell is open and has a surrounding mine
	 * 	  count.
	 *
	 * 	- -1 means the cell is hidden and flagged.
	 *
	 * 	- -2 means the cell is hidden.
	 *
	 * 	- 64 means the cell is a mine exposed when the game was lost.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return "-"
	case s == Flagged:
		return "F"
	case s == 0:
		return "."
	case 0 < s && s <= 8:
		return strconv.Itoa(int(s))
	case s == Mine:
		return "*"
	default:
		return "!"
	}
}

type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
