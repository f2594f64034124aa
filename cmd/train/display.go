package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"dinoevo/internal/env"
)

// Display draws the runner as a few lines of text
type Display struct {
	out     io.Writer
	columns int
	rows    int
}

// NewDisplay creates a new display
func NewDisplay(out io.Writer, columns, rows int) *Display {
	return &Display{out: out, columns: columns, rows: rows}
}

// cell sizes in screen units
const (
	cellWidth  = 10.0
	cellHeight = 25.0
)

// Render draws the game state
func (d *Display) Render(game *env.Game, action int) {
	grid := make([][]rune, d.rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", d.columns))
	}

	for _, o := range game.Obstacles {
		glyph := '#'
		if o.Kind == env.KindBird {
			glyph = 'v'
		}
		d.fill(grid, o.X, o.Elevation, o.Width, o.Height, glyph)
	}

	x, y, w, h := game.DinoBox()
	glyph := 'D'
	if !game.Ducking && y > 0 {
		glyph = '^'
	}
	d.fill(grid, x, y, w, h, glyph)

	// Clear screen and home the cursor
	fmt.Fprint(d.out, "\033[H\033[2J")
	for row := d.rows - 1; row >= 0; row-- {
		fmt.Fprintf(d.out, "|%s|\n", string(grid[row]))
	}
	fmt.Fprintf(d.out, "+%s+\n", strings.Repeat("-", d.columns))

	actionDisplay := "---"
	if action >= 0 && action < env.NumActions {
		actionDisplay = env.Action(action).String()
	}
	fmt.Fprintf(d.out, "  Score: %5.0f | Speed: %5.2f | Action: %s\n", game.Score(), game.Speed, actionDisplay)

	if game.EpisodeOver() {
		fmt.Fprintf(d.out, "  GAME OVER: %s\n", game.End)
	}
}

// fill marks the cells covered by a box
func (d *Display) fill(grid [][]rune, x, y, w, h float64, glyph rune) {
	c0 := int(math.Floor(x / cellWidth))
	c1 := int(math.Ceil((x + w) / cellWidth))
	r0 := int(math.Floor(y / cellHeight))
	r1 := int(math.Ceil((y + h) / cellHeight))
	for r := max(r0, 0); r < min(r1, d.rows); r++ {
		for c := max(c0, 0); c < min(c1, d.columns); c++ {
			grid[r][c] = glyph
		}
	}
}

// renderingEnv draws every frame of the wrapped game
type renderingEnv struct {
	*env.Game
	display *Display
}

func (r renderingEnv) Step(action int) {
	r.Game.Step(action)
	r.display.Render(r.Game, action)
}
