package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/wavebuoy/internal/dynamo"
)

type PhasePoint struct {
	T, X, Y float64
}

// PhasePortrait is the projection of a sampled trajectory onto two state
// components.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []PhasePoint
}

// NewPhasePortrait keeps the samples taken at or after from. It returns nil
// when an index is out of range for the state dimension.
func NewPhasePortrait(ts []float64, states []dynamo.State, xIdx, yIdx int, from float64) *PhasePortrait {
	if len(states) == 0 || len(ts) != len(states) {
		return nil
	}
	dim := len(states[0])
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil
	}

	pp := &PhasePortrait{XIndex: xIdx, YIndex: yIdx}
	for i, s := range states {
		if ts[i] < from {
			continue
		}
		pp.Points = append(pp.Points, PhasePoint{T: ts[i], X: s[xIdx], Y: s[yIdx]})
	}
	return pp
}

// Bounds returns the extent of the points, widened to unit size on a
// degenerate axis.
func (pp *PhasePortrait) Bounds() (xMin, xMax, yMin, yMax float64) {
	if len(pp.Points) == 0 {
		return 0, 1, 0, 1
	}
	xMin, xMax = pp.Points[0].X, pp.Points[0].X
	yMin, yMax = pp.Points[0].Y, pp.Points[0].Y
	for _, p := range pp.Points[1:] {
		xMin, xMax = min(xMin, p.X), max(xMax, p.X)
		yMin, yMax = min(yMin, p.Y), max(yMax, p.Y)
	}
	if xMax == xMin {
		xMin, xMax = xMin-0.5, xMax+0.5
	}
	if yMax == yMin {
		yMin, yMax = yMin-0.5, yMax+0.5
	}
	return xMin, xMax, yMin, yMax
}

// Render draws the portrait in a framed character grid. Glyphs darken with
// time: '.' for the first third of the points, 'o' for the second, '●'
// for the last.
func (pp *PhasePortrait) Render(width, height int) string {
	if pp == nil || len(pp.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xMin, xMax, yMin, yMax := pp.Bounds()
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int(float64(width-1) * (x - xMin) / (xMax - xMin)) }
	row := func(y float64) int { return height - 1 - int(float64(height-1)*(y-yMin)/(yMax-yMin)) }

	if xMin < 0 && xMax > 0 {
		c := col(0)
		for r := range canvas {
			canvas[r][c] = '┊'
		}
	}
	if yMin < 0 && yMax > 0 {
		r := row(0)
		for c := range canvas[r] {
			canvas[r][c] = '┈'
		}
	}

	n := len(pp.Points)
	for i, p := range pp.Points {
		glyph := '●'
		switch {
		case i < n/3:
			glyph = '.'
		case i < 2*n/3:
			glyph = 'o'
		}
		canvas[row(p.Y)][col(p.X)] = glyph
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%9.3g ┌%s┐\n", yMax, strings.Repeat("─", width))
	for i, line := range canvas {
		label := strings.Repeat(" ", 9)
		if i == height/2 {
			label = fmt.Sprintf("%9.3g", (yMax+yMin)/2)
		}
		fmt.Fprintf(&b, "%s │%s│\n", label, string(line))
	}
	fmt.Fprintf(&b, "%9.3g └%s┘\n", yMin, strings.Repeat("─", width))
	fmt.Fprintf(&b, "%11s%-*.3g%*.3g\n", "", width/2, xMin, width-width/2, xMax)
	return b.String()
}
