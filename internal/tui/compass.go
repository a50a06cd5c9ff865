package tui

import (
	"math"
	"strings"

	"github.com/san-kum/skyglow/internal/app"
)

// compass draws the orbit as seen from above: the needle points along the
// camera bearing and shortens as the camera pitches toward the horizon. In
// the light variant the primary light is plotted instead.
type compass struct {
	w, h   int
	canvas [][]rune
}

func newCompass(w, h int) *compass {
	c := &compass{w: w, h: h, canvas: make([][]rune, h)}
	for i := range c.canvas {
		c.canvas[i] = make([]rune, w)
	}
	c.clear()
	return c
}

func (c *compass) clear() {
	for y := range c.canvas {
		for x := range c.canvas[y] {
			c.canvas[y][x] = ' '
		}
	}
}

func (c *compass) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.canvas[y][x] = r
	}
}

func (c *compass) line(x1, y1, x2, y2 int, r rune) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x1 += sx
		}
		if e2 < dx {
			e += dx
			y1 += sy
		}
	}
}

// radius in rows; columns are doubled since cells are about twice as tall
// as they are wide.
func (c *compass) radius() float64 {
	return math.Min(float64(c.h-1)/2, float64(c.w-1)/4)
}

func (c *compass) ring() {
	cx, cy, r := c.w/2, c.h/2, c.radius()
	for a := 0.0; a < 2*math.Pi; a += math.Pi / 48 {
		c.set(cx+int(math.Round(2*r*math.Sin(a))), cy-int(math.Round(r*math.Cos(a))), '·')
	}
	c.set(cx, cy-int(r), 'N')
}

func (c *compass) draw(s app.Scene) {
	c.clear()
	c.ring()
	cx, cy, r := c.w/2, c.h/2, c.radius()

	if len(s.Effects) > 0 && len(s.Effects[0].Directional) > 0 {
		dir := s.Effects[0].Directional[0].Direction
		n := math.Hypot(dir.X(), dir.Y())
		if n > 0 {
			x := cx + int(math.Round(2*r*dir.X()/n))
			y := cy - int(math.Round(r*dir.Y()/n))
			c.line(cx, cy, x, y, '∙')
			c.set(x, y, '☀')
		}
	} else if s.ViewState != nil {
		b := s.ViewState.Bearing * math.Pi / 180
		length := r * math.Cos(s.ViewState.Pitch*math.Pi/180)
		x := cx + int(math.Round(2*length*math.Sin(b)))
		y := cy - int(math.Round(length*math.Cos(b)))
		c.line(cx, cy, x, y, '│')
		c.set(x, y, '▲')
	}
	c.set(cx, cy, '●')
}

func (c *compass) String() string {
	var b strings.Builder
	for _, row := range c.canvas {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
