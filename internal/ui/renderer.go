package ui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/pivotwalk/internal/entity"
	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
	"github.com/samdwyer/pivotwalk/internal/world"
)

const (
	// Terminal cells are roughly twice as tall as wide, so X gets twice the
	// cells per world unit that Z does.
	cellsPerUnitX = 4
	cellsPerUnitZ = 2

	mapLeft = 2
	mapTop  = 3 // rows above the map hold the header
)

// View is everything the renderer draws for one frame.
type View struct {
	Title   string
	Status  string
	Message string
	Graph   *walkgraph.Graph
	Final   walkgraph.NodeID
	Avatar  *entity.Avatar
	Pivots  *world.Pivots
	Marker  ClickMarker
}

type cell struct{ x, y int }

// Renderer draws a north-up top-down view of the walk graph and maps screen
// cells back to nodes for mouse clicks.
type Renderer struct {
	screen *Screen

	minX, maxZ float64
	cells      map[cell]walkgraph.NodeID
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{
		screen: screen,
		cells:  make(map[cell]walkgraph.NodeID),
	}
}

// Render draws v to the screen.
func (r *Renderer) Render(v View) {
	r.screen.Clear()
	r.layout(v.Graph)

	r.RenderMessage(v.Title, 0, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	r.RenderMessage(v.Status, 1, tcell.StyleDefault.Foreground(tcell.ColorGray))
	if v.Pivots != nil {
		x := 0
		for _, p := range v.Pivots.All() {
			label := fmt.Sprintf("%s %s  ", p.ID, p.Orientation())
			r.renderText(x, 2, label, tcell.StyleDefault.Foreground(tcell.ColorTeal))
			x += len(label)
		}
	}

	linkStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	for _, n := range v.Graph.Nodes() {
		from, ok := r.project(n.WalkPoint())
		if !ok {
			continue
		}
		for _, l := range n.Links() {
			if !l.Active {
				continue
			}
			to, ok := v.Graph.Node(l.To)
			if !ok {
				continue
			}
			if end, ok := r.project(to.WalkPoint()); ok {
				r.drawLine(from, end, linkStyle)
			}
		}
	}

	for _, n := range v.Graph.Nodes() {
		c, ok := r.project(n.WalkPoint())
		if !ok {
			continue
		}
		glyph, style := nodeGlyph(n, v.Final)
		r.screen.SetContent(c.x, c.y, glyph, style)
	}

	if v.Marker.Visible() {
		if n, ok := v.Graph.Node(v.Marker.Node); ok {
			if c, ok := r.project(n.WalkPoint()); ok {
				style := markerStyle(v.Marker.Alpha)
				r.screen.SetContent(c.x-1, c.y, '[', style)
				r.screen.SetContent(c.x+1, c.y, ']', style)
			}
		}
	}

	if v.Avatar != nil {
		if c, ok := r.project(v.Avatar.Position); ok {
			style := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
			r.screen.SetContent(c.x, c.y, v.Avatar.Facing(), style)
		}
	}

	if v.Message != "" {
		_, h := r.screen.Size()
		r.RenderMessage(v.Message, h-1, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}

	r.screen.Show()
}

// NodeAt returns the node drawn at, or right next to, screen cell (x, y).
func (r *Renderer) NodeAt(x, y int) (walkgraph.NodeID, bool) {
	if id, ok := r.cells[cell{x, y}]; ok {
		return id, true
	}
	for _, d := range [...]cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if id, ok := r.cells[cell{x + d.x, y + d.y}]; ok {
			return id, true
		}
	}
	return "", false
}

// Project returns the screen cell for world position p using the layout of
// the last rendered frame.
func (r *Renderer) Project(p geom.Vec3) (x, y int, ok bool) {
	c, ok := r.project(p)
	return c.x, c.y, ok
}

// RenderMessage displays a message on screen row y.
func (r *Renderer) RenderMessage(msg string, y int, style tcell.Style) {
	r.renderText(0, y, msg, style)
}

func (r *Renderer) renderText(x, y int, msg string, style tcell.Style) {
	for i, ch := range []rune(msg) {
		r.screen.SetContent(x+i, y, ch, style)
	}
}

// layout fixes the map origin from the graph's walk points and records which
// cell each node occupies. The first node wins a shared cell.
func (r *Renderer) layout(g *walkgraph.Graph) {
	r.minX, r.maxZ = math.Inf(1), math.Inf(-1)
	for _, n := range g.Nodes() {
		wp := n.WalkPoint()
		if !wp.IsFinite() {
			continue
		}
		r.minX = math.Min(r.minX, wp.X)
		r.maxZ = math.Max(r.maxZ, wp.Z)
	}

	clear(r.cells)
	for _, n := range g.Nodes() {
		c, ok := r.project(n.WalkPoint())
		if !ok {
			continue
		}
		if _, taken := r.cells[c]; !taken {
			r.cells[c] = n.ID
		}
	}
}

func (r *Renderer) project(p geom.Vec3) (cell, bool) {
	if !p.IsFinite() || math.IsInf(r.minX, 0) {
		return cell{}, false
	}
	return cell{
		x: mapLeft + int(math.Round((p.X-r.minX)*cellsPerUnitX)),
		y: mapTop + int(math.Round((r.maxZ-p.Z)*cellsPerUnitZ)),
	}, true
}

// drawLine fills the cells strictly between a and b.
func (r *Renderer) drawLine(a, b cell, style tcell.Style) {
	dx, dy := b.x-a.x, b.y-a.y
	steps := max(abs(dx), abs(dy))
	glyph := '.'
	switch {
	case dy == 0:
		glyph = '-'
	case dx == 0:
		glyph = '|'
	}
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		x := a.x + int(math.Round(float64(dx)*t))
		y := a.y + int(math.Round(float64(dy)*t))
		r.screen.SetContent(x, y, glyph, style)
	}
}

// nodeGlyph returns the rune and style for a node.
func nodeGlyph(n *walkgraph.Node, final walkgraph.NodeID) (rune, tcell.Style) {
	switch {
	case n.ID == final:
		return '*', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case n.Button:
		return '+', tcell.StyleDefault.Foreground(tcell.ColorAqua)
	case n.Stair:
		return '=', tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case n.MovingGround:
		return '~', tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	default:
		return 'o', tcell.StyleDefault.Foreground(tcell.ColorSilver)
	}
}

// markerStyle dims the marker as it fades.
func markerStyle(alpha float64) tcell.Style {
	if alpha > MarkerAlpha/2 {
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorGray)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
