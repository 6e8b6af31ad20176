package ui

import "github.com/samdwyer/pivotwalk/internal/walkgraph"

const (
	// MarkerAlpha is the marker's opacity when a click shows it.
	MarkerAlpha = 0.5
	// MarkerFadeTime is the walking time, in seconds, that fades a full
	// opacity marker out.
	MarkerFadeTime = 0.5
)

// ClickMarker highlights the node the player last sent the avatar to. It
// fades only while the avatar walks.
type ClickMarker struct {
	Node  walkgraph.NodeID
	Alpha float64
}

// Show places the marker on id at full marker opacity.
func (m *ClickMarker) Show(id walkgraph.NodeID) {
	m.Node = id
	m.Alpha = MarkerAlpha
}

// Hide clears the marker.
func (m *ClickMarker) Hide() {
	*m = ClickMarker{}
}

// Fade lowers the marker's opacity by dt of walking time and hides it once
// nothing is left.
func (m *ClickMarker) Fade(dt float64, walking bool) {
	if !walking || !m.Visible() {
		return
	}
	m.Alpha -= dt / MarkerFadeTime
	if m.Alpha <= 0 {
		m.Hide()
	}
}

// Visible reports whether the marker should be drawn.
func (m ClickMarker) Visible() bool {
	return m.Node != "" && m.Alpha > 0
}
