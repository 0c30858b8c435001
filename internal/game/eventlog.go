package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	eventPanelWidth  = 360
	eventMaxEntries  = 40
	eventLineHeight  = 14
	eventVisibleRows = 8
)

// EventLog is a ring buffer of recent diagnostics shown over the split view.
type EventLog struct {
	entries []Diagnostic
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{entries: make([]Diagnostic, eventMaxEntries)}
}

// Report implements Diagnostics.
func (el *EventLog) Report(d Diagnostic) {
	el.entries[el.head] = d
	el.head = (el.head + 1) % eventMaxEntries
	if el.count < eventMaxEntries {
		el.count++
	}
}

// Len returns the number of buffered entries.
func (el *EventLog) Len() int { return el.count }

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []Diagnostic {
	result := make([]Diagnostic, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + eventMaxEntries) % eventMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

func slotColor(s Slot) color.RGBA {
	switch s {
	case Slot1:
		return color.RGBA{R: 70, G: 150, B: 230, A: 255}
	case Slot2:
		return color.RGBA{R: 230, G: 120, B: 60, A: 255}
	}
	return color.RGBA{R: 140, G: 140, B: 140, A: 255}
}

// Draw renders the newest entries in a panel anchored at the bottom-left.
func (el *EventLog) Draw(screen *ebiten.Image, screenH int) {
	entries := el.Recent()
	if len(entries) > eventVisibleRows {
		entries = entries[len(entries)-eventVisibleRows:]
	}
	if len(entries) == 0 {
		return
	}

	h := len(entries)*eventLineHeight + 6
	y0 := screenH - h - 4
	vector.FillRect(screen, 4, float32(y0), eventPanelWidth, float32(h), color.RGBA{R: 10, G: 12, B: 10, A: 200}, false)

	y := y0 + 3
	for _, e := range entries {
		vector.FillRect(screen, 8, float32(y+4), 3, 6, slotColor(e.Slot), false)
		if e.Severity == SeverityWarn {
			vector.FillRect(screen, 6, float32(y), eventPanelWidth-4, eventLineHeight, color.RGBA{R: 60, G: 30, B: 10, A: 140}, false)
		}
		line := fmt.Sprintf("%4d %-7s %s", e.Frame, e.Key, e.Message)
		ebitenutil.DebugPrintAt(screen, line, 14, y)
		y += eventLineHeight
	}
}
