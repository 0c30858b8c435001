package main

import (
	"fmt"
	"math"

	"github.com/Garsondee/Twin-Sight/internal/game"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// holdFrames is how long a key press keeps a stick deflected. Terminals do
// not report key releases.
const holdFrames = 12

var (
	styleDefault = tcell.StyleDefault
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTrigger = tcell.StyleDefault.Foreground(tcell.ColorGold)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	slotStyles   = [2]tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true),
		tcell.StyleDefault.Foreground(tcell.ColorOrangeRed).Bold(true),
	}
)

// stickHold is a stick deflection that expires after holdFrames.
type stickHold struct {
	pad   int
	stick game.Stick
	until int
}

// Monitor renders a CoopSim top-down in a terminal and maps keys to virtual
// pad input.
type Monitor struct {
	sim    *game.CoopSim
	screen tcell.Screen
	holds  map[[2]int]stickHold
}

// NewMonitor wraps sim for display on screen.
func NewMonitor(sim *game.CoopSim, screen tcell.Screen) *Monitor {
	return &Monitor{sim: sim, screen: screen, holds: map[[2]int]stickHold{}}
}

type keyBinding struct {
	pad   int
	stick game.Stick
	dir   game.Vec2
}

var (
	up    = game.Vec2{Y: 1}
	down  = game.Vec2{Y: -1}
	left  = game.Vec2{X: -1}
	right = game.Vec2{X: 1}
)

var runeBindings = map[rune]keyBinding{
	'w': {0, game.StickLeft, up}, 's': {0, game.StickLeft, down},
	'a': {0, game.StickLeft, left}, 'd': {0, game.StickLeft, right},
	'i': {0, game.StickRight, up}, 'k': {0, game.StickRight, down},
	'j': {0, game.StickRight, left}, 'l': {0, game.StickRight, right},
	'8': {1, game.StickRight, up}, '2': {1, game.StickRight, down},
	'4': {1, game.StickRight, left}, '6': {1, game.StickRight, right},
}

var keyBindings = map[tcell.Key]keyBinding{
	tcell.KeyUp:    {1, game.StickLeft, up},
	tcell.KeyDown:  {1, game.StickLeft, down},
	tcell.KeyLeft:  {1, game.StickLeft, left},
	tcell.KeyRight: {1, game.StickLeft, right},
}

// HandleKey applies a key press. It returns false when the monitor should quit.
func (m *Monitor) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if b, ok := keyBindings[ev.Key()]; ok {
		m.press(b)
		return true
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}
	switch ev.Rune() {
	case 'q':
		return false
	case 'r':
		m.sim.Ctx.Registry.ForceReassignment()
	case 'h':
		m.toggleSecondPad()
	case 'c':
		m.sim.Transitions.SaveCheckpoint()
	case 'v':
		// Without a checkpoint there is nothing to load.
		_ = m.sim.Transitions.LoadLastCheckpoint()
	default:
		if b, ok := runeBindings[ev.Rune()]; ok {
			m.press(b)
		}
	}
	return true
}

// toggleSecondPad unplugs the second pad, or plugs a new one in when only
// one is connected.
func (m *Monitor) toggleSecondPad() {
	if m.sim.Pad(1) != nil {
		m.sim.Unplug(1)
		return
	}
	m.sim.Plug("Virtual Pad 2")
}

func (m *Monitor) press(b keyBinding) {
	pad := m.sim.Pad(b.pad)
	if pad == nil {
		return
	}
	key := [2]int{b.pad, int(b.stick)}
	pad.SetStick(b.stick, b.dir)
	m.holds[key] = stickHold{pad: b.pad, stick: b.stick, until: m.sim.Ctx.Frame() + holdFrames}
}

// Step releases expired sticks and advances the simulation one frame.
func (m *Monitor) Step() {
	now := m.sim.Ctx.Frame()
	for key, h := range m.holds {
		if now < h.until {
			continue
		}
		if pad := m.sim.Pad(h.pad); pad != nil {
			pad.SetStick(h.stick, game.Vec2{})
		}
		delete(m.holds, key)
	}
	m.sim.Step()
}

// putText writes s at (x, y), advancing by each rune's display width and
// stopping at maxX.
func putText(scr tcell.Screen, x, y, maxX int, s string, st tcell.Style) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if x+w > maxX {
			break
		}
		scr.SetContent(x, y, r, nil, st)
		x += w
	}
	return x
}

// truncate shortens s to fit width display columns.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Draw renders both player panes, the status line and recent diagnostics.
func (m *Monitor) Draw() {
	scr := m.screen
	scr.Clear()
	w, h := scr.Size()
	const footer = 4
	paneH := h - footer
	if paneH < 3 || w < 10 {
		scr.Show()
		return
	}

	half := w / 2
	m.drawPane(game.Slot1, 0, half-1, paneH)
	for y := 0; y < paneH; y++ {
		scr.SetContent(half-1, y, '│', nil, styleDefault)
	}
	m.drawPane(game.Slot2, half, w-half, paneH)

	status := truncate(fmt.Sprintf(" %s | %s ", m.sim.Scene.Name, m.sim.Ctx.Registry.StatusInfo()), w)
	for x := 0; x < w; x++ {
		scr.SetContent(x, paneH, ' ', nil, styleStatus)
	}
	putText(scr, 0, paneH, w, status, styleStatus)

	entries := m.sim.Log.Entries()
	if len(entries) > footer-1 {
		entries = entries[len(entries)-(footer-1):]
	}
	for i, e := range entries {
		st := styleDefault
		if e.Severity == game.SeverityWarn {
			st = styleWarn
		}
		putText(scr, 0, paneH+1+i, w, truncate(e.String(), w), st)
	}
	scr.Show()
}

// drawPane draws a top-down view of slot's surroundings, one metre per cell,
// with +Z up the screen.
func (m *Monitor) drawPane(slot game.Slot, x0, width, height int) {
	scr := m.screen
	p := m.sim.Player(slot)
	lvl := m.sim.Scene.Level
	centre := game.Vec3{X: lvl.Width / 2, Z: lvl.Depth / 2}
	if p != nil {
		centre = p.Position()
	}

	for cy := 1; cy < height; cy++ {
		for cx := 0; cx < width; cx++ {
			wx := centre.X + float64(cx-width/2)
			wz := centre.Z + float64(height/2-cy)
			switch {
			case wallAt(lvl, wx, wz):
				scr.SetContent(x0+cx, cy, '#', nil, styleWall)
			case triggerAt(lvl, wx, wz):
				scr.SetContent(x0+cx, cy, '=', nil, styleTrigger)
			}
		}
	}

	for _, q := range m.sim.Scene.Players {
		pos := q.Position()
		cx := width/2 + int(math.Round(pos.X-centre.X))
		cy := height/2 - int(math.Round(pos.Z-centre.Z))
		if cx < 0 || cx >= width || cy < 1 || cy >= height {
			continue
		}
		scr.SetContent(x0+cx, cy, rune('0'+int(q.Slot())), nil, slotStyles[int(q.Slot())-1])
	}

	title := fmt.Sprintf(" %s ", slot)
	if p != nil {
		device := "no controller"
		if d := p.Gamepad(); d != nil {
			device = d.Name()
		}
		title = fmt.Sprintf(" %s %s (%.1f, %.1f) yaw %.0f ", slot, device, centre.X, centre.Z, p.Yaw())
	}
	putText(scr, x0, 0, x0+width, truncate(title, width), slotStyles[int(slot)-1])
}

func wallAt(lvl *game.Level, x, z float64) bool {
	for _, w := range lvl.Walls {
		if x >= w.X && x < w.X+w.W && z >= w.Z && z < w.Z+w.D {
			return true
		}
	}
	return false
}

func triggerAt(lvl *game.Level, x, z float64) bool {
	for _, t := range lvl.Triggers {
		if x >= t.X && x < t.X+t.W && z >= t.Z && z < t.Z+t.D {
			return true
		}
	}
	return false
}
