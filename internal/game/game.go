package game

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Game runs the two-player split-screen arena on Ebiten.
type Game struct {
	cfg      Config
	logger   *slog.Logger
	ctx      *Context
	platform *EbitenPlatform
	split    *SplitScreen
	events   *EventLog
	fade     *FadeOutCamera
	mixer    *SpatialMixer

	transitions *SceneTransitions

	width, height int
	showHUD       bool
	prevKeys      map[ebiten.Key]bool
	notice        string
	noticeUntil   time.Time
}

// New builds the arena, installs the split screen and spawns both players.
// Walking into a level exit moves both players to the other level.
func New(cfg Config, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Game{
		cfg:      cfg,
		logger:   logger,
		platform: NewEbitenPlatform(),
		events:   NewEventLog(),
		width:    cfg.WindowWidth,
		height:   cfg.WindowHeight,
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
	}

	scene, err := buildArena()
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	var cams [2]*Camera
	for i, slot := range Slots {
		cam := NewCamera(fmt.Sprintf("Camera %s", slot))
		cam.FieldOfView = cfg.FieldOfView
		cams[i] = scene.AddCamera(cam)
		scene.AttachListener(cam)
	}

	diag := MultiSink{g.events, SlogSink{Logger: logger}}
	g.ctx = NewContext(cfg, g.platform, scene, diag)
	g.ctx.SetLightCuller(NewLightCuller(g.ctx))
	g.fade, _ = AttachFadeOutCamera(g.ctx)
	g.transitions = NewSceneTransitions(g.ctx, cfg.TransitionFade)
	g.transitions.Register("arena", buildArena)
	g.transitions.Register("annex", buildAnnex)

	g.mixer = NewSpatialMixer(scene)
	g.ctx.SetSpatialMixer(g.mixer)

	split, err := g.ctx.InstallSplitScreen(cams[0], cams[1])
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	g.split = split

	for i, slot := range Slots {
		sp := scene.Spawns[i]
		if _, err := g.ctx.SpawnPlayer(fmt.Sprintf("Player %d", i+1), slot, sp.Position, sp.Yaw); err != nil {
			return nil, fmt.Errorf("new game: %w", err)
		}
	}
	return g, nil
}

// StartAudio opens the speaker and plays the spatial mix.
func (g *Game) StartAudio() error { return g.mixer.Play() }

// Close releases audio.
func (g *Game) Close() { g.mixer.Close() }

type toneSource struct {
	name string
	pos  Vec3
	freq float64
}

func addTones(s *Scene, tones []toneSource) error {
	for _, ts := range tones {
		e, err := NewToneEmitter(ts.name, ts.pos, 14, ts.freq)
		if err != nil {
			return err
		}
		e.Gain = 0.15
		s.Emitters = append(s.Emitters, e)
	}
	return nil
}

// buildArena is the starting level: cover walls, lamps, an overview camera
// the split screen takes over, and an exit to the annex at the north end.
func buildArena() (*Scene, error) {
	s := NewScene("arena", 48, 48)
	for _, w := range []Wall{
		{X: 10, Z: 14, W: 8, D: 1, Height: 2},
		{X: 30, Z: 14, W: 8, D: 1, Height: 2},
		{X: 23, Z: 20, W: 2, D: 8, Height: 3},
		{X: 10, Z: 34, W: 1, D: 8, Height: 2},
		{X: 37, Z: 34, W: 1, D: 8, Height: 2},
	} {
		s.Level.AddWall(w)
	}
	s.Level.AddTrigger(TriggerZone{Name: "arena-exit", X: 21, Z: 45, W: 6, D: 2, Next: "annex"})
	s.AddLight(&Light{Name: "sun", Kind: LightDirectional, Intensity: 0.6, Color: color.RGBA{R: 255, G: 244, B: 220, A: 255}, Enabled: true})
	warm := color.RGBA{R: 255, G: 190, B: 90, A: 255}
	cold := color.RGBA{R: 120, G: 180, B: 255, A: 255}
	for i, p := range []Vec3{{X: 6, Y: 3, Z: 6}, {X: 42, Y: 3, Z: 6}, {X: 6, Y: 3, Z: 42}, {X: 42, Y: 3, Z: 42}} {
		s.AddLight(&Light{Name: fmt.Sprintf("lamp-%d", i), Kind: LightPoint, Position: p, Range: 10, Intensity: 1, Color: warm, Enabled: true})
	}
	for i, p := range []Vec3{{X: 24, Y: 5, Z: 12}, {X: 24, Y: 5, Z: 36}} {
		s.AddLight(&Light{Name: fmt.Sprintf("beam-%d", i), Kind: LightSpot, Position: p, Range: 12, Intensity: 2, Color: cold, Enabled: true})
	}

	overview := s.AddCamera(NewCamera("Overview"))
	overview.Primary = true
	s.AttachListener(overview)
	s.FollowControllers = append(s.FollowControllers, NewOverviewCamera(overview, Vec3{X: 24, Z: 24}))

	s.Spawns = [2]Pose{{Position: Vec3{X: 20, Z: 6}}, {Position: Vec3{X: 28, Z: 6}}}
	if err := addTones(s, []toneSource{
		{"hum-west", Vec3{X: 8, Y: 1, Z: 24}, 110},
		{"hum-east", Vec3{X: 40, Y: 1, Z: 24}, 165},
	}); err != nil {
		return nil, fmt.Errorf("build arena: %w", err)
	}
	return s, nil
}

// buildAnnex is a narrow second level with a way back to the arena.
func buildAnnex() (*Scene, error) {
	s := NewScene("annex", 24, 32)
	s.Background = color.RGBA{R: 14, G: 10, B: 18, A: 255}
	for _, w := range []Wall{
		{X: 4, Z: 10, W: 7, D: 1, Height: 2},
		{X: 13, Z: 10, W: 7, D: 1, Height: 2},
		{X: 11, Z: 18, W: 2, D: 6, Height: 3},
	} {
		s.Level.AddWall(w)
	}
	s.Level.AddTrigger(TriggerZone{Name: "annex-exit", X: 9, Z: 1, W: 6, D: 1.5, Next: "arena"})
	violet := color.RGBA{R: 190, G: 120, B: 255, A: 255}
	for i, p := range []Vec3{{X: 4, Y: 3, Z: 26}, {X: 20, Y: 3, Z: 26}, {X: 12, Y: 4, Z: 14}} {
		s.AddLight(&Light{Name: fmt.Sprintf("annex-lamp-%d", i), Kind: LightPoint, Position: p, Range: 9, Intensity: 1, Color: violet, Enabled: true})
	}
	s.Spawns = [2]Pose{{Position: Vec3{X: 10, Z: 5}}, {Position: Vec3{X: 14, Z: 5}}}
	if err := addTones(s, []toneSource{{"drone", Vec3{X: 12, Y: 1, Z: 28}, 82.5}}); err != nil {
		return nil, fmt.Errorf("build annex: %w", err)
	}
	return s, nil
}

func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}
	connected, disconnected := g.platform.Poll()
	g.ctx.Registry.HandleHotPlug(connected, disconnected)
	g.ctx.Tick(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

// keyPressed reports a key going down this frame.
func (g *Game) keyPressed(k ebiten.Key, current map[ebiten.Key]bool) bool {
	current[k] = ebiten.IsKeyPressed(k)
	return current[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() error {
	current := map[ebiten.Key]bool{}
	defer func() { g.prevKeys = current }()

	if g.keyPressed(ebiten.KeyEscape, current) {
		return ebiten.Termination
	}
	if g.keyPressed(ebiten.KeyH, current) {
		g.showHUD = !g.showHUD
	}
	if g.keyPressed(ebiten.KeyF5, current) {
		results := g.ctx.Registry.ForceReassignment()
		g.setNotice(fmt.Sprintf("reassigned %d player(s)", len(results)))
	}
	if g.keyPressed(ebiten.KeyF8, current) {
		cp := g.transitions.SaveCheckpoint()
		g.setNotice(fmt.Sprintf("checkpoint saved in %s", cp.Scene))
	}
	if g.keyPressed(ebiten.KeyF9, current) {
		if err := g.transitions.LoadLastCheckpoint(); err != nil {
			g.setNotice(err.Error())
		}
	}
	if g.keyPressed(ebiten.KeyF3, current) {
		if err := copyToClipboard(g.statusReport()); err != nil {
			g.logger.Warn("copy status", "err", err)
			g.setNotice("clipboard unavailable")
		} else {
			g.setNotice("status copied")
		}
	}
	return nil
}

// statusReport is the registry status followed by the buffered event log.
func (g *Game) statusReport() string {
	var sb strings.Builder
	sb.WriteString(g.ctx.Registry.StatusInfo())
	sb.WriteByte('\n')
	for _, d := range g.events.Recent() {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *Game) setNotice(msg string) {
	g.notice = msg
	g.noticeUntil = time.Now().Add(2 * time.Second)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})
	for _, cam := range g.split.Cameras() {
		renderCamera(screen, g.ctx.Scene, cam, g.fade)
	}
	strokeDivider(screen, g.split.Divider())
	if a := g.transitions.Fade(); a > 0 {
		vector.FillRect(screen, 0, 0, float32(g.width), float32(g.height), color.RGBA{A: uint8(a * 255)}, false)
	}
	g.drawPlayerLabels(screen)
	if g.showHUD {
		g.drawHUD(screen)
	}
	g.events.Draw(screen, g.height)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Run starts the Ebiten loop and returns nil on a normal quit.
func Run(g *Game) error {
	ebiten.SetWindowTitle("Twin Sight")
	ebiten.SetWindowSize(g.width, g.height)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
