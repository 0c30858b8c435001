package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Garsondee/Twin-Sight/internal/game"
	"github.com/gdamore/tcell/v2"
)

func main() {
	var orientation string
	var pads int
	flag.StringVar(&orientation, "orientation", "vertical", "split orientation: vertical or horizontal")
	flag.IntVar(&pads, "pads", 2, "virtual pads connected at start")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	o, err := game.ParseOrientation(orientation)
	if err != nil {
		logger.Error("bad orientation", "err", err)
		os.Exit(2)
	}
	cfg, err := game.LoadConfig()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	sim, err := game.NewCoopSim(
		game.WithConfig(cfg),
		game.WithOrientation(o),
		game.WithPads(pads),
		game.WithLevelSize(40, 40),
		game.WithWall(8, 14, 10, 1),
		game.WithWall(22, 14, 10, 1),
		game.WithWall(19, 20, 2, 8),
		game.WithTrigger("north-gate", 17, 36, 6, 2, "yard"),
		game.WithScene("yard", buildYard),
		game.WithPlayer(game.Slot1, 16, 6, 0),
		game.WithPlayer(game.Slot2, 24, 6, 0),
	)
	if err != nil {
		logger.Error("create sim", "err", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Error("create screen", "err", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		logger.Error("init screen", "err", err)
		os.Exit(1)
	}
	defer screen.Fini()

	run(NewMonitor(sim, screen))
}

// buildYard is the level behind the north gate; its south gate leads back.
func buildYard() (*game.Scene, error) {
	s := game.NewScene("yard", 30, 24)
	s.Level.AddWall(game.Wall{X: 6, Z: 10, W: 6, D: 1, Height: 2})
	s.Level.AddWall(game.Wall{X: 18, Z: 10, W: 6, D: 1, Height: 2})
	s.Level.AddTrigger(game.TriggerZone{Name: "south-gate", X: 12, Z: 1, W: 6, D: 1.5, Next: "sim"})
	s.Spawns = [2]game.Pose{{Position: game.Vec3{X: 13, Z: 5}}, {Position: game.Vec3{X: 17, Z: 5}}}
	return s, nil
}

// run drives the monitor at 60 frames per second until the user quits or
// the screen closes.
func run(m *Monitor) {
	eventCh := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := m.screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				m.screen.Sync()
			case *tcell.EventKey:
				if !m.HandleKey(ev) {
					return
				}
			}
		case <-ticker.C:
			m.Step()
			m.Draw()
		}
	}
}
