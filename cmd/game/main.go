package main

import (
	"log/slog"
	"os"

	"github.com/Garsondee/Twin-Sight/internal/game"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := game.LoadConfig()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	g, err := game.New(cfg, logger)
	if err != nil {
		logger.Error("create game", "err", err)
		os.Exit(1)
	}
	if cfg.Audio {
		if err := g.StartAudio(); err != nil {
			logger.Warn("audio disabled", "err", err)
		}
	}

	err = game.Run(g)
	g.Close()
	if err != nil {
		logger.Error("run", "err", err)
		os.Exit(1)
	}
}
