package main

import (
	"io"
	"os"

	"github.com/Garsondee/Rail-Shooter/internal/config"
	"github.com/Garsondee/Rail-Shooter/internal/course"
	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/Garsondee/Rail-Shooter/internal/logging"
	"github.com/Garsondee/Rail-Shooter/internal/store"
	"github.com/Garsondee/Rail-Shooter/internal/telemetry"
	"github.com/Garsondee/Rail-Shooter/internal/viewer"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	boot := logging.New("info", os.Stdout)
	if err := config.Load("."); err != nil {
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	cfg, err := config.Get()
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to decode config")
	}

	var files []io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			boot.Fatal().Err(err).Str("path", cfg.LogFile).Msg("Failed to open log file")
		}
		defer f.Close()
		files = append(files, f)
	}
	log := logging.New(cfg.LogLevel, os.Stdout, files...)
	if file := config.ConfigFile(); file != "" {
		log.Info().Str("file", file).Msg("Loaded config")
	}

	db, err := store.Open(cfg.Store.Path, logging.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open settings database")
	}
	defer db.Close()

	settings, err := db.LoadSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	cfg.Aim.InvertY = settings.InvertY

	var rec game.Recorder
	if cfg.Telemetry.Enabled {
		counters, err := telemetry.New()
		if err != nil {
			log.Warn().Err(err).Msg("Telemetry disabled")
		} else {
			rec = counters
		}
	}

	c, err := course.LoadOrDefault(cfg.Course)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Course).Msg("Failed to load course")
	}
	log.Info().Str("course", c.Name).Int("rings", len(c.Rings)).
		Int("turrets", len(c.Turrets)).Int("saucers", len(c.Saucers)).Msg("Course ready")

	cam := viewer.NewCamera(cfg.Viewer.Width, cfg.Viewer.Height)
	session := c.NewSession(cfg.Session(), course.Tuning{Turret: cfg.Turret, Saucer: cfg.Saucer}, game.SessionDeps{
		Cameras:  cam,
		Recorder: rec,
		Log:      logging.Component(log, "game"),
	})

	g := viewer.New(viewer.Options{
		Session:  session,
		Camera:   cam,
		Course:   c.Name,
		Width:    cfg.Viewer.Width,
		Height:   cfg.Viewer.Height,
		Settings: db,
		Log:      logging.Component(log, "viewer"),
		OnRunEnd: func(sum game.RunSummary) {
			if _, err := db.RecordRun(c.Name, cfg.Seed, sum); err != nil {
				log.Error().Err(err).Msg("Failed to record run")
			}
		},
	})

	ebiten.SetWindowTitle(cfg.Viewer.Title)
	ebiten.SetWindowSize(g.Size())
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal().Err(err).Msg("Game loop exited")
	}
}
