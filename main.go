// Package main provides the entry point for the Proofmark application.
package main

import (
	"os"

	"fyne.io/fyne/v2/app"

	"proofmark/internal/config"
	"proofmark/internal/editor"
	"proofmark/internal/history"
	"proofmark/internal/logging"
	"proofmark/internal/measure"
	"proofmark/internal/persist"
	"proofmark/internal/persist/memory"
	"proofmark/internal/persist/sqlite"
	"proofmark/internal/render"
	"proofmark/internal/scene"
	"proofmark/ui/mainwindow"
)

const appVersion = "0.1.0"

func main() {
	if err := config.Load("."); err != nil {
		// Config errors are fatal before the logger exists
		panic(err)
	}

	log := logging.New(config.GetString("logLevel"))
	log.Info().Str("version", appVersion).Msg("starting proofmark")

	var adapter persist.Adapter
	switch config.GetString("storage.type") {
	case "memory":
		adapter = memory.New()
	default:
		var err error
		adapter, err = sqlite.Open(config.GetString("storage.path"), config.GetString("storage.project"))
		if err != nil {
			log.Fatal().Err(err).Msg("open storage")
		}
	}
	defer adapter.Close()

	store := scene.NewStore()
	hist := history.New(config.GetInt("history.depth"))
	scale := measure.NewScale(config.GetFloat64("canvas.pxPerInch"))
	author := editor.Author{
		ID:   config.GetString("author.id"),
		Name: config.GetString("author.name"),
	}

	ed := editor.New(store, hist, scale, adapter, author, config.GetFloat64("canvas.strokeWidth"), log)
	pipeline := render.New(store, scale)

	// Load whatever the backend already holds for this project
	if err := ed.Refresh(); err != nil {
		log.Error().Err(err).Msg("initial scene load failed")
	}

	fyneApp := app.NewWithID("io.proofmark.app")
	win := mainwindow.New(fyneApp, store, ed, pipeline, scale, adapter, log)

	if len(os.Args) > 1 {
		log.Warn().Strs("args", os.Args[1:]).Msg("ignoring extra arguments")
	}

	win.ShowAndRun()
}
