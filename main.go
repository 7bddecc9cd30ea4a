package main

import (
	"context"
	"log"
	"os"

	webassets "loopmix/frontend"
	"loopmix/internal/logging"
	"loopmix/internal/ui"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

func main() {
	app, err := ui.NewApp("./config/settings.json", logging.L("app"))
	if err != nil {
		log.Fatalf("init app: %v", err)
	}

	cfg := app.GetSettings()
	if cfg.LogFile != "" {
		logging.Init("text", cfg.LogLevel, logging.FileWriter(cfg.LogFile))
	} else {
		logging.Init("text", cfg.LogLevel, nil)
	}

	err = wails.Run(&options.App{
		Title:            "Loopmix",
		Width:            1024,
		Height:           720,
		AssetServer:      &assetserver.Options{Assets: webassets.Assets},
		Logger:           logger.NewDefaultLogger(),
		BackgroundColour: &options.RGBA{R: 20, G: 20, B: 20, A: 1},
		OnStartup:        func(ctx context.Context) { app.SetUIContext(ctx) },
		OnShutdown:       func(ctx context.Context) { app.Shutdown() },
		Bind:             []interface{}{app},
	})
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}
