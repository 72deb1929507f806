package main

import (
	"fmt"
	"log/slog"
	"os"

	"dailytask/internal/config"
	"dailytask/internal/storage"
	"dailytask/internal/summarize"
	"dailytask/internal/ui"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelWarn)

	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DataDir, cfg.LegacyDir)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := summarize.New(cfg.APIBaseURL, cfg.Model, cfg.SystemPrompt)

	if err := ui.Run(store, client, cfg); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
