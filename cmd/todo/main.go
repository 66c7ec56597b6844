package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"checklist/internal/config"
	"checklist/internal/storage"
	"checklist/internal/task"
	"checklist/internal/ui"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	configPath := flag.String("config", config.ResolveConfigPath(), "Path to config file (.toml or .yaml)")
	flag.Parse()

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging(cfg.LogPath)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	log.Printf("starting with config %s", *configPath)

	tasks := task.NewManager(task.WithDefaultPriority(cfg.Priority()))

	var journal ui.Journal
	if cfg.DBPath != "" {
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			fmt.Printf("failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		saved, err := store.FetchTasks()
		if err != nil {
			fmt.Printf("failed to load tasks: %v\n", err)
			os.Exit(1)
		}
		if err := tasks.Load(saved); err != nil {
			fmt.Printf("failed to load tasks: %v\n", err)
			os.Exit(1)
		}
		log.Printf("restored %d tasks from %s", len(saved), cfg.DBPath)
		journal = store
	}

	if err := ui.Run(tasks, journal, cfg); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends the standard logger to path. With no path, logs are
// dropped since the terminal belongs to the UI.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, config.AppName)
	if err != nil {
		return nil, err
	}
	return func() { f.Close() }, nil
}
