// Package config persists user preferences as a JSON file next to the
// application data.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Settings holds configurable recorder preferences.
type Settings struct {
	SavePath string `json:"save_path"`
	// Device selection; empty means the system default.
	MicDeviceID     string `json:"mic_device_id"`
	SpeakerDeviceID string `json:"speaker_device_id"`
	// LastFormat is the post-capture target format ("wav" keeps the
	// capture file as is).
	LastFormat   string `json:"last_format"`
	DatabasePath string `json:"database_path"`
	LogLevel     string `json:"log_level"`
	LogFile      string `json:"log_file"`
}

type Store struct {
	mu       sync.RWMutex
	path     string
	settings Settings
}

// NewStore initialises the store and loads from disk or defaults.
func NewStore(configPath string) (*Store, error) {
	store := &Store{path: configPath}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func defaults() Settings {
	return Settings{
		SavePath:     "./recordings",
		LastFormat:   "wav",
		DatabasePath: "./data/loopmix.db",
		LogLevel:     "info",
	}
}

// load reads settings from disk. If not found, sets defaults and
// ensures the directory exists for the first save.
func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("settings path not set")
	}
	if _, err := os.Stat(s.path); err != nil {
		s.settings = defaults()
		_ = os.MkdirAll(filepath.Dir(s.path), 0755)
		return nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var cfg Settings
	if err := json.Unmarshal(b, &cfg); err != nil {
		return err
	}
	s.settings = applyDefaults(cfg)
	return nil
}

func applyDefaults(cfg Settings) Settings {
	if cfg.SavePath == "" {
		cfg.SavePath = "./recordings"
	}
	if cfg.LastFormat == "" {
		cfg.LastFormat = "wav"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./data/loopmix.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

// Save persists the settings to disk, creating parent directories as
// needed.
func (s *Store) Save(newSettings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newSettings = applyDefaults(newSettings)
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(newSettings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0644); err != nil {
		return err
	}
	s.settings = newSettings
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}
