package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	got := store.Get()
	if got.SavePath != "./recordings" {
		t.Errorf("expected default save path, got %q", got.SavePath)
	}
	if got.LastFormat != "wav" {
		t.Errorf("expected wav default format, got %q", got.LastFormat)
	}
	if got.LogLevel != "info" {
		t.Errorf("expected info default level, got %q", got.LogLevel)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	in := Settings{
		SavePath:        "/tmp/captures",
		MicDeviceID:     "mic-7",
		SpeakerDeviceID: "spk-2",
		LastFormat:      "mp3",
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.Get()
	if got.SavePath != in.SavePath || got.MicDeviceID != in.MicDeviceID ||
		got.SpeakerDeviceID != in.SpeakerDeviceID || got.LastFormat != in.LastFormat {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.DatabasePath == "" {
		t.Error("empty database path should be defaulted on save")
	}
}

func TestCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Fatal("expected error for corrupt settings file")
	}
}
