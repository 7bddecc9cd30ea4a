package store

import (
	"fmt"
	"path/filepath"
	"testing"
)

func testRecording(dir, name, mode string) *Recording {
	return &Recording{
		SessionID:     "11111111-2222-3333-4444-555555555555",
		Filename:      name,
		FilePath:      filepath.Join(dir, name),
		FileSize:      1024,
		SampleRate:    48000,
		Channels:      2,
		BitsPerSample: 16,
		AudioFormat:   "wav",
		Mode:          mode,
		DurationMs:    1500,
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := NewDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer database.Close()

	rec := testRecording(tmpDir, "Recording 2026-08-30T14-02-05.wav", "mixed")
	if err := database.CreateRecording(rec); err != nil {
		t.Fatalf("Failed to create recording: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("Recording ID should be set after creation")
	}

	retrieved, err := database.GetRecording(rec.ID)
	if err != nil {
		t.Fatalf("Failed to get recording: %v", err)
	}
	if retrieved.Filename != rec.Filename {
		t.Fatalf("Expected filename %s, got %s", rec.Filename, retrieved.Filename)
	}
	if retrieved.Mode != "mixed" || retrieved.SampleRate != 48000 {
		t.Fatalf("Round trip mismatch: %+v", retrieved)
	}
}

func TestListRecordingsFilterAndOrder(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := NewDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer database.Close()

	modes := []string{"loopback", "mic", "mixed", "loopback"}
	for i, mode := range modes {
		rec := testRecording(tmpDir, fmt.Sprintf("take_%d.wav", i), mode)
		if err := database.CreateRecording(rec); err != nil {
			t.Fatalf("Failed to create recording %d: %v", i, err)
		}
	}

	all, err := database.ListRecordings(0, 0, "")
	if err != nil {
		t.Fatalf("Failed to list recordings: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 recordings, got %d", len(all))
	}
	// Newest first.
	if all[0].Filename != "take_3.wav" {
		t.Fatalf("Expected newest recording first, got %s", all[0].Filename)
	}

	loopbacks, err := database.ListRecordings(0, 0, "loopback")
	if err != nil {
		t.Fatalf("Failed to list loopback recordings: %v", err)
	}
	if len(loopbacks) != 2 {
		t.Fatalf("Expected 2 loopback recordings, got %d", len(loopbacks))
	}

	page, err := database.ListRecordings(2, 1, "")
	if err != nil {
		t.Fatalf("Failed to page recordings: %v", err)
	}
	if len(page) != 2 || page[0].Filename != "take_2.wav" {
		t.Fatalf("Unexpected page contents: %+v", page)
	}
}

func TestUpdateRecordingFile(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := NewDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer database.Close()

	rec := testRecording(tmpDir, "take.wav", "mic")
	if err := database.CreateRecording(rec); err != nil {
		t.Fatalf("Failed to create recording: %v", err)
	}

	err = database.UpdateRecordingFile(rec.ID, "take.mp3", filepath.Join(tmpDir, "take.mp3"), "mp3", 512)
	if err != nil {
		t.Fatalf("Failed to update recording file: %v", err)
	}

	got, err := database.GetRecording(rec.ID)
	if err != nil {
		t.Fatalf("Failed to get recording: %v", err)
	}
	if got.AudioFormat != "mp3" || got.Filename != "take.mp3" || got.FileSize != 512 {
		t.Fatalf("Update not applied: %+v", got)
	}

	if err := database.UpdateRecordingFile(9999, "x", "x", "wav", 0); err == nil {
		t.Fatal("Expected error updating missing recording")
	}
}

func TestDeleteRecording(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := NewDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer database.Close()

	rec := testRecording(tmpDir, "take.wav", "mic")
	if err := database.CreateRecording(rec); err != nil {
		t.Fatalf("Failed to create recording: %v", err)
	}
	if err := database.DeleteRecording(rec.ID); err != nil {
		t.Fatalf("Failed to delete recording: %v", err)
	}
	if _, err := database.GetRecording(rec.ID); err == nil {
		t.Fatal("Expected error getting deleted recording")
	}
	if err := database.DeleteRecording(rec.ID); err == nil {
		t.Fatal("Expected error deleting missing recording")
	}
}
