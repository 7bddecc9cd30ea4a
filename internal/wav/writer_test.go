package wav

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func readHeader(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	if len(b) < headerSize {
		t.Fatalf("file shorter than a WAV header: %d bytes", len(b))
	}
	return b
}

func TestWriterFinalizesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w, err := NewWriter(path, 48000, 2, 16)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}

	// 10 frames of 1920 stereo samples.
	frame := make([]byte, 1920*2*2)
	for i := 0; i < 10; i++ {
		if _, err := w.Write(frame); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	b := readHeader(t, path)
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint16(b[22:]); got != 2 {
		t.Errorf("expected 2 channels, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(b[24:]); got != 48000 {
		t.Errorf("expected 48000 Hz, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(b[34:]); got != 16 {
		t.Errorf("expected 16 bits per sample, got %d", got)
	}
	wantData := uint32(10 * 1920 * 2 * 2)
	if got := binary.LittleEndian.Uint32(b[40:]); got != wantData {
		t.Errorf("expected data size %d, got %d", wantData, got)
	}
	if got := binary.LittleEndian.Uint32(b[4:]); got != wantData+headerSize-8 {
		t.Errorf("expected chunk size %d, got %d", wantData+headerSize-8, got)
	}
	if int64(len(b)) != int64(headerSize+int(wantData)) {
		t.Errorf("expected file size %d, got %d", headerSize+int(wantData), len(b))
	}
}

func TestCloseWithoutWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	w, err := NewWriter(path, 16000, 1, 16)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close empty writer: %v", err)
	}

	b := readHeader(t, path)
	if got := binary.LittleEndian.Uint32(b[40:]); got != 0 {
		t.Errorf("expected zero data size, got %d", got)
	}
	if len(b) != headerSize {
		t.Errorf("expected header-only file, got %d bytes", len(b))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.wav")
	w, err := NewWriter(path, 48000, 2, 16)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if _, err := w.Write([]byte{0, 0}); err == nil {
		t.Fatal("write after close should fail")
	}
}

func TestRejectsUnsupportedDepth(t *testing.T) {
	if _, err := NewWriter(filepath.Join(t.TempDir(), "x.wav"), 48000, 2, 24); err == nil {
		t.Fatal("expected 24-bit open to fail")
	}
}
