package encode

import (
	"context"
	"reflect"
	"testing"
)

func TestBuildFFmpegArgs(t *testing.T) {
	cases := []struct {
		format string
		want   []string
	}{
		{"mp3", []string{"-y", "-i", "in.wav", "-codec:a", "libmp3lame", "-b:a", "192k", "out.mp3"}},
		{"ogg", []string{"-y", "-i", "in.wav", "-codec:a", "libvorbis", "-q:a", "5", "out.ogg"}},
		{"flac", []string{"-y", "-i", "in.wav", "-codec:a", "flac", "out.flac"}},
	}
	for _, c := range cases {
		got := BuildFFmpegArgs("in.wav", "out."+c.format, c.format)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s args = %v, want %v", c.format, got, c.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/out/Recording 2026-08-30T14-02-05.wav", "mp3")
	want := "/out/Recording 2026-08-30T14-02-05.mp3"
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestTranscodeWavIsNoop(t *testing.T) {
	got, err := Transcode(context.Background(), "", "/out/take.wav", "wav")
	if err != nil {
		t.Fatalf("wav passthrough should not error: %v", err)
	}
	if got != "/out/take.wav" {
		t.Errorf("expected input path back, got %q", got)
	}
}

func TestTranscodeRejectsUnknownFormat(t *testing.T) {
	if _, err := Transcode(context.Background(), "", "/out/take.wav", "aiff"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestTranscodeMissingInput(t *testing.T) {
	if _, err := Transcode(context.Background(), "", "/does/not/exist.wav", "mp3"); err == nil {
		t.Fatal("expected error for missing capture file")
	}
}

func TestSupported(t *testing.T) {
	for _, f := range []string{"wav", "mp3", "flac", "ogg"} {
		if !Supported(f) {
			t.Errorf("%s should be supported", f)
		}
	}
	if Supported("wma") {
		t.Error("wma should not be supported")
	}
}
