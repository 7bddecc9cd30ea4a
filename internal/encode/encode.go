// Package encode shells out to ffmpeg to convert finished WAV
// captures into smaller distribution formats.
package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Formats lists the supported transcode targets. "wav" means keep the
// capture file untouched.
var Formats = []string{"wav", "mp3", "flac", "ogg"}

// Supported reports whether format is a known transcode target.
func Supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// BuildFFmpegArgs builds the ffmpeg invocation for converting inPath
// to outPath. -y overwrites a stale previous output.
func BuildFFmpegArgs(inPath, outPath, format string) []string {
	args := []string{"-y", "-i", inPath}
	switch format {
	case "mp3":
		args = append(args, "-codec:a", "libmp3lame", "-b:a", "192k")
	case "ogg":
		args = append(args, "-codec:a", "libvorbis", "-q:a", "5")
	case "flac":
		args = append(args, "-codec:a", "flac")
	}
	return append(args, outPath)
}

// OutputPath returns the transcode target path: the input with its
// extension swapped for the format.
func OutputPath(inPath, format string) string {
	base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
	return base + "." + format
}

// Transcode converts the WAV at inPath to the requested format next
// to it and returns the new path. The input file is left in place for
// the caller to remove once it is happy with the result.
func Transcode(ctx context.Context, ffmpegBin, inPath, format string) (string, error) {
	if format == "" || format == "wav" {
		return inPath, nil
	}
	if !Supported(format) {
		return "", fmt.Errorf("unsupported format %q", format)
	}
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if _, err := os.Stat(inPath); err != nil {
		return "", fmt.Errorf("capture file missing: %w", err)
	}
	if _, err := exec.LookPath(ffmpegBin); err != nil {
		return "", fmt.Errorf("ffmpeg not available: %w", err)
	}

	outPath := OutputPath(inPath, format)
	args := BuildFFmpegArgs(inPath, outPath, format)

	cmd := exec.CommandContext(ctx, ffmpegBin, args...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf
	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg failed: %w: %s", err, stderrTail(stderrBuf.String()))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", errors.New("ffmpeg reported success but produced no output")
	}
	return outPath, nil
}

// stderrTail keeps the last few lines of ffmpeg's chatty stderr, which
// is where the actual error lands.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}
