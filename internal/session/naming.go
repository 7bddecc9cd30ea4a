package session

import (
	"path/filepath"
	"strings"
	"time"
)

// OutputPath builds the session's output file path inside dir:
// "<Prefix> <timestamp>.wav", where the timestamp is ISO 8601 with
// colons replaced by dashes and no sub-second part, so the name is
// valid on every filesystem.
func OutputPath(dir string, mode Mode, now time.Time) string {
	ts := strings.ReplaceAll(now.Format("2006-01-02T15:04:05"), ":", "-")
	return filepath.Join(dir, mode.Prefix()+" "+ts+".wav")
}
