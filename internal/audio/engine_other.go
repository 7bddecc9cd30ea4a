//go:build !windows

package audio

// NewEngine fails fast off-Windows. The capture pipeline relies on
// WASAPI loopback semantics, so this is a precondition, not a
// recoverable error.
func NewEngine() (Engine, error) {
	return nil, ErrUnsupportedPlatform
}
