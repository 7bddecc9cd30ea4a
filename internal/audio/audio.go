// Package audio abstracts the platform capture backend. The session
// layer works against Engine and Source; the only real implementation
// binds WASAPI through miniaudio and is Windows-only, matching the gate
// on every recorder entry point.
package audio

import "errors"

// Direction of an audio endpoint.
type Direction string

const (
	DirectionCapture Direction = "capture"
	DirectionRender  Direction = "render"
)

// Endpoint identifies one hardware device at enumeration time. Values
// are snapshots; nothing is cached across listing calls.
type Endpoint struct {
	ID         string    `json:"id"` // opaque backend id, "" selects the system default
	Name       string    `json:"name"`
	Direction  Direction `json:"direction"`
	Channels   int       `json:"channels"`
	SampleRate uint32    `json:"sampleRate"`
	IsDefault  bool      `json:"isDefault"`
}

// Devices holds one enumeration pass over both endpoint directions.
// Empty hardware yields empty slices, never an error.
type Devices struct {
	Capture []Endpoint `json:"capture"`
	Render  []Endpoint `json:"render"`
}

// Default returns the default endpoint of the given direction, if any.
func (d Devices) Default(dir Direction) (Endpoint, bool) {
	list := d.Capture
	if dir == DirectionRender {
		list = d.Render
	}
	for _, ep := range list {
		if ep.IsDefault {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// Find returns the endpoint with the given id in the given direction.
func (d Devices) Find(dir Direction, id string) (Endpoint, bool) {
	list := d.Capture
	if dir == DirectionRender {
		list = d.Render
	}
	for _, ep := range list {
		if ep.ID == id {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// Format is the negotiated stream format, fixed for a source's whole
// lifetime once Open returns.
type Format struct {
	SampleRate uint32
	Channels   uint32
}

// OpenSpec describes the stream to bind. Loopback selects capture of
// the signal played out of a render endpoint instead of mic input.
type OpenSpec struct {
	DeviceID   string
	Loopback   bool
	SampleRate uint32
	Channels   uint32
}

// DefaultFrameSize is the requested callback period in samples per
// channel: ~40ms at 48kHz and a multiple of common hardware quanta.
const DefaultFrameSize = 1920

// Source is an open capture stream. Frames are interleaved PCM S16LE
// buffers delivered through a bounded channel; the hardware callback
// never blocks on a slow consumer, it drops. The channel closes when
// the source stops.
type Source interface {
	// Start begins frame delivery. ErrAlreadyStreaming on a second call.
	Start() error
	// Stop halts delivery, releases the stream and closes Frames.
	// Idempotent, and safe to call on a source that never started.
	Stop()
	Frames() <-chan []byte
	Format() Format
}

// Backend is the capture capability of the platform audio subsystem,
// resolved once when the engine is created and cached.
type Backend int

const (
	// BackendLoopback supports capturing render endpoints directly.
	BackendLoopback Backend = iota
	// BackendDeviceCapture only supports plain input capture.
	BackendDeviceCapture
)

// Engine owns the backend context: device enumeration and stream
// binding. Enumeration is safe concurrently with open streams.
type Engine interface {
	Devices() (Devices, error)
	Open(spec OpenSpec) (Source, error)
	Backend() Backend
	Close()
}

var (
	// ErrUnsupportedPlatform gates every entry point off-Windows.
	ErrUnsupportedPlatform = errors.New("audio capture is only supported on windows")
	// ErrDeviceNotFound reports an endpoint id that no longer resolves.
	ErrDeviceNotFound = errors.New("audio device not found")
	// ErrAlreadyStreaming reports a second Start on an open source.
	ErrAlreadyStreaming = errors.New("source already streaming")
)

// StreamOpenError carries the native backend error text for a stream
// the platform refused to open.
type StreamOpenError struct {
	Native string
}

func (e *StreamOpenError) Error() string {
	return "stream open failed: " + e.Native
}
