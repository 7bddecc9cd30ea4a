// Package session owns the capture lifecycle: it binds sources, wires
// the mix pipeline into the WAV sink and enforces the one-active-
// session-per-mode rule.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"loopmix/internal/audio"
	"loopmix/internal/mix"
	"loopmix/internal/wav"
)

// Mode selects which streams a session captures.
type Mode string

const (
	ModeLoopback Mode = "loopback"
	ModeMic      Mode = "mic"
	ModeMixed    Mode = "mixed"
)

// ParseMode validates a mode string from the UI or CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLoopback, ModeMic, ModeMixed:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown capture mode %q", s)
}

// Prefix is the output filename prefix for the mode.
func (m Mode) Prefix() string {
	switch m {
	case ModeLoopback:
		return "Loopback"
	case ModeMic:
		return "Mic"
	default:
		return "Recording"
	}
}

var (
	// ErrAlreadyActive guards against a second session in a mode that
	// is already starting or active.
	ErrAlreadyActive = errors.New("a session of this mode is already active")
	// ErrNotActive is returned by Stop when the mode has no session.
	ErrNotActive = errors.New("no active session for this mode")
)

// Options configures one session start.
type Options struct {
	SaveDir         string
	MicDeviceID     string // "" selects the platform default
	SpeakerDeviceID string // "" selects the platform default
	// OnData, when set, receives each delivered frame tagged with its
	// source ("loopback" or "microphone"). Used for live level display.
	OnData func(source string, pcm []byte)
}

// Info describes a finished session.
type Info struct {
	ID            string
	Mode          Mode
	Path          string
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	DataBytes     uint32
	StartedAt     time.Time
	StoppedAt     time.Time
}

// Duration of the captured audio, derived from the written bytes.
func (i Info) Duration() time.Duration {
	bytesPerSec := int64(i.SampleRate) * int64(i.Channels) * int64(i.BitsPerSample) / 8
	if bytesPerSec == 0 {
		return 0
	}
	return time.Duration(int64(i.DataBytes) * int64(time.Second) / bytesPerSec)
}

const (
	sinkChannels  = 2
	sinkBitDepth  = 16
	fallbackRate  = 48000
	flushInterval = 500 * time.Millisecond
	// stopTimeout bounds how long Stop waits for the pumps before
	// forcing the session down.
	stopTimeout = 3 * time.Second
	// maxQueueBytes caps each mixer lane's backlog (~20s of 48kHz
	// stereo S16) so a stalled sink degrades to dropped audio.
	maxQueueBytes = 4 << 20
)

type sessionState int

const (
	stateStarting sessionState = iota
	stateActive
	stateStopping
)

type capture struct {
	id        string
	mode      Mode
	path      string
	rate      uint32
	state     sessionState
	sources   []audio.Source
	sink      *wav.Writer
	mixer     *mix.Mixer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startedAt time.Time
}

// Manager holds at most one session per mode. Modes are independent:
// starting one never blocks another.
type Manager struct {
	engine audio.Engine
	log    *slog.Logger

	mu     sync.Mutex
	active map[Mode]*capture
}

// NewManager wires a manager onto an audio engine.
func NewManager(engine audio.Engine, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		engine: engine,
		log:    log.With("component", "session"),
		active: make(map[Mode]*capture),
	}
}

// Active reports whether the mode currently has a running session.
func (m *Manager) Active(mode Mode) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.active[mode]
	return ok && c.state == stateActive
}

// Start opens the sources and sink for the mode and begins capture.
// It returns the resolved output path. Everything opened before a
// failure is torn down before the error is returned.
func (m *Manager) Start(mode Mode, opts Options) (string, error) {
	if opts.SaveDir == "" {
		opts.SaveDir = "."
	}
	if err := os.MkdirAll(opts.SaveDir, 0o755); err != nil {
		return "", fmt.Errorf("create save dir: %w", err)
	}

	c := &capture{
		id:        uuid.NewString(),
		mode:      mode,
		state:     stateStarting,
		startedAt: time.Now(),
	}
	m.mu.Lock()
	if _, exists := m.active[mode]; exists {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrAlreadyActive, mode)
	}
	m.active[mode] = c
	m.mu.Unlock()

	path, err := m.openPipeline(c, opts)
	if err != nil {
		m.mu.Lock()
		delete(m.active, mode)
		m.mu.Unlock()
		return "", err
	}

	m.mu.Lock()
	c.state = stateActive
	m.mu.Unlock()
	m.log.Info("session started",
		"session", c.id, "mode", mode, "path", path, "rate", c.rate)
	return path, nil
}

func (m *Manager) openPipeline(c *capture, opts Options) (string, error) {
	devs, err := m.engine.Devices()
	if err != nil {
		return "", fmt.Errorf("enumerate devices: %w", err)
	}

	needLoopback := c.mode == ModeLoopback || c.mode == ModeMixed
	needMic := c.mode == ModeMic || c.mode == ModeMixed

	var render, capt audio.Endpoint
	if needLoopback {
		render = resolveEndpoint(devs, audio.DirectionRender, opts.SpeakerDeviceID)
	}
	if needMic {
		capt = resolveEndpoint(devs, audio.DirectionCapture, opts.MicDeviceID)
	}

	// Shared clock: prefer the render endpoint's native rate, then the
	// capture endpoint's, then 48kHz.
	rate := render.SampleRate
	if rate == 0 {
		rate = capt.SampleRate
	}
	if rate == 0 {
		rate = fallbackRate
	}
	c.rate = rate

	c.path = OutputPath(opts.SaveDir, c.mode, time.Now())
	sink, err := wav.NewWriter(c.path, rate, sinkChannels, sinkBitDepth)
	if err != nil {
		return "", fmt.Errorf("open wav sink: %w", err)
	}
	c.sink = sink

	fail := func(err error) (string, error) {
		for _, s := range c.sources {
			s.Stop()
		}
		_ = sink.Close()
		return "", err
	}

	var loopSrc, micSrc audio.Source
	if needLoopback {
		loopSrc, err = m.openSource(render.ID, true, rate, render.Channels)
		if err != nil {
			return fail(fmt.Errorf("open loopback stream: %w", err))
		}
		c.sources = append(c.sources, loopSrc)
	}
	if needMic {
		micSrc, err = m.openSource(capt.ID, false, rate, capt.Channels)
		if err != nil {
			return fail(fmt.Errorf("open mic stream: %w", err))
		}
		c.sources = append(c.sources, micSrc)
	}
	for _, s := range c.sources {
		if err := s.Start(); err != nil {
			return fail(fmt.Errorf("start stream: %w", err))
		}
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	if c.mode == ModeMixed {
		c.mixer = mix.NewMixer(sink, maxQueueBytes, m.log)
		c.startPump(loopSrc, "loopback", opts.OnData, c.mixer.PushPrimary, true)
		c.startPump(micSrc, "microphone", opts.OnData, c.mixer.PushSecondary, false)
	} else {
		src, tag := loopSrc, "loopback"
		if c.mode == ModeMic {
			src, tag = micSrc, "microphone"
		}
		log := m.log
		c.startPump(src, tag, opts.OnData, func(b []byte) {
			if _, err := sink.Write(b); err != nil {
				log.Warn("buffer dropped", "session", c.id, "error", err)
			}
		}, true)
	}
	return c.path, nil
}

func (m *Manager) openSource(deviceID string, loopback bool, rate uint32, channels int) (audio.Source, error) {
	return m.engine.Open(audio.OpenSpec{
		DeviceID:   deviceID,
		Loopback:   loopback,
		SampleRate: rate,
		Channels:   uint32(channels),
	})
}

// startPump moves frames from a source to its destination, normalizing
// mono to stereo on the way. Only the pump that owns the sink path may
// flush, so sink writes stay single-threaded.
func (c *capture) startPump(src audio.Source, tag string, onData func(string, []byte), deliver func([]byte), flushes bool) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		channels := int(src.Format().Channels)
		var ticker *time.Ticker
		var tick <-chan time.Time
		if flushes {
			ticker = time.NewTicker(flushInterval)
			tick = ticker.C
			defer ticker.Stop()
		}
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-tick:
				_ = c.sink.Flush()
			case b, ok := <-src.Frames():
				if !ok {
					return
				}
				if len(b) == 0 {
					continue
				}
				frame := mix.UpmixMonoToStereo(b, channels)
				deliver(frame)
				if onData != nil {
					onData(tag, frame)
				}
			}
		}
	}()
}

// Stop halts the mode's session, finalizes the WAV and frees the mode
// slot. A mode with no active session returns ErrNotActive. Stop is
// bounded: pumps that fail to drain within three seconds are forced
// down rather than hanging the caller.
func (m *Manager) Stop(mode Mode) (*Info, error) {
	m.mu.Lock()
	c, ok := m.active[mode]
	if !ok || c.state != stateActive {
		m.mu.Unlock()
		return nil, ErrNotActive
	}
	c.state = stateStopping
	m.mu.Unlock()

	// Stopping the sources closes their frame channels; the pumps
	// drain what is left and exit.
	for _, s := range c.sources {
		s.Stop()
	}

	drained := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(stopTimeout):
		m.log.Warn("session drain timed out, forcing stop", "session", c.id)
	}
	c.cancel()

	if c.mixer != nil {
		c.mixer.Flush()
		if n := c.mixer.SecondaryDropped(); n > 0 {
			m.log.Warn("secondary backlog dropped", "session", c.id, "bytes", n)
		}
	}
	dataBytes := c.sink.DataSize()
	closeErr := c.sink.Close()

	m.mu.Lock()
	delete(m.active, mode)
	m.mu.Unlock()

	info := &Info{
		ID:            c.id,
		Mode:          mode,
		Path:          c.path,
		SampleRate:    c.rate,
		Channels:      sinkChannels,
		BitsPerSample: sinkBitDepth,
		DataBytes:     dataBytes,
		StartedAt:     c.startedAt,
		StoppedAt:     time.Now(),
	}
	if closeErr != nil {
		return info, fmt.Errorf("finalize wav: %w", closeErr)
	}
	m.log.Info("session stopped",
		"session", c.id, "mode", mode, "path", c.path, "bytes", dataBytes)
	return info, nil
}

// StopAll stops every active session, used at shutdown.
func (m *Manager) StopAll() {
	for _, mode := range []Mode{ModeLoopback, ModeMic, ModeMixed} {
		if _, err := m.Stop(mode); err != nil && !errors.Is(err, ErrNotActive) {
			m.log.Warn("stop failed", "mode", mode, "error", err)
		}
	}
}

// resolveEndpoint picks the explicit endpoint when an id is given,
// else the platform default, else a zero endpoint whose empty id lets
// the backend choose the system default.
func resolveEndpoint(devs audio.Devices, dir audio.Direction, id string) audio.Endpoint {
	if id != "" {
		if ep, ok := devs.Find(dir, id); ok {
			return ep
		}
		// Fall through: the backend reports ErrDeviceNotFound on open.
		return audio.Endpoint{ID: id, Direction: dir}
	}
	if ep, ok := devs.Default(dir); ok {
		return ep
	}
	return audio.Endpoint{Direction: dir}
}
