//go:build windows

package audio

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// frameChannelDepth bounds the hand-off between the hardware callback
// thread and the consumer; a full channel drops the frame rather than
// blocking the realtime thread.
const frameChannelDepth = 32

type captureSource struct {
	mu       sync.Mutex
	device   *malgo.Device
	format   Format
	frames   chan []byte
	started  bool
	stopOnce sync.Once
	dropped  atomic.Uint64
	log      *slog.Logger
}

func newCaptureSource(log *slog.Logger) *captureSource {
	return &captureSource{
		frames: make(chan []byte, frameChannelDepth),
		log:    log,
	}
}

// callbacks hand each hardware buffer to the frame channel. The data
// callback runs on the backend's realtime thread: copy, non-blocking
// send, return. Panics must never unwind into the backend.
func (s *captureSource) callbacks() malgo.DeviceCallbacks {
	return malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("capture callback panic, frame dropped", "panic", r)
				}
			}()
			if len(input) == 0 {
				return
			}
			b := make([]byte, len(input))
			copy(b, input)
			select {
			case s.frames <- b:
			default:
				s.dropped.Add(1)
			}
		},
	}
}

func (s *captureSource) bind(dev *malgo.Device, f Format) {
	s.device = dev
	s.format = f
}

func (s *captureSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStreaming
	}
	if err := s.device.Start(); err != nil {
		return &StreamOpenError{Native: err.Error()}
	}
	s.started = true
	return nil
}

func (s *captureSource) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		dev := s.device
		s.device = nil
		s.mu.Unlock()
		if dev != nil {
			_ = dev.Stop()
			dev.Uninit()
		}
		if n := s.dropped.Load(); n > 0 {
			s.log.Warn("frames dropped at capture hand-off", "count", n)
		}
		close(s.frames)
	})
}

func (s *captureSource) Frames() <-chan []byte { return s.frames }

func (s *captureSource) Format() Format { return s.format }
