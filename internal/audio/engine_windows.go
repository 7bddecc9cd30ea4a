//go:build windows

package audio

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/gen2brain/malgo"
)

// malgoEngine drives WASAPI through one shared miniaudio context.
type malgoEngine struct {
	ctx     *malgo.AllocatedContext
	backend Backend
	log     *slog.Logger
}

// NewEngine initializes the backend context. The loopback capability
// is resolved here once: WASAPI supports loopback capture on render
// endpoints, so the flag is cached rather than re-probed per open.
func NewEngine() (Engine, error) {
	log := slog.With("component", "audio")
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug("miniaudio", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return &malgoEngine{ctx: ctx, backend: BackendLoopback, log: log}, nil
}

func (e *malgoEngine) Backend() Backend { return e.backend }

func (e *malgoEngine) Close() {
	if e.ctx != nil {
		e.ctx.Uninit()
		e.ctx.Free()
		e.ctx = nil
	}
}

// Devices enumerates both directions fresh. Enumeration runs on the
// shared context and does not disturb open streams.
func (e *malgoEngine) Devices() (Devices, error) {
	var devs Devices
	capture, err := e.ctx.Devices(malgo.Capture)
	if err != nil {
		return Devices{}, fmt.Errorf("enumerate capture devices: %w", err)
	}
	for i := range capture {
		devs.Capture = append(devs.Capture, endpointFromInfo(&capture[i], DirectionCapture))
	}
	render, err := e.ctx.Devices(malgo.Playback)
	if err != nil {
		return Devices{}, fmt.Errorf("enumerate render devices: %w", err)
	}
	for i := range render {
		devs.Render = append(devs.Render, endpointFromInfo(&render[i], DirectionRender))
	}
	return devs, nil
}

func endpointFromInfo(d *malgo.DeviceInfo, dir Direction) Endpoint {
	ep := Endpoint{
		ID:        hex.EncodeToString(d.ID[:]),
		Name:      d.Name(),
		Direction: dir,
		IsDefault: d.IsDefault != 0,
	}
	if d.FormatCount > 0 {
		ep.Channels = int(d.Formats[0].Channels)
		ep.SampleRate = d.Formats[0].SampleRate
	}
	return ep
}

// Open binds a capture stream. Render endpoints are opened in loopback
// so the captured signal is what the device is playing, not mic input.
func (e *malgoEngine) Open(spec OpenSpec) (Source, error) {
	deviceType := malgo.Capture
	if spec.Loopback {
		if e.backend != BackendLoopback {
			return nil, &StreamOpenError{Native: "backend has no loopback support"}
		}
		deviceType = malgo.Loopback
	}

	channels := spec.Channels
	if channels == 0 {
		// Endpoint reported no usable channel count; request stereo.
		channels = 2
	}
	sampleRate := spec.SampleRate
	if sampleRate == 0 {
		sampleRate = 48000
	}

	cfg := malgo.DefaultDeviceConfig(deviceType)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = channels
	cfg.SampleRate = sampleRate
	cfg.PeriodSizeInFrames = DefaultFrameSize

	var devID malgo.DeviceID
	if spec.DeviceID != "" {
		idBytes, err := hex.DecodeString(spec.DeviceID)
		if err != nil || len(idBytes) > len(devID) {
			return nil, fmt.Errorf("%w: bad device id %q", ErrDeviceNotFound, spec.DeviceID)
		}
		dir := DirectionCapture
		if spec.Loopback {
			dir = DirectionRender
		}
		devs, err := e.Devices()
		if err != nil {
			return nil, err
		}
		if _, ok := devs.Find(dir, spec.DeviceID); !ok {
			return nil, fmt.Errorf("%w: %s endpoint %q", ErrDeviceNotFound, dir, spec.DeviceID)
		}
		copy(devID[:], idBytes)
		if spec.Loopback {
			cfg.Playback.DeviceID = devID.Pointer()
		} else {
			cfg.Capture.DeviceID = devID.Pointer()
		}
	}

	src := newCaptureSource(e.log)
	dev, err := malgo.InitDevice(e.ctx.Context, cfg, src.callbacks())
	if err != nil {
		return nil, &StreamOpenError{Native: err.Error()}
	}
	src.bind(dev, Format{
		SampleRate: dev.SampleRate(),
		Channels:   dev.CaptureChannels(),
	})
	return src, nil
}
