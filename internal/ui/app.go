// Package ui exposes the recorder to the Wails frontend.
package ui

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"loopmix/internal/audio"
	"loopmix/internal/config"
	"loopmix/internal/encode"
	"loopmix/internal/session"
	"loopmix/internal/store"

	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Result is what Start and Stop hand back to the frontend: either an
// output path or a user-presentable error string.
type Result struct {
	OK         bool   `json:"ok"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

func okResult(path string) Result { return Result{OK: true, OutputPath: path} }
func errResult(err error) Result  { return Result{Error: err.Error()} }

// App exposes methods to the Wails frontend.
type App struct {
	settings *config.Store
	manager  *session.Manager
	catalog  *store.DB
	log      *slog.Logger

	engine    audio.Engine
	engineErr error

	uiCtx context.Context
}

// NewApp wires the settings store, audio engine, session manager and
// recording catalog. On platforms without a capture backend the app
// still comes up so the catalog stays browsable; starting a session
// reports the platform error.
func NewApp(settingsPath string, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	settings, err := config.NewStore(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	cfg := settings.Get()
	if err := os.MkdirAll(cfg.SavePath, 0755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}

	catalog, err := store.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	app := &App{
		settings: settings,
		catalog:  catalog,
		log:      log.With("component", "ui"),
	}

	engine, err := audio.NewEngine()
	if err != nil {
		app.engineErr = err
		app.log.Warn("audio engine unavailable", "error", err)
		return app, nil
	}
	app.engine = engine
	app.manager = session.NewManager(engine, log)
	return app, nil
}

// SetUIContext stores the Wails runtime context for events and dialogs.
func (a *App) SetUIContext(ctx context.Context) { a.uiCtx = ctx }

// Shutdown stops any active sessions and releases the backend.
func (a *App) Shutdown() {
	if a.manager != nil {
		a.manager.StopAll()
	}
	if a.engine != nil {
		a.engine.Close()
	}
	if a.catalog != nil {
		_ = a.catalog.Close()
	}
}

// --- Settings API ---

func (a *App) GetSettings() config.Settings {
	return a.settings.Get()
}

func (a *App) SaveSettings(jsonStr string) (config.Settings, error) {
	var cfg config.Settings
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return config.Settings{}, err
	}
	if cfg.LastFormat != "" && !encode.Supported(cfg.LastFormat) {
		return config.Settings{}, fmt.Errorf("unsupported format %q", cfg.LastFormat)
	}
	if err := a.settings.Save(cfg); err != nil {
		return config.Settings{}, err
	}
	saved := a.settings.Get()
	if err := os.MkdirAll(saved.SavePath, 0755); err != nil {
		return config.Settings{}, err
	}
	return saved, nil
}

// --- Device API ---

// ListDevices enumerates capture and render endpoints. When a side
// comes back empty the frontend still gets one "Default" entry, so
// device pickers always have a selectable row.
func (a *App) ListDevices() (audio.Devices, error) {
	if a.engine == nil {
		return audio.Devices{}, a.engineErr
	}
	devs, err := a.engine.Devices()
	if err != nil {
		return audio.Devices{}, err
	}
	if len(devs.Capture) == 0 {
		devs.Capture = []audio.Endpoint{{
			Name: "Default", Direction: audio.DirectionCapture, IsDefault: true,
		}}
	}
	if len(devs.Render) == 0 {
		devs.Render = []audio.Endpoint{{
			Name: "Default", Direction: audio.DirectionRender, IsDefault: true,
		}}
	}
	return devs, nil
}

// --- Recording API ---

func (a *App) IsActive(mode string) bool {
	if a.manager == nil {
		return false
	}
	m, err := session.ParseMode(mode)
	if err != nil {
		return false
	}
	return a.manager.Active(m)
}

// Start begins capture in the given mode ("loopback", "mic", "mixed").
func (a *App) Start(mode string) Result {
	if a.manager == nil {
		return errResult(a.engineErr)
	}
	m, err := session.ParseMode(mode)
	if err != nil {
		return errResult(err)
	}
	cfg := a.settings.Get()
	path, err := a.manager.Start(m, session.Options{
		SaveDir:         cfg.SavePath,
		MicDeviceID:     cfg.MicDeviceID,
		SpeakerDeviceID: cfg.SpeakerDeviceID,
		OnData:          a.emitAudioData,
	})
	if err != nil {
		return errResult(err)
	}
	return okResult(path)
}

// Stop halts the mode's session, catalogs the recording and, when the
// configured format is not wav, transcodes the capture file.
func (a *App) Stop(mode string) Result {
	if a.manager == nil {
		return errResult(a.engineErr)
	}
	m, err := session.ParseMode(mode)
	if err != nil {
		return errResult(err)
	}
	info, err := a.manager.Stop(m)
	if err != nil {
		return errResult(err)
	}

	path, encodeErr := a.finishRecording(info)
	if encodeErr != nil {
		// The WAV is intact; report the transcode failure but keep
		// the session result usable.
		a.log.Warn("transcode failed", "path", info.Path, "error", encodeErr)
	}
	return okResult(path)
}

// finishRecording transcodes the capture when requested and inserts
// the catalog row. It returns the final audio path.
func (a *App) finishRecording(info *session.Info) (string, error) {
	cfg := a.settings.Get()
	path := info.Path
	format := "wav"

	var encodeErr error
	if cfg.LastFormat != "" && cfg.LastFormat != "wav" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		out, err := encode.Transcode(ctx, "", info.Path, cfg.LastFormat)
		if err != nil {
			encodeErr = err
		} else {
			os.Remove(info.Path)
			path = out
			format = cfg.LastFormat
		}
	}

	var fileSize int64
	if st, err := os.Stat(path); err == nil {
		fileSize = st.Size()
	}
	rec := &store.Recording{
		SessionID:     info.ID,
		Filename:      filepath.Base(path),
		FilePath:      path,
		FileSize:      fileSize,
		SampleRate:    int(info.SampleRate),
		Channels:      int(info.Channels),
		BitsPerSample: int(info.BitsPerSample),
		AudioFormat:   format,
		Mode:          string(info.Mode),
		DurationMs:    info.Duration().Milliseconds(),
	}
	if err := a.catalog.CreateRecording(rec); err != nil {
		a.log.Warn("catalog insert failed", "path", path, "error", err)
	}
	return path, encodeErr
}

// --- Catalog API ---

func (a *App) ListRecordings(limit, offset int, mode string) ([]*store.Recording, error) {
	return a.catalog.ListRecordings(limit, offset, mode)
}

func (a *App) DeleteRecording(id int) error {
	return a.catalog.DeleteRecording(id)
}

// --- UI helpers ---

// emitAudioData sends real-time audio frames to the frontend for
// level meters.
func (a *App) emitAudioData(source string, data []byte) {
	if a.uiCtx != nil {
		wruntime.EventsEmit(a.uiCtx, "audioData", map[string]interface{}{
			"source": source,
			"data":   data,
			"length": len(data),
		})
	}
}

// PickSaveDir opens a directory picker defaulting to the current save
// path.
func (a *App) PickSaveDir() (string, error) {
	if a.uiCtx == nil {
		return "", errors.New("ui not ready")
	}
	cfg := a.settings.Get()
	return wruntime.OpenDirectoryDialog(a.uiCtx, wruntime.OpenDialogOptions{
		Title:            "Choose save folder",
		DefaultDirectory: cfg.SavePath,
	})
}

// GetAudioDataURL returns a base64 data URL for the given recording
// so the frontend audio element can play it without a file server.
func (a *App) GetAudioDataURL(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("audio file not found: %s", path)
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	mime := "audio/wav"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		mime = "audio/mpeg"
	case ".flac":
		mime = "audio/flac"
	case ".ogg":
		mime = "audio/ogg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(fileData), nil
}
