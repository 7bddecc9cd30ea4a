// Command rec drives the recorder from a terminal: enumerate devices,
// start a capture session, stop it on Ctrl+C, a timer or a hotkey.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"loopmix/internal/audio"
	"loopmix/internal/logging"
	"loopmix/internal/session"

	"github.com/spf13/cobra"
)

var (
	version  = "0.1.0"
	logLevel string

	outDir     string
	modeName   string
	micDev     string
	speakerDev string
	duration   time.Duration
	stopKey    string
)

var rootCmd = &cobra.Command{
	Use:   "rec",
	Short: "Loopmix recorder CLI",
	Long:  `Capture system loopback audio, the microphone, or both mixed into one WAV.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init("text", logLevel, nil)
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := audio.NewEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		devs, err := engine.Devices()
		if err != nil {
			return err
		}
		printEndpoints("Render (loopback capture)", devs.Render)
		printEndpoints("Capture (microphone)", devs.Capture)
		return nil
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record to a WAV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := session.ParseMode(modeName)
		if err != nil {
			return err
		}

		engine, err := audio.NewEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		manager := session.NewManager(engine, logging.L("session"))
		path, err := manager.Start(mode, session.Options{
			SaveDir:         outDir,
			MicDeviceID:     micDev,
			SpeakerDeviceID: speakerDev,
		})
		if err != nil {
			return err
		}
		fmt.Printf("recording (%s) to %s\n", mode, path)

		stop := make(chan struct{})
		fire := once(func() { close(stop) })

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		go func() {
			<-sigCh
			fire()
		}()

		if duration > 0 {
			time.AfterFunc(duration, fire)
		}
		if strings.TrimSpace(stopKey) != "" {
			unregister, err := registerHotkey(stopKey, fire)
			if err != nil {
				fmt.Fprintf(os.Stderr, "hotkey %q not registered: %v\n", stopKey, err)
			} else {
				defer unregister()
			}
		}

		<-stop
		info, err := manager.Stop(mode)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%.1fs)\n", info.Path, info.Duration().Seconds())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rec v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	recordCmd.Flags().StringVar(&modeName, "mode", "mixed", "capture mode: loopback, mic or mixed")
	recordCmd.Flags().StringVar(&outDir, "out-dir", "./recordings", "output directory")
	recordCmd.Flags().StringVar(&micDev, "mic-device", "", "microphone endpoint id (default: system default)")
	recordCmd.Flags().StringVar(&speakerDev, "speaker-device", "", "render endpoint id for loopback (default: system default)")
	recordCmd.Flags().DurationVar(&duration, "dur", 0, "record duration (e.g. 5s, 2m); 0 = stop manually")
	recordCmd.Flags().StringVar(&stopKey, "stop-key", "", "hotkey chord to stop, e.g. 'ctrl+shift+9'")

	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printEndpoints(title string, eps []audio.Endpoint) {
	fmt.Println(title + ":")
	if len(eps) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, ep := range eps {
		marker := " "
		if ep.IsDefault {
			marker = "*"
		}
		fmt.Printf("  %s %-40s %dch %dHz  id=%s\n", marker, ep.Name, ep.Channels, ep.SampleRate, ep.ID)
	}
}

// once wraps f so repeated stop triggers collapse into one.
func once(f func()) func() {
	done := make(chan struct{}, 1)
	return func() {
		select {
		case done <- struct{}{}:
			f()
		default:
		}
	}
}
