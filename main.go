package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hangulfun/audio"
	"hangulfun/doctor"
	"hangulfun/log"
	"hangulfun/shutdown"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hangulfun",
		Short:         "Learn Korean by stepping through song lyrics",
		Long:          "hangulfun plays a song with its .lrc lyrics and breaks every Hangul syllable into its letters.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPlayCmd(),
		newDecodeCmd(),
		newDevicesCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return root
}

func newPlayCmd() *cobra.Command {
	var f playFlags
	cmd := &cobra.Command{
		Use:   "play <audio>",
		Short: "Play a song and follow its lyrics",
		Long: `Play an audio file (.mp3, .wav, .ogg, .flac) with the lyric file that sits
next to it under the same name with an .lrc extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.lrcPath, "lrc", "", "lyric file (default: <audio>.lrc)")
	fl.BoolVar(&f.noAlt, "no-alt", false, "do not use the terminal's alternate screen")
	fl.StringVar(&f.backend, "backend", "auto", "audio backend: auto, "+strings.Join(audio.Names(), ", "))
	fl.StringVar(&f.device, "device", "", "output device ID (see 'hangulfun devices')")
	fl.BoolVar(&f.setup, "setup", false, "pick an output device and remember it")
	fl.DurationVar(&f.offset, "offset", 0, "show lyrics earlier (positive) or later (negative), e.g. 300ms")
	fl.StringVar(&f.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fl.StringVar(&f.configPath, "config", "", "config file (default: <user config dir>/hangulfun/config.yaml)")
	fl.BoolVar(&f.script, "script", false, "headless mode: read commands from stdin")
	fl.MarkHidden("script")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "decode <string>...",
		Short:   "Show the jamo and romanization of a string",
		Example: "  hangulfun decode 밥을 먹어요",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}
}

func newDevicesCmd() *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio output devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listDevices(cmd.OutOrStdout(), backend)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "auto", "audio backend")
	return cmd
}

func listDevices(w io.Writer, backend string) error {
	devices, err := audio.Devices(backend)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return audio.ErrNoDevice
	}
	for _, d := range devices {
		suffix := ""
		if audio.IsBluetooth(d.Name) {
			suffix = "  (BT! lyrics may lag)"
		}
		if d.ID != "" && d.ID != d.Name {
			fmt.Fprintf(w, "%s\t%s%s\n", d.ID, d.Name, suffix)
		} else {
			fmt.Fprintf(w, "%s%s\n", d.Name, suffix)
		}
	}
	return nil
}

func newDoctorCmd() *cobra.Command {
	var backend, device string
	cmd := &cobra.Command{
		Use:   "doctor [song]",
		Short: "Run interactive playback diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := doctor.Options{Backend: backend, Device: device, In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			if len(args) > 0 {
				opts.Song = args[0]
			}
			ctx, stop := shutdown.Context(cmd.Context())
			defer stop()
			switch doctor.Run(ctx, opts) {
			case 0:
				return nil
			case doctor.ExitInterrupted:
				return fmt.Errorf("doctor: interrupted")
			default:
				return fmt.Errorf("doctor: checks failed")
			}
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "auto", "audio backend")
	cmd.Flags().StringVar(&device, "device", "", "output device ID")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hangulfun %s\n", version)
		},
	}
}

// setupLogging resolves the log directory and routes crash output next to
// the diagnostics log. Failures only cost diagnostics, never playback.
func setupLogging(w io.Writer, logPath string) {
	dir, err := log.ResolveDir(logPath)
	if err != nil {
		fmt.Fprintf(w, "Warning: failed to resolve log directory: %v\n", err)
		return
	}
	log.SetDir(dir)
	if err := log.Init(); err != nil {
		fmt.Fprintf(w, "Warning: could not init logging: %v\n", err)
		return
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}
}
