package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hangulfun/audio"
	"hangulfun/config"
	"hangulfun/log"
	"hangulfun/player"
	"hangulfun/shutdown"
)

type playFlags struct {
	lrcPath    string
	noAlt      bool
	backend    string
	device     string
	setup      bool
	offset     time.Duration
	logPath    string
	configPath string
	script     bool
}

// resolveConfig loads the config file and lets explicitly set flags win.
func resolveConfig(cmd *cobra.Command, f playFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	fl := cmd.Flags()
	if fl.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fl.Changed("device") {
		cfg.Device = f.device
	}
	if fl.Changed("no-alt") {
		cfg.AltScreen = !f.noAlt
	}
	if fl.Changed("offset") {
		cfg.LyricsOffset = f.offset
	}
	if fl.Changed("logpath") {
		cfg.LogPath = f.logPath
	}
	return cfg, cfg.Validate()
}

func runPlay(cmd *cobra.Command, audioPath string, f playFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	setupLogging(stderr, cfg.LogPath)
	defer log.Close()

	if f.setup {
		dev, err := audio.SelectDevice(cfg.Backend, cfg.Device)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Fprintf(stderr, "Warning: device selection failed: %v\n", err)
			fmt.Fprintln(stderr, "Falling back to default device")
		} else if dev != nil {
			cfg.Device = dev.ID
			if err := config.SaveDevice(f.configPath, dev.ID); err != nil {
				fmt.Fprintf(stderr, "Warning: could not save config: %v\n", err)
			}
		}
	}

	if _, err := os.Stat(audioPath); err != nil {
		return &player.AudioError{Op: "open", Path: audioPath, Err: err}
	}
	song := player.NewSong(audioPath)
	if f.lrcPath != "" {
		song.Lyrics = f.lrcPath
	}

	backend, err := audio.New(cfg.Backend, cfg.Device)
	if err != nil {
		return &player.AudioError{Op: "init", Err: err}
	}

	ctx, stop := shutdown.Context(cmd.Context())
	defer stop()

	ctrl := player.NewController(backend, player.Options{
		Rewind:       cfg.Rewind,
		TickInterval: cfg.TickInterval,
		LyricsOffset: cfg.LyricsOffset,
	})
	if err := ctrl.Start(ctx, song); err != nil {
		log.Errorf("play %s: %v", audioPath, err)
		return err
	}
	defer ctrl.Stop()

	if f.script {
		if err := runScript(ctrl, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return err
		}
		return ctrl.Stop()
	}

	prog := NewTUIProgram(newTUIModel(ctx, ctrl, cfg.TickInterval), cfg.AltScreen)
	go func() {
		<-ctx.Done()
		prog.Quit()
	}()
	final, err := prog.Run()
	if err != nil {
		log.Errorf("TUI error: %v", err)
		return err
	}
	if m, ok := final.(tuiModel); ok && m.err != nil {
		return m.err
	}
	return ctrl.Stop()
}
