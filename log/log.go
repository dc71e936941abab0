package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	diagFileName     = "diagnostics_log.txt"
	practiceFileName = "practice_log.txt"
	envLogPath       = "HANGULFUN_LOG_PATH"
)

var (
	diagLog      zerolog.Logger
	diagFile     *os.File
	practiceFile *os.File
	logMu        sync.Mutex
	logReady     bool
	pid          int
	dir          string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: --logpath flag (or log_path in the config file)
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: HANGULFUN_LOG_PATH environment variable
	if envPath := os.Getenv(envLogPath); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagFile, err = os.OpenFile(filepath.Join(dir, diagFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	practiceFile, err = os.OpenFile(filepath.Join(dir, practiceFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if practiceFile != nil {
		practiceFile.Close()
		practiceFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(song, backend string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("song", song).
		Str("backend", backend).
		Msg("session_start")
}

func LyricsLoaded(path string, lines, skipped int) {
	if !logReady {
		return
	}
	ev := diagLog.Info()
	if skipped > 0 {
		ev = diagLog.Warn()
	}
	ev.Str("path", path).
		Int("lines", lines).
		Int("skipped", skipped).
		Msg("lyrics_loaded")
}

func SeekIssued(id uint64, line int, pos time.Duration) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Uint64("id", id).
		Int("line", line).
		Dur("pos", pos).
		Msg("seek_issued")
}

func SeekResolved(id uint64, line int, pos time.Duration, current bool) {
	if !logReady {
		return
	}
	msg := "seek_resolved"
	if !current {
		msg = "seek_superseded"
	}
	diagLog.Info().
		Uint64("id", id).
		Int("line", line).
		Dur("pos", pos).
		Msg(msg)
}

func SessionEnd(reason string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("reason", reason).
		Msg("session_end")
}

// Practice appends a replayed lyric line to the practice log.
func Practice(song, text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, filepath.Base(song), text)
	practiceFile.WriteString(line)
}
