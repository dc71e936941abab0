//go:build integration

package test_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var testBinary string

// song is a two second tone with three timed lines next to it.
var song string

const lyrics = `[ti:integration]
[00:00.00]하나
[00:00.50]둘
[00:01.00]밥을 먹어요
`

func TestMain(m *testing.M) {
	testBinary = os.Getenv("HANGULFUN_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "HANGULFUN_TEST_BIN not set; run: go build -o /tmp/hangulfun . && HANGULFUN_TEST_BIN=/tmp/hangulfun go test -tags integration ./test")
		os.Exit(1)
	}

	dir, err := os.MkdirTemp("", "hangulfun-integration")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	song = filepath.Join(dir, "tone.wav")
	if err := generateToneWAV(song, 44100, 2.0); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate tone.wav: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(dir, "tone.lrc"), []byte(lyrics), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write tone.lrc: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// generateToneWAV writes a quiet 440Hz 16-bit stereo PCM file.
func generateToneWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numFrames := int(float64(sampleRate) * durationS)
	dataSize := numFrames * 4

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 2) // stereo
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*4))
	binary.LittleEndian.PutUint16(buf[32:34], 4)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i := 0; i < numFrames; i++ {
		v := int16(0.1 * math.MaxInt16 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		off := headerSize + i*4
		binary.LittleEndian.PutUint16(buf[off:], uint16(v))
		binary.LittleEndian.PutUint16(buf[off+2:], uint16(v))
	}
	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func run(stdin string, args ...string) (string, error) {
	cmd := exec.Command(testBinary, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runPlay runs a scripted session on the fake backend and returns its
// stdout and log directory.
func runPlay(t *testing.T, stdin string, args ...string) (out, logDir string) {
	t.Helper()
	logDir = t.TempDir()
	cmdArgs := append([]string{"play", song, "--backend", "fake", "--script", "--logpath", logDir}, args...)
	out, err := run(stdin, cmdArgs...)
	if err != nil {
		t.Fatalf("hangulfun exited with error: %v\noutput: %s", err, out)
	}
	return out, logDir
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

// --- Playback tests ---

func TestPlayState(t *testing.T) {
	out, _ := runPlay(t, cmds("STATE", "QUIT"))
	if want := "mode=playing line=0 cursor=0/0/0 following=true\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestPlaySeek(t *testing.T) {
	out, logDir := runPlay(t, cmds("DOWN", "DOWN", "NEXTWORD", "ENTER", "WAIT_SEEK", "STATE", "QUIT"))
	if !strings.Contains(out, "line=2 cursor=2/1/0 following=true") {
		t.Errorf("unexpected state after seek: %q", out)
	}
	diag := readLog(t, logDir, "diagnostics_log.txt")
	for _, want := range []string{"session_start", "seek_resolved", "session_end"} {
		if !strings.Contains(diag, want) {
			t.Errorf("expected %s in diagnostics", want)
		}
	}
}

func TestPlayPractice(t *testing.T) {
	_, logDir := runPlay(t, cmds("DOWN", "DOWN", "ENTER", "WAIT_SEEK", "QUIT"))
	practice := readLog(t, logDir, "practice_log.txt")
	if !strings.Contains(practice, "밥을") {
		t.Errorf("expected the seeked word in practice_log.txt, got %q", practice)
	}
}

func TestPlayToCompletion(t *testing.T) {
	out, logDir := runPlay(t, cmds("WAIT_END", "STATE"))
	if !strings.HasPrefix(out, "mode=stopped line=2") {
		t.Errorf("unexpected final state: %q", out)
	}
	if !strings.Contains(readLog(t, logDir, "diagnostics_log.txt"), "reason=finished") {
		t.Error("expected reason=finished in diagnostics")
	}
}

func TestPlayPauseResume(t *testing.T) {
	out, _ := runPlay(t, cmds("PAUSE", "STATE", "PAUSE", "STATE", "QUIT"))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "mode=paused") || !strings.HasPrefix(lines[1], "mode=playing") {
		t.Errorf("unexpected pause states: %q", out)
	}
}

func TestPlayMissingLyrics(t *testing.T) {
	dir := t.TempDir()
	bare := filepath.Join(dir, "bare.wav")
	if err := generateToneWAV(bare, 44100, 0.5); err != nil {
		t.Fatal(err)
	}
	out, err := run("", "play", bare, "--backend", "fake", "--script", "--logpath", t.TempDir())
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "LRC file does not exist") {
		t.Errorf("expected a lyrics error, got %q", out)
	}
}

// --- Decode tests ---

func TestDecode(t *testing.T) {
	out, err := run("", "decode", "밥을")
	if err != nil {
		t.Fatalf("decode failed: %v\noutput: %s", err, out)
	}
	for _, want := range []string{
		"ch=밥 (0xbc25) Syllables initial=ㅂ (0x1107) medial=ㅏ (0x1161) final=ㅂ (0x11b8)",
		"original length=6, decomposed length=18",
		"romanized: babeul",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := run("", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "hangulfun ") {
		t.Errorf("unexpected version output %q", out)
	}
}
