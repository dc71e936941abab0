package doctor

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hangulfun/audio"
)

func writeSong(t *testing.T, lyrics string) string {
	t.Helper()
	dir := t.TempDir()
	song := filepath.Join(dir, "beep.wav")
	if err := audio.DefaultTone.WriteWAV(song); err != nil {
		t.Fatal(err)
	}
	if lyrics != "" {
		if err := os.WriteFile(filepath.Join(dir, "beep.lrc"), []byte(lyrics), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return song
}

func runDoctor(t *testing.T, song, answer string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := Run(context.Background(), Options{
		Backend:  "fake",
		Song:     song,
		In:       strings.NewReader(answer),
		Out:      &out,
		ToneWait: 10 * time.Millisecond,
	})
	return code, out.String()
}

func TestDoctorAllPass(t *testing.T) {
	song := writeSong(t, "[ti:삐]\n[ar:tester]\n[00:00.10]삐 beep\n[00:00.40]끝\n")
	code, out := runDoctor(t, song, "y\n")
	if code != 0 {
		t.Fatalf("exit code %d, output:\n%s", code, out)
	}
	for _, want := range []string{
		"[1/3]", "backend: fake",
		"[2/3]", "PASS: playback verified",
		"[3/3]", "lyrics: 2 lines, 0 skipped", "ti: 삐",
		"hangul: 2 of 6 letters",
		"All checks passed!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctorToneNotHeard(t *testing.T) {
	code, out := runDoctor(t, "", "n\n")
	if code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	if !strings.Contains(out, "FAIL: tone not confirmed") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "SKIP: no song given") {
		t.Errorf("song check should be skipped:\n%s", out)
	}
}

func TestDoctorMissingLyrics(t *testing.T) {
	code, out := runDoctor(t, writeSong(t, ""), "y\n")
	if code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	if !strings.Contains(out, "does not exist") {
		t.Errorf("output should name the missing lyric file:\n%s", out)
	}
}

func TestDoctorUnknownBackend(t *testing.T) {
	var out bytes.Buffer
	code := Run(context.Background(), Options{Backend: "alsa", In: strings.NewReader(""), Out: &out})
	if code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	if strings.Contains(out.String(), "[2/3]") {
		t.Errorf("tone check should not run without a backend:\n%s", out.String())
	}
}

func TestDoctorInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- Run(ctx, Options{Backend: "fake", In: in, Out: &out, ToneWait: time.Millisecond})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		if code != ExitInterrupted {
			t.Fatalf("exit code %d, want %d", code, ExitInterrupted)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("doctor did not stop after cancel")
	}
	if !strings.Contains(out.String(), "doctor interrupted") {
		t.Errorf("output missing interruption notice:\n%s", out.String())
	}
}
