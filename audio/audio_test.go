package audio

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func TestIsBluetooth(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"bluez_sink.AC_80_0A.a2dp_sink", true},
		{"Sony WH-1000XM4", true},
		{"Built-in Audio Analog Stereo", false},
		{"HDMI / DisplayPort", false},
	}
	for _, tt := range tests {
		if got := IsBluetooth(tt.name); got != tt.want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New("nope", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := Devices("nope"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewFakeBackend(t *testing.T) {
	b, err := New("fake", "")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "fake" {
		t.Errorf("name = %q", b.Name())
	}
	devs, err := Devices("fake")
	if err != nil || len(devs) != 1 {
		t.Fatalf("Devices(fake) = %v, %v", devs, err)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, _, err := Decode(filepath.Join(t.TempDir(), "song.aac"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, _, err := Decode(filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func writeTone(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := DefaultTone.WriteWAV(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestToneWAVDecodes(t *testing.T) {
	path := writeTone(t)
	format, n, err := Measure(path)
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != toneRate {
		t.Errorf("sample rate = %d, want %d", format.SampleRate, toneRate)
	}
	if want := toneRate.N(DefaultTone.Duration); n != want {
		t.Errorf("len = %d, want %d", n, want)
	}
}

func TestDeckPauseSeekEnd(t *testing.T) {
	d, err := openDeck(writeTone(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer d.close()

	buf := make([]float32, 2*4410) // 100ms at 44.1kHz

	// A new deck starts paused and yields silence without advancing.
	if _, ok := d.readFloat32(buf); !ok {
		t.Fatal("paused deck reported end")
	}
	if d.elapsed() != 0 {
		t.Fatalf("elapsed while paused = %v", d.elapsed())
	}
	for _, s := range buf {
		if s != 0 {
			t.Fatal("paused deck produced sound")
		}
	}

	d.setPaused(false)
	d.readFloat32(buf)
	if got := d.elapsed(); got != 100*time.Millisecond {
		t.Fatalf("elapsed = %v, want 100ms", got)
	}

	d.setPaused(true)
	d.readFloat32(buf)
	if got := d.elapsed(); got != 100*time.Millisecond {
		t.Fatalf("elapsed moved while paused: %v", got)
	}

	if err := d.seek(500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if got := d.elapsed(); got != 500*time.Millisecond {
		t.Fatalf("elapsed after seek = %v", got)
	}

	d.setPaused(false)
	for i := 0; i < 10; i++ {
		if _, ok := d.readFloat32(buf); !ok {
			break
		}
	}
	select {
	case <-d.done:
	default:
		t.Fatal("done not closed after reading past the end")
	}
	if _, err := d.Read(make([]byte, 64)); err != io.EOF {
		t.Errorf("Read after end = %v, want io.EOF", err)
	}
}

func TestDeckSeekClamps(t *testing.T) {
	d, err := openDeck(writeTone(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer d.close()

	if err := d.seek(time.Hour); err != nil {
		t.Fatal(err)
	}
	if got, want := d.elapsed(), d.length(); got != want {
		t.Errorf("elapsed = %v, want %v", got, want)
	}
	if err := d.seek(-time.Second); err != nil {
		t.Fatal(err)
	}
	if d.elapsed() != 0 {
		t.Errorf("elapsed = %v, want 0", d.elapsed())
	}
}

func TestDeckByteSeeker(t *testing.T) {
	d, err := openDeck(writeTone(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer d.close()

	off := int64(toneRate.N(200*time.Millisecond)) * 8
	got, err := d.Seek(off, io.SeekStart)
	if err != nil {
		t.Fatal(err)
	}
	if got != off {
		t.Errorf("Seek = %d, want %d", got, off)
	}
	if d.elapsed() != 200*time.Millisecond {
		t.Errorf("elapsed = %v", d.elapsed())
	}
	if _, err := d.Seek(0, io.SeekEnd); err == nil {
		t.Error("SeekEnd should be rejected")
	}
}

func TestFakeManualClock(t *testing.T) {
	f := NewFake(3*time.Second, false)
	if err := f.Open(""); err != nil {
		t.Fatal(err)
	}

	f.Advance(time.Second)
	if f.Elapsed() != 0 {
		t.Fatal("clock moved before Play")
	}

	f.Play()
	f.Advance(time.Second)
	f.Pause()
	f.Advance(time.Second)
	if got := f.Elapsed(); got != time.Second {
		t.Fatalf("elapsed = %v, want 1s", got)
	}

	f.Seek(2500 * time.Millisecond)
	f.Play()
	f.Advance(time.Second)
	select {
	case <-f.Done():
	default:
		t.Fatal("Done not closed at end")
	}
	if f.Elapsed() != 3*time.Second {
		t.Errorf("elapsed = %v, want clamp at length", f.Elapsed())
	}
}

func TestFakeRealtime(t *testing.T) {
	f := NewFake(0, true)
	f.Play()
	time.Sleep(30 * time.Millisecond)
	if f.Elapsed() < 20*time.Millisecond {
		t.Errorf("realtime clock did not advance: %v", f.Elapsed())
	}
	f.Pause()
	paused := f.Elapsed()
	time.Sleep(20 * time.Millisecond)
	if f.Elapsed() != paused {
		t.Error("realtime clock advanced while paused")
	}
}

func TestFakeOpenMissingFile(t *testing.T) {
	f := NewFake(0, false)
	if err := f.Open(filepath.Join(t.TempDir(), "nope.mp3")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFakeGatedSeek(t *testing.T) {
	f := NewFake(0, false)
	started, release := f.GateSeeks()

	errc := make(chan error, 1)
	go func() { errc <- f.Seek(time.Second) }()

	select {
	case pos := <-started:
		if pos != time.Second {
			t.Errorf("started pos = %v", pos)
		}
	case <-time.After(time.Second):
		t.Fatal("seek did not start")
	}
	if len(f.Seeks()) != 0 {
		t.Fatal("seek completed before release")
	}
	release()
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if got := f.Seeks(); len(got) != 1 || got[0] != time.Second {
		t.Errorf("seeks = %v", got)
	}
}

func TestFakeBackendMeasuresLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := DefaultTone.WriteWAV(path); err != nil {
		t.Fatal(err)
	}
	b, err := New("fake", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Open(path); err != nil {
		t.Fatal(err)
	}
	defer b.Stop()
	if got := b.Length(); got < 590*time.Millisecond || got > 610*time.Millisecond {
		t.Errorf("Length = %v, want about %v", got, DefaultTone.Duration)
	}
	if err := b.Play(); err != nil {
		t.Fatal(err)
	}
	// the clock is only read when polled
	deadline := time.After(3 * time.Second)
	for {
		b.Elapsed()
		select {
		case <-b.Done():
			return
		case <-deadline:
			t.Fatal("realtime fake did not reach the end")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
