package doctor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hangulfun/audio"
	"hangulfun/lrc"
)

type Options struct {
	Backend string
	Device  string
	// Song is optional; when set its audio and lyric file are checked.
	Song string

	In  io.Reader
	Out io.Writer
	// ToneWait bounds how long the test tone may take to finish.
	ToneWait time.Duration
}

// ExitInterrupted is returned by Run when ctx is cancelled mid-check.
const ExitInterrupted = 130

type doctor struct {
	ctx     context.Context
	opts    Options
	out     io.Writer
	answers chan string
	backend audio.Backend
}

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(ctx context.Context, opts Options) int {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.In == io.Reader(os.Stdin) {
		resetTerminal()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ToneWait <= 0 {
		opts.ToneWait = audio.DefaultTone.Duration + time.Second
	}
	d := &doctor{ctx: ctx, opts: opts, out: opts.Out, answers: readAnswers(opts.In)}

	d.println("hangulfun doctor - interactive playback diagnostics")
	d.println("===================================================")

	allPass := d.checkBackend()
	if allPass && !d.checkTone() {
		allPass = false
	}
	if ctx.Err() == nil && !d.checkSong() {
		allPass = false
	}

	d.println()
	if ctx.Err() != nil {
		d.println("doctor interrupted")
		return ExitInterrupted
	}
	if allPass {
		d.println("All checks passed!")
		return 0
	}
	d.println("Some checks failed. See details above.")
	return 1
}

func (d *doctor) println(a ...any) { fmt.Fprintln(d.out, a...) }

func (d *doctor) printf(format string, a ...any) { fmt.Fprintf(d.out, format, a...) }

// readAnswers feeds input lines to a channel so prompts can give up when
// the context is cancelled. The channel is closed at end of input.
func readAnswers(in io.Reader) chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

func (d *doctor) confirm(question string) bool {
	d.printf("%s [y/n]: ", question)
	select {
	case answer := <-d.answers:
		answer = strings.TrimSpace(strings.ToLower(answer))
		return answer == "y" || answer == "yes"
	case <-d.ctx.Done():
		return false
	}
}

func (d *doctor) checkBackend() bool {
	d.println()
	d.println("[1/3] Audio backend")

	b, err := audio.New(d.opts.Backend, d.opts.Device)
	if err != nil {
		d.printf("  FAIL: cannot create backend: %v\n", err)
		return false
	}
	d.backend = b
	d.printf("  backend: %s\n", b.Name())

	devices, err := audio.Devices(d.opts.Backend)
	switch {
	case err != nil:
		d.printf("  Warning: cannot list devices: %v\n", err)
	case len(devices) == 0:
		d.println("  Warning: no output devices reported, using system default")
	default:
		for _, dev := range devices {
			tag := ""
			if audio.IsBluetooth(dev.Name) {
				tag = " (bluetooth, expect lyric lag)"
			}
			d.printf("  - %s%s\n", dev.Name, tag)
		}
	}
	d.println("  PASS: backend ready")
	return true
}

func (d *doctor) checkTone() bool {
	d.println()
	d.println("[2/3] Test tone")

	dir, err := os.MkdirTemp("", "hangulfun-doctor")
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tone.wav")
	if err := audio.DefaultTone.WriteWAV(path); err != nil {
		d.printf("  FAIL: cannot render tone: %v\n", err)
		return false
	}

	if err := d.backend.Open(path); err != nil {
		d.printf("  FAIL: cannot open tone: %v\n", err)
		return false
	}
	defer d.backend.Stop()

	d.println("  Playing a short beep...")
	if err := d.backend.Play(); err != nil {
		d.printf("  FAIL: playback error: %v\n", err)
		return false
	}
	select {
	case <-d.backend.Done():
	case <-time.After(d.opts.ToneWait):
	case <-d.ctx.Done():
	}
	d.backend.Stop()
	if d.ctx.Err() != nil {
		return false
	}

	if !d.confirm("Did you hear the tone?") {
		d.println("  FAIL: tone not confirmed")
		return false
	}
	d.println("  PASS: playback verified by user")
	return true
}

func (d *doctor) checkSong() bool {
	d.println()
	d.println("[3/3] Song and lyrics")
	if d.opts.Song == "" {
		d.println("  SKIP: no song given")
		return true
	}

	format, samples, err := audio.Measure(d.opts.Song)
	if err != nil {
		d.printf("  FAIL: cannot decode %s: %v\n", d.opts.Song, err)
		return false
	}
	d.printf("  audio: %v at %d Hz, %d channels\n",
		format.SampleRate.D(samples).Round(time.Second), int(format.SampleRate), format.NumChannels)

	lyricPath := lrc.Sibling(d.opts.Song)
	tl, parseErrs, err := lrc.Load(lyricPath)
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	for _, pe := range parseErrs {
		d.printf("  Warning: %v\n", pe)
	}
	if tl.Len() == 0 {
		d.printf("  FAIL: %s contains no timed lines\n", lyricPath)
		return false
	}

	stats := coverage(tl)
	d.printf("  lyrics: %d lines, %d skipped\n", tl.Len(), len(parseErrs))
	for _, key := range []string{"ti", "ar", "al"} {
		if v := tl.Meta(key); v != "" {
			d.printf("  %s: %s\n", key, v)
		}
	}
	d.printf("  hangul: %d of %d letters are syllable blocks (%.0f%%)\n",
		stats.syllables, stats.letters, stats.percent())
	if stats.syllables == 0 {
		d.println("  Warning: no Hangul found in the lyrics")
	}
	d.println("  PASS: song and lyrics readable")
	return true
}

type lyricStats struct {
	letters, syllables int
}

func (s lyricStats) percent() float64 {
	if s.letters == 0 {
		return 0
	}
	return 100 * float64(s.syllables) / float64(s.letters)
}

// coverage counts non-space characters and how many of them are Hangul
// syllable blocks.
func coverage(tl *lrc.Timeline) lyricStats {
	var s lyricStats
	for _, line := range tl.Lines() {
		for _, w := range line.Words {
			for _, c := range w.Syllables {
				s.letters++
				if c.IsSyllable {
					s.syllables++
				}
			}
		}
	}
	return s
}
