package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

const resampleQuality = 4

// deck is the decoded song shared by every device backend. Devices pull
// interleaved stereo frames from it; while paused or after the end it
// hands out silence.
type deck struct {
	mu      sync.Mutex
	src     beep.StreamSeekCloser
	format  beep.Format
	rate    beep.SampleRate
	stream  beep.Streamer
	paused  bool
	ended   bool
	scratch [][2]float64

	done     chan struct{}
	doneOnce sync.Once
}

func openDeck(path string, rate beep.SampleRate) (*deck, error) {
	src, format, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return newDeck(src, format, rate), nil
}

// newDeck wraps src, resampling to rate when it differs from the source.
// A zero rate keeps the source rate.
func newDeck(src beep.StreamSeekCloser, format beep.Format, rate beep.SampleRate) *deck {
	if rate == 0 {
		rate = format.SampleRate
	}
	d := &deck{
		src:    src,
		format: format,
		rate:   rate,
		paused: true,
		done:   make(chan struct{}),
	}
	d.resetStream()
	return d
}

func (d *deck) resetStream() {
	if d.rate == d.format.SampleRate {
		d.stream = d.src
		return
	}
	d.stream = beep.Resample(resampleQuality, d.format.SampleRate, d.rate, d.src)
}

func (d *deck) setPaused(p bool) {
	d.mu.Lock()
	d.paused = p
	d.mu.Unlock()
}

func (d *deck) seek(pos time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.format.SampleRate.N(pos)
	n = max(0, min(n, d.src.Len()))
	if err := d.src.Seek(n); err != nil {
		return err
	}
	d.resetStream()
	return nil
}

func (d *deck) elapsed() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format.SampleRate.D(d.src.Position())
}

func (d *deck) length() time.Duration {
	return d.format.SampleRate.D(d.src.Len())
}

// fill writes len(frames) frames and reports how many came from the song.
// It returns false once the song is over.
func (d *deck) fill(frames [][2]float64) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ended {
		clear(frames)
		return 0, false
	}
	if d.paused {
		clear(frames)
		return 0, true
	}
	n, ok := d.stream.Stream(frames)
	clear(frames[n:])
	if !ok || d.src.Err() != nil {
		d.ended = true
		d.doneOnce.Do(func() { close(d.done) })
		return n, n > 0
	}
	return n, true
}

func (d *deck) frames(n int) [][2]float64 {
	if cap(d.scratch) < n {
		d.scratch = make([][2]float64, n)
	}
	return d.scratch[:n]
}

// readFloat32 fills buf with interleaved stereo float32.
func (d *deck) readFloat32(buf []float32) (int, bool) {
	frames := d.frames(len(buf) / 2)
	_, ok := d.fill(frames)
	for i, f := range frames {
		buf[2*i] = float32(f[0])
		buf[2*i+1] = float32(f[1])
	}
	return len(frames) * 2, ok
}

// readF32LE fills p with little-endian interleaved stereo float32 bytes.
func (d *deck) readF32LE(p []byte) (int, bool) {
	frames := d.frames(len(p) / 8)
	_, ok := d.fill(frames)
	for i, f := range frames {
		binary.LittleEndian.PutUint32(p[8*i:], math.Float32bits(float32(f[0])))
		binary.LittleEndian.PutUint32(p[8*i+4:], math.Float32bits(float32(f[1])))
	}
	return len(frames) * 8, ok
}

// Read makes the deck an io.Reader of float32LE stereo for players that pull
// bytes.
func (d *deck) Read(p []byte) (int, error) {
	n, ok := d.readF32LE(p)
	if !ok {
		return 0, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker over the byte stream produced by Read. Only
// io.SeekStart is supported.
func (d *deck) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.New("deck: only io.SeekStart is supported")
	}
	if err := d.seek(d.rate.D(int(offset / 8))); err != nil {
		return 0, err
	}
	return offset - offset%8, nil
}

func (d *deck) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ended = true
	return d.src.Close()
}
