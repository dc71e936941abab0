package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// flacStream adapts a mewkiz/flac stream to beep.StreamSeekCloser.
type flacStream struct {
	f       *os.File
	stream  *flac.Stream
	scale   float64
	buf     [][2]float64
	pending [][2]float64
	pos     int
	err     error
}

func decodeFLAC(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, beep.Format{}, err
	}
	info := stream.Info
	if info.NChannels == 0 || info.NChannels > 2 {
		return nil, beep.Format{}, fmt.Errorf("flac: %d channels not supported", info.NChannels)
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(info.SampleRate),
		NumChannels: int(info.NChannels),
		Precision:   (int(info.BitsPerSample) + 7) / 8,
	}
	return &flacStream{
		f:      f,
		stream: stream,
		scale:  1 / float64(int64(1)<<(info.BitsPerSample-1)),
	}, format, nil
}

func (s *flacStream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		if len(s.pending) == 0 && !s.decodeFrame() {
			break
		}
		c := copy(samples[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
		s.pos += c
	}
	return n, n > 0
}

func (s *flacStream) decodeFrame() bool {
	fr, err := s.stream.ParseNext()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	s.pending = s.convert(fr)
	return true
}

func (s *flacStream) convert(fr *frame.Frame) [][2]float64 {
	left := fr.Subframes[0].Samples
	right := left
	if len(fr.Subframes) > 1 {
		right = fr.Subframes[1].Samples
	}
	s.buf = s.buf[:0]
	for i := range left {
		s.buf = append(s.buf, [2]float64{
			float64(left[i]) * s.scale,
			float64(right[i]) * s.scale,
		})
	}
	return s.buf
}

func (s *flacStream) Err() error { return s.err }

func (s *flacStream) Len() int { return int(s.stream.Info.NSamples) }

func (s *flacStream) Position() int { return s.pos }

// Seek lands on the frame containing p and drops the samples before it.
func (s *flacStream) Seek(p int) error {
	got, err := s.stream.Seek(uint64(p))
	if err != nil {
		return fmt.Errorf("flac seek: %w", err)
	}
	s.err = nil
	s.pending = nil
	s.pos = int(got)
	if skip := p - s.pos; skip > 0 && s.decodeFrame() {
		skip = min(skip, len(s.pending))
		s.pending = s.pending[skip:]
		s.pos += skip
	}
	return nil
}

func (s *flacStream) Close() error {
	return s.f.Close()
}
