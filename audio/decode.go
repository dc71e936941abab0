package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Formats lists the file extensions Decode understands.
var Formats = []string{".mp3", ".wav", ".ogg", ".flac"}

// Decode opens path and returns a seekable stream picked by file extension.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3", ".wav", ".ogg", ".oga", ".flac":
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".ogg", ".oga":
		s, format, err = vorbis.Decode(f)
	case ".flac":
		s, format, err = decodeFLAC(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

// Measure reports the duration of an audio file without playing it.
func Measure(path string) (beep.Format, int, error) {
	s, format, err := Decode(path)
	if err != nil {
		return beep.Format{}, 0, err
	}
	defer s.Close()
	return format, s.Len(), nil
}
