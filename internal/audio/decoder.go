package audio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
	"github.com/spf13/afero"
)

// SupportedFormats returns list of supported audio formats
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// IsSupported checks if a file format is supported
func IsSupported(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// DecodeAudio decodes an audio file based on its extension
func DecodeAudio(r io.ReadSeekCloser, filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, ext)
	}
}

// ProbeDuration decodes the file at path far enough to learn its length.
// Failures are reported as *errors.DecodeProbeError.
func ProbeDuration(fs afero.Fs, path string) (time.Duration, error) {
	file, err := fs.Open(path)
	if err != nil {
		return 0, &playerrors.DecodeProbeError{Path: path, Err: err}
	}

	streamer, format, err := DecodeAudio(file, path)
	if err != nil {
		file.Close()
		return 0, &playerrors.DecodeProbeError{Path: path, Err: err}
	}
	defer streamer.Close()

	samples := streamer.Len()
	if samples <= 0 || format.SampleRate <= 0 {
		return 0, &playerrors.DecodeProbeError{Path: path, Err: fmt.Errorf("unknown length")}
	}
	return format.SampleRate.D(samples), nil
}
