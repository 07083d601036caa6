package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/jscyril/mp3miner/api"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
	"github.com/spf13/afero"
)

// Ensure AudioEngine implements Engine interface at compile time
var _ api.Engine = (*AudioEngine)(nil)

// outputRate is the fixed speaker rate; tracks at other rates are resampled
const outputRate beep.SampleRate = 44100

// AudioEngine plays one file at a time through the system speaker.
//
// Seeking is done by starting a fresh stream at an offset; the engine never
// scrubs a stream that is already playing.
type AudioEngine struct {
	fs afero.Fs
	mu sync.Mutex

	path     string
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	closed   bool

	// busy and playGen are touched from the speaker goroutine, which must
	// never take mu.
	busy    atomic.Bool
	playGen atomic.Uint64

	speakerOnce sync.Once
	speakerErr  error
}

// NewAudioEngine creates a new audio engine reading files from fs
func NewAudioEngine(fs afero.Fs) *AudioEngine {
	return &AudioEngine{fs: fs}
}

// Load selects the file that subsequent Play calls start
func (e *AudioEngine) Load(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return &playerrors.EngineError{Op: "load", Err: playerrors.ErrEngineClosed}
	}
	if !IsSupported(path) {
		return &playerrors.EngineError{Op: "load", Err: playerrors.ErrInvalidFormat}
	}
	if _, err := e.fs.Stat(path); err != nil {
		return &playerrors.EngineError{Op: "load", Err: err}
	}

	e.stopLocked()
	e.path = path
	return nil
}

// Play decodes the loaded file and starts it at offset
func (e *AudioEngine) Play(offset time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return &playerrors.EngineError{Op: "play", Err: playerrors.ErrEngineClosed}
	}
	if e.path == "" {
		return &playerrors.EngineError{Op: "play", Err: playerrors.ErrNothingLoaded}
	}

	e.stopLocked()

	file, err := e.fs.Open(e.path)
	if err != nil {
		return &playerrors.EngineError{Op: "open", Err: err}
	}

	streamer, format, err := DecodeAudio(file, e.path)
	if err != nil {
		file.Close()
		return &playerrors.EngineError{Op: "decode", Err: err}
	}

	if offset > 0 {
		pos := format.SampleRate.N(offset)
		if n := streamer.Len(); n > 0 && pos > n {
			pos = n
		}
		if err := streamer.Seek(pos); err != nil {
			streamer.Close()
			return &playerrors.EngineError{Op: "seek", Err: err}
		}
	}

	if err := e.initSpeaker(); err != nil {
		streamer.Close()
		return &playerrors.EngineError{Op: "speaker_init", Err: err}
	}

	var source beep.Streamer = streamer
	if format.SampleRate != outputRate {
		source = beep.Resample(4, format.SampleRate, outputRate, streamer)
	}

	e.streamer = streamer
	e.ctrl = &beep.Ctrl{Streamer: source}

	gen := e.playGen.Add(1)
	e.busy.Store(true)
	speaker.Play(beep.Seq(e.ctrl, beep.Callback(func() {
		if e.playGen.Load() == gen {
			e.busy.Store(false)
		}
	})))

	return nil
}

// Pause pauses the current stream
func (e *AudioEngine) Pause() error {
	return e.setPaused(true)
}

// Unpause resumes a paused stream
func (e *AudioEngine) Unpause() error {
	return e.setPaused(false)
}

func (e *AudioEngine) setPaused(paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl == nil {
		if paused {
			return nil
		}
		return &playerrors.EngineError{Op: "unpause", Err: playerrors.ErrNothingLoaded}
	}

	speaker.Lock()
	e.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

// Stop ends playback but keeps the file loaded
func (e *AudioEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

// Unload stops playback and forgets the loaded file
func (e *AudioEngine) Unload() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.path = ""
	return nil
}

// IsBusy reports whether a stream is live, paused or not. It turns false
// once the stream finishes or is stopped.
func (e *AudioEngine) IsBusy() bool {
	return e.busy.Load()
}

// Close releases the engine. Further calls fail with ErrEngineClosed.
func (e *AudioEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.path = ""
	e.closed = true
	return nil
}

func (e *AudioEngine) stopLocked() {
	e.playGen.Add(1)
	e.busy.Store(false)

	if e.streamer == nil {
		return
	}
	speaker.Clear()
	e.streamer.Close()
	e.streamer = nil
	e.ctrl = nil
}

func (e *AudioEngine) initSpeaker() error {
	e.speakerOnce.Do(func() {
		e.speakerErr = speaker.Init(outputRate, outputRate.N(time.Second/10))
	})
	return e.speakerErr
}
