package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jscyril/mp3miner/api"
	"github.com/jscyril/mp3miner/internal/audio"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
	"github.com/spf13/afero"
)

// manualScheduler fires timers only when the test says so
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Fire runs every pending timer once and returns how many ran
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	due := s.pending
	s.pending = nil
	s.mu.Unlock()

	ran := 0
	for _, t := range due {
		s.mu.Lock()
		stopped := t.stopped
		t.stopped = true
		s.mu.Unlock()
		if !stopped {
			t.f()
			ran++
		}
	}
	return ran
}

// Armed counts timers that are pending and not stopped
func (s *manualScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// fakeEngine records transport calls
type fakeEngine struct {
	mu       sync.Mutex
	loaded   string
	busy     bool
	paused   bool
	lastPlay time.Duration
	calls    []string
	failOn   map[string]error
	closed   bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{failOn: map[string]error{}}
}

func (e *fakeEngine) record(op string) error {
	e.calls = append(e.calls, op)
	return e.failOn[op]
}

func (e *fakeEngine) Load(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("load"); err != nil {
		return err
	}
	e.loaded = path
	e.busy = false
	return nil
}

func (e *fakeEngine) Play(offset time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("play"); err != nil {
		return err
	}
	if e.loaded == "" {
		return playerrors.ErrNothingLoaded
	}
	e.lastPlay = offset
	e.busy = true
	e.paused = false
	return nil
}

func (e *fakeEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("pause"); err != nil {
		return err
	}
	e.paused = true
	return nil
}

func (e *fakeEngine) Unpause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("unpause"); err != nil {
		return err
	}
	e.paused = false
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	return e.record("stop")
}

func (e *fakeEngine) Unload() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	e.loaded = ""
	return e.record("unload")
}

func (e *fakeEngine) IsBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// finish simulates the stream reaching its end
func (e *fakeEngine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
}

func (e *fakeEngine) count(op string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.calls {
		if c == op {
			n++
		}
	}
	return n
}

// fakeDownloader writes canned payloads, optionally waiting on a gate
type fakeDownloader struct {
	fs      afero.Fs
	mu      sync.Mutex
	fail    map[api.MediaURL]error
	gates   map[api.MediaURL]chan struct{}
	started chan api.MediaURL
}

func newFakeDownloader(fs afero.Fs) *fakeDownloader {
	return &fakeDownloader{
		fs:      fs,
		fail:    map[api.MediaURL]error{},
		gates:   map[api.MediaURL]chan struct{}{},
		started: make(chan api.MediaURL, 16),
	}
}

func (d *fakeDownloader) Fetch(_ context.Context, url api.MediaURL, dest string) error {
	select {
	case d.started <- url:
	default:
	}

	d.mu.Lock()
	gate := d.gates[url]
	err := d.fail[url]
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	return afero.WriteFile(d.fs, dest, []byte("payload:"+string(url)), 0644)
}

// recorder keeps every published event
type recorder struct {
	mu     sync.Mutex
	events []api.SessionEvent
}

func (r *recorder) Publish(ev api.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) last(t api.EventType) (api.SessionEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return api.SessionEvent{}, false
}

func noProbe(afero.Fs, string) (time.Duration, error) {
	return 0, &playerrors.DecodeProbeError{Err: errors.New("not audio")}
}

func noTags(afero.Fs, string) (audio.Tags, error) {
	return audio.Tags{}, errors.New("no tags")
}
