// Package session implements the track session controller: it drives the
// downloader and the audio engine for one playlist and keeps the displayed
// playback position in step with them.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jscyril/mp3miner/api"
	"github.com/jscyril/mp3miner/internal/audio"
	"github.com/jscyril/mp3miner/internal/log"
	"github.com/jscyril/mp3miner/internal/playlist"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	DefaultTickInterval = 100 * time.Millisecond
	DefaultTrackLength  = 100 * time.Second
)

// Session owns the one active track of a player instance.
//
// All state is guarded by mu. Downloads run with mu released; each load is
// tagged with a generation and its result is discarded when a newer load,
// or Shutdown, happened in the meantime.
type Session struct {
	mu sync.Mutex

	fs         afero.Fs
	playlist   *playlist.Playlist
	engine     api.Engine
	downloader api.Downloader
	publisher  api.Publisher
	ticker     *Ticker

	tempDir       string
	defaultLength time.Duration
	probe         func(fs afero.Fs, path string) (time.Duration, error)
	readTags      func(fs afero.Fs, path string) (audio.Tags, error)

	currentFile    string
	playing        bool
	seeking        bool
	position       time.Duration
	pausedPosition time.Duration
	trackLength    time.Duration
	status         api.Status
	track          api.Track
	lastErr        error

	gen        uint64
	cancelLoad context.CancelFunc
	closed     bool
}

type options struct {
	tempRoot      string
	tickInterval  time.Duration
	defaultLength time.Duration
	scheduler     Scheduler
	publisher     api.Publisher
	probe         func(fs afero.Fs, path string) (time.Duration, error)
	readTags      func(fs afero.Fs, path string) (audio.Tags, error)
}

// Option configures a Session
type Option func(*options)

// WithTempRoot sets the directory the per-session temp directory is created in
func WithTempRoot(dir string) Option {
	return func(o *options) { o.tempRoot = dir }
}

// WithTickInterval sets the progress ticker period
func WithTickInterval(d time.Duration) Option {
	return func(o *options) { o.tickInterval = d }
}

// WithDefaultTrackLength sets the length assumed when probing fails
func WithDefaultTrackLength(d time.Duration) Option {
	return func(o *options) { o.defaultLength = d }
}

// WithScheduler replaces the wall clock used by the progress ticker
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithPublisher sets the receiver of session events
func WithPublisher(p api.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithProber replaces the track length probe
func WithProber(probe func(fs afero.Fs, path string) (time.Duration, error)) Option {
	return func(o *options) { o.probe = probe }
}

// WithTagReader replaces the metadata reader
func WithTagReader(read func(fs afero.Fs, path string) (audio.Tags, error)) Option {
	return func(o *options) { o.readTags = read }
}

// New creates a session for a non-empty playlist and its temp directory
func New(fs afero.Fs, pl *playlist.Playlist, engine api.Engine, downloader api.Downloader, opts ...Option) (*Session, error) {
	if pl == nil || pl.Len() == 0 {
		return nil, playerrors.ErrNoMediaFound
	}

	o := options{
		tickInterval:  DefaultTickInterval,
		defaultLength: DefaultTrackLength,
		probe:         audio.ProbeDuration,
		readTags:      audio.ReadTags,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.tempRoot != "" {
		if err := fs.MkdirAll(o.tempRoot, 0755); err != nil {
			return nil, fmt.Errorf("create temp root: %w", err)
		}
	}
	dir, err := afero.TempDir(fs, o.tempRoot, "mp3miner-")
	if err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	track, _ := pl.Track(pl.Cursor())
	return &Session{
		fs:            fs,
		playlist:      pl,
		engine:        engine,
		downloader:    downloader,
		publisher:     o.publisher,
		ticker:        NewTicker(o.scheduler, o.tickInterval),
		tempDir:       dir,
		defaultLength: o.defaultLength,
		probe:         o.probe,
		readTags:      o.readTags,
		trackLength:   o.defaultLength,
		track:         track,
	}, nil
}

// Playlist returns the playlist the session plays from
func (s *Session) Playlist() *playlist.Playlist {
	return s.playlist
}

// TempDir returns the per-session download directory
func (s *Session) TempDir() string {
	return s.tempDir
}

// CurrentFile returns the local file loaded into the engine, if any
func (s *Session) CurrentFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFile
}

// State returns a snapshot for display
func (s *Session) State() api.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SelectTrack moves the cursor to index and plays it. Out of range indices
// are ignored.
func (s *Session) SelectTrack(ctx context.Context, index int) error {
	return s.load(ctx, func() (int, bool) {
		if !s.playlist.Select(index) {
			return 0, false
		}
		return index, true
	})
}

// LoadAndPlay downloads the track at index and starts it from the beginning
func (s *Session) LoadAndPlay(ctx context.Context, index int) error {
	return s.load(ctx, func() (int, bool) {
		return index, s.playlist.InRange(index)
	})
}

// Next plays the following track. It is a no-op on the last track.
func (s *Session) Next(ctx context.Context) error {
	return s.load(ctx, func() (int, bool) {
		if !s.playlist.Next() {
			return 0, false
		}
		return s.playlist.Cursor(), true
	})
}

// Prev plays the preceding track. It is a no-op on the first track.
func (s *Session) Prev(ctx context.Context) error {
	return s.load(ctx, func() (int, bool) {
		if !s.playlist.Previous() {
			return 0, false
		}
		return s.playlist.Cursor(), true
	})
}

// load runs pick under the session lock to choose the index, then performs
// the download without the lock and finishes the load if still current.
func (s *Session) load(ctx context.Context, pick func() (int, bool)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return playerrors.ErrSessionClosed
	}

	index, ok := pick()
	if !ok {
		s.mu.Unlock()
		return nil
	}
	url, _ := s.playlist.URL(index)

	s.ticker.Disarm()
	s.releaseLocked()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}

	s.gen++
	gen := s.gen
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel

	s.track, _ = s.playlist.Track(index)
	s.playing = false
	s.seeking = false
	s.position = 0
	s.pausedPosition = 0
	s.trackLength = s.defaultLength
	s.status = api.StatusLoading
	s.lastErr = nil
	staging := s.stagingPath(index, gen)
	s.publishLocked(api.EventStateChange)
	s.mu.Unlock()

	logger := log.WithFields(logrus.Fields{"track": index, "gen": gen})
	logger.Debugf("downloading %s", url)
	fetchErr := s.downloader.Fetch(loadCtx, url, staging)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.closed {
		logger.Debugf("discarding superseded download")
		s.removeLocked(staging)
		return playerrors.ErrStaleLoad
	}
	s.cancelLoad = nil

	if fetchErr != nil {
		s.removeLocked(staging)
		return s.failLoadLocked(fetchErr)
	}

	dest := s.trackPath(index, url)
	s.removeLocked(dest)
	if err := s.fs.Rename(staging, dest); err != nil {
		s.removeLocked(staging)
		return s.failLoadLocked(fmt.Errorf("move download into place: %w", err))
	}
	s.currentFile = dest

	if length, err := s.probe(s.fs, dest); err != nil {
		logger.Debugf("keeping default length: %v", err)
	} else {
		s.trackLength = length
	}

	if tags, err := s.readTags(s.fs, dest); err == nil {
		s.track.Artist = tags.Artist
		s.track.Album = tags.Album
	}

	if err := s.engine.Load(dest); err != nil {
		return s.failLoadLocked(err)
	}
	if err := s.engine.Play(0); err != nil {
		return s.failLoadLocked(err)
	}

	s.position = 0
	s.pausedPosition = 0
	s.playing = true
	s.status = api.StatusPlaying
	s.armTickerLocked()
	s.publishLocked(api.EventTrackStarted)
	logger.Infof("playing %s", s.track.Title)
	return nil
}

// failLoadLocked abandons the current load and leaves the session paused
// with nothing loaded.
func (s *Session) failLoadLocked(err error) error {
	s.ticker.Disarm()
	s.releaseLocked()
	s.playing = false
	s.status = api.StatusFailed
	s.lastErr = playerrors.NewPlayerError("play", s.track.Title, err)
	log.Warnf("%v", s.lastErr)
	s.publishLocked(api.EventTrackFailed)
	return s.lastErr
}

// TogglePlayPause pauses a playing track or resumes a paused one. With no
// file loaded it loads the track under the cursor.
func (s *Session) TogglePlayPause(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return playerrors.ErrSessionClosed
	}
	if s.status == api.StatusLoading {
		s.mu.Unlock()
		return nil
	}

	if s.playing {
		defer s.mu.Unlock()
		s.ticker.Disarm()
		s.playing = false
		s.status = api.StatusPaused
		if err := s.engine.Pause(); err != nil {
			return s.reportLocked("pause", err)
		}
		s.publishLocked(api.EventStateChange)
		return nil
	}

	if s.currentFile == "" {
		s.mu.Unlock()
		cursor := s.playlist.Cursor()
		return s.LoadAndPlay(ctx, cursor)
	}
	defer s.mu.Unlock()

	var err error
	if s.engine.IsBusy() {
		err = s.engine.Unpause()
	} else {
		s.position = s.pausedPosition
		if err = s.engine.Load(s.currentFile); err == nil {
			err = s.engine.Play(s.pausedPosition)
		}
	}
	if err != nil {
		s.ticker.Disarm()
		s.playing = false
		s.status = api.StatusPaused
		return s.reportLocked("resume", err)
	}

	s.playing = true
	s.status = api.StatusPlaying
	s.armTickerLocked()
	s.publishLocked(api.EventStateChange)
	return nil
}

// SeekStart begins a seek gesture; the position stops advancing
func (s *Session) SeekStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.seeking = true
	s.ticker.Disarm()
	s.publishLocked(api.EventStateChange)
}

// SeekMove tracks the pointer during a seek gesture without touching the
// resume position.
func (s *Session) SeekMove(target time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.seeking {
		return
	}
	s.position = s.clampLocked(target)
	s.publishLocked(api.EventPositionUpdate)
}

// SeekEnd commits the seek gesture at target, restarting the loaded file
// there.
func (s *Session) SeekEnd(target time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return playerrors.ErrSessionClosed
	}

	s.seeking = false
	target = s.clampLocked(target)
	s.position = target
	s.pausedPosition = target

	if s.currentFile != "" {
		if err := s.restartAtLocked(target); err != nil {
			s.ticker.Disarm()
			s.playing = false
			s.status = api.StatusPaused
			return s.reportLocked("seek", err)
		}
	}

	if s.playing {
		s.armTickerLocked()
	}
	s.publishLocked(api.EventStateChange)
	return nil
}

// restartAtLocked reloads the current file and plays it from target. The
// engine is left paused when the user is not playing.
func (s *Session) restartAtLocked(target time.Duration) error {
	if err := s.engine.Stop(); err != nil {
		return err
	}
	if err := s.engine.Load(s.currentFile); err != nil {
		return err
	}
	if err := s.engine.Play(target); err != nil {
		return err
	}
	if !s.playing {
		return s.engine.Pause()
	}
	return nil
}

// Shutdown releases the engine and removes every downloaded file. It is
// safe to call more than once.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	s.ticker.Disarm()
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.releaseLocked()
	if closer, ok := s.engine.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warnf("%v", &playerrors.EngineError{Op: "close", Err: err})
		}
	}

	if err := s.fs.RemoveAll(s.tempDir); err != nil {
		log.Warnf("%v", &playerrors.CleanupError{Path: s.tempDir, Err: err})
	}

	s.playing = false
	s.seeking = false
	s.status = api.StatusStopped
	s.publishLocked(api.EventStateChange)
}

func (s *Session) onTick(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ticker.Claim(token) {
		return
	}
	if s.closed || !s.playing || s.seeking || !s.engine.IsBusy() {
		return
	}

	s.position += s.ticker.Period()
	s.pausedPosition = s.position
	s.publishLocked(api.EventPositionUpdate)
	s.armTickerLocked()
}

func (s *Session) armTickerLocked() {
	s.ticker.Arm(s.onTick)
}

// releaseLocked unloads the engine and deletes the current file. Failures
// are logged and otherwise ignored.
func (s *Session) releaseLocked() {
	if err := s.engine.Unload(); err != nil {
		log.Warnf("%v", &playerrors.EngineError{Op: "unload", Err: err})
	}
	if s.currentFile != "" {
		s.removeLocked(s.currentFile)
		s.currentFile = ""
	}
}

func (s *Session) removeLocked(name string) {
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("%v", &playerrors.CleanupError{Path: name, Err: err})
	}
}

func (s *Session) reportLocked(op string, err error) error {
	if !playerrors.IsEngine(err) {
		err = &playerrors.EngineError{Op: op, Err: err}
	}
	s.lastErr = playerrors.NewPlayerError(op, s.track.Title, err)
	log.Warnf("%v", s.lastErr)
	s.publishLocked(api.EventStateChange)
	return s.lastErr
}

func (s *Session) clampLocked(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > s.trackLength {
		return s.trackLength
	}
	return d
}

func (s *Session) snapshotLocked() api.SessionState {
	return api.SessionState{
		Status:   s.status,
		Index:    s.playlist.Cursor(),
		Total:    s.playlist.Len(),
		Track:    s.track,
		Position: s.position,
		Length:   s.trackLength,
		Seeking:  s.seeking,
		Playing:  s.playing,
		Loaded:   s.currentFile != "",
		Err:      s.lastErr,
	}
}

func (s *Session) publishLocked(t api.EventType) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(api.SessionEvent{Type: t, State: s.snapshotLocked()})
}

func (s *Session) trackPath(index int, url api.MediaURL) string {
	return filepath.Join(s.tempDir, fmt.Sprintf("track_%d%s", index, mediaExt(url)))
}

func (s *Session) stagingPath(index int, gen uint64) string {
	return filepath.Join(s.tempDir, fmt.Sprintf("track_%d.%d.download", index, gen))
}

// mediaExt keeps the URL's extension when the engine can decode it
func mediaExt(url api.MediaURL) string {
	p, _, _ := strings.Cut(string(url), "?")
	ext := strings.ToLower(path.Ext(p))
	if audio.IsSupported("x" + ext) {
		return ext
	}
	return ".mp3"
}
