package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNoMediaFound   = errors.New("no MP3 files found")
	ErrInvalidFormat  = errors.New("unsupported audio format")
	ErrPlaybackFailed = errors.New("could not play track")
	ErrNothingLoaded  = errors.New("no track loaded")
	ErrEngineClosed   = errors.New("audio engine closed")
	ErrStaleLoad      = errors.New("load superseded by a newer request")
	ErrSessionClosed  = errors.New("session closed")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op    string // Operation that failed
	Track string // Track name if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, track string, err error) *PlayerError {
	return &PlayerError{Op: op, Track: track, Err: err}
}

// ResolveError is returned when a page yields no playable media
type ResolveError struct {
	PageURL string
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.PageURL, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// NetworkError represents a failed download
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeProbeError means the duration of a file could not be determined
type DecodeProbeError struct {
	Path string
	Err  error
}

func (e *DecodeProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *DecodeProbeError) Unwrap() error {
	return e.Err
}

// EngineError wraps a failure reported by the audio engine
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// CleanupError is a failed removal of a temporary file or directory
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is or wraps a NetworkError
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsEngine reports whether err is or wraps an EngineError
func IsEngine(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}
