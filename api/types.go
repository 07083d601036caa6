package api

import (
	"context"
	"fmt"
	"time"
)

// MediaURL is an absolute URL believed to reference an MP3 resource
type MediaURL string

// Track describes one playlist entry as shown to the user
type Track struct {
	Index  int      `json:"index"`
	URL    MediaURL `json:"url"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Album  string   `json:"album"`
}

// Status is the transport state shown by the UI
type Status int

const (
	StatusStopped Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusFailed:
		return "failed"
	default:
		return "stopped"
	}
}

// SessionState is a read-only snapshot of a track session
type SessionState struct {
	Status   Status
	Index    int
	Total    int
	Track    Track
	Position time.Duration
	Length   time.Duration
	Seeking  bool
	Playing  bool
	Loaded   bool
	Err      error
}

// Counter returns the "Track i of N" label
func (s SessionState) Counter() string {
	return fmt.Sprintf("Track %d of %d", s.Index+1, s.Total)
}

// EventType identifies a session event
type EventType int

const (
	EventTrackStarted EventType = iota
	EventTrackFailed
	EventPositionUpdate
	EventStateChange
)

// SessionEvent is published by the track session controller
type SessionEvent struct {
	Type  EventType
	State SessionState
}

// Publisher receives session events
type Publisher interface {
	Publish(event SessionEvent)
}

// Resolver maps a page URL to the media URLs found on it
type Resolver interface {
	Resolve(ctx context.Context, pageURL string) ([]MediaURL, error)
}

// Downloader fetches a media URL into a local file
type Downloader interface {
	Fetch(ctx context.Context, url MediaURL, dest string) error
}

// Engine is the audio playback capability used by the controller.
// Play starts the loaded file at the given offset.
type Engine interface {
	Load(path string) error
	Play(offset time.Duration) error
	Pause() error
	Unpause() error
	Stop() error
	Unload() error
	IsBusy() bool
}
