package playlist

import (
	"sync"

	"github.com/jscyril/mp3miner/api"
	"github.com/samber/lo"
)

// Playlist is an ordered, immutable list of media URLs with a cursor
type Playlist struct {
	urls   []api.MediaURL
	names  []string
	cursor int
	mu     sync.RWMutex
}

// New creates a playlist from the given URLs, dropping blanks and duplicates
func New(urls []api.MediaURL) *Playlist {
	urls = lo.Uniq(lo.Filter(urls, func(u api.MediaURL, _ int) bool {
		return u != ""
	}))

	names := make([]string, len(urls))
	for i, u := range urls {
		names[i] = DisplayName(u, i)
	}

	return &Playlist{
		urls:  urls,
		names: names,
	}
}

// Len returns the number of tracks in the playlist
func (p *Playlist) Len() int {
	return len(p.urls)
}

// Cursor returns the current index
func (p *Playlist) Cursor() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cursor
}

// InRange reports whether index addresses a track
func (p *Playlist) InRange(index int) bool {
	return index >= 0 && index < len(p.urls)
}

// Select moves the cursor to index. Out of range indices are ignored.
func (p *Playlist) Select(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.InRange(index) {
		return false
	}
	p.cursor = index
	return true
}

// Next advances the cursor. There is no wraparound.
func (p *Playlist) Next() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor >= len(p.urls)-1 {
		return false
	}
	p.cursor++
	return true
}

// Previous moves the cursor back. There is no wraparound.
func (p *Playlist) Previous() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor <= 0 {
		return false
	}
	p.cursor--
	return true
}

// HasNext returns true if there's a next track
func (p *Playlist) HasNext() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cursor < len(p.urls)-1
}

// HasPrevious returns true if there's a previous track
func (p *Playlist) HasPrevious() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cursor > 0
}

// URL returns the media URL at index
func (p *Playlist) URL(index int) (api.MediaURL, bool) {
	if !p.InRange(index) {
		return "", false
	}
	return p.urls[index], true
}

// Track returns the display entry at index
func (p *Playlist) Track(index int) (api.Track, bool) {
	if !p.InRange(index) {
		return api.Track{}, false
	}
	return api.Track{
		Index: index,
		URL:   p.urls[index],
		Title: p.names[index],
	}, true
}

// Tracks returns display entries for every URL
func (p *Playlist) Tracks() []api.Track {
	return lo.Map(p.urls, func(_ api.MediaURL, i int) api.Track {
		t, _ := p.Track(i)
		return t
	})
}
