package playlist

import (
	"testing"

	"github.com/jscyril/mp3miner/api"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		url      string
		index    int
		expected string
	}{
		{"https://example.com/music/My_Song-2023%20(Live).mp3", 0, "My Song 2023 Live"},
		{"https://example.com/a/plain.mp3", 0, "plain"},
		{"https://example.com/a/song.mp3?dl=1", 0, "song"},
		{"https://example.com/a/__--__.mp3", 1, "Track 2"},
		{"https://example.com/a/%E2%99%AB.mp3", 2, "Track 3"},
		{"https://example.com/a/Multi___Space--Name.MP3", 0, "Multi Space Name"},
		{"https://example.com/a/100%.mp3", 0, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := DisplayName(api.MediaURL(tt.url), tt.index)
			if got != tt.expected {
				t.Errorf("DisplayName(%s) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}
