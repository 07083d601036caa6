package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mp3miner/api"
	"github.com/jscyril/mp3miner/internal/ui/components"
)

// PlayerView displays the current track session
type PlayerView struct {
	Width       int
	Height      int
	State       api.SessionState
	ProgressBar components.ProgressBar

	// Styles
	TitleStyle    lipgloss.Style
	ArtistStyle   lipgloss.Style
	StatusStyle   lipgloss.Style
	ErrorStyle    lipgloss.Style
	CounterStyle  lipgloss.Style
	ControlsStyle lipgloss.Style
	BorderStyle   lipgloss.Style
}

// NewPlayerView creates a new player view
func NewPlayerView(width, height int) PlayerView {
	return PlayerView{
		Width:       width,
		Height:      height,
		ProgressBar: components.NewProgressBar(width - 8),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		ArtistStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		CounterStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		ControlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
}

// SetState updates the displayed session state
func (v *PlayerView) SetState(state api.SessionState) {
	v.State = state
	v.ProgressBar.SetProgress(state.Position, state.Length)
	v.ProgressBar.Seeking = state.Seeking
}

// Update handles messages
func (v PlayerView) Update(msg tea.Msg) (PlayerView, tea.Cmd) {
	return v, nil
}

// StatusIcon returns the play/pause indicator for the state
func StatusIcon(state api.SessionState) string {
	switch {
	case state.Status == api.StatusLoading:
		return "⟳"
	case state.Playing:
		return "▶"
	case state.Loaded:
		return "⏸"
	default:
		return "⏹"
	}
}

// View renders the player view
func (v PlayerView) View() string {
	var sb strings.Builder
	s := v.State

	switch s.Status {
	case api.StatusStopped:
		if !s.Loaded {
			sb.WriteString(v.TitleStyle.Render("♪ No track selected"))
			break
		}
		fallthrough
	default:
		sb.WriteString(v.StatusStyle.Render(StatusIcon(s) + " "))
		sb.WriteString(v.TitleStyle.Render(s.Track.Title))
	}
	sb.WriteString("\n")

	if info := strings.Join(nonEmpty(s.Track.Artist, s.Track.Album), " · "); info != "" {
		sb.WriteString(v.ArtistStyle.Render(info))
	}
	sb.WriteString("\n\n")

	sb.WriteString(v.ProgressBar.View())
	sb.WriteString("\n")
	if s.Total > 0 {
		sb.WriteString(v.CounterStyle.Render(s.Counter()))
	}

	switch s.Status {
	case api.StatusLoading:
		sb.WriteString("\n")
		sb.WriteString(v.StatusStyle.Render("Loading…"))
	case api.StatusFailed:
		sb.WriteString("\n")
		sb.WriteString(v.ErrorStyle.Render("Could not play track"))
	}

	sb.WriteString("\n")
	sb.WriteString(v.ControlsStyle.Render(
		"[Space] Play/Pause  [n] Next  [p] Prev  [←/→] Scrub  [Enter] Play/Commit  [q] Quit",
	))

	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
