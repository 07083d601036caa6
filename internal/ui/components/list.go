package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mp3miner/api"
)

// TrackList represents a scrollable list of tracks
type TrackList struct {
	Items         []api.Track
	Selected      int
	Active        int
	Height        int
	Width         int
	Offset        int
	Title         string
	SelectedStyle lipgloss.Style
	ActiveStyle   lipgloss.Style
	NormalStyle   lipgloss.Style
	TitleStyle    lipgloss.Style
}

// NewTrackList creates a new track list
func NewTrackList(height, width int) TrackList {
	return TrackList{
		Active: -1,
		Height: height,
		Width:  width,
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		ActiveStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Padding(0, 1),
		NormalStyle: lipgloss.NewStyle().
			Padding(0, 1),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
	}
}

// SetItems sets the list items
func (l *TrackList) SetItems(items []api.Track) {
	l.Items = items
	l.Selected = 0
	l.Offset = 0
}

// Update handles messages for the track list
func (l TrackList) Update(msg tea.Msg) (TrackList, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home":
			l.Selected = 0
			l.Offset = 0
		case "end":
			if len(l.Items) > 0 {
				l.Selected = len(l.Items) - 1
				l.ensureVisible()
			}
		case "pgup":
			l.PageUp()
		case "pgdown":
			l.PageDown()
		}
	}
	return l, nil
}

// MoveUp moves selection up
func (l *TrackList) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
		l.ensureVisible()
	}
}

// MoveDown moves selection down
func (l *TrackList) MoveDown() {
	if l.Selected < len(l.Items)-1 {
		l.Selected++
		l.ensureVisible()
	}
}

// PageUp moves selection up by a page
func (l *TrackList) PageUp() {
	l.Selected -= l.visibleHeight()
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.ensureVisible()
}

// PageDown moves selection down by a page
func (l *TrackList) PageDown() {
	l.Selected += l.visibleHeight()
	if l.Selected >= len(l.Items) {
		l.Selected = len(l.Items) - 1
	}
	l.ensureVisible()
}

// Follow moves the selection to the playing track
func (l *TrackList) Follow(index int) {
	l.Active = index
	if index >= 0 && index < len(l.Items) {
		l.Selected = index
		l.ensureVisible()
	}
}

func (l *TrackList) visibleHeight() int {
	h := l.Height - 2 // title and scroll indicator
	if h < 1 {
		h = 1
	}
	return h
}

func (l *TrackList) ensureVisible() {
	visible := l.visibleHeight()
	if l.Selected < l.Offset {
		l.Offset = l.Selected
	} else if l.Selected >= l.Offset+visible {
		l.Offset = l.Selected - visible + 1
	}
}

// SelectedIndex returns the highlighted row, or -1 for an empty list
func (l *TrackList) SelectedIndex() int {
	if l.Selected >= 0 && l.Selected < len(l.Items) {
		return l.Selected
	}
	return -1
}

// View renders the track list
func (l TrackList) View() string {
	var sb strings.Builder

	if l.Title != "" {
		sb.WriteString(l.TitleStyle.Render(l.Title))
		sb.WriteString("\n")
	}

	if len(l.Items) == 0 {
		sb.WriteString(l.NormalStyle.Render("No tracks"))
		return sb.String()
	}

	visible := l.visibleHeight()
	end := l.Offset + visible
	if end > len(l.Items) {
		end = len(l.Items)
	}

	for i := l.Offset; i < end; i++ {
		marker := " "
		if i == l.Active {
			marker = "♪"
		}
		line := fmt.Sprintf("%s %3d. %s", marker, i+1, l.Items[i].Title)
		line = truncate(line, l.Width-2)

		switch {
		case i == l.Selected:
			sb.WriteString(l.SelectedStyle.Render(line))
		case i == l.Active:
			sb.WriteString(l.ActiveStyle.Render(line))
		default:
			sb.WriteString(l.NormalStyle.Render(line))
		}

		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	if len(l.Items) > visible {
		sb.WriteString("\n")
		sb.WriteString(l.NormalStyle.Render(fmt.Sprintf("  [%d/%d]", l.Selected+1, len(l.Items))))
	}

	return sb.String()
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen < 4 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
