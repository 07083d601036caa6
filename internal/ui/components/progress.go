package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar represents a seek bar with elapsed and total time
type ProgressBar struct {
	Width       int
	Current     time.Duration
	Total       time.Duration
	Seeking     bool
	BarChar     string
	EmptyChar   string
	ShowTime    bool
	Style       lipgloss.Style
	FilledStyle lipgloss.Style
	SeekStyle   lipgloss.Style
	EmptyStyle  lipgloss.Style
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) ProgressBar {
	return ProgressBar{
		Width:       width,
		BarChar:     "█",
		EmptyChar:   "░",
		ShowTime:    true,
		Style:       lipgloss.NewStyle(),
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		SeekStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// SetProgress sets the current position
func (p *ProgressBar) SetProgress(current, total time.Duration) {
	p.Current = current
	p.Total = total
}

// Percent returns the filled fraction, clamped to [0, 1]
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	percent := float64(p.Current) / float64(p.Total)
	if percent < 0 {
		return 0
	}
	if percent > 1 {
		return 1
	}
	return percent
}

// View renders the progress bar
func (p ProgressBar) View() string {
	var sb strings.Builder

	barWidth := p.Width - 14 // room for "M:SS/M:SS"
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * p.Percent())
	empty := barWidth - filled

	style := p.FilledStyle
	if p.Seeking {
		style = p.SeekStyle
	}
	sb.WriteString(style.Render(strings.Repeat(p.BarChar, filled)))
	sb.WriteString(p.EmptyStyle.Render(strings.Repeat(p.EmptyChar, empty)))

	if p.ShowTime {
		sb.WriteString(" ")
		sb.WriteString(FormatTime(p.Current))
		sb.WriteString("/")
		sb.WriteString(FormatTime(p.Total))
	}

	return p.Style.Render(sb.String())
}

// FormatTime formats a duration as M:SS, truncating partial seconds
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
