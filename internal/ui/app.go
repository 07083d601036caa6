package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mp3miner/api"
	"github.com/jscyril/mp3miner/internal/config"
	"github.com/jscyril/mp3miner/internal/session"
	"github.com/jscyril/mp3miner/internal/ui/components"
	"github.com/jscyril/mp3miner/internal/ui/views"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
)

// seekStep is how far one scrub key press moves the seek pointer
const seekStep = 5 * time.Second

// Model is the main bubbletea model
type Model struct {
	width  int
	height int

	playerView views.PlayerView
	trackList  components.TrackList

	session *session.Session
	events  <-chan api.SessionEvent
	keys    config.KeyMap

	// seek gesture
	seeking     bool
	seekPreview time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	err    error

	headerStyle lipgloss.Style
}

// EventMsg carries a session event into the update loop
type EventMsg struct {
	Event api.SessionEvent
}

// OpDoneMsg reports the result of a transport command
type OpDoneMsg struct {
	Err error
}

// NewModel creates a new application model
func NewModel(s *session.Session, events <-chan api.SessionEvent, keys config.KeyMap) Model {
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		width:   80,
		height:  24,
		session: s,
		events:  events,
		keys:    keys,
		ctx:     ctx,
		cancel:  cancel,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
	}

	m.playerView = views.NewPlayerView(m.width, 10)
	m.trackList = components.NewTrackList(m.height-14, m.width)
	m.trackList.Title = "Track List"
	m.trackList.SetItems(s.Playlist().Tracks())
	m.playerView.SetState(s.State())

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.listenForEvents()
}

// listenForEvents returns a command that waits for the next session event
func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-m.events:
			if !ok {
				return nil
			}
			return EventMsg{Event: ev}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// run executes a blocking transport operation off the update loop
func (m Model) run(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Err: op(m.ctx)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewSizes()
		return m, nil

	case EventMsg:
		state := msg.Event.State
		if m.seeking {
			state.Position = m.seekPreview
		}
		m.playerView.SetState(state)
		if msg.Event.Type == api.EventTrackStarted || msg.Event.Type == api.EventStateChange {
			m.trackList.Follow(state.Index)
		}
		return m, m.listenForEvents()

	case OpDoneMsg:
		if msg.Err != nil && !errors.Is(msg.Err, playerrors.ErrStaleLoad) {
			m.err = msg.Err
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	s := m.session

	switch key {
	case "ctrl+c", m.keys.Quit:
		m.cancel()
		s.Shutdown()
		return m, tea.Quit

	case m.keys.PlayPause:
		m.err = nil
		return m, m.run(s.TogglePlayPause)

	case m.keys.Next:
		m.err = nil
		m.seeking = false
		return m, m.run(s.Next)

	case m.keys.Previous:
		m.err = nil
		m.seeking = false
		return m, m.run(s.Prev)

	case m.keys.SeekForward, m.keys.SeekBack:
		state := s.State()
		if !state.Loaded {
			return m, nil
		}
		if !m.seeking {
			m.seeking = true
			m.seekPreview = state.Position
			s.SeekStart()
		}
		if key == m.keys.SeekForward {
			m.seekPreview += seekStep
		} else {
			m.seekPreview -= seekStep
		}
		m.seekPreview = clamp(m.seekPreview, 0, state.Length)
		s.SeekMove(m.seekPreview)
		return m, nil

	case m.keys.SeekCommit:
		if m.seeking {
			m.seeking = false
			target := m.seekPreview
			return m, m.run(func(context.Context) error {
				return s.SeekEnd(target)
			})
		}
		if index := m.trackList.SelectedIndex(); index >= 0 {
			m.err = nil
			return m, m.run(func(ctx context.Context) error {
				return s.SelectTrack(ctx, index)
			})
		}
		return m, nil
	}

	m.trackList, _ = m.trackList.Update(msg)
	return m, nil
}

// updateViewSizes updates view dimensions
func (m *Model) updateViewSizes() {
	m.playerView.Width = m.width
	m.playerView.ProgressBar.Width = m.width - 8
	m.trackList.Width = m.width
	m.trackList.Height = m.height - 14
}

// View renders the UI
func (m Model) View() string {
	var sb string

	sb += m.headerStyle.Render("MP3 Miner")
	sb += "\n"
	sb += m.playerView.View()
	sb += "\n"
	sb += m.trackList.View()

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
		sb += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return sb
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// Run starts the bubbletea program and shuts the session down on exit.
// Cancelling ctx ends the program as a normal exit.
func Run(ctx context.Context, s *session.Session, events <-chan api.SessionEvent, keys config.KeyMap, start int) error {
	defer s.Shutdown()

	model := NewModel(s, events, keys)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if start >= 0 {
		go func() {
			if err := s.SelectTrack(ctx, start); err != nil {
				p.Send(OpDoneMsg{Err: err})
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
