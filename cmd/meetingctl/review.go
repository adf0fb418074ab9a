package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/ingest"
)

var (
	reviewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("99")).
				MarginBottom(1)

	reviewSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				MarginBottom(1)

	reviewSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	reviewNormalStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	reviewDimStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
)

// newInteractiveReviewer builds an ingest.ReviewFunc backed by a small
// bubbletea picker: one candidate event per line, an auto-match marked if
// present, plus "type a title" and "skip" entries.
func newInteractiveReviewer() ingest.ReviewFunc {
	return func(file string, autoMatch *calendar.Event, candidates []calendar.Event) (ingest.ReviewDecision, error) {
		p := tea.NewProgram(newReviewModel(file, autoMatch, candidates))
		final, err := p.Run()
		if err != nil {
			return ingest.ReviewDecision{}, err
		}
		m := final.(reviewModel)
		if m.aborted {
			return ingest.ReviewDecision{Skip: true}, nil
		}
		return m.decision, nil
	}
}

type reviewEntryKind int

const (
	entryCandidate reviewEntryKind = iota
	entryAdHoc
	entrySkip
)

type reviewEntry struct {
	kind  reviewEntryKind
	event calendar.Event
	auto  bool
}

type reviewModel struct {
	file      string
	entries   []reviewEntry
	cursor    int
	typing    bool
	textInput textinput.Model

	decision ingest.ReviewDecision
	aborted  bool
	done     bool
}

func newReviewModel(file string, autoMatch *calendar.Event, candidates []calendar.Event) reviewModel {
	ti := textinput.New()
	ti.Placeholder = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	ti.CharLimit = 200
	ti.Width = 50

	entries := make([]reviewEntry, 0, len(candidates)+2)
	for _, ev := range candidates {
		entries = append(entries, reviewEntry{
			kind:  entryCandidate,
			event: ev,
			auto:  autoMatch != nil && ev.Start.Equal(autoMatch.Start) && ev.Title == autoMatch.Title,
		})
	}
	entries = append(entries, reviewEntry{kind: entryAdHoc})
	entries = append(entries, reviewEntry{kind: entrySkip})

	return reviewModel{
		file:      file,
		entries:   entries,
		textInput: ti,
	}
}

func (m reviewModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.typing {
		switch keyMsg.String() {
		case "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		case "esc":
			m.typing = false
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.textInput.Value())
			if title == "" {
				title = m.textInput.Placeholder
			}
			m.decision = ingest.ReviewDecision{AdHocTitle: title}
			m.done = true
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(keyMsg)
			return m, cmd
		}
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter":
		entry := m.entries[m.cursor]
		switch entry.kind {
		case entryCandidate:
			ev := entry.event
			m.decision = ingest.ReviewDecision{Chosen: &ev}
			m.done = true
			return m, tea.Quit
		case entryAdHoc:
			m.typing = true
			m.textInput.Focus()
			return m, textinput.Blink
		case entrySkip:
			m.decision = ingest.ReviewDecision{Skip: true}
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m reviewModel) View() string {
	if m.typing {
		var s strings.Builder
		s.WriteString(reviewTitleStyle.Render("Meeting title") + "\n")
		s.WriteString(reviewSubtitleStyle.Render(filepath.Base(m.file)) + "\n\n")
		s.WriteString(m.textInput.View() + "\n\n")
		s.WriteString(reviewDimStyle.Render("Enter to confirm, Esc to go back"))
		return s.String()
	}

	var s strings.Builder
	s.WriteString(reviewTitleStyle.Render("Match a calendar event") + "\n")
	s.WriteString(reviewSubtitleStyle.Render(filepath.Base(m.file)) + "\n\n")

	for i, entry := range m.entries {
		cursor := "  "
		style := reviewNormalStyle
		if i == m.cursor {
			cursor = "> "
			style = reviewSelectedStyle
		}
		s.WriteString(cursor + style.Render(entryLabel(entry)) + "\n")
	}

	s.WriteString("\n" + reviewDimStyle.Render("up/down to move, enter to choose, q to skip"))
	return s.String()
}

func entryLabel(entry reviewEntry) string {
	switch entry.kind {
	case entryAdHoc:
		return "Type a title instead..."
	case entrySkip:
		return "Skip this file"
	default:
		label := fmt.Sprintf("%s (%s)", entry.event.Title, entry.event.Start.Format("Mon Jan 2 15:04"))
		if entry.auto {
			label += "  [auto-matched]"
		}
		return label
	}
}
