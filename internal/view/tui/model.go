// Package tui is a terminal view over a search session built on Bubble Tea.
package tui

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/session"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loadMoreThreshold is how close to the last card the selection must get before the next page is requested
const loadMoreThreshold = 3

const cardHeight = 4

var (
	colorAccent = lipgloss.Color("39")
	colorMuted  = lipgloss.Color("245")
	colorError  = lipgloss.Color("196")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
)

// SnapshotMsg carries a session snapshot into the update loop
type SnapshotMsg session.Snapshot

// ClosedMsg is sent once the session's update channel is closed
type ClosedMsg struct{}

type Model struct {
	sess         *session.Session
	updates      <-chan session.Snapshot
	unsubscribe  func()
	host         string
	initialQuery string

	input   textinput.Model
	spinner spinner.Model

	snap     session.Snapshot
	selected int
	width    int
	height   int
}

func New(sess *session.Session, host, initialQuery string) Model {
	ti := textinput.New()
	ti.Placeholder = "検索ワード"
	ti.CharLimit = 200
	ti.Width = 40
	ti.SetValue(initialQuery)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	updates, unsubscribe := sess.Subscribe()

	return Model{
		sess:         sess,
		updates:      updates,
		unsubscribe:  unsubscribe,
		host:         host,
		initialQuery: initialQuery,
		input:        ti,
		spinner:      s,
		snap:         sess.Snapshot(),
		width:        80,
		height:       24,
	}
}

func (m Model) Init() tea.Cmd {
	if m.initialQuery != "" {
		m.sess.Submit(m.initialQuery)
	}
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForSnapshot(m.updates))
}

func waitForSnapshot(updates <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return ClosedMsg{}
		}
		return SnapshotMsg(snap)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-10, 10)
		return m, nil

	case SnapshotMsg:
		m.snap = session.Snapshot(msg)
		if m.selected >= len(m.snap.Results) {
			m.selected = max(len(m.snap.Results)-1, 0)
		}
		return m, waitForSnapshot(m.updates)

	case ClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.unsubscribe()
		m.sess.Close()
		return m, tea.Quit

	case "enter":
		m.sess.Submit(m.input.Value())
		m.selected = 0
		return m, nil

	case "down", "ctrl+n":
		if m.selected < len(m.snap.Results)-1 {
			m.selected++
		}
		m.maybeLoadMore()
		return m, nil

	case "pgdown":
		m.selected = min(m.selected+m.visibleCards(), max(len(m.snap.Results)-1, 0))
		m.maybeLoadMore()
		return m, nil

	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "pgup":
		m.selected = max(m.selected-m.visibleCards(), 0)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// maybeLoadMore is the terminal's scroll-proximity trigger; the session drops
// the call when nothing more can be fetched.
func (m Model) maybeLoadMore() {
	n := len(m.snap.Results)
	if n > 0 && n-1-m.selected < loadMoreThreshold {
		m.sess.LoadMore()
	}
}

func (m Model) visibleCards() int {
	return max((m.height-6)/cardHeight, 1)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Wiki Search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.snap.Status == session.Loading:
		b.WriteString(m.spinner.View() + " 検索中...\n")
		return b.String()
	case m.snap.ErrorMessage != "" && len(m.snap.Results) == 0:
		b.WriteString(errorStyle.Render(m.snap.ErrorMessage) + "\n")
		return b.String()
	case m.snap.Searched && len(m.snap.Results) == 0:
		b.WriteString(mutedStyle.Render("検索したワードはヒットしませんでした。") + "\n")
		return b.String()
	case len(m.snap.Results) == 0:
		b.WriteString(mutedStyle.Render("enter: 検索  ↑/↓: 移動  esc: 終了") + "\n")
		return b.String()
	}

	line := lipgloss.NewStyle().MaxWidth(max(m.width-2, 20))
	start, end := m.window()
	for i := start; i < end; i++ {
		b.WriteString(m.renderCard(line, i, m.snap.Results[i]))
	}

	switch {
	case m.snap.Status == session.LoadingMore:
		b.WriteString(m.spinner.View() + " 読み込み中...\n")
	case m.snap.ErrorMessage != "":
		b.WriteString(errorStyle.Render(m.snap.ErrorMessage) + "\n")
	case !m.snap.HasMore:
		b.WriteString(mutedStyle.Render("すべての結果を表示しました") + "\n")
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d", m.selected+1, len(m.snap.Results))))
	return b.String()
}

func (m Model) window() (int, int) {
	n := len(m.snap.Results)
	visible := m.visibleCards()
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	return start, min(start+visible, n)
}

func (m Model) renderCard(line lipgloss.Style, i int, r wiki.Result) string {
	title := r.Title
	if i == m.selected {
		title = selectedStyle.Render("> " + title)
	} else {
		title = "  " + title
	}

	return line.Render(title) + "\n" +
		line.Render("  "+r.DisplaySnippet) + "\n" +
		mutedStyle.Render(line.Render(fmt.Sprintf("  最終更新日：%s  %s", r.DisplayDate, wiki.PageURL(m.host, r.ID)))) + "\n\n"
}

// Run blocks until the user quits
func Run(sess *session.Session, host, initialQuery string) error {
	p := tea.NewProgram(New(sess, host, initialQuery), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
