// Package tui is the interactive terminal browser. It drives a
// service.Session and renders its state; it holds no state of its own
// beyond what is on screen.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/fspath"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/macho"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/navigation"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/recent"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/service"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/tree"
)

const statusTimeout = 4 * time.Second

type mode int

const (
	modeRecent mode = iota
	modeOpening
	modeBrowse
)

type recentMsg struct {
	entries []recent.Entry
	err     error
}

type openedMsg struct {
	result *service.OpenResult
	err    error
}

type navigatedMsg struct {
	crumbs []navigation.Item
	err    error
}

type listedMsg struct {
	path    fspath.Path
	entries []tree.Entry
	err     error
}

type prunedMsg struct {
	paths []string
	err   error
}

type eventMsg struct {
	ev service.Event
	ok bool
}

type statusExpiredMsg struct {
	id int
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	session *service.Session
	events  <-chan service.Event

	mode    mode
	recent  []recent.Entry
	entries []tree.Entry
	crumbs  []navigation.Item
	cursor  int
	offset  int
	width   int
	height  int

	spinner  spinner.Model
	opening  string
	done     int
	total    int
	initial  string
	quitting bool

	status    string
	statusErr bool
	statusID  int
}

// NewModel creates the browser. When path is not empty it is opened on
// start; otherwise the recent entries are shown. events should come from
// session.Subscribe.
func NewModel(ctx context.Context, session *service.Session, events <-chan service.Event, path string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		ctx:     ctx,
		session: session,
		events:  events,
		spinner: sp,
		width:   100,
		height:  30,
		initial: path,
	}
	if path != "" {
		m.mode = modeOpening
		m.opening = path
	}
	return m
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, session *service.Session, path string) error {
	events, cancel := session.Subscribe(64)
	defer cancel()

	p := tea.NewProgram(NewModel(ctx, session, events, path), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvent()}
	if m.initial != "" {
		cmds = append(cmds, m.spinner.Tick, m.openSource(m.initial, false))
	} else {
		cmds = append(cmds, m.loadRecent())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case spinner.TickMsg:
		if m.mode != modeOpening {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if !msg.ok {
			return m, nil
		}
		return m.handleEvent(msg.ev)

	case recentMsg:
		if msg.err != nil {
			cmd := m.setStatus(msg.err.Error(), true)
			return m, cmd
		}
		m.recent = msg.entries
		m.clampCursor(len(m.recent))
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.mode = modeRecent
			m.cursor, m.offset = 0, 0
			cmd := m.setStatus(msg.err.Error(), true)
			return m, tea.Batch(cmd, m.loadRecent())
		}
		m.mode = modeBrowse
		m.crumbs = msg.result.Breadcrumbs
		m.cursor, m.offset = 0, 0
		return m, m.list()

	case navigatedMsg:
		if msg.err != nil {
			cmd := m.setStatus(msg.err.Error(), true)
			return m, cmd
		}
		m.crumbs = msg.crumbs
		m.cursor, m.offset = 0, 0
		return m, m.list()

	case listedMsg:
		if msg.err != nil {
			cmd := m.setStatus(msg.err.Error(), true)
			return m, cmd
		}
		m.entries = msg.entries
		m.clampCursor(len(m.entries))
		return m, nil

	case prunedMsg:
		if msg.err != nil {
			cmd := m.setStatus(msg.err.Error(), true)
			return m, cmd
		}
		cmd := m.setStatus(fmt.Sprintf("Pruned %d missing entries", len(msg.paths)), false)
		return m, tea.Batch(cmd, m.loadRecent())

	case statusExpiredMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeRecent:
			return m.updateRecent(msg)
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeOpening:
			if msg.String() == "ctrl+c" {
				m.quitting = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m Model) handleEvent(ev service.Event) (tea.Model, tea.Cmd) {
	next := m.waitForEvent()

	switch ev.Kind {
	case service.EventProgress:
		m.done, m.total = ev.Done, ev.Total
	case service.EventEntryMissing:
		cmd := m.setStatus("No longer exists: "+ev.Source, false)
		return m, tea.Batch(next, cmd)
	}
	return m, next
}

func (m Model) updateRecent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1, len(m.recent))

	case "down", "j":
		m.moveCursor(1, len(m.recent))

	case "enter", "right", "l":
		if len(m.recent) > 0 {
			path := m.recent[m.cursor].Path
			m.mode = modeOpening
			m.opening = path
			m.done, m.total = 0, 0
			return m, tea.Batch(m.spinner.Tick, m.openSource(path, true))
		}

	case "d", "x":
		if len(m.recent) > 0 {
			path := m.recent[m.cursor].Path
			if err := m.session.RemoveRecent(path); err != nil {
				cmd := m.setStatus(err.Error(), true)
				return m, cmd
			}
			return m, m.loadRecent()
		}

	case "p":
		return m, m.pruneRecent()

	case "b":
		if !m.session.Current().IsZero() {
			m.mode = modeBrowse
			m.cursor, m.offset = 0, 0
			m.crumbs = m.session.Breadcrumbs()
			return m, m.list()
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1, len(m.entries))

	case "down", "j":
		m.moveCursor(1, len(m.entries))

	case "home", "g":
		m.cursor = 0
		m.clampOffset()

	case "end", "G":
		m.cursor = max(0, len(m.entries)-1)
		m.clampOffset()

	case "enter", "right", "l":
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.cursor]
		if e.IsDir {
			return m, m.navigate(func() ([]navigation.Item, error) { return m.session.NavigateTo(e.Path) })
		}
		cmd := m.setStatus(describeEntry(e), false)
		return m, cmd

	case "backspace", "left", "h":
		return m, m.navigate(m.session.Up)

	case "c":
		if len(m.entries) == 0 {
			return m, nil
		}
		p, err := fspath.New(m.entries[m.cursor].Path)
		if err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		rel, err := navigation.RelativePath(m.session.Root(), p)
		if err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		cmd := m.setStatus("Relative path: "+rel, false)
		return m, cmd

	case "r", "esc":
		m.mode = modeRecent
		m.cursor, m.offset = 0, 0
		return m, m.loadRecent()
	}

	// 1-9 jump to a breadcrumb
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		if i < len(m.crumbs) {
			target := m.session.ResolveBreadcrumb(m.crumbs[i])
			return m, m.navigate(func() ([]navigation.Item, error) { return m.session.OpenPath(target.String()) })
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("IPAView"))

	switch m.mode {
	case modeOpening:
		b.WriteString(dimStyle.Render("  opening") + "\n\n")
		b.WriteString(fmt.Sprintf("  %s %s", m.spinner.View(), m.opening))
		if m.total > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d entries", m.done, m.total)))
		}
		b.WriteString("\n")
		return b.String()

	case modeRecent:
		b.WriteString(dimStyle.Render(fmt.Sprintf("  recent  %d entries", len(m.recent))) + "\n\n")
		m.renderRows(&b, len(m.recent), func(i int) string {
			e := m.recent[i]
			return e.Path + "  " + dimStyle.Render(e.OpenedAt.Local().Format("2006-01-02 15:04"))
		})
		b.WriteString(m.renderStatus())
		b.WriteString(helpStyle.Render("  Enter: open  d: remove  p: prune  b: back to tree  q: quit"))

	case modeBrowse:
		b.WriteString("\n" + m.renderCrumbs() + "\n")
		m.renderRows(&b, len(m.entries), func(i int) string {
			return renderEntry(m.entries[i])
		})
		b.WriteString(m.renderStatus())
		b.WriteString(helpStyle.Render("  Enter: open dir  ←: up  1-9: jump  c: relative path  r: recent  q: quit"))
	}

	return b.String()
}

func (m Model) renderRows(b *strings.Builder, n int, row func(int) string) {
	visible := m.visibleRows()
	end := min(m.offset+visible, n)

	if n == 0 {
		b.WriteString(dimStyle.Render("  (empty)") + "\n")
	}
	for i := m.offset; i < end; i++ {
		line := row(i)
		if i == m.cursor {
			line = lipgloss.PlaceHorizontal(m.width, lipgloss.Left, selectedStyle.Render(line))
		} else {
			line = normalStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	for i := max(end-m.offset, 1); i < visible; i++ {
		b.WriteString("\n")
	}
}

func (m Model) renderCrumbs() string {
	parts := make([]string, len(m.crumbs))
	for i, c := range m.crumbs {
		label := c.Name
		if i < 9 {
			label = crumbIndexStyle.Render(fmt.Sprintf("%d:", i+1)) + label
		}
		parts[i] = label
	}
	return crumbStyle.Render(strings.Join(parts, " "))
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return "\n"
	}
	if m.statusErr {
		return errorStyle.Render(m.status) + "\n"
	}
	return statusStyle.Render(m.status) + "\n"
}

func renderEntry(e tree.Entry) string {
	if e.IsDir {
		return dirStyle.Render(e.Name + "/")
	}
	line := pad(e.Name, 40) + " " + dimStyle.Render(pad(tree.FormatBytes(e.Size), 10))
	if e.Kind == macho.NativeExecutable {
		line += " " + execTag.Render("EXEC "+e.Magic.String())
	}
	return line
}

func describeEntry(e tree.Entry) string {
	desc := fmt.Sprintf("%s  %s  %s", e.Name, tree.FormatBytes(e.Size), e.Mode)
	if e.Kind == macho.NativeExecutable {
		desc += "  executable (" + e.Magic.String() + ")"
	}
	return desc
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusErr = isErr
	id := m.statusID
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusExpiredMsg{id: id}
	})
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{ev: ev, ok: ok}
	}
}

func (m Model) loadRecent() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		entries, err := s.ListRecent()
		return recentMsg{entries: entries, err: err}
	}
}

func (m Model) pruneRecent() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		paths, err := s.PruneRecent()
		return prunedMsg{paths: paths, err: err}
	}
}

func (m Model) openSource(path string, fromRecent bool) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		var res *service.OpenResult
		var err error
		if fromRecent {
			res, err = s.OpenRecent(ctx, path)
		} else {
			res, err = s.OpenSource(ctx, path)
		}
		return openedMsg{result: res, err: err}
	}
}

func (m Model) navigate(fn func() ([]navigation.Item, error)) tea.Cmd {
	return func() tea.Msg {
		crumbs, err := fn()
		return navigatedMsg{crumbs: crumbs, err: err}
	}
}

func (m Model) list() tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		entries, err := s.List(ctx)
		return listedMsg{path: s.Current(), entries: entries, err: err}
	}
}

func (m *Model) moveCursor(delta, n int) {
	m.cursor = max(0, min(m.cursor+delta, n-1))
	m.clampOffset()
}

func (m *Model) clampCursor(n int) {
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	m.clampOffset()
}

func (m Model) visibleRows() int {
	// title, breadcrumbs, status and help lines
	return max(m.height-5, 1)
}

func (m *Model) clampOffset() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
