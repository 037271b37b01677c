package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	cl "ittycoon/internal/cli"
	"ittycoon/internal/cheat"
	"ittycoon/internal/game"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const feedSize = 6

type keyMap struct {
	Work   key.Binding
	Nap    key.Binding
	Sleep  key.Binding
	Coffee key.Binding
	Repay  key.Binding
	Hack   key.Binding
	Quiz   key.Binding
	Pause  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// Bindings avoid every letter used by a cheat code so typing a code never
// triggers an action.
var keys = keyMap{
	Work:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "work")),
	Nap:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nap")),
	Sleep:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sleep")),
	Coffee: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "coffee")),
	Repay:  key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "repay credit")),
	Hack:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hack the bbs")),
	Quiz:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "answer quiz")),
	Pause:  key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Work, k.Nap, k.Coffee, k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Work, k.Nap, k.Sleep, k.Coffee},
		{k.Repay, k.Hack, k.Quiz, k.Pause},
		{k.Help, k.Quit},
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

type tickMsg time.Time

type refreshMsg struct {
	view  cl.View
	notes []game.Notification
	err   error
}

type cheatMsg struct {
	toggled []cheat.Toggled
	notes   []game.Notification
	err     error
}

type model struct {
	ctx     context.Context
	s       *session
	catalog *game.Catalog
	keys    keyMap
	help    help.Model
	view    cl.View
	feed    []string
	err     error
}

func runTUI(ctx context.Context, s *session) error {
	cat := game.DefaultCatalog()
	if s.local != nil {
		cat = s.local.Catalog()
	}
	m := model{ctx: ctx, s: s, catalog: cat, keys: keys, help: help.New()}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh(0), m.tick())
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.s.rules.TickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) refresh(ticks int) tea.Cmd {
	return func() tea.Msg {
		var (
			v   cl.View
			err error
		)
		if ticks > 0 {
			v, err = m.s.backend.Tick(m.ctx, ticks)
		} else {
			v, err = m.s.backend.State(m.ctx)
		}
		return refreshMsg{view: v, notes: collectNotifications(m.ctx, m.s.backend), err: err}
	}
}

func (m model) act(name string, payload any) tea.Cmd {
	return func() tea.Msg {
		var raw json.RawMessage
		if payload != nil {
			raw, _ = json.Marshal(payload)
		}
		v, err := m.s.backend.Act(m.ctx, name, raw)
		return refreshMsg{view: v, notes: collectNotifications(m.ctx, m.s.backend), err: err}
	}
}

func (m model) togglePause() tea.Cmd {
	paused := !m.view.Paused
	return func() tea.Msg {
		v, err := m.s.backend.SetPaused(m.ctx, paused)
		return refreshMsg{view: v, err: err}
	}
}

func (m model) feedCheat(k string) tea.Cmd {
	return func() tea.Msg {
		toggled, err := m.s.backend.CheatKeys(m.ctx, []string{k})
		if err != nil || len(toggled) == 0 {
			return cheatMsg{err: err}
		}
		return cheatMsg{toggled: toggled, notes: collectNotifications(m.ctx, m.s.backend)}
	}
}

func collectNotifications(ctx context.Context, b cl.Backend) []game.Notification {
	var out []game.Notification
	for {
		n, ok, err := b.NextNotification(ctx)
		if err != nil || !ok {
			return out
		}
		out = append(out, n)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		ticks := 0
		if m.s.local != nil && !m.view.Paused && !m.view.State.GameOver {
			ticks = 1
		}
		return m, tea.Batch(m.refresh(ticks), m.tick())

	case refreshMsg:
		m.err = msg.err
		if msg.view.State.Version > 0 {
			m.view = msg.view
		}
		m.pushNotes(msg.notes)
		return m, nil

	case cheatMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		m.pushNotes(msg.notes)
		if len(msg.toggled) > 0 {
			return m, m.refresh(0)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) pushNotes(notes []game.Notification) {
	for _, n := range notes {
		m.feed = append(m.feed, renderNotification(n))
	}
	m.feed = trimFeed(m.feed, feedSize)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if k := msg.String(); len(k) == 1 || isDirection(k) {
		cmds = append(cmds, m.feedCheat(k))
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		cmds = append(cmds, m.togglePause())
	case key.Matches(msg, m.keys.Work):
		cmds = append(cmds, m.act("work", nil))
	case key.Matches(msg, m.keys.Nap):
		cmds = append(cmds, m.act("start_rest", map[string]string{"optionId": "nap"}))
	case key.Matches(msg, m.keys.Sleep):
		cmds = append(cmds, m.act("start_rest", map[string]string{"optionId": "sleep"}))
	case key.Matches(msg, m.keys.Coffee):
		cmds = append(cmds, m.act("buy_shop_item", map[string]string{"itemId": "coffee"}))
	case key.Matches(msg, m.keys.Repay):
		cmds = append(cmds, m.act("repay_credit", nil))
	case key.Matches(msg, m.keys.Hack):
		cmds = append(cmds, m.act("hack", map[string]string{"targetId": "bbs"}))
	case key.Matches(msg, m.keys.Quiz):
		cmds = append(cmds, m.act("answer_quiz", map[string]bool{"correct": true}))
	}
	return m, tea.Batch(cmds...)
}

func renderNotification(n game.Notification) string {
	switch n.Kind {
	case game.NotifyGameOver:
		return errStyle.Render(n.Message)
	case game.NotifyCreditWarning:
		return warnStyle.Render(n.Message)
	default:
		return goodStyle.Render(n.Message)
	}
}

func bar(v, maxV float64, width int) string {
	if maxV <= 0 {
		return strings.Repeat("░", width)
	}
	filled := int(v / maxV * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (m model) View() string {
	s := m.view.State
	if s.Version == 0 {
		return "loading..."
	}

	header := titleStyle.Render("IT Tycoon") + "  " + s.Date.String()
	if m.view.Paused {
		header += "  " + warnStyle.Render("PAUSED")
	}

	st := s.Stats
	stats := joinLines(
		labelStyle.Render("money   ")+formatMoney(st.Money),
		labelStyle.Render("health  ")+bar(st.Health, st.MaxHealth, 20)+fmt.Sprintf(" %.0f", st.Health),
		labelStyle.Render("mood    ")+bar(st.Mood, st.MaxMood, 20)+fmt.Sprintf(" %.0f", st.Mood),
		labelStyle.Render("stamina ")+bar(st.Stamina, st.MaxStamina, 20)+fmt.Sprintf(" %.0f", st.Stamina),
		labelStyle.Render("school  ")+fmt.Sprintf("%.0f (%s)", st.Education, s.EducationProgress.Status),
	)

	career := labelStyle.Render("unemployed")
	if job, ok := m.catalog.Job(s.Job.ID); ok {
		career = fmt.Sprintf("%s, level %d", job.Title, s.Job.Levels[job.ID])
	}
	if s.Activity != nil {
		career += "\n" + warnStyle.Render("resting: "+s.Activity.OptionID)
	}
	bank := labelStyle.Render("no credit")
	for _, c := range s.Banking.Credits {
		left := game.CreditDaysLeft(c, s.Date)
		line := fmt.Sprintf("owe %s in %dd", formatMoney(c.TotalDue), left)
		if left <= m.s.rules.CreditWarningDays {
			line = warnStyle.Render(line)
		}
		bank = line
	}
	for _, d := range s.Banking.Deposits {
		bank += fmt.Sprintf("\nsaved %s +%s", formatMoney(d.Amount), formatMoney(d.AccumulatedInterest))
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(stats),
		boxStyle.Render(joinLines(career, "", bank)),
	)

	var b strings.Builder
	b.WriteString(header + "\n" + panels + "\n")
	for _, line := range m.feed {
		b.WriteString(line + "\n")
	}
	if s.GameOver {
		b.WriteString(errStyle.Render("GAME OVER: "+string(s.GameOverReason)) + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
