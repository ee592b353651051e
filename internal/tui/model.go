// Package tui provides the Bubble Tea simulation interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lottosim/internal/engine"
	"github.com/verte-zerg/lottosim/internal/model"
	"github.com/verte-zerg/lottosim/internal/stats"
)

const (
	tabSummary = iota
	tabFrequencies
	tabDraws
)

// Starter launches a simulation run. *engine.Engine satisfies it.
type Starter interface {
	Start(ctx context.Context, msg model.StartMessage) (<-chan model.Message, error)
}

type engineMsg struct {
	stream <-chan model.Message
	msg    model.Message
}

type streamClosedMsg struct {
	stream <-chan model.Message
}

// Model implements the Bubble Tea simulation UI.
type Model struct {
	starter Starter
	start   model.StartMessage
	parent  context.Context
	cancel  context.CancelFunc

	stream   <-chan model.Message
	runID    string
	phase    engine.State
	fraction float64
	result   *model.Message
	errMsg   string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	drawTable table.Model
	bar       progress.Model

	width  int
	height int
}

// NewModel constructs a simulation UI model. The run starts in Init and is
// cancelled when ctx is done or the user quits.
func NewModel(ctx context.Context, starter Starter, start model.StartMessage) *Model {
	m := &Model{
		starter: starter,
		start:   start,
		parent:  ctx,
		tabs:    []string{"Summary", "Frequencies", "Draws"},
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.drawTable = table.New(table.WithFocused(true))
	m.drawTable.SetStyles(drawTableStyles())
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.startRun()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case engineMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.handleEngineMessage(msg.msg)
		return m, waitForMessage(m.stream)
	case streamClosedMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.stream = nil
		if m.phase == engine.StateRunning {
			m.phase = engine.StateCancelled
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) startRun() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.parent)
	stream, err := m.starter.Start(ctx, m.start)
	if err != nil {
		cancel()
		m.cancel = nil
		m.phase = engine.StateFailed
		m.errMsg = err.Error()
		return nil
	}
	m.cancel = cancel
	m.stream = stream
	m.runID = ""
	m.phase = engine.StateRunning
	m.fraction = 0
	m.result = nil
	m.errMsg = ""
	m.renderTabContents()
	return waitForMessage(stream)
}

func waitForMessage(stream <-chan model.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-stream
		if !ok {
			return streamClosedMsg{stream: stream}
		}
		return engineMsg{stream: stream, msg: msg}
	}
}

func (m *Model) handleEngineMessage(msg model.Message) {
	if msg.RunID != "" {
		m.runID = msg.RunID
	}
	switch msg.Type {
	case model.MessageProgress:
		if p := msg.Progress().CompletedFraction; p > m.fraction {
			m.fraction = p
		}
	case model.MessageComplete:
		m.fraction = 1
		m.phase = engine.StateCompleted
		m.result = &msg
		m.renderTabContents()
	case model.MessageError:
		m.phase = engine.StateFailed
		m.errMsg = msg.Message
		m.renderTabContents()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "tab", "right", "l":
		m.moveTab(1)
		return m, nil
	case "shift+tab", "left", "h":
		m.moveTab(-1)
		return m, nil
	case "r":
		if m.stream != nil {
			return m, nil
		}
		return m, m.startRun()
	case "g", "home":
		if m.activeTab == tabDraws {
			m.drawTable.GotoTop()
		} else {
			m.viewports[m.activeTab].GotoTop()
		}
		return m, nil
	case "G", "end":
		if m.activeTab == tabDraws {
			m.drawTable.GotoBottom()
		} else {
			m.viewports[m.activeTab].GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.activeTab == tabDraws {
		m.drawTable, cmd = m.drawTable.Update(msg)
		return m, cmd
	}
	m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
	return m, cmd
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabDraws {
		m.drawTable.Focus()
	} else {
		m.drawTable.Blur()
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 2
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.drawTable.SetWidth(m.width)
	m.drawTable.SetHeight(maxInt(1, bodyHeight-1))
	m.bar.Width = maxInt(10, minInt(60, m.width-30))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderStatus() + "\n" + m.bar.ViewAs(m.fraction)
}

func (m *Model) renderStatus() string {
	run := "-"
	if len(m.runID) >= 8 {
		run = m.runID[:8]
	} else if m.runID != "" {
		run = m.runID
	}
	main, bonus := m.start.MainRangeSpec, m.start.BonusRangeSpec
	status := fmt.Sprintf("Run %s  %s  %d trials  %d of %d..%d + bonus %d..%d",
		run, m.phase, m.start.Iterations, main.Count, main.Min, main.Max, bonus.Min, bonus.Max)
	if m.start.Seed != 0 {
		status += "  seed " + strconv.FormatInt(m.start.Seed, 10)
	}
	return headerStyle.Render(truncateLine(status, m.width))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: tab/left/right  Scroll: up/down/pgup/pgdn  Rerun: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return help
}

func (m *Model) renderBody() string {
	if m.activeTab == tabDraws {
		if m.result == nil || len(m.result.TrailingDraws) == 0 {
			return "No draws yet."
		}
		return tableMutedStyle.Render(m.drawTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.result == nil || m.result.Statistics == nil {
		placeholder := "Simulation running..."
		switch m.phase {
		case engine.StateFailed:
			placeholder = "Simulation failed."
		case engine.StateCancelled:
			placeholder = "Simulation cancelled."
		}
		m.viewports[tabSummary].SetContent(placeholder)
		m.viewports[tabFrequencies].SetContent(placeholder)
		m.drawTable.SetRows(nil)
		return
	}
	s := *m.result.Statistics
	m.viewports[tabSummary].SetContent(renderSummary(s, width))
	m.viewports[tabFrequencies].SetContent(renderFrequencies(s, m.start, width))
	m.setDrawRows(m.result.TrailingDraws)
}

func (m *Model) setDrawRows(draws []model.Draw) {
	headers := stats.DrawHeaders()
	rows := stats.DrawRows(draws)
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = maxInt(widths[i], lipgloss.Width(cell))
		}
		tableRows = append(tableRows, table.Row(row))
	}
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: widths[i] + 1}
	}
	m.drawTable.SetColumns(cols)
	m.drawTable.SetRows(tableRows)
	m.drawTable.GotoBottom()
}

func renderSummary(s model.SimulationStatistics, width int) string {
	cards := []string{
		metricCard("Simulations", strconv.Itoa(s.TotalSimulations)),
		metricCard("Top Main", stats.FormatNumbers(s.MostFrequentMain)),
		metricCard("Top Bonus", strconv.Itoa(s.MostFrequentBonus)),
		metricCard("Avg Sum", strconv.Itoa(s.AverageSum)),
		metricCard("Time", s.ProcessingTime().String()),
	}
	var row string
	if width < 80 {
		row = strings.Join(cards, "\n")
	} else {
		row = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, s); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	return strings.TrimRight(row+"\n\n"+buf.String(), "\n")
}

func renderFrequencies(s model.SimulationStatistics, start model.StartMessage, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderFrequencyChart(&buf, "Main numbers", s.MainFrequency, start.MainRangeSpec, width, s.MostFrequentMain, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	if err := stats.RenderFrequencyChart(&buf, "Bonus numbers", s.BonusFrequency, start.BonusRangeSpec, width, []int{s.MostFrequentBonus}, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}
