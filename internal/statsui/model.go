// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/model"
	"github.com/lmeritt/sketchtrace/internal/stats"
	"github.com/lmeritt/sketchtrace/internal/store"
)

const (
	tabOverview = iota
	tabShapeTable
	tabShapeCurves
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report      stats.Report
	errMsg      string
	shapeErrMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	shapeTable  table.Model
	shapeLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	shapeSelection       []string
	shapeSelectionCustom bool
	shapePerSession      map[string]map[string]model.ShapeAggregate

	shapeInputMode  bool
	shapeInput      textinput.Model
	shapeInputError string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Shape Table", "Shape Curves"},
	}
	m.shapeSelection = parseShapeKinds(cfg.Shapes)
	if len(m.shapeSelection) > 0 {
		m.shapeSelectionCustom = true
	}
	m.initInputs()
	m.initShapeInput()
	m.initShapeTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
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
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabShapeTable {
			m.shapeTable.Focus()
		} else {
			m.shapeTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.shapeInputMode {
			return m.updateShapeInput(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabShapeCurves {
				return m.startShapeInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabShapeTable {
				m.shapeTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabShapeTable {
				m.shapeTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabShapeTable {
				var cmd tea.Cmd
				m.shapeTable, cmd = m.shapeTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.shapeInputMode {
		return fitLines(m.renderShapeModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Lesson: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initShapeTable() {
	m.shapeTable = buildShapeTable(nil, nil, 0, 1)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) initShapeInput() {
	m.shapeInput = newFilterInput("Shapes: ")
	m.shapeInput.Prompt = "Shapes: "
	m.shapeInput.Placeholder = "circle,line,curve"
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Lesson))
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setShapeTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
	promptWidth := lipgloss.Width(m.shapeInput.Prompt)
	m.shapeInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabShapeTable {
		m.shapeTable.Focus()
	} else {
		m.shapeTable.Blur()
	}
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
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	lesson := m.cfg.Lesson
	if lesson == "" {
		lesson = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: lesson=%s  since=%s  last=%s  window=%d", lesson, since, last, m.cfg.CurveWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabShapeCurves {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Edit shapes: enter  Window: -/=  Settings: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: q")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabShapeTable {
		switch {
		case len(m.report.Sessions) == 0:
			return fitLines("No sessions found.", m.width, height)
		case len(m.report.ShapeAggsAll) == 0:
			return fitLines("No shape stats found.", m.width, height)
		default:
			view := tableMutedStyle.Render(m.shapeTable.View())
			return fitLines(view, m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.shapeErrMsg = ""
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	if !m.shapeSelectionCustom {
		m.shapeSelection = stats.TopShapesByAttempts(m.report.ShapeAggsAll, 5)
	}
	m.loadShapePerSession()
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	applyShapeTable(m, m.report.Sessions, m.report.ShapeAggsAll, width, bodyHeight, true)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report.Sessions, m.cfg.CurveWindow, width))
	m.viewports[tabShapeCurves].SetContent(renderShapeCurves(m.report.Sessions, m.shapeSelection, m.shapePerSession, m.cfg.CurveWindow, width, m.shapeErrMsg))
}

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(sessions, width)
	curves := renderCurves(sessions, window, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	var totalCompletion, totalSPM, totalAcc float64
	bestAcc := 0.0
	for _, s := range sessions {
		completion, spm, acc := stats.SessionMetrics(s)
		totalCompletion += completion
		totalSPM += spm
		totalAcc += acc
		if s.BestAccuracy > bestAcc {
			bestAcc = s.BestAccuracy
		}
	}
	count := float64(len(sessions))
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", (totalAcc/count)*100)),
		metricCard("Best Acc", fmt.Sprintf("%.1f%%", bestAcc*100)),
		metricCard("Completion", fmt.Sprintf("%.1f%%", (totalCompletion/count)*100)),
		metricCard("Strokes/min", fmt.Sprintf("%.1f", totalSPM/count)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(sessions []model.SessionAggregate, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildShapeTable(sessions []model.SessionAggregate, aggs []model.ShapeAggregate, width, height int) table.Model {
	columns, rows := buildShapeTableData(sessions, aggs)
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	styles := shapeTableStyles()
	t.SetStyles(styles)
	return t
}

func applyShapeTable(m *Model, sessions []model.SessionAggregate, aggs []model.ShapeAggregate, width, height int, force bool) {
	cols, rows := buildShapeTableData(sessions, aggs)
	viewportHeight := maxInt(1, height-1)
	if !force &&
		m.shapeLayout.width == width &&
		m.shapeLayout.height == viewportHeight &&
		m.shapeLayout.rowCount == len(rows) &&
		m.shapeLayout.colCount == len(cols) {
		return
	}
	m.shapeTable.SetColumns(cols)
	m.shapeTable.SetRows(rows)
	m.shapeLayout.rowCount = len(rows)
	m.shapeLayout.colCount = len(cols)
	m.setShapeTableSize(width, height)
}

func (m *Model) setShapeTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.shapeLayout.width == width && m.shapeLayout.height == viewportHeight {
		return
	}
	m.shapeLayout.width = width
	m.shapeLayout.height = viewportHeight
	m.shapeTable.SetWidth(width)
	m.shapeTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustShapeTableHeight(height)
	if m.shapeLayout.height != viewportHeight {
		m.shapeLayout.height = viewportHeight
		m.shapeTable.SetHeight(viewportHeight)
	}
}

func shapeTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) adjustShapeTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.shapeTable.Height()
	viewHeight := lipgloss.Height(m.shapeTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.shapeTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.shapeTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func buildShapeTableData(sessions []model.SessionAggregate, aggs []model.ShapeAggregate) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Shape", Width: 10},
		{Title: "Avg Accuracy", Width: 12},
		{Title: "Correct", Width: 8},
		{Title: "Best", Width: 8},
		{Title: "Attempts", Width: 8},
	}
	rows := make([]table.Row, 0, len(aggs))
	if len(sessions) == 0 || len(aggs) == 0 {
		return columns, rows
	}
	sorted := sortShapeAggsByAttempts(aggs)
	for _, agg := range sorted {
		correctRate := 0.0
		if agg.Attempts > 0 {
			correctRate = float64(agg.Correct) / float64(agg.Attempts) * 100
		}
		rows = append(rows, table.Row{
			agg.ShapeKind,
			fmt.Sprintf("%.2f%%", agg.AvgAccuracy*100),
			fmt.Sprintf("%.2f%%", correctRate),
			fmt.Sprintf("%.2f%%", agg.BestAccuracy*100),
			fmt.Sprintf("%d", agg.Attempts),
		})
	}
	return columns, rows
}

func renderShapeCurves(sessions []model.SessionAggregate, kinds []string, perSession map[string]map[string]model.ShapeAggregate, window, width int, errMsg string) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	if errMsg != "" {
		return fmt.Sprintf("Failed to load shape curves: %s", errMsg)
	}
	if len(kinds) == 0 {
		return "No shapes selected. Press Enter to choose shape kinds."
	}
	header := headerStyle.Render(fmt.Sprintf("Shapes: %s", strings.Join(kinds, ", ")))
	var buf bytes.Buffer
	if err := stats.RenderShapeCurvesWithSize(&buf, sessions, perSession, kinds, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render shape curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) startShapeInput() (tea.Model, tea.Cmd) {
	m.shapeInputMode = true
	m.shapeInputError = ""
	m.shapeInput.SetValue(strings.Join(m.shapeSelection, ","))
	return m, m.shapeInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) updateShapeInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.shapeInputMode = false
		m.shapeInputError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyShapeInput(); err != nil {
			m.shapeInputError = err.Error()
			return m, nil
		}
		m.shapeInputMode = false
		m.shapeInputError = ""
		m.loadShapePerSession()
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.shapeInput, cmd = m.shapeInput.Update(msg)
	normalized := normalizeShapeInput(m.shapeInput.Value())
	if normalized != m.shapeInput.Value() {
		m.shapeInput.SetValue(normalized)
	}
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	lesson := strings.TrimSpace(m.filterInputs[0].Value())
	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[3].Value())
	window := 0
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil {
			return fmt.Errorf("invalid curve window (use integer)")
		}
		if parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg = model.StatsConfig{
		Lesson:      lesson,
		Since:       since,
		Last:        last,
		CurveWindow: window,
	}
	return nil
}

func (m *Model) applyShapeInput() error {
	raw := normalizeShapeInput(m.shapeInput.Value())
	kinds := parseShapeKinds(raw)
	if len(kinds) == 0 {
		m.shapeSelectionCustom = false
		m.shapeSelection = stats.TopShapesByAttempts(m.report.ShapeAggsAll, 5)
		return nil
	}
	for _, kind := range kinds {
		if !geom.KnownKind(kind) {
			return fmt.Errorf("unknown shape kind %q", kind)
		}
	}
	m.shapeSelectionCustom = true
	m.shapeSelection = kinds
	return nil
}

func (m *Model) renderShapeModal() string {
	title := cardValueStyle.Render("Select Shape Kinds")
	body := []string{
		title,
		m.shapeInput.View(),
		headerStyle.Render("Comma-separated kinds: " + kindList()),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	if m.shapeInputError != "" {
		body = append(body, errorStyle.Render(m.shapeInputError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) loadShapePerSession() {
	m.shapeErrMsg = ""
	m.shapePerSession = nil
	if len(m.report.Sessions) == 0 || len(m.shapeSelection) == 0 {
		return
	}
	perSession, err := m.store.ListShapeStatsForSessions(context.Background(), sessionIDs(m.report.Sessions), m.shapeSelection)
	if err != nil {
		m.shapeErrMsg = err.Error()
		return
	}
	m.shapePerSession = perSession
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func sessionIDs(sessions []model.SessionAggregate) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func kindList() string {
	kinds := geom.Kinds()
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func parseShapeKinds(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func normalizeShapeInput(input string) string {
	if input == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func sortShapeAggsByAttempts(aggs []model.ShapeAggregate) []model.ShapeAggregate {
	out := append([]model.ShapeAggregate(nil), aggs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attempts == out[j].Attempts {
			return out[i].ShapeKind < out[j].ShapeKind
		}
		return out[i].Attempts > out[j].Attempts
	})
	return out
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
