// Package tui provides the interactive Bubble Tea dashboard for runway.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/recurrence"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// Options configures the dashboard.
type Options struct {
	DBPath        string
	ConfigPath    string
	StatementsDir string    // imported before each load when set
	Today         date.Date // zero follows the wall clock
	Config        config.Config
	Log           zerolog.Logger
}

// DataLoadedMsg is sent when a forecast finishes loading.
type DataLoadedMsg struct {
	Today        date.Date
	Result       model.Result
	Summary      model.Summary
	Patterns     []recurrence.Pattern
	Breakdown    []model.CategoryTotal
	Transactions int
	Imported     int
	LoadTime     time.Duration
	Err          error
}

// ProgressMsg reports statement parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	memo *pipeline.Memo

	// Data
	data     DataLoadedMsg
	loaded   bool
	loadedAt time.Time

	refreshing bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	daily     dailyState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
	setupErr  error

	// Loading, with channel-based progress
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options, needSetup bool) App {
	theme.SetActive(opts.Config.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	vals := SetupValuesFrom(opts.Config)
	return App{
		opts:      opts,
		memo:      pipeline.NewMemo(4),
		needSetup: needSetup,
		setupVals: &vals,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.today(), a.memo, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a App) today() date.Date {
	if !a.opts.Today.IsZero() {
		return a.opts.Today
	}
	return date.Today()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabDaily {
				a.daily.move(-1, len(a.dailyDays()))
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabDaily {
				a.daily.move(1, len(a.dailyDays()))
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case DataLoadedMsg:
		first := !a.loaded
		a.data = msg
		a.loaded = true
		a.refreshing = false
		a.loadedAt = time.Now()
		a.daily.clamp(len(a.dailyDays()))

		if first && a.needSetup {
			a.setupForm = NewSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		// Reload once the wall clock crosses midnight.
		if a.loaded && !a.refreshing && a.opts.Today.IsZero() && a.data.Today != date.Today() {
			a.refreshing = true
			return a, tea.Batch(tickCmd(), a.refreshCmd())
		}
		return a, tickCmd()
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabDaily {
		n := len(a.dailyDays())
		switch key {
		case "j", "down":
			a.daily.move(1, n)
			return a, nil
		case "k", "up":
			a.daily.move(-1, n)
			return a, nil
		case "g":
			a.daily.cursor = 0
			return a, nil
		case "G":
			a.daily.cursor = max(n-1, 0)
			return a, nil
		case "h":
			a.daily.history = !a.daily.history
			a.daily.cursor = 0
			a.daily.clamp(len(a.dailyDays()))
			return a, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, a.refreshCmd()
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupErr = SaveSetup(*a.setupVals, a.opts.ConfigPath, a.opts.DBPath, a.today())
		if a.setupErr == nil {
			if cfg, err := config.LoadFile(a.opts.ConfigPath); err == nil {
				a.opts.Config = cfg
			}
		}
		a.needSetup = false
		a.setupForm = nil
		a.refreshing = true
		return a, a.refreshCmd()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) refreshCmd() tea.Cmd {
	opts, today, memo := a.opts, a.today(), a.memo
	return func() tea.Msg {
		return load(opts, today, memo, nil)
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) currency() string {
	return config.GetCurrency(a.opts.Config)
}

func (a App) money(d decimal.Decimal) string {
	return cli.FormatMoney(d, a.currency())
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  runway needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ runway"))
	b.WriteString(subtitleStyle.Render(" · Balance Forecast"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Importing statements\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Projecting balances..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"o d e b", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Move through days"},
		{"g G", "First / last day"},
		{"h", "Show history on Daily"},
		{"r", "Recompute forecast"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info := fmt.Sprintf("%s · %d txns · %.1fs",
		a.data.Today.Format("Mon Jan 2"), a.data.Transactions, a.data.LoadTime.Seconds())
	statusBar := components.RenderStatusBar(w, info, a.refreshing)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.data.Err != nil:
		content = a.renderError(cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabDaily:
			content = a.renderDailyTab(cw, contentH)
		case tabRecurring:
			content = a.renderRecurringTab(cw)
		case tabBreakdown:
			content = a.renderBreakdownTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderError(cw int) string {
	t := theme.Active
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := warn.Render(a.data.Err.Error()) + "\n\n" +
		muted.Render("Set a balance with `runway balance set <amount>`\nand import statements with `runway import <dir>`.")
	if a.setupErr != nil {
		body += "\n\n" + warn.Render("setup: "+a.setupErr.Error())
	}
	return components.ContentCard("Forecast unavailable", body, cw)
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd runs the first load in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, today date.Date, memo *pipeline.Memo, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send so workers aren't stalled; the next update
			// catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			sub <- load(opts, today, memo, progressFn)
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// load imports new statements when a directory is configured, then
// projects the stored transactions from today.
func load(opts Options, today date.Date, memo *pipeline.Memo, progressFn pipeline.ProgressFunc) DataLoadedMsg {
	start := time.Now()
	msg := DataLoadedMsg{Today: today}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		msg.Err = err
		return msg
	}
	defer func() { _ = st.Close() }()

	if opts.StatementsDir != "" {
		cr, err := pipeline.LoadWithCache(opts.StatementsDir, st, progressFn)
		if err != nil {
			opts.Log.Warn().Err(err).Str("dir", opts.StatementsDir).Msg("statement import failed")
		} else {
			msg.Imported = cr.Imported
		}
	}

	txns, err := st.LoadTransactions()
	if err != nil {
		msg.Err = err
		return msg
	}
	balance, _, err := st.Balance()
	if err != nil {
		msg.Err = err
		return msg
	}

	mode, err := opts.Config.RecurrenceMode()
	if err != nil {
		msg.Err = err
		return msg
	}
	in := forecast.Input{
		Transactions:    txns,
		StartingBalance: balance,
		Config:          opts.Config.ScheduleConfig(),
		Today:           today,
		Mode:            mode,
		Params:          opts.Config.LedgerParams(),
	}
	ctx := logger.WithContext(context.Background(), opts.Log)
	res, err := pipeline.Forecast(ctx, in, memo)
	if err != nil {
		msg.Err = err
		return msg
	}

	msg.Result = res
	msg.Summary = pipeline.Summarize(res, today, in.Config)
	msg.Patterns = forecast.Patterns(in)
	msg.Breakdown = pipeline.Breakdown(res, today, msg.Summary.HorizonEnd)
	msg.Transactions = len(txns)
	msg.LoadTime = time.Since(start)
	return msg
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow RenderTabBar: tabs separated by one column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
