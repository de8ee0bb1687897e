package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/controller"
	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
	"github.com/balkashynov/tally/internal/report"
)

// Deps is what the menu operates on.
type Deps struct {
	Store      *db.Store
	Controller *controller.Controller
	ExportFile string
}

type mode int

const (
	modeMenu mode = iota
	modePrompt
	modePick
	modeView
	modeTimer
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

type (
	submitFunc func(m MenuModel, value string) (MenuModel, tea.Cmd)
	pickFunc   func(m MenuModel, job models.Job) (MenuModel, tea.Cmd)
)

type menuItem struct {
	key   string
	label string
	run   func(m MenuModel) (MenuModel, tea.Cmd)
}

// MenuModel is the main menu. Every screen (prompts, the job picker,
// reports and the timer) is a mode of this one model, so each action
// returns here instead of nesting programs.
type MenuModel struct {
	deps   Deps
	width  int
	height int

	mode    mode
	cursor  int
	shimmer *Shimmer

	status     string
	statusKind statusKind

	promptTitle string
	input       textinput.Model
	submit      submitFunc

	picker   table.Model
	pickJobs []models.Job
	onPick   pickFunc

	viewBody string

	timer TimerModel
}

// NewMenuModel creates the menu. A session left open by an earlier run is
// put to the operator first.
func NewMenuModel(deps Deps) MenuModel {
	m := MenuModel{deps: deps, shimmer: NewShimmer()}
	if deps.Controller.Dangling() != nil {
		m, _ = m.askRecovery()
	}
	return m
}

// Init starts the shimmer and the cursor blink
func (m MenuModel) Init() tea.Cmd {
	return tea.Batch(m.shimmer.Tick(), textinput.Blink)
}

func (m MenuModel) items() []menuItem {
	st := m.deps.Controller.State()
	var items []menuItem
	if st.State == controller.Idle {
		items = append(items, menuItem{"i", "Clock in", startClockIn})
	} else {
		items = append(items,
			menuItem{"o", "Clock out of " + st.Job.Code, clockOut},
			menuItem{"t", "Show timer", showTimer},
		)
	}
	return append(items,
		menuItem{"l", "List jobs", showJobs},
		menuItem{"a", "Add job", startAddJob},
		menuItem{"e", "Edit job", startEditJob},
		menuItem{"c", "Calculate total time worked", startCalc},
		menuItem{"d", "Daily report", startDaily},
		menuItem{"w", "Weekly report", startWeekly},
		menuItem{"x", "Export CSV", startExport},
		menuItem{"m", "Import CSV", startImport},
		menuItem{"b", "Backups", showBackups},
		menuItem{"q", "Quit", func(m MenuModel) (MenuModel, tea.Cmd) { return m, tea.Quit }},
	)
}

// Update dispatches every message to the current mode
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.timer.width, m.timer.height = msg.Width, msg.Height
		return m, nil

	case shimmerTickMsg:
		m.shimmer.Advance()
		return m, m.shimmer.Tick()

	case timerTickMsg, animationTickMsg:
		if m.mode != modeTimer {
			return m, nil
		}
		return m.updateTimer(msg)

	case timerDoneMsg:
		m.mode = modeMenu
		if msg.stop {
			return clockOut(m)
		}
		return m.info("Still on the clock."), nil

	case tea.KeyMsg:
		if m.mode == modeTimer {
			return m.updateTimer(msg)
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeMenu:
			return m.updateMenu(msg)
		case modePrompt:
			return m.updatePrompt(msg)
		case modePick:
			return m.updatePick(msg)
		case modeView:
			m.mode = modeMenu
			return m, nil
		}
	}

	if m.mode == modePrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m MenuModel) updateTimer(msg tea.Msg) (tea.Model, tea.Cmd) {
	t, cmd := m.timer.Update(msg)
	m.timer = t.(TimerModel)
	return m, cmd
}

func (m MenuModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.items()
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	switch msg.String() {
	case "up", "shift+tab":
		m.cursor = (m.cursor + len(items) - 1) % len(items)
		m.shimmer.Reset()
		return m, nil
	case "down", "tab":
		m.cursor = (m.cursor + 1) % len(items)
		m.shimmer.Reset()
		return m, nil
	case "enter":
		m.status = ""
		return items[m.cursor].run(m)
	case "esc":
		return m, tea.Quit
	}
	for i, it := range items {
		if msg.String() == it.key {
			m.cursor = i
			m.status = ""
			return it.run(m)
		}
	}
	return m, nil
}

func (m MenuModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeMenu
		return m.info("Cancelled."), nil
	case "enter":
		m.mode = modeMenu
		m.status = ""
		return m.submit(m, strings.TrimSpace(m.input.Value()))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m MenuModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeMenu
		return m.info("Cancelled."), nil
	case "enter":
		m.mode = modeMenu
		i := m.picker.Cursor()
		if i < 0 || i >= len(m.pickJobs) {
			return m, nil
		}
		return m.onPick(m, m.pickJobs[i])
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// Status helpers. fail and retry render errors the same way; retry puts
// the last prompt back up so a malformed answer can be corrected.

func (m MenuModel) info(s string) MenuModel {
	m.status, m.statusKind = s, statusInfo
	return m
}

func (m MenuModel) success(s string) MenuModel {
	m.status, m.statusKind = s, statusSuccess
	return m
}

func (m MenuModel) warn(err error) MenuModel {
	m.status, m.statusKind = apperr.Operator(err), statusWarning
	return m
}

func (m MenuModel) fail(err error) (MenuModel, tea.Cmd) {
	m.mode = modeMenu
	m.status, m.statusKind = apperr.Operator(err), statusError
	return m, nil
}

func (m MenuModel) retry(err error) (MenuModel, tea.Cmd) {
	if !apperr.IsValidation(err) && !apperr.IsNotFound(err) {
		return m.fail(err)
	}
	m.mode = modePrompt
	m.status, m.statusKind = apperr.Operator(err), statusError
	return m, textinput.Blink
}

func (m MenuModel) ask(title, label, value string, submit submitFunc) (MenuModel, tea.Cmd) {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = label
	ti.SetValue(value)
	ti.CharLimit = 200
	ti.Width = 48
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	ti.Focus()

	m.mode = modePrompt
	m.promptTitle = title
	m.input = ti
	m.submit = submit
	return m, textinput.Blink
}

func (m MenuModel) pick(title string, jobs []models.Job, next pickFunc) (MenuModel, tea.Cmd) {
	columns := []table.Column{
		{Title: "Code", Width: 10},
		{Title: "Name", Width: 32},
		{Title: "Rate", Width: 10},
		{Title: "Created", Width: 12},
	}
	rows := make([]table.Row, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, table.Row{j.Code, j.Name, parser.FormatRate(j.RateCents), j.CreatedAt.Format("2006-01-02")})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 10)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain)).
		Bold(false)
	t.SetStyles(styles)

	m.mode = modePick
	m.promptTitle = title
	m.picker = t
	m.pickJobs = jobs
	m.onPick = next
	return m, nil
}

func (m MenuModel) show(body string) (MenuModel, tea.Cmd) {
	m.mode = modeView
	m.viewBody = body
	return m, nil
}

func yes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true
	}
	return false
}

// askJob resolves a typed code to one job, letting the operator choose
// between jobs that share the code. With create, an unknown code starts
// a new job.
func (m MenuModel) askJob(title string, create bool, next pickFunc) (MenuModel, tea.Cmd) {
	return m.ask(title, "Job code", "", func(m MenuModel, code string) (MenuModel, tea.Cmd) {
		jobs, err := m.deps.Controller.Candidates(code)
		if err != nil {
			return m.retry(err)
		}
		switch {
		case len(jobs) == 1:
			return next(m, jobs[0])
		case len(jobs) > 1:
			return m.pick(fmt.Sprintf("%s: %d jobs use the code %s, pick one", title, len(jobs), jobs[0].Code), jobs, next)
		case create:
			return m.askNewJob(code, next)
		}
		normalized, _ := parser.NormalizeCode(code)
		return m.retry(&apperr.NotFoundError{Kind: "job with code", ID: normalized})
	})
}

func (m MenuModel) askNewJob(code string, next pickFunc) (MenuModel, tea.Cmd) {
	title := "New job " + strings.ToUpper(code)
	return m.ask(title, "Job name", "", func(m MenuModel, name string) (MenuModel, tea.Cmd) {
		if _, err := parser.NormalizeName(name); err != nil {
			return m.retry(err)
		}
		return m.ask(title, "Hourly rate, e.g. 45.50", "0", func(m MenuModel, rate string) (MenuModel, tea.Cmd) {
			cents, err := parser.ParseRate(rate)
			if err != nil {
				return m.retry(err)
			}
			job, warning, err := m.deps.Store.CreateJob(db.CreateJobRequest{Code: code, Name: name, RateCents: cents})
			if err != nil {
				return m.fail(err)
			}
			if warning != nil {
				m = m.warn(warning)
			}
			return next(m, *job)
		})
	})
}

func startClockIn(m MenuModel) (MenuModel, tea.Cmd) {
	return m.askJob("Clock in", true, clockInJob)
}

func clockInJob(m MenuModel, job models.Job) (MenuModel, tea.Cmd) {
	decision, err := m.deps.Controller.Prepare(job.JobID)
	if err != nil {
		return m.fail(err)
	}
	label, value := "Sub-task (optional)", ""
	if decision.Offer() {
		label, value = "Sub-task (enter continues earlier work)", decision.Last.SubTask
	}
	return m.ask("Clock in on "+job.Label(), label, value, func(m MenuModel, subTask string) (MenuModel, tea.Cmd) {
		subTask = parser.CollapseSpace(subTask)
		if decision.Offer() && !decision.SameSubTask(subTask) {
			title := fmt.Sprintf("Earlier today you worked on %q", decision.Last.SubTask)
			return m.ask(title, "Start a different sub-task? (y/n)", "y", func(m MenuModel, answer string) (MenuModel, tea.Cmd) {
				if !yes(answer) {
					return m.info("Clock in cancelled."), nil
				}
				return m.clockIn(job, subTask)
			})
		}
		return m.clockIn(job, subTask)
	})
}

func (m MenuModel) clockIn(job models.Job, subTask string) (MenuModel, tea.Cmd) {
	if _, err := m.deps.Controller.ClockIn(job.JobID, subTask); err != nil {
		return m.fail(err)
	}
	m = m.success("Clocked in on " + job.Label() + ".")
	return showTimer(m)
}

func clockOut(m MenuModel) (MenuModel, tea.Cmd) {
	code := ""
	if st := m.deps.Controller.State(); st.Job != nil {
		code = st.Job.Code
	}
	st, err := m.deps.Controller.ClockOut()
	if err != nil {
		return m.fail(err)
	}
	return m.success(fmt.Sprintf("Clocked out of %s: %s hours.", code, st.LastClosed.Rounded)), nil
}

func showTimer(m MenuModel) (MenuModel, tea.Cmd) {
	st := m.deps.Controller.State()
	if st.Session == nil {
		return m.fail(&apperr.NotFoundError{Kind: "open session"})
	}
	timer := NewTimerModel(st.Session, st.Job, m.deps.Controller.Now)
	timer.embedded = true
	timer.width, timer.height = m.width, m.height
	timer.gen = m.timer.gen

	var cmd tea.Cmd
	m.timer, cmd = timer.restart()
	m.mode = modeTimer
	return m, cmd
}

func (m MenuModel) askRecovery() (MenuModel, tea.Cmd) {
	st := m.deps.Controller.State()
	title := fmt.Sprintf("Session #%d on %s has been open since %s",
		st.Session.ID, st.Job.Label(), st.Session.ClockIn.In(m.deps.Controller.Location()).Format("Mon 2006-01-02 15:04"))

	return m.ask(title, "close [n]ow · close [a]t a time · [k]eep running · [d]iscard", "", func(m MenuModel, answer string) (MenuModel, tea.Cmd) {
		choice, err := controller.ParseRecovery(strings.ToLower(answer))
		if err != nil {
			return m.retry(err)
		}
		if choice != controller.RecoverCloseAt {
			return m.recover(choice, "")
		}
		return m.ask(title, "Estimated end time, e.g. 17:30", "", func(m MenuModel, at string) (MenuModel, tea.Cmd) {
			return m.recover(choice, at)
		})
	})
}

func (m MenuModel) recover(choice controller.Recovery, at string) (MenuModel, tea.Cmd) {
	st, err := m.deps.Controller.Recover(choice, at)
	if err != nil {
		return m.retry(err)
	}
	switch {
	case choice == controller.RecoverKeep:
		return m.info("Session kept running."), nil
	case choice == controller.RecoverDiscard:
		return m.success("Session discarded."), nil
	}
	return m.success(fmt.Sprintf("Session closed: %s hours.", st.LastClosed.Rounded)), nil
}

func showJobs(m MenuModel) (MenuModel, tea.Cmd) {
	jobs, err := m.deps.Store.ListJobs()
	if err != nil {
		return m.fail(err)
	}
	return m.show(RenderJobs(jobs))
}

// RenderJobs draws the job registry as a table.
func RenderJobs(jobs []models.Job) string {
	if len(jobs) == 0 {
		return mutedStyle.Render("No jobs yet.")
	}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{j.Code, j.Name, parser.FormatRate(j.RateCents), j.CreatedAt.Format("2006-01-02"), j.JobID[:min(8, len(j.JobID))]})
	}
	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))).
		Headers("Code", "Name", "Rate", "Created", "Id").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return labelStyle.Padding(0, 1)
			}
			return textStyle.Padding(0, 1)
		})
	return t.String()
}

func startAddJob(m MenuModel) (MenuModel, tea.Cmd) {
	return m.ask("Add job", "Website redesign @WEB $85.50", "", func(m MenuModel, line string) (MenuModel, tea.Cmd) {
		spec, err := parser.ParseJobSpec(line)
		if err != nil {
			return m.retry(err)
		}
		job, warning, err := m.deps.Store.CreateJob(db.CreateJobRequest{Code: spec.Code, Name: spec.Name, RateCents: spec.RateCents})
		if err != nil {
			return m.fail(err)
		}
		if warning != nil {
			return m.warn(warning), nil
		}
		return m.success("Added job " + job.Label() + "."), nil
	})
}

func startEditJob(m MenuModel) (MenuModel, tea.Cmd) {
	return m.askJob("Edit job", false, func(m MenuModel, job models.Job) (MenuModel, tea.Cmd) {
		title := "Edit " + job.Label()
		return m.ask(title, "Field: name, code or rate", "", func(m MenuModel, field string) (MenuModel, tea.Cmd) {
			switch strings.ToLower(field) {
			case db.FieldName, db.FieldCode, db.FieldRate:
			default:
				return m.retry(apperr.Invalid("field", field, "use name, code or rate"))
			}
			return m.ask(title, "New "+strings.ToLower(field), "", func(m MenuModel, value string) (MenuModel, tea.Cmd) {
				edited, err := m.deps.Store.EditJob(job.JobID, field, value)
				if err != nil {
					return m.retry(err)
				}
				return m.success(fmt.Sprintf("Updated %s (rate %s).", edited.Label(), parser.FormatRate(edited.RateCents))), nil
			})
		})
	})
}

func startCalc(m MenuModel) (MenuModel, tea.Cmd) {
	const title = "Calculate total time worked"
	return m.ask(title, "Start time, e.g. 9:00 am", "", func(m MenuModel, startText string) (MenuModel, tea.Cmd) {
		today := hours.Day(m.deps.Controller.Now())
		start, err := parser.ParseClock(startText, today)
		if err != nil {
			return m.retry(err)
		}
		return m.ask(title, "End time, e.g. 5:30 pm", "", func(m MenuModel, endText string) (MenuModel, tea.Cmd) {
			end, err := parser.ParseClock(endText, today)
			if err != nil {
				return m.retry(err)
			}
			return m.info(fmt.Sprintf("Total time worked from %s to %s: %s hours.",
				start.Format("15:04"), end.Format("15:04"), hours.Span(start, end))), nil
		})
	})
}

func startDaily(m MenuModel) (MenuModel, tea.Cmd) {
	return m.ask("Daily report", "Date: today, yesterday or 2024-03-04", "today", func(m MenuModel, text string) (MenuModel, tea.Cmd) {
		day, err := parser.ParseDate(text, m.deps.Controller.Now())
		if err != nil {
			return m.retry(err)
		}
		r, err := m.deps.Controller.Daily(day)
		if err != nil {
			return m.fail(err)
		}
		return m.show(report.Render(r))
	})
}

func startWeekly(m MenuModel) (MenuModel, tea.Cmd) {
	return m.ask("Weekly report", "Any day of the week: today or 2024-03-04", "today", func(m MenuModel, text string) (MenuModel, tea.Cmd) {
		day, err := parser.ParseDate(text, m.deps.Controller.Now())
		if err != nil {
			return m.retry(err)
		}
		r, err := m.deps.Controller.Weekly(day)
		if err != nil {
			return m.fail(err)
		}
		return m.show(report.Render(r))
	})
}

func startExport(m MenuModel) (MenuModel, tea.Cmd) {
	return m.ask("Export CSV", "File to write", m.deps.ExportFile, func(m MenuModel, path string) (MenuModel, tea.Cmd) {
		if path == "" {
			return m.retry(apperr.Invalid("file", path, "value is empty"))
		}
		f, err := os.Create(path)
		if err != nil {
			return m.fail(err)
		}
		n, err := m.deps.Controller.Export(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return m.fail(err)
		}
		return m.success(fmt.Sprintf("Exported %d rows to %s.", n, path)), nil
	})
}

func startImport(m MenuModel) (MenuModel, tea.Cmd) {
	return m.ask("Import CSV", "File to read", m.deps.ExportFile, func(m MenuModel, path string) (MenuModel, tea.Cmd) {
		f, err := os.Open(path)
		if err != nil {
			return m.retry(apperr.Invalid("file", path, "cannot be opened"))
		}
		defer f.Close()
		n, err := m.deps.Controller.Import(f)
		if err != nil {
			return m.fail(err)
		}
		return m.success(fmt.Sprintf("Imported %d rows from %s.", n, path)), nil
	})
}

func showBackups(m MenuModel) (MenuModel, tea.Cmd) {
	backups := m.deps.Store.Backups()
	if backups == nil {
		return m.show(mutedStyle.Render("Backups are not configured."))
	}
	list, err := backups.List()
	if err != nil {
		return m.fail(err)
	}
	if len(list) == 0 {
		return m.show(mutedStyle.Render("No backups in " + backups.Dir + "."))
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d backups in %s", len(list), backups.Dir)))
	b.WriteString("\n\n")
	for i, info := range list {
		b.WriteString(fmt.Sprintf("%3d  %s  %s\n", i+1, textStyle.Render(info.ModTime.Format("2006-01-02 15:04:05")), info.Reason))
	}
	b.WriteString(mutedStyle.Render("\nRestore with: tally backup restore <number>"))
	return m.show(b.String())
}

// View renders the current mode
func (m MenuModel) View() string {
	if m.mode == modeTimer {
		return m.timer.View()
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).Render(strings.Join(logoLines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(m.renderState())
	b.WriteString("\n\n")

	switch m.mode {
	case modeMenu:
		b.WriteString(m.renderItems())
	case modePrompt:
		b.WriteString(labelStyle.Render(m.promptTitle))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	case modePick:
		b.WriteString(labelStyle.Render(m.promptTitle))
		b.WriteString("\n\n")
		b.WriteString(m.picker.View())
	case modeView:
		b.WriteString(m.viewBody)
	}

	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(m.renderStatus())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderHelpBar())

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m MenuModel) renderState() string {
	st := m.deps.Controller.State()
	if st.State == controller.Idle {
		return mutedStyle.Render("○ Not clocked in")
	}
	elapsed := m.deps.Controller.Elapsed()
	line := fmt.Sprintf("● On the clock: %s · %s · %s h",
		st.Job.Label(), formatDuration(elapsed), hours.Round(elapsed))
	if st.Session.SubTask != "" {
		line += " · " + st.Session.SubTask
	}
	return successStyle.Render(line)
}

func (m MenuModel) renderItems() string {
	var b strings.Builder
	for i, it := range m.items() {
		key := mutedStyle.Render("[" + it.key + "]")
		if i == m.cursor {
			b.WriteString(titleStyle.Render("▸ ") + key + " " + m.shimmer.Render(it.label))
		} else {
			b.WriteString("  " + key + " " + textStyle.Render(it.label))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m MenuModel) renderStatus() string {
	switch m.statusKind {
	case statusSuccess:
		return successStyle.Render("✓ " + m.status)
	case statusWarning:
		return warningStyle.Render(m.status)
	case statusError:
		return errorStyle.Render(m.status)
	}
	return textStyle.Render(m.status)
}

func (m MenuModel) renderHelpBar() string {
	switch m.mode {
	case modePrompt:
		return helpStyle.Render("enter confirm · esc cancel")
	case modePick:
		return helpStyle.Render("↑/↓ choose · enter select · esc cancel")
	case modeView:
		return helpStyle.Render("any key to return")
	}
	return helpStyle.Render("↑/↓ move · enter or hotkey select · q quit")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
