package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

// TimerModel shows the running session with a big clock.
type TimerModel struct {
	width  int
	height int

	session *models.Session
	job     *models.Job
	now     func() time.Time

	elapsed time.Duration
	frame   int // header animation frame
	gen     int // ticks from an earlier Init are ignored

	// embedded timers hand control back to the menu instead of quitting
	embedded bool

	stopping bool // s: clock out
	exiting  bool // esc/q: leave the session running
}

type timerTickMsg struct{ gen int }

type animationTickMsg struct{ gen int }

// timerDoneMsg is sent by an embedded timer when the operator leaves it.
type timerDoneMsg struct{ stop bool }

// NewTimerModel creates a timer for an open session
func NewTimerModel(session *models.Session, job *models.Job, now func() time.Time) TimerModel {
	if now == nil {
		now = time.Now
	}
	return TimerModel{
		session: session,
		job:     job,
		now:     now,
		elapsed: session.Elapsed(now()),
	}
}

func (m TimerModel) ticks() tea.Cmd {
	gen := m.gen
	return tea.Batch(
		tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{gen} }),
		tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return animationTickMsg{gen} }),
	)
}

// Init starts the clock and animation tickers
func (m TimerModel) Init() tea.Cmd {
	return m.ticks()
}

// restart begins a fresh tick chain, orphaning any earlier one.
func (m TimerModel) restart() (TimerModel, tea.Cmd) {
	m.gen++
	m.stopping, m.exiting = false, false
	m.elapsed = m.session.Elapsed(m.now())
	return m, m.ticks()
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	done := m.stopping || m.exiting

	switch msg := msg.(type) {
	case timerTickMsg:
		if msg.gen != m.gen || done {
			return m, nil
		}
		m.elapsed = m.session.Elapsed(m.now())
		gen := m.gen
		return m, tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{gen} })

	case animationTickMsg:
		if msg.gen != m.gen || done {
			return m, nil
		}
		m.frame = (m.frame + 1) % 4
		gen := m.gen
		return m, tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return animationTickMsg{gen} })

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "s", "S":
			m.stopping = true
			return m, m.leave(true)
		case "ctrl+c", "esc", "q":
			m.exiting = true
			return m, m.leave(false)
		}
	}

	return m, nil
}

func (m TimerModel) leave(stop bool) tea.Cmd {
	if m.embedded {
		return func() tea.Msg { return timerDoneMsg{stop: stop} }
	}
	return tea.Quit
}

// View renders the timer
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2
	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderJobPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func (m TimerModel) renderTimerPanel(width, height int) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
	var components []string

	anim := []string{"⏱", "⏲", "⏱", "⏲"}[m.frame]
	components = append(components,
		center.Inherit(titleStyle).Render(fmt.Sprintf("%s  ON THE CLOCK  %s", anim, anim)))

	components = append(components,
		center.Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).Render(m.job.Code))

	name := m.job.Name
	if width > 10 && len(name) > width-4 {
		name = name[:width-7] + "..."
	}
	components = append(components, center.Inherit(labelStyle).Render(name))

	var clock []string
	for _, line := range strings.Split(renderBigClock(m.elapsed), "\n") {
		clock = append(clock, center.Render(line))
	}
	components = append(components, strings.Join(clock, "\n"))

	billed := hours.Round(m.elapsed)
	components = append(components, center.Inherit(textStyle).Italic(true).Render(
		fmt.Sprintf("Clocked in at %s · billing %s h", m.session.ClockIn.In(m.now().Location()).Format("15:04"), billed)))

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

// renderJobPanel shows the logo and the job's details.
func (m TimerModel) renderJobPanel(width, height int) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width - 8)
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(center.Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).Render(strings.Join(logoLines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(lipgloss.Color(ColorBorder)).Render(strings.Repeat("─", min(width-12, 40))))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1)
	b.WriteString(box.Render(m.job.Label()))
	b.WriteString("\n\n")

	subTask, subColor := "none", ColorDisabledText
	if m.session.SubTask != "" {
		subTask, subColor = m.session.SubTask, ColorAccentBright
	}
	billed := hours.Round(m.elapsed)
	lines := []string{
		"📝 Sub-task: " + lipgloss.NewStyle().Foreground(lipgloss.Color(subColor)).Render(subTask),
		"💲 Rate: " + textStyle.Render(parser.FormatRate(m.job.RateCents)+"/h"),
		"🧾 So far: " + textStyle.Render(parser.FormatRate(hours.AmountCents(billed, m.job.RateCents))),
		"📅 Started: " + textStyle.Render(m.session.ClockIn.In(m.now().Location()).Format("Mon Jan 02, 15:04")),
	}
	for _, l := range lines {
		b.WriteString(center.Render(l))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func (m TimerModel) renderHelpBar() string {
	text := "s clock out · esc/q leave running · ctrl+c force quit"
	if m.embedded {
		text = "s clock out · esc/q back to menu (keep running)"
	}
	return helpStyle.Align(lipgloss.Center).Width(m.width).Render(text)
}

// renderBigClock draws d as block digits: mm:ss, or hh:mm:ss from one hour.
func renderBigClock(d time.Duration) string {
	h := int(d.Hours())
	mnt := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60

	timeStr := fmt.Sprintf("%02d:%02d", mnt, sec)
	if h > 0 {
		timeStr = fmt.Sprintf("%02d:%02d:%02d", h, mnt, sec)
	}

	var lines [5]strings.Builder
	for _, char := range timeStr {
		art, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range art {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)

	rows := make([]string, 0, len(lines))
	for i := range lines {
		rows = append(rows, clockStyle.Render(lines[i].String()))
	}
	return strings.Join(rows, "\n")
}

// bigDigits is the 5-row block art for the big clock.
var bigDigits = map[rune][5]string{
	'0': {
		" ███ ",
		"█   █",
		"█   █",
		"█   █",
		" ███ ",
	},
	'1': {
		"  █  ",
		" ██  ",
		"  █  ",
		"  █  ",
		"█████",
	},
	'2': {
		" ███ ",
		"█   █",
		"   █ ",
		"  █  ",
		"█████",
	},
	'3': {
		" ███ ",
		"█   █",
		"  ██ ",
		"█   █",
		" ███ ",
	},
	'4': {
		"█   █",
		"█   █",
		"█████",
		"    █",
		"    █",
	},
	'5': {
		"█████",
		"█    ",
		"████ ",
		"    █",
		"████ ",
	},
	'6': {
		" ███ ",
		"█    ",
		"████ ",
		"█   █",
		" ███ ",
	},
	'7': {
		"█████",
		"    █",
		"   █ ",
		"  █  ",
		" █   ",
	},
	'8': {
		" ███ ",
		"█   █",
		" ███ ",
		"█   █",
		" ███ ",
	},
	'9': {
		" ███ ",
		"█   █",
		" ████",
		"    █",
		" ███ ",
	},
	':': {
		"     ",
		"  █  ",
		"     ",
		"  █  ",
		"     ",
	},
}
