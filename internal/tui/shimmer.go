package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const shimmerInterval = 100 * time.Millisecond

// shimmerTickMsg advances every Shimmer in the program by one step.
type shimmerTickMsg struct{}

// Shimmer sweeps a soft highlight across a line of text, one step per tick,
// pausing between sweeps. It is used on the selected menu entry.
type Shimmer struct {
	Enabled    bool
	WidthRatio float64 // highlight width as a share of the text
	SweepTicks int     // ticks for one pass over the text
	PauseTicks int     // ticks to wait between passes

	step int
}

// NewShimmer returns the default sweep: 1.8s per pass, 0.5s pause.
func NewShimmer() *Shimmer {
	return &Shimmer{
		Enabled:    true,
		WidthRatio: 0.25,
		SweepTicks: 18,
		PauseTicks: 5,
	}
}

// Tick schedules the next animation step.
func (s *Shimmer) Tick() tea.Cmd {
	if !s.Enabled {
		return nil
	}
	return tea.Tick(shimmerInterval, func(time.Time) tea.Msg { return shimmerTickMsg{} })
}

// Advance moves the highlight one step.
func (s *Shimmer) Advance() {
	s.step = (s.step + 1) % (s.SweepTicks + s.PauseTicks)
}

// Reset restarts the sweep, e.g. when the selection changes.
func (s *Shimmer) Reset() {
	s.step = 0
}

// center is the highlight position over a text of n runes. ok is false
// while pausing between passes.
func (s *Shimmer) center(n int) (pos float64, ok bool) {
	if s.step >= s.SweepTicks {
		return 0, false
	}
	// Travel from just before the text to just after it.
	margin := float64(n) * s.WidthRatio
	distance := float64(n) + 2*margin
	return -margin + distance*float64(s.step)/float64(s.SweepTicks), true
}

// Render colours text with the highlight at its current position.
func (s *Shimmer) Render(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	center, sweeping := s.center(len(runes))
	if !s.Enabled || !sweeping {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true).Render(text)
	}

	sigma := math.Max(1, s.WidthRatio*float64(len(runes))/2)
	var b strings.Builder
	for i, r := range runes {
		dx := float64(i) - center
		w := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(blend(w))).
			Bold(true).
			Render(string(r)))
	}
	return b.String()
}

// blend mixes the accent colour (#A78BFA) towards a pale violet (#EAE6FF)
// by w in [0,1].
func blend(w float64) string {
	w = math.Min(1, math.Max(0, w))
	mix := func(from, to int) int { return int(float64(from)*(1-w) + float64(to)*w) }
	return fmt.Sprintf("#%02X%02X%02X", mix(167, 234), mix(139, 230), mix(250, 255))
}
