package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/tally/internal/controller"
)

// RunMenu starts the interactive menu
func RunMenu(deps Deps) error {
	p := tea.NewProgram(NewMenuModel(deps), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(MenuModel); ok {
		if st := deps.Controller.State(); st.State == controller.JobOpen {
			fmt.Printf("⏱️  Still on the clock for %s since %s.\n", st.Job.Label(), st.Session.ClockIn.In(deps.Controller.Location()).Format("15:04"))
			fmt.Println("   Use 'tally stop' to clock out.")
		} else if m.status != "" {
			fmt.Println(m.status)
		}
	}
	return nil
}

// RunTimer shows the big clock for the open session. It reports whether the
// operator chose to clock out; the caller does the clocking out.
func RunTimer(c *controller.Controller) (bool, error) {
	st := c.State()
	if st.Session == nil {
		return false, fmt.Errorf("no open session")
	}

	p := tea.NewProgram(NewTimerModel(st.Session, st.Job, c.Now), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(TimerModel)
	return ok && m.stopping, nil
}
