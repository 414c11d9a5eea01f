package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/store"
	"github.com/fastlogapp/fastlog-server/internal/timer"
)

const barWidth = 36

type tickMsg timer.Tick

type goalReachedMsg timer.Tick

// watchModel shows a running fast. It only renders; the timer driver owns the clock.
type watchModel struct {
	name     string
	fast     *domain.FastingSession
	loc      *time.Location
	tick     timer.Tick
	reached  bool
	quitting bool
}

func newWatchModel(user *domain.User, fast *domain.FastingSession, loc *time.Location) watchModel {
	return watchModel{
		name: user.Name(),
		fast: fast,
		loc:  loc,
		tick: timer.Tick{GoalHours: fast.GoalHours},
	}
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		m.tick = timer.Tick(msg)
	case goalReachedMsg:
		m.tick = timer.Tick(msg)
		m.reached = true
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	elapsed := m.tick.Elapsed
	goalPct := analytics.GoalProgress(elapsed, m.tick.GoalHours)
	stage := analytics.ClassifyStage(elapsed)

	lines := []string{
		titleStyle.Render(m.name + " is fasting"),
		mutedStyle.Render("Started " + analytics.FormatDateTime(m.fast.StartTime, m.loc)),
		"",
		valueStyle.Render(analytics.FormatClock(elapsed)),
		progressBar(goalPct, barWidth) + fmt.Sprintf(" %.0f%% of %gh", goalPct, m.tick.GoalHours),
		"",
		labelStyle.Render("Stage") + valueStyle.Render(stage.Current.Name),
	}
	if stage.Next != nil {
		remaining := int64(stage.Next.ThresholdHours*3600) - elapsed
		lines = append(lines, labelStyle.Render("Next")+
			mutedStyle.Render(fmt.Sprintf("%s in %s", stage.Next.Name, analytics.FormatDuration(remaining))))
	}

	if m.tick.GoalReached {
		lines = append(lines, "", goldStyle.Render("Goal reached!"))
	} else {
		left := int64(m.tick.GoalHours*3600) - elapsed
		lines = append(lines, labelStyle.Render("Goal in")+valueStyle.Render(analytics.FormatDuration(left)))
	}

	lines = append(lines, "", mutedStyle.Render("q to quit"))
	return panelStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// runWatch drives the model from a timer until the user quits or ctx ends.
// A goal already met when watching starts is shown but not announced again.
func runWatch(ctx context.Context, program *tea.Program, fast *domain.FastingSession, notifier notify.Notifier, now time.Time) error {
	elapsed, _ := timer.Evaluate(fast.StartTime, now, fast.GoalHours, false)
	alreadyReached := float64(elapsed) >= fast.GoalSeconds()

	driver := timer.Start(ctx, timer.Config{
		Start:     fast.StartTime,
		GoalHours: fast.GoalHours,
		Reached:   alreadyReached,
		OnTick: func(t timer.Tick) {
			program.Send(tickMsg(t))
		},
		OnGoalReached: func(t timer.Tick) {
			_ = notifier.Notify(ctx, notify.GoalReached(fast.UserID, fast.ID, t.GoalHours))
			program.Send(goalReachedMsg(t))
		},
	})
	defer driver.Stop()

	_, err := program.Run()
	return err
}

func newWatchCmd(opts *options) *cobra.Command {
	var (
		email   string
		desktop bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a user's active fast live in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				ctx := cmd.Context()
				user, err := lookupUser(ctx, a.store, email)
				if err != nil {
					return err
				}
				fast, err := a.store.GetActiveFast(ctx, user.ID)
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("%s has no active fast", user.Email)
				}
				if err != nil {
					return err
				}

				var notifier notify.Notifier = notify.Noop{}
				if desktop {
					notifier = notify.NewDesktop("FastLog")
				}

				loc := user.Location(a.cfg.Tracking.Location)
				program := tea.NewProgram(newWatchModel(user, fast, loc),
					tea.WithContext(ctx),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(cmd.OutOrStdout()),
				)
				return runWatch(ctx, program, fast, notifier, time.Now())
			})
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "Email of the user")
	cmd.Flags().BoolVar(&desktop, "desktop", true, "Show a desktop notification when the goal is reached")
	return cmd
}
