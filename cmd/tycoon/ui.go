package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "ittycoon/internal/cli"
	"ittycoon/internal/game"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func printView(v cl.View) {
	s := v.State
	header := "IT Tycoon  " + s.Date.String()
	if v.Paused {
		header += "  [paused]"
	}
	accent.Println(header)

	st := s.Stats
	printInfo(fmt.Sprintf("Money %s   Education %.0f", formatMoney(st.Money), st.Education))
	printInfo(fmt.Sprintf("Health %5.1f/%-5.0f Mood %5.1f/%-5.0f Stamina %5.1f/%-5.0f",
		st.Health, st.MaxHealth, st.Mood, st.MaxMood, st.Stamina, st.MaxStamina))
	if s.Job.ID != "" {
		printInfo(fmt.Sprintf("Job %s (level %d, %d shifts)", s.Job.ID, s.Job.Levels[s.Job.ID], s.Job.Shifts))
	}
	for _, c := range s.Banking.Credits {
		left := game.CreditDaysLeft(c, s.Date)
		line := fmt.Sprintf("Credit %s due %s (%d days)", formatMoney(c.TotalDue), c.DueDate.String(), left)
		if left <= 3 {
			printWarn(line)
		} else {
			printInfo(line)
		}
	}
	for _, d := range s.Banking.Deposits {
		printInfo(fmt.Sprintf("Deposit %s +%s interest", formatMoney(d.Amount), formatMoney(d.AccumulatedInterest)))
	}
	done := 0
	for _, g := range s.Goals {
		if g.Completed {
			done++
		}
	}
	printInfo(fmt.Sprintf("Goals %d/%d   Achievements %d", done, len(s.Goals), len(s.Achievements)))
	for _, l := range s.Logs[:min(len(s.Logs), 3)] {
		printInfo("  " + l.Date.String() + "  " + l.Message)
	}
	if s.GameOver {
		printError("GAME OVER: " + string(s.GameOverReason))
	}
}

func printNotification(n game.Notification) {
	switch n.Kind {
	case game.NotifyGameOver:
		printError(n.Message)
	case game.NotifyCreditWarning:
		printWarn(n.Message)
	case game.NotifyCheat:
		accent.Println(n.Message)
	default:
		printSuccess(n.Message)
	}
}

// runHeadless drives the clock without a terminal UI and prints every
// notification until the game ends or ctx is cancelled.
func runHeadless(ctx context.Context, s *session) error {
	ticker := time.NewTicker(s.rules.TickEvery)
	defer ticker.Stop()

	lastDay := -1
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v, err := stepClock(ctx, s)
			if err != nil {
				printError(err.Error())
				continue
			}
			if err := drainNotifications(ctx, s.backend); err != nil {
				printError(err.Error())
			}
			if day := v.State.Date.DayNumber(); day != lastDay {
				lastDay = day
				printInfo(fmt.Sprintf("%s  %s  health %.1f  mood %.1f",
					v.State.Date.String(), formatMoney(v.State.Stats.Money), v.State.Stats.Health, v.State.Stats.Mood))
			}
			if v.State.GameOver {
				printView(v)
				return nil
			}
		}
	}
}

// stepClock ticks a local container once. A remote server runs its own clock,
// so there it only reads the state.
func stepClock(ctx context.Context, s *session) (cl.View, error) {
	v, err := s.backend.State(ctx)
	if err != nil || s.local == nil || v.Paused || v.State.GameOver {
		return v, err
	}
	return s.backend.Tick(ctx, 1)
}

func trimFeed(feed []string, limit int) []string {
	if len(feed) <= limit {
		return feed
	}
	return append([]string(nil), feed[len(feed)-limit:]...)
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}
