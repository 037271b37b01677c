package game

import "testing"

func countKind(notes []Notification, kind NotificationKind) int {
	n := 0
	for _, note := range notes {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

func allGoalsState() GameState {
	s := DefaultState()
	s.Job.ID = "courier"
	s.Job.Levels = map[string]int{"courier": 5}
	s.Computer = map[string]string{"cpu": "cpu_386", "ram": "ram_4mb", "storage": "hdd_40mb", "modem": "modem_14k"}
	s.HasInternet = true
	s.EducationProgress.CompletedTracks = []string{"html_basics"}
	s.Stats.Money = 10_000
	return s
}

func TestEvaluatorCompletesGoalOnce(t *testing.T) {
	cat := DefaultCatalog()
	s := DefaultState()
	e := NewEvaluator(cat, s)

	if _, notes := e.Evaluate(s); len(notes) != 0 {
		t.Fatalf("fresh game should not notify, got %+v", notes)
	}

	s.Job.ID = "courier"
	next, notes := e.Evaluate(s)
	if countKind(notes, NotifyGoal) != 1 || notes[0].ID != "first_job" {
		t.Fatalf("expected first_job notification, got %+v", notes)
	}
	if !next.Goals[0].Completed {
		t.Fatalf("first_job not flagged")
	}
	if s.Goals[0].Completed {
		t.Fatalf("evaluate modified its input")
	}

	again, notes := e.Evaluate(next)
	if len(notes) != 0 {
		t.Fatalf("second evaluation notified again: %+v", notes)
	}
	if !again.Goals[0].Completed {
		t.Fatalf("goal was un-set")
	}
}

func TestEvaluatorAllGoalsFiresOnEdge(t *testing.T) {
	cat := DefaultCatalog()
	e := NewEvaluator(cat, DefaultState())

	next, notes := e.Evaluate(allGoalsState())
	if got := countKind(notes, NotifyGoal); got != len(next.Goals) {
		t.Fatalf("goal notifications: got %d want %d", got, len(next.Goals))
	}
	if countKind(notes, NotifyAllGoals) != 1 {
		t.Fatalf("expected one all-goals notification, got %+v", notes)
	}
	if !AllGoalsComplete(next) {
		t.Fatalf("goals not all complete")
	}

	_, notes = e.Evaluate(next)
	if countKind(notes, NotifyAllGoals) != 0 {
		t.Fatalf("all-goals fired twice")
	}
}

func TestEvaluatorResetRearmsAllGoals(t *testing.T) {
	cat := DefaultCatalog()
	e := NewEvaluator(cat, DefaultState())
	done, _ := e.Evaluate(allGoalsState())

	fresh := DefaultState()
	e.Reset(fresh)
	if _, notes := e.Evaluate(done); countKind(notes, NotifyAllGoals) != 1 {
		t.Fatalf("expected all-goals after reset, got %+v", notes)
	}
}

func TestAllGoalsCompleteEmpty(t *testing.T) {
	s := DefaultState()
	s.Goals = nil
	if AllGoalsComplete(s) {
		t.Fatalf("empty goal list must not count as complete")
	}
}

func TestAchievementsFromLog(t *testing.T) {
	cat := DefaultCatalog()
	s := DefaultState()
	for _, target := range []string{"bbs", "school", "isp", "bank", "telecom"} {
		appendLog(&s, "hack", "hacked", target)
	}
	next, notes := NewEvaluator(cat, s).Evaluate(s)
	if !next.HasAchievement("script_kiddie") || !next.HasAchievement("hacker") {
		t.Fatalf("expected hacking achievements, got %v", next.Achievements)
	}
	if countKind(notes, NotifyAchievement) != 2 {
		t.Fatalf("expected two achievement notifications, got %+v", notes)
	}
}
