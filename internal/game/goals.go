package game

import "slices"

type NotificationKind string

const (
	NotifyGoal          NotificationKind = "goal"
	NotifyAllGoals      NotificationKind = "all_goals"
	NotifyAchievement   NotificationKind = "achievement"
	NotifyCreditWarning NotificationKind = "credit_warning"
	NotifyGameOver      NotificationKind = "game_over"
	NotifyCheat         NotificationKind = "cheat"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	ID      string           `json:"id,omitempty"`
	Message string           `json:"message"`
}

type predicate func(s GameState, cat *Catalog) bool

type goalDef struct {
	ID   string
	Text string
	Done predicate
}

var goalDefs = []goalDef{
	{"first_job", "Get your first job", func(s GameState, _ *Catalog) bool { return s.Job.ID != "" }},
	{"first_pc", "Assemble a working computer", func(s GameState, cat *Catalog) bool { return cat.ComputerTier(s) >= 1 }},
	{"online", "Get online", func(s GameState, _ *Catalog) bool { return s.HasInternet }},
	{"graduate", "Complete an education track", func(s GameState, _ *Catalog) bool {
		return len(s.EducationProgress.CompletedTracks) >= 1
	}},
	{"promotion", "Reach level 5 in any job", func(s GameState, _ *Catalog) bool {
		for _, lvl := range s.Job.Levels {
			if lvl >= 5 {
				return true
			}
		}
		return false
	}},
	{"savings", "Hold 10,000 in cash", func(s GameState, _ *Catalog) bool { return s.Stats.Money >= 10_000 }},
}

var achievementDefs = []goalDef{
	{"first_paycheck", "First Paycheck", func(s GameState, _ *Catalog) bool { return hasLog(s, "work") }},
	{"script_kiddie", "Script Kiddie", func(s GameState, _ *Catalog) bool { return hasLog(s, "hack") }},
	// Counted from the retained log window only.
	{"hacker", "Hacker: five distinct targets", func(s GameState, _ *Catalog) bool { return DistinctHackTargets(s) >= 5 }},
	{"scholar", "Scholar", func(s GameState, _ *Catalog) bool { return len(s.EducationProgress.CompletedTracks) >= 3 }},
	{"debt_free", "Debt Free", func(s GameState, _ *Catalog) bool { return hasLog(s, "repay") }},
	{"investor", "Investor", func(s GameState, _ *Catalog) bool { return hasLog(s, "withdraw") }},
	{"survivor", "Survived a Year", func(s GameState, _ *Catalog) bool { return s.Date.Year > StartingYear }},
	{"millionaire", "Millionaire", func(s GameState, _ *Catalog) bool { return s.Stats.Money >= 1_000_000 }},
}

func DefaultGoals() []Goal {
	out := make([]Goal, 0, len(goalDefs))
	for _, d := range goalDefs {
		out = append(out, Goal{ID: d.ID, Text: d.Text})
	}
	return out
}

func hasLog(s GameState, kind string) bool {
	return slices.ContainsFunc(s.Logs, func(l LogEntry) bool { return l.Kind == kind })
}

func lookupDef(defs []goalDef, id string) (goalDef, bool) {
	return find(defs, id, func(d goalDef) string { return d.ID })
}

// AllGoalsComplete is false for an empty goal list.
func AllGoalsComplete(s GameState) bool {
	if len(s.Goals) == 0 {
		return false
	}
	for _, g := range s.Goals {
		if !g.Completed {
			return false
		}
	}
	return true
}

// Evaluator flips goal and achievement flags. It is safe to run after every
// change: completed entries are skipped and never un-set, so nothing fires twice.
type Evaluator struct {
	catalog         *Catalog
	prevAllComplete bool
}

func NewEvaluator(cat *Catalog, initial GameState) *Evaluator {
	return &Evaluator{catalog: cat, prevAllComplete: AllGoalsComplete(initial)}
}

// Reset re-primes the all-goals edge detector, e.g. after a game reset.
func (e *Evaluator) Reset(s GameState) {
	e.prevAllComplete = AllGoalsComplete(s)
}

func (e *Evaluator) Evaluate(s GameState) (GameState, []Notification) {
	var notes []Notification
	next := s
	copied := false
	ensureCopy := func() {
		if !copied {
			next = s.Clone()
			copied = true
		}
	}

	for i, g := range s.Goals {
		if g.Completed {
			continue
		}
		def, ok := lookupDef(goalDefs, g.ID)
		if !ok || !def.Done(s, e.catalog) {
			continue
		}
		ensureCopy()
		next.Goals[i].Completed = true
		notes = append(notes, Notification{Kind: NotifyGoal, ID: g.ID, Message: "Goal complete: " + g.Text})
	}

	for _, def := range achievementDefs {
		if s.HasAchievement(def.ID) || !def.Done(s, e.catalog) {
			continue
		}
		ensureCopy()
		next.Achievements = append(next.Achievements, def.ID)
		notes = append(notes, Notification{Kind: NotifyAchievement, ID: def.ID, Message: "Achievement unlocked: " + def.Text})
	}

	all := AllGoalsComplete(next)
	if all && !e.prevAllComplete {
		notes = append(notes, Notification{Kind: NotifyAllGoals, Message: "All goals completed!"})
	}
	e.prevAllComplete = all
	return next, notes
}
