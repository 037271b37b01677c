package game

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

type GameOverReason string

const (
	ReasonNone    GameOverReason = ""
	ReasonHealth  GameOverReason = "health"
	ReasonMood    GameOverReason = "mood"
	ReasonCredit  GameOverReason = "credit"
	ReasonDefault GameOverReason = "default"
)

type StudyStatus string

const (
	StudyIdle     StudyStatus = "idle"
	StudyStudying StudyStatus = "studying"
	StudyQuiz     StudyStatus = "quiz"
)

// GameState is the root aggregate. Only the state container writes it; everyone
// else works on copies.
type GameState struct {
	Version           int                        `json:"version"`
	Date              GameDate                   `json:"date"`
	Stats             Stats                      `json:"stats"`
	Job               JobState                   `json:"job"`
	Computer          map[string]string          `json:"computer"`
	Software          map[string]string          `json:"software"`
	HasInternet       bool                       `json:"hasInternet"`
	EducationProgress EducationProgress          `json:"educationProgress"`
	Banking           Banking                    `json:"banking"`
	Goals             []Goal                     `json:"goals"`
	Achievements      []string                   `json:"achievements"`
	Logs              []LogEntry                 `json:"logs"`
	Activity          *Activity                  `json:"activity,omitempty"`
	Minigames         map[string]json.RawMessage `json:"minigames,omitempty"`
	GameOver          bool                       `json:"gameOver"`
	GameOverReason    GameOverReason             `json:"gameOverReason,omitempty"`
	Locale            string                     `json:"locale"`
	Volume            float64                    `json:"volume"`
}

type Stats struct {
	Money      float64 `json:"money"`
	Mood       float64 `json:"mood"`
	MaxMood    float64 `json:"maxMood"`
	Health     float64 `json:"health"`
	MaxHealth  float64 `json:"maxHealth"`
	Stamina    float64 `json:"stamina"`
	MaxStamina float64 `json:"maxStamina"`
	Education  float64 `json:"education"`
}

type JobState struct {
	ID         string         `json:"id"`
	Levels     map[string]int `json:"levels"`
	Shifts     int            `json:"shifts"`
	LastWorked *GameDate      `json:"lastWorked,omitempty"`
}

type EducationProgress struct {
	CompletedTracks  []string    `json:"completedTracks"`
	ActiveTrackID    string      `json:"activeTrackId"`
	CurrentPartIndex int         `json:"currentPartIndex"`
	Status           StudyStatus `json:"status"`
	StartTime        time.Time   `json:"startTime"`
}

func (e EducationProgress) HasCompleted(trackID string) bool {
	return slices.Contains(e.CompletedTracks, trackID)
}

type Banking struct {
	Credits  []CreditRecord  `json:"credits"`
	Deposits []DepositRecord `json:"deposits"`
}

type CreditRecord struct {
	ID           string   `json:"id"`
	Amount       float64  `json:"amount"`
	TotalDue     float64  `json:"totalDue"`
	InterestRate float64  `json:"interestRate"`
	TakenAt      GameDate `json:"takenAt"`
	DueDate      GameDate `json:"dueDate"`
	TermDays     int      `json:"termDays"`
}

type DepositRecord struct {
	ID                  string   `json:"id"`
	Amount              float64  `json:"amount"`
	InterestRate        float64  `json:"interestRate"`
	StartDate           GameDate `json:"startDate"`
	AccumulatedInterest float64  `json:"accumulatedInterest"`
}

type Goal struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type LogEntry struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Target  string   `json:"target,omitempty"`
	Date    GameDate `json:"date"`
}

type Activity struct {
	Kind      string        `json:"kind"`
	OptionID  string        `json:"optionId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

func (a Activity) DoneAt(now time.Time) bool {
	return !now.Before(a.StartedAt.Add(a.Duration))
}

// DefaultState is the state of a fresh game.
func DefaultState() GameState {
	return GameState{
		Version: StateVersion,
		Date:    GameDate{Year: StartingYear, Month: 1, Day: 1},
		Stats: Stats{
			Money:      StartingMoney,
			Mood:       DefaultMaxStat,
			MaxMood:    DefaultMaxStat,
			Health:     DefaultMaxStat,
			MaxHealth:  DefaultMaxStat,
			Stamina:    DefaultMaxStat,
			MaxStamina: DefaultMaxStat,
		},
		Job:      JobState{Levels: map[string]int{}},
		Computer: map[string]string{},
		Software: map[string]string{},
		EducationProgress: EducationProgress{
			CompletedTracks: []string{},
			Status:          StudyIdle,
		},
		Banking: Banking{
			Credits:  []CreditRecord{},
			Deposits: []DepositRecord{},
		},
		Goals:        DefaultGoals(),
		Achievements: []string{},
		Logs:         []LogEntry{},
		Locale:       "en",
		Volume:       0.5,
	}
}

// Clone returns a copy that shares no mutable memory with s.
func (s GameState) Clone() GameState {
	out := s
	out.Job.Levels = cloneOrEmpty(s.Job.Levels)
	if s.Job.LastWorked != nil {
		d := *s.Job.LastWorked
		out.Job.LastWorked = &d
	}
	out.Computer = cloneOrEmpty(s.Computer)
	out.Software = cloneOrEmpty(s.Software)
	out.EducationProgress.CompletedTracks = slices.Clone(s.EducationProgress.CompletedTracks)
	out.Banking.Credits = slices.Clone(s.Banking.Credits)
	out.Banking.Deposits = slices.Clone(s.Banking.Deposits)
	out.Goals = slices.Clone(s.Goals)
	out.Achievements = slices.Clone(s.Achievements)
	out.Logs = slices.Clone(s.Logs)
	if s.Activity != nil {
		a := *s.Activity
		out.Activity = &a
	}
	if s.Minigames != nil {
		out.Minigames = make(map[string]json.RawMessage, len(s.Minigames))
		for k, v := range s.Minigames {
			out.Minigames[k] = slices.Clone(v)
		}
	}
	return out
}

func cloneOrEmpty[M ~map[K]V, K comparable, V any](m M) M {
	if m == nil {
		return M{}
	}
	return maps.Clone(m)
}

// Normalize fills nil collections so decoded snapshots behave like fresh ones.
func (s *GameState) Normalize() {
	if s.Job.Levels == nil {
		s.Job.Levels = map[string]int{}
	}
	if s.Computer == nil {
		s.Computer = map[string]string{}
	}
	if s.Software == nil {
		s.Software = map[string]string{}
	}
	if s.EducationProgress.CompletedTracks == nil {
		s.EducationProgress.CompletedTracks = []string{}
	}
	if s.EducationProgress.Status == "" {
		s.EducationProgress.Status = StudyIdle
	}
	if s.Banking.Credits == nil {
		s.Banking.Credits = []CreditRecord{}
	}
	if s.Banking.Deposits == nil {
		s.Banking.Deposits = []DepositRecord{}
	}
	if s.Goals == nil {
		s.Goals = DefaultGoals()
	}
	if s.Achievements == nil {
		s.Achievements = []string{}
	}
	if s.Logs == nil {
		s.Logs = []LogEntry{}
	}
}

// Validate rejects states no game could reach, such as a zero calendar or
// stat caps of zero left behind by a null sub-object in a snapshot.
func (s GameState) Validate() error {
	d := s.Date
	if d.Month < 1 || d.Month > MonthsPerYear || d.Day < 1 || d.Day > DaysPerMonth ||
		d.Hour < 0 || d.Hour >= HoursPerDay || d.Minute < 0 || d.Minute >= MinutesPerHour {
		return fmt.Errorf("invalid date %s", d)
	}
	st := s.Stats
	if st.MaxMood <= 0 || st.MaxHealth <= 0 || st.MaxStamina <= 0 {
		return fmt.Errorf("invalid stat caps: mood %v health %v stamina %v", st.MaxMood, st.MaxHealth, st.MaxStamina)
	}
	return nil
}

func (s GameState) HasAchievement(id string) bool {
	return slices.Contains(s.Achievements, id)
}
