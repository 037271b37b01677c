package game

import (
	"fmt"
	"slices"
)

type ApplyJob struct {
	JobID string `json:"jobId"`
}

func (ApplyJob) Name() string { return "apply_job" }

func (a ApplyJob) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	job, ok := env.Catalog.Job(a.JobID)
	if !ok {
		return s, fmt.Errorf("%w: job %q", ErrUnknownItem, a.JobID)
	}
	if s.Job.ID == job.ID {
		return s, ErrAlreadyOwned
	}
	if err := checkJobRequirements(s, env.Catalog, job); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Job.ID = job.ID
	next.Job.Shifts = 0
	next.Job.LastWorked = nil
	if _, ok := next.Job.Levels[job.ID]; !ok {
		next.Job.Levels[job.ID] = 0
	}
	appendLog(&next, "job", "Hired as "+job.Title, job.ID)
	return next, nil
}

func checkJobRequirements(s GameState, cat *Catalog, job Job) error {
	switch {
	case s.Stats.Education < job.MinEducation:
		return fmt.Errorf("%w: education %.0f < %.0f", ErrRequirementsNotMet, s.Stats.Education, job.MinEducation)
	case cat.ComputerTier(s) < job.MinComputerTier:
		return fmt.Errorf("%w: computer tier %d < %d", ErrRequirementsNotMet, cat.ComputerTier(s), job.MinComputerTier)
	case job.RequiredSoftware != "" && s.Software[job.RequiredSoftware] == "":
		return fmt.Errorf("%w: needs %s software", ErrRequirementsNotMet, job.RequiredSoftware)
	case job.NeedsInternet && !s.HasInternet:
		return ErrNoInternet
	}
	for _, t := range job.RequiredTracks {
		if !s.EducationProgress.HasCompleted(t) {
			return fmt.Errorf("%w: track %s not completed", ErrRequirementsNotMet, t)
		}
	}
	return nil
}

// Work runs one shift at the current job.
type Work struct{}

func (Work) Name() string { return "work" }

func (Work) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if s.Job.ID == "" {
		return s, fmt.Errorf("%w: no job", ErrRequirementsNotMet)
	}
	job, ok := env.Catalog.Job(s.Job.ID)
	if !ok {
		return s, fmt.Errorf("%w: job %q", ErrUnknownItem, s.Job.ID)
	}
	if s.Job.LastWorked != nil && s.Date.MinutesSince(*s.Job.LastWorked) < env.Catalog.WorkCooldownMinutes {
		return s, ErrCooldown
	}
	if s.Stats.Stamina < job.StaminaCost {
		return s, ErrInsufficientStamina
	}

	level := s.Job.Levels[job.ID]
	pay := roundCents(job.Salary * (1 + 0.1*float64(level)))

	next := s.Clone()
	next.Stats.Money += pay
	next.Stats.adjust(-job.MoodCost, 0, -job.StaminaCost)
	worked := s.Date
	next.Job.LastWorked = &worked
	next.Job.Shifts++
	appendLog(&next, "work", fmt.Sprintf("Worked a shift as %s for %.2f", job.Title, pay), job.ID)
	if next.Job.Shifts >= env.Catalog.ShiftsPerLevel {
		next.Job.Shifts = 0
		next.Job.Levels[job.ID] = level + 1
		appendLog(&next, "promotion", fmt.Sprintf("Promoted to level %d as %s", level+1, job.Title), job.ID)
	}
	return next, nil
}

// StartStudy pays for the next part of a track up front.
type StartStudy struct {
	TrackID string `json:"trackId"`
}

func (StartStudy) Name() string { return "start_study" }

func (a StartStudy) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if s.EducationProgress.Status != StudyIdle {
		return s, ErrBusy
	}
	track, ok := env.Catalog.Track(a.TrackID)
	if !ok {
		return s, fmt.Errorf("%w: track %q", ErrUnknownItem, a.TrackID)
	}
	if s.EducationProgress.HasCompleted(track.ID) {
		return s, ErrAlreadyOwned
	}
	price, err := charge(s, track.PartPrice)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Stats.Money -= price
	ep := &next.EducationProgress
	if ep.ActiveTrackID != track.ID {
		ep.ActiveTrackID = track.ID
		ep.CurrentPartIndex = 0
	}
	ep.Status = StudyStudying
	ep.StartTime = env.Now
	appendLog(&next, "study", fmt.Sprintf("Started %s part %d/%d", track.Name, ep.CurrentPartIndex+1, track.Parts), track.ID)
	return next, nil
}

// FinishStudy moves a finished study session to its quiz.
type FinishStudy struct{}

func (FinishStudy) Name() string { return "finish_study" }

func (FinishStudy) Apply(s GameState, env Env) (GameState, error) {
	ep := s.EducationProgress
	if ep.Status != StudyStudying {
		return s, ErrNotReady
	}
	if env.Now.Before(ep.StartTime.Add(env.Catalog.StudyPartDuration)) {
		return s, ErrNotReady
	}
	next := s.Clone()
	next.EducationProgress.Status = StudyQuiz
	return next, nil
}

type AnswerQuiz struct {
	Correct bool `json:"correct"`
}

func (AnswerQuiz) Name() string { return "answer_quiz" }

func (a AnswerQuiz) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if s.EducationProgress.Status != StudyQuiz {
		return s, ErrNotReady
	}
	track, ok := env.Catalog.Track(s.EducationProgress.ActiveTrackID)
	if !ok {
		return s, fmt.Errorf("%w: track %q", ErrUnknownItem, s.EducationProgress.ActiveTrackID)
	}
	next := s.Clone()
	ep := &next.EducationProgress
	ep.Status = StudyIdle
	if !a.Correct {
		appendLog(&next, "quiz_failed", "Failed the "+track.Name+" quiz", track.ID)
		return next, nil
	}
	ep.CurrentPartIndex++
	if ep.CurrentPartIndex < track.Parts {
		return next, nil
	}
	if !slices.Contains(ep.CompletedTracks, track.ID) {
		ep.CompletedTracks = append(ep.CompletedTracks, track.ID)
	}
	ep.ActiveTrackID = ""
	ep.CurrentPartIndex = 0
	next.Stats.Education += track.EducationGain
	appendLog(&next, "graduate", "Completed "+track.Name, track.ID)
	return next, nil
}
