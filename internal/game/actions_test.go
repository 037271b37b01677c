package game

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecodeAction(t *testing.T) {
	a, err := DecodeAction("take_credit", []byte(`{"optionId":"micro"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tc, ok := a.(*TakeCredit)
	if !ok || tc.OptionID != "micro" {
		t.Fatalf("unexpected action %#v", a)
	}
	if _, err := DecodeAction("work", nil); err != nil {
		t.Fatalf("decode without payload: %v", err)
	}
	if _, err := DecodeAction("launch_rocket", nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := DecodeAction("take_credit", []byte(`{`)); err == nil {
		t.Fatalf("expected decode error for bad JSON")
	}
	for _, name := range ActionNames() {
		a, err := DecodeAction(name, nil)
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if a.Name() != name {
			t.Fatalf("registry name %q builds action named %q", name, a.Name())
		}
	}
}

func TestActionFuncWorksOnCopy(t *testing.T) {
	s := DefaultState()
	f := ActionFunc(func(s GameState, _ Env) (GameState, error) {
		s.Stats.Money = 1
		s.Computer["cpu"] = "cpu_386"
		return s, nil
	})
	next, err := f.Apply(s, testEnv())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if next.Stats.Money != 1 || s.Stats.Money != StartingMoney {
		t.Fatalf("copy semantics broken: next=%v prev=%v", next.Stats.Money, s.Stats.Money)
	}
	if _, ok := s.Computer["cpu"]; ok {
		t.Fatalf("producer leaked a map write into the input")
	}
}

func TestWorkPaysAndPromotes(t *testing.T) {
	env := testEnv()
	s, err := ApplyJob{JobID: "courier"}.Apply(DefaultState(), env)
	if err != nil {
		t.Fatalf("apply job: %v", err)
	}

	s, err = Work{}.Apply(s, env)
	if err != nil {
		t.Fatalf("work: %v", err)
	}
	if s.Stats.Money != 540 || s.Stats.Stamina != 85 || s.Stats.Mood != 96 {
		t.Fatalf("after shift: %+v", s.Stats)
	}
	if _, err := (Work{}).Apply(s, env); !errors.Is(err, ErrCooldown) {
		t.Fatalf("expected ErrCooldown, got %v", err)
	}

	for range env.Catalog.ShiftsPerLevel - 1 {
		s.Date = s.Date.AddMinutes(env.Catalog.WorkCooldownMinutes)
		if s, err = (Work{}).Apply(s, env); err != nil {
			t.Fatalf("work: %v", err)
		}
	}
	if s.Job.Levels["courier"] != 1 || s.Job.Shifts != 0 {
		t.Fatalf("expected promotion, got levels=%v shifts=%d", s.Job.Levels, s.Job.Shifts)
	}
	if s.Logs[0].Kind != "promotion" {
		t.Fatalf("expected promotion log first, got %q", s.Logs[0].Kind)
	}
}

func TestApplyJobRequirements(t *testing.T) {
	env := testEnv()
	if _, err := (ApplyJob{JobID: "support"}).Apply(DefaultState(), env); !errors.Is(err, ErrRequirementsNotMet) {
		t.Fatalf("expected ErrRequirementsNotMet, got %v", err)
	}
	s := DefaultState()
	s.Computer = map[string]string{"cpu": "cpu_386", "ram": "ram_4mb", "storage": "hdd_40mb"}
	if _, err := (ApplyJob{JobID: "support"}).Apply(s, env); err != nil {
		t.Fatalf("support with tier 1 computer: %v", err)
	}
}

func TestWorkWithoutStamina(t *testing.T) {
	env := testEnv()
	s, _ := ApplyJob{JobID: "courier"}.Apply(DefaultState(), env)
	s.Stats.Stamina = 5
	if _, err := (Work{}).Apply(s, env); !errors.Is(err, ErrInsufficientStamina) {
		t.Fatalf("expected ErrInsufficientStamina, got %v", err)
	}
}

func TestBuyHardwareGrantsInternet(t *testing.T) {
	env := testEnv()
	s, err := BuyHardware{ItemID: "modem_14k"}.Apply(DefaultState(), env)
	if err != nil {
		t.Fatalf("buy modem: %v", err)
	}
	if !s.HasInternet || s.Stats.Money != 380 {
		t.Fatalf("unexpected state: internet=%v money=%v", s.HasInternet, s.Stats.Money)
	}
	if _, err := (BuyHardware{ItemID: "modem_14k"}).Apply(s, env); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("expected ErrAlreadyOwned, got %v", err)
	}
	poor := DefaultState()
	poor.Stats.Money = 10
	if _, err := (BuyHardware{ItemID: "cpu_386"}).Apply(poor, env); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestBuyShopItemClamps(t *testing.T) {
	s, err := BuyShopItem{ItemID: "coffee"}.Apply(DefaultState(), testEnv())
	if err != nil {
		t.Fatalf("buy coffee: %v", err)
	}
	if s.Stats.Stamina != s.Stats.MaxStamina || s.Stats.Mood != s.Stats.MaxMood {
		t.Fatalf("stats exceeded max: %+v", s.Stats)
	}
	if s.Stats.Money != 495 {
		t.Fatalf("money: got %v want 495", s.Stats.Money)
	}
}

func TestStudyTrack(t *testing.T) {
	env := testEnv()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := DefaultState()

	for part := range 3 {
		env.Now = t0
		var err error
		if s, err = (StartStudy{TrackID: "html_basics"}).Apply(s, env); err != nil {
			t.Fatalf("part %d start: %v", part, err)
		}
		if s.EducationProgress.Status != StudyStudying {
			t.Fatalf("part %d: status %q", part, s.EducationProgress.Status)
		}
		env.Now = t0.Add(env.Catalog.StudyPartDuration - time.Second)
		if _, err := (FinishStudy{}).Apply(s, env); !errors.Is(err, ErrNotReady) {
			t.Fatalf("part %d: expected ErrNotReady, got %v", part, err)
		}
		env.Now = t0.Add(env.Catalog.StudyPartDuration)
		if s, err = (FinishStudy{}).Apply(s, env); err != nil {
			t.Fatalf("part %d finish: %v", part, err)
		}
		if s, err = (AnswerQuiz{Correct: true}).Apply(s, env); err != nil {
			t.Fatalf("part %d quiz: %v", part, err)
		}
	}
	if !s.EducationProgress.HasCompleted("html_basics") || s.Stats.Education != 10 {
		t.Fatalf("track not completed: %+v education=%v", s.EducationProgress, s.Stats.Education)
	}
	if s.Stats.Money != 500-3*60 {
		t.Fatalf("money: got %v", s.Stats.Money)
	}
}

func TestWrongQuizAnswerRepeatsPart(t *testing.T) {
	env := testEnv()
	env.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s, _ := StartStudy{TrackID: "html_basics"}.Apply(DefaultState(), env)
	env.Now = env.Now.Add(env.Catalog.StudyPartDuration)
	s, _ = FinishStudy{}.Apply(s, env)
	s, err := AnswerQuiz{Correct: false}.Apply(s, env)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if s.EducationProgress.Status != StudyIdle || s.EducationProgress.CurrentPartIndex != 0 {
		t.Fatalf("unexpected progress %+v", s.EducationProgress)
	}
	if s.Logs[0].Kind != "quiz_failed" {
		t.Fatalf("expected quiz_failed log, got %q", s.Logs[0].Kind)
	}
}

func TestRestCycle(t *testing.T) {
	env := testEnv()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	env.Now = t0
	s := DefaultState()
	s.Stats.Stamina = 50

	s, err := StartRest{OptionID: "nap"}.Apply(s, env)
	if err != nil {
		t.Fatalf("start rest: %v", err)
	}
	if _, err := (StartRest{OptionID: "sleep"}).Apply(s, env); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	env.Now = t0.Add(9 * time.Second)
	if _, err := (FinishRest{}).Apply(s, env); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	env.Now = t0.Add(10 * time.Second)
	s, err = FinishRest{}.Apply(s, env)
	if err != nil {
		t.Fatalf("finish rest: %v", err)
	}
	if s.Activity != nil || s.Stats.Stamina != 80 {
		t.Fatalf("unexpected state: activity=%v stamina=%v", s.Activity, s.Stats.Stamina)
	}
}

func hackerState() GameState {
	s := DefaultState()
	s.Computer = map[string]string{"modem": "modem_14k"}
	s.Software = map[string]string{"hacking": "hack_scan"}
	s.HasInternet = true
	return s
}

func TestHack(t *testing.T) {
	env := testEnv()
	if _, err := (Hack{TargetID: "bbs"}).Apply(DefaultState(), env); !errors.Is(err, ErrNoInternet) {
		t.Fatalf("expected ErrNoInternet, got %v", err)
	}
	if _, err := (Hack{TargetID: "bank"}).Apply(hackerState(), env); !errors.Is(err, ErrRequirementsNotMet) {
		t.Fatalf("expected ErrRequirementsNotMet, got %v", err)
	}

	env.Rand = func() float64 { return 0 }
	won, err := Hack{TargetID: "bbs"}.Apply(hackerState(), env)
	if err != nil {
		t.Fatalf("hack: %v", err)
	}
	if won.Stats.Money != 600 || won.Logs[0].Kind != "hack" || won.Logs[0].Target != "bbs" {
		t.Fatalf("unexpected success state: money=%v log=%+v", won.Stats.Money, won.Logs[0])
	}

	env.Rand = func() float64 { return 0.99 }
	broke := hackerState()
	broke.Stats.Money = 40
	lost, err := Hack{TargetID: "bbs"}.Apply(broke, env)
	if err != nil {
		t.Fatalf("hack: %v", err)
	}
	if lost.Stats.Money != 0 || lost.Stats.Mood != 95 || lost.Logs[0].Kind != "hack_fail" {
		t.Fatalf("fine not capped at money: money=%v mood=%v", lost.Stats.Money, lost.Stats.Mood)
	}
}

func TestSettingsAndMinigames(t *testing.T) {
	env := testEnv()
	s, err := SetVolume{Volume: 3}.Apply(DefaultState(), env)
	if err != nil || s.Volume != 1 {
		t.Fatalf("volume: got %v err=%v", s.Volume, err)
	}
	if _, err := (SetLocale{Locale: " "}).Apply(s, env); err == nil {
		t.Fatalf("expected empty locale to fail")
	}
	s, _ = SetLocale{Locale: "ru"}.Apply(s, env)
	if s.Locale != "ru" {
		t.Fatalf("locale: got %q", s.Locale)
	}

	s, err = SaveMinigame{Game: "snake", Blob: json.RawMessage(`{"best":12}`)}.Apply(s, env)
	if err != nil {
		t.Fatalf("save minigame: %v", err)
	}
	if string(s.Minigames["snake"]) != `{"best":12}` {
		t.Fatalf("blob: got %s", s.Minigames["snake"])
	}
	if _, err := (SaveMinigame{Game: "snake", Blob: json.RawMessage(`{`)}).Apply(s, env); err == nil {
		t.Fatalf("expected invalid blob to fail")
	}
	s, _ = SaveMinigame{Game: "snake"}.Apply(s, env)
	if _, ok := s.Minigames["snake"]; ok {
		t.Fatalf("empty blob should delete the entry")
	}
}

func TestLogIsBoundedNewestFirst(t *testing.T) {
	s := DefaultState()
	for i := range LogCapacity + 20 {
		appendLog(&s, "work", "shift", string(rune('a'+i%26)))
	}
	if len(s.Logs) != LogCapacity {
		t.Fatalf("log size: got %d want %d", len(s.Logs), LogCapacity)
	}
	appendLog(&s, "repay", "latest", "")
	if s.Logs[0].Kind != "repay" {
		t.Fatalf("newest entry not first")
	}
}
