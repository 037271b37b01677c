package game

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type Catalog struct {
	ShiftsPerLevel       int             `yaml:"shifts_per_level"`
	WorkCooldownMinutes  int             `yaml:"work_cooldown_minutes"`
	StudyPartDuration    time.Duration   `yaml:"study_part_duration"`
	Jobs                 []Job           `yaml:"jobs"`
	Hardware             []Item          `yaml:"hardware"`
	Software             []Item          `yaml:"software"`
	Tracks               []Track         `yaml:"tracks"`
	Shop                 []ShopItem      `yaml:"shop"`
	Rest                 []RestOption    `yaml:"rest"`
	HackTargets          []HackTarget    `yaml:"hack_targets"`
	CreditOptions        []CreditOption  `yaml:"credit_options"`
	DepositOptions       []DepositOption `yaml:"deposit_options"`
	CoreComputerCategory []string        `yaml:"core_computer_categories"`
}

type Job struct {
	ID               string   `yaml:"id"`
	Title            string   `yaml:"title"`
	Salary           float64  `yaml:"salary"`
	StaminaCost      float64  `yaml:"stamina_cost"`
	MoodCost         float64  `yaml:"mood_cost"`
	MinEducation     float64  `yaml:"min_education"`
	MinComputerTier  int      `yaml:"min_computer_tier"`
	RequiredTracks   []string `yaml:"required_tracks"`
	RequiredSoftware string   `yaml:"required_software"`
	NeedsInternet    bool     `yaml:"needs_internet"`
}

// Item is a piece of hardware or software; its tier gates jobs and hacks.
type Item struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Category  string  `yaml:"category"`
	Tier      int     `yaml:"tier"`
	BasePrice float64 `yaml:"base_price"`
}

type Track struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Parts         int     `yaml:"parts"`
	PartPrice     float64 `yaml:"part_price"`
	EducationGain float64 `yaml:"education_gain"`
}

type ShopItem struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	BasePrice float64 `yaml:"base_price"`
	Mood      float64 `yaml:"mood"`
	Health    float64 `yaml:"health"`
	Stamina   float64 `yaml:"stamina"`
}

type RestOption struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	BasePrice float64       `yaml:"base_price"`
	Duration  time.Duration `yaml:"duration"`
	Mood      float64       `yaml:"mood"`
	Health    float64       `yaml:"health"`
	Stamina   float64       `yaml:"stamina"`
}

type HackTarget struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	MinHackingTier int     `yaml:"min_hacking_tier"`
	SuccessChance  float64 `yaml:"success_chance"`
	Reward         float64 `yaml:"reward"`
	Fine           float64 `yaml:"fine"`
	StaminaCost    float64 `yaml:"stamina_cost"`
}

type CreditOption struct {
	ID           string  `yaml:"id"`
	Amount       float64 `yaml:"amount"`
	InterestRate float64 `yaml:"interest_rate"`
	TermDays     int     `yaml:"term_days"`
}

type DepositOption struct {
	ID           string  `yaml:"id"`
	MinAmount    float64 `yaml:"min_amount"`
	InterestRate float64 `yaml:"interest_rate"`
}

func DefaultCatalog() *Catalog {
	cat, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return cat
}

// LoadCatalog reads a YAML catalog from path, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if cat.ShiftsPerLevel <= 0 {
		cat.ShiftsPerLevel = 5
	}
	if cat.StudyPartDuration <= 0 {
		cat.StudyPartDuration = 20 * time.Second
	}
	if len(cat.CoreComputerCategory) == 0 {
		cat.CoreComputerCategory = []string{"cpu", "ram", "storage"}
	}
	return &cat, nil
}

func (c *Catalog) Job(id string) (Job, bool) {
	return find(c.Jobs, id, func(j Job) string { return j.ID })
}

func (c *Catalog) HardwareItem(id string) (Item, bool) {
	return find(c.Hardware, id, itemID)
}

func (c *Catalog) SoftwareItem(id string) (Item, bool) {
	return find(c.Software, id, itemID)
}

func (c *Catalog) Track(id string) (Track, bool) {
	return find(c.Tracks, id, func(t Track) string { return t.ID })
}

func (c *Catalog) ShopItem(id string) (ShopItem, bool) {
	return find(c.Shop, id, func(i ShopItem) string { return i.ID })
}

func (c *Catalog) RestOption(id string) (RestOption, bool) {
	return find(c.Rest, id, func(r RestOption) string { return r.ID })
}

func (c *Catalog) HackTarget(id string) (HackTarget, bool) {
	return find(c.HackTargets, id, func(h HackTarget) string { return h.ID })
}

func (c *Catalog) CreditOption(id string) (CreditOption, bool) {
	return find(c.CreditOptions, id, func(o CreditOption) string { return o.ID })
}

func (c *Catalog) DepositOption(id string) (DepositOption, bool) {
	return find(c.DepositOptions, id, func(o DepositOption) string { return o.ID })
}

func itemID(i Item) string { return i.ID }

func find[T any](items []T, id string, key func(T) string) (T, bool) {
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// ComputerTier is the weakest tier among the core hardware categories; a missing
// part counts as tier 0.
func (c *Catalog) ComputerTier(s GameState) int {
	tier := -1
	for _, cat := range c.CoreComputerCategory {
		t := 0
		if it, ok := c.HardwareItem(s.Computer[cat]); ok {
			t = it.Tier
		}
		if tier < 0 || t < tier {
			tier = t
		}
	}
	if tier < 0 {
		return 0
	}
	return tier
}

func (c *Catalog) SoftwareTier(s GameState, category string) int {
	if it, ok := c.SoftwareItem(s.Software[category]); ok {
		return it.Tier
	}
	return 0
}
