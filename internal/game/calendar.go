package game

import "fmt"

// The in-game calendar is stylized: every month has 30 days and every year 12
// months. Days and months are 1-indexed.
const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	DaysPerMonth   = 30
	MonthsPerYear  = 12
	DaysPerYear    = DaysPerMonth * MonthsPerYear
)

type GameDate struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// AddMinutes cascades overflow minute -> hour -> day -> month -> year.
func (d GameDate) AddMinutes(n int) GameDate {
	if n <= 0 {
		return d
	}
	d.Minute += n
	d.Hour += d.Minute / MinutesPerHour
	d.Minute %= MinutesPerHour
	extraDays := d.Hour / HoursPerDay
	d.Hour %= HoursPerDay
	return d.AddDays(extraDays)
}

func (d GameDate) AddDays(n int) GameDate {
	if n <= 0 {
		return d
	}
	d.Day += n
	d.Month += (d.Day - 1) / DaysPerMonth
	d.Day = (d.Day-1)%DaysPerMonth + 1
	d.Year += (d.Month - 1) / MonthsPerYear
	d.Month = (d.Month-1)%MonthsPerYear + 1
	return d
}

// DayNumber is the day counter used for due-date arithmetic.
func (d GameDate) DayNumber() int {
	return d.Year*DaysPerYear + d.Month*DaysPerMonth + d.Day
}

func (d GameDate) minuteOfDay() int {
	return d.Hour*MinutesPerHour + d.Minute
}

// Compare returns -1, 0 or 1.
func (d GameDate) Compare(o GameDate) int {
	a, b := d.DayNumber(), o.DayNumber()
	if a == b {
		a, b = d.minuteOfDay(), o.minuteOfDay()
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (d GameDate) Before(o GameDate) bool { return d.Compare(o) < 0 }
func (d GameDate) After(o GameDate) bool  { return d.Compare(o) > 0 }

// MinutesSince is only meaningful when o is not after d.
func (d GameDate) MinutesSince(o GameDate) int {
	days := d.DayNumber() - o.DayNumber()
	return days*HoursPerDay*MinutesPerHour + d.minuteOfDay() - o.minuteOfDay()
}

func (d GameDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute)
}
