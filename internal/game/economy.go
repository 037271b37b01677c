package game

import "math"

func TotalJobLevels(levels map[string]int) int {
	total := 0
	for _, lvl := range levels {
		total += lvl
	}
	return total
}

// Inflation is 1.2^(total levels / 5). Levels never drop, so neither does this.
func Inflation(s GameState) float64 {
	return math.Pow(InflationBase, float64(TotalJobLevels(s.Job.Levels))/InflationStep)
}

// DynamicPrice must be evaluated against the state the action commits on, never
// a price cached at render time.
func DynamicPrice(basePrice float64, s GameState) float64 {
	if basePrice == 0 {
		return 0
	}
	return roundCents(basePrice * Inflation(s))
}
