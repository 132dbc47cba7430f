package simulator

import "time"

// DemandPattern scales the base order rate for part of the day.
type DemandPattern struct {
	Type               string
	TimeMultipliers    map[int]float64
	WeekdayMultipliers map[time.Weekday]float64
}

var DefaultDemandPatterns = []DemandPattern{
	{
		Type: "breakfast",
		TimeMultipliers: map[int]float64{
			7:  1.5,
			8:  2.0,
			9:  1.8,
			10: 1.2,
		},
	},
	{
		Type: "lunch",
		TimeMultipliers: map[int]float64{
			11: 1.3,
			12: 2.0,
			13: 2.0,
			14: 1.5,
		},
		WeekdayMultipliers: map[time.Weekday]float64{
			time.Monday:   1.2,
			time.Friday:   1.4,
			time.Saturday: 0.8,
			time.Sunday:   0.7,
		},
	},
	{
		Type: "afternoon_treat",
		TimeMultipliers: map[int]float64{
			15: 1.3,
			16: 1.5,
			17: 1.2,
		},
	},
	{
		Type: "dinner",
		TimeMultipliers: map[int]float64{
			18: 1.8,
			19: 2.0,
			20: 1.7,
			21: 1.3,
		},
		WeekdayMultipliers: map[time.Weekday]float64{
			time.Friday:   1.6,
			time.Saturday: 1.5,
			time.Sunday:   1.3,
		},
	},
}

// demandMultiplier returns the strongest pattern active at t.
func demandMultiplier(patterns []DemandPattern, t time.Time) float64 {
	multiplier := 1.0
	for _, p := range patterns {
		m, ok := p.TimeMultipliers[t.Hour()]
		if !ok {
			continue
		}
		if w, ok := p.WeekdayMultipliers[t.Weekday()]; ok {
			m *= w
		}
		multiplier = max(multiplier, m)
	}
	return multiplier
}

func isPeakHour(t time.Time) bool {
	hour := t.Hour()
	return (hour >= 11 && hour <= 14) || (hour >= 18 && hour <= 21)
}

func isWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}
