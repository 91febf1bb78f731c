package prompt

import "github.com/emilianohg/profiler/internal/models"

type ConflictLevel int

const (
	ConflictNone ConflictLevel = iota
	ConflictModerate
	ConflictSignificant
)

type SignalConflict struct {
	Level       ConflictLevel
	Spread      int
	Description string
}

// DetectSignalConflict measures how far apart the interviewers' hire signals
// are on the five-step scale. A spread of 2 is moderate, 3 or more is
// significant.
func DetectSignalConflict(interviews []models.Interview) SignalConflict {
	if len(interviews) < 2 {
		return SignalConflict{}
	}

	lowest, highest := 0, 0
	for _, iv := range interviews {
		rank := iv.HireSignal.Rank()
		if rank == 0 {
			continue
		}
		if lowest == 0 || rank < lowest {
			lowest = rank
		}
		if rank > highest {
			highest = rank
		}
	}

	spread := highest - lowest
	switch {
	case lowest == 0:
		return SignalConflict{}
	case spread >= 3:
		return SignalConflict{
			Level:       ConflictSignificant,
			Spread:      spread,
			Description: "⚠️ SIGNIFICANT CONFLICT: Interviewers have strongly divergent opinions (e.g., Strong Yes vs No, or Yes vs Strong No)",
		}
	case spread >= 2:
		return SignalConflict{
			Level:       ConflictModerate,
			Spread:      spread,
			Description: "⚠️ MODERATE CONFLICT: Interviewers have notably different opinions that should be reconciled",
		}
	}
	return SignalConflict{Spread: spread}
}

// AxisStats aggregates one axis over the interviews that scored it.
type AxisStats struct {
	Scored  int
	Average float64
	Min     int
	Max     int
}

func (s AxisStats) Spread() int {
	return s.Max - s.Min
}

func (s AxisStats) HighVariance() bool {
	return s.Spread() >= 2
}

func ComputeAxisStats(interviews []models.Interview, axis models.Axis) AxisStats {
	var stats AxisStats
	total := 0
	for _, iv := range interviews {
		score, ok := iv.Score(axis)
		if !ok {
			continue
		}
		if stats.Scored == 0 || score < stats.Min {
			stats.Min = score
		}
		if score > stats.Max {
			stats.Max = score
		}
		total += score
		stats.Scored++
	}
	if stats.Scored > 0 {
		stats.Average = float64(total) / float64(stats.Scored)
	}
	return stats
}

// AxisComparison is one axis across a set of interviews. Scores holds 0 for
// interviews that did not score the axis.
type AxisComparison struct {
	Axis   models.Axis
	Scores []int
	Stats  AxisStats
}

// CompareInterviews lines up every axis of models.Axes across interviews,
// keeping the order of interviews.
func CompareInterviews(interviews []models.Interview) []AxisComparison {
	rows := make([]AxisComparison, 0, len(models.Axes))
	for _, axis := range models.Axes {
		row := AxisComparison{
			Axis:   axis,
			Scores: make([]int, len(interviews)),
			Stats:  ComputeAxisStats(interviews, axis),
		}
		for i, iv := range interviews {
			if score, ok := iv.Score(axis); ok {
				row.Scores[i] = score
			}
		}
		rows = append(rows, row)
	}
	return rows
}
