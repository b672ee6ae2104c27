package services

import (
	"fmt"
	"math"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	MinSupportedYear = 1900
	MaxSupportedYear = 2200
)

// PeriodRange is one observed period, both ends inclusive.
type PeriodRange struct {
	Start time.Time
	End   time.Time
}

func (period PeriodRange) Duration() int {
	return daysBetween(period.Start, period.End) + 1
}

func (period PeriodRange) Contains(day time.Time) bool {
	return betweenInclusive(day, period.Start, period.End)
}

type CycleStatistic struct {
	StartDate      time.Time
	CycleLength    int
	PeriodDuration int
}

type CycleSummary struct {
	Periods             []PeriodRange
	Statistics          []CycleStatistic
	MeanCycleLength     float64
	MeanPeriodLength    float64
	AverageCycleLength  int
	AveragePeriodLength int
	UsesDefaults        bool
}

func (summary CycleSummary) HasHistory() bool {
	return len(summary.Periods) > 0
}

func (summary CycleSummary) LastPeriod() (PeriodRange, bool) {
	if len(summary.Periods) == 0 {
		return PeriodRange{}, false
	}
	return summary.Periods[len(summary.Periods)-1], true
}

func PeriodRangesFromEntries(entries []models.PeriodEntry) []PeriodRange {
	periods := make([]PeriodRange, 0, len(entries))
	for _, entry := range entries {
		periods = append(periods, PeriodRange{
			Start: civilDate(entry.StartDate),
			End:   civilDate(entry.EndDate),
		})
	}
	return periods
}

// BuildCycleSummary derives per-cycle statistics from periods sorted by start
// date. Averages fall back to the default 28/5 constants until two starts are
// known, because a cycle length needs both ends.
func BuildCycleSummary(periods []PeriodRange) (CycleSummary, error) {
	if len(periods) == 0 {
		return CycleSummary{}, ErrInsufficientHistory
	}

	normalized := make([]PeriodRange, 0, len(periods))
	for index, period := range periods {
		current := PeriodRange{Start: civilDate(period.Start), End: civilDate(period.End)}
		if err := validatePeriodRange(index, current); err != nil {
			return CycleSummary{}, err
		}
		if index > 0 {
			if err := validatePeriodOrder(index, normalized[index-1], current); err != nil {
				return CycleSummary{}, err
			}
		}
		normalized = append(normalized, current)
	}

	summary := CycleSummary{Periods: normalized}
	if len(normalized) < 2 {
		summary.AverageCycleLength = models.DefaultCycleLength
		summary.AveragePeriodLength = models.DefaultPeriodLength
		summary.MeanCycleLength = float64(models.DefaultCycleLength)
		summary.MeanPeriodLength = float64(models.DefaultPeriodLength)
		summary.UsesDefaults = true
		summary.Statistics = []CycleStatistic{}
		return summary, nil
	}

	statistics := make([]CycleStatistic, 0, len(normalized)-1)
	cycleLengths := make([]int, 0, len(normalized)-1)
	periodDurations := make([]int, 0, len(normalized)-1)
	for index := 1; index < len(normalized); index++ {
		cycleLength := daysBetween(normalized[index-1].Start, normalized[index].Start)
		duration := normalized[index].Duration()
		statistics = append(statistics, CycleStatistic{
			StartDate:      normalized[index].Start,
			CycleLength:    cycleLength,
			PeriodDuration: duration,
		})
		cycleLengths = append(cycleLengths, cycleLength)
		periodDurations = append(periodDurations, duration)
	}

	summary.Statistics = statistics
	summary.MeanCycleLength = averageInts(cycleLengths)
	summary.MeanPeriodLength = averageInts(periodDurations)
	summary.AverageCycleLength = roundHalfUp(summary.MeanCycleLength)
	summary.AveragePeriodLength = roundHalfUp(summary.MeanPeriodLength)
	return summary, nil
}

func validatePeriodRange(index int, period PeriodRange) error {
	field := periodField(index)
	if period.Start.IsZero() || period.End.IsZero() {
		return newValidationError(field, "start and end dates are required")
	}
	if !yearSupported(period.Start.Year()) || !yearSupported(period.End.Year()) {
		return newValidationError(field, "dates must fall between %d and %d", MinSupportedYear, MaxSupportedYear)
	}
	if period.End.Before(period.Start) {
		return newValidationError(field, "end date %s is before start date %s", FormatISODate(period.End), FormatISODate(period.Start))
	}
	return nil
}

func validatePeriodOrder(index int, previous PeriodRange, current PeriodRange) error {
	field := periodField(index)
	switch {
	case current.Start.Equal(previous.Start):
		return newValidationError(field, "duplicate period start date %s", FormatISODate(current.Start))
	case current.Start.Before(previous.Start):
		return newValidationError(field, "periods must be sorted by start date")
	case !current.Start.After(previous.End):
		return newValidationError(field, "period starting %s overlaps the previous period", FormatISODate(current.Start))
	}
	return nil
}

func periodField(index int) string {
	return fmt.Sprintf("periods[%d]", index)
}

func yearSupported(year int) bool {
	return year >= MinSupportedYear && year <= MaxSupportedYear
}

func averageInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values))
}

func roundHalfUp(value float64) int {
	return int(math.Floor(value + 0.5))
}
