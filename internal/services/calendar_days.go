package services

import (
	"sort"
	"time"
)

type DayType string

const (
	DayTypePeriod    DayType = "period"
	DayTypeOvulation DayType = "ovulation"
	DayTypeFertile   DayType = "fertile"
	DayTypeRegular   DayType = "regular"
)

type CyclePhase string

const (
	PhaseMenstrual  CyclePhase = "menstrual"
	PhaseFollicular CyclePhase = "follicular"
	PhaseOvulation  CyclePhase = "ovulation"
	PhaseLuteal     CyclePhase = "luteal"
)

type CalendarDay struct {
	Date        time.Time
	DayType     DayType
	CycleDay    int
	Phase       CyclePhase
	IsPredicted bool
}

type CalendarMonth struct {
	Year  int
	Month time.Month
	Days  []CalendarDay
	// PredictionsAvailable is false when the history averages cannot drive a
	// projection; the days then carry logged periods only.
	PredictionsAvailable bool
}

// cycleAnchor is the period start that opens the cycle a day belongs to.
type cycleAnchor struct {
	start        time.Time
	periodLength int
	ovulation    time.Time
	hasOvulation bool
}

type calendarProjection struct {
	predictor *Predictor
	summary   CycleSummary
	last      PeriodRange
	enabled   bool
}

func ValidateCalendarMonth(year int, month time.Month) error {
	if !yearSupported(year) {
		return newValidationError("year", "must be between %d and %d", MinSupportedYear, MaxSupportedYear)
	}
	if month < time.January || month > time.December {
		return newValidationError("month", "must be between 1 and 12")
	}
	return nil
}

// BuildCalendarMonth classifies every day of the month against the logged
// history in summary and the cycles projected from its averages.
func (predictor *Predictor) BuildCalendarMonth(summary CycleSummary, year int, month time.Month) (CalendarMonth, error) {
	if err := ValidateCalendarMonth(year, month); err != nil {
		return CalendarMonth{}, err
	}
	return predictor.buildMonth(summary, year, month), nil
}

// buildMonth renders a month without the request year bounds; predicted
// periods may run past MaxSupportedYear.
func (predictor *Predictor) buildMonth(summary CycleSummary, year int, month time.Month) CalendarMonth {
	daysInMonth := DaysInMonth(year, month)
	result := CalendarMonth{
		Year:  year,
		Month: month,
		Days:  make([]CalendarDay, 0, daysInMonth),
	}

	last, hasHistory := summary.LastPeriod()
	projection := calendarProjection{
		predictor: predictor,
		summary:   summary,
		last:      last,
		enabled:   hasHistory && predictor.ValidateCycleShape(summary.AveragePeriodLength, summary.AverageCycleLength) == nil,
	}
	result.PredictionsAvailable = projection.enabled

	for dayNumber := 1; dayNumber <= daysInMonth; dayNumber++ {
		day := time.Date(year, month, dayNumber, 0, 0, 0, 0, time.UTC)
		if !hasHistory {
			result.Days = append(result.Days, CalendarDay{Date: day, DayType: DayTypeRegular})
			continue
		}
		result.Days = append(result.Days, projection.classify(day))
	}
	return result
}

func (projection calendarProjection) classify(day time.Time) CalendarDay {
	calendarDay := CalendarDay{Date: day, DayType: DayTypeRegular}

	anchor, found := projection.anchorFor(day)
	if found {
		calendarDay.CycleDay = daysBetween(anchor.start, day) + 1
		calendarDay.Phase = phaseFor(day, calendarDay.CycleDay, anchor)
	}

	if projection.isLoggedPeriod(day) {
		calendarDay.DayType = DayTypePeriod
		return calendarDay
	}
	if !projection.enabled || day.Before(projection.last.Start) {
		return calendarDay
	}

	cycleLength := projection.summary.AverageCycleLength
	index := floorDiv(daysBetween(projection.last.Start, day), cycleLength)
	cycleStart := addDays(projection.last.Start, index*cycleLength)
	if index >= 1 && daysBetween(cycleStart, day) < projection.summary.AveragePeriodLength {
		calendarDay.DayType = DayTypePeriod
		calendarDay.IsPredicted = true
		return calendarDay
	}

	// A short follicular phase can pull the next cycle's fertile window into
	// the current one, so both cycles are checked.
	for candidate := index; candidate <= index+1; candidate++ {
		ovulation := projection.projectedOvulation(candidate)
		if sameDay(day, ovulation) {
			calendarDay.DayType = DayTypeOvulation
			calendarDay.IsPredicted = true
			return calendarDay
		}
	}
	for candidate := index; candidate <= index+1; candidate++ {
		fertileStart, fertileEnd := projection.predictor.FertileWindow(projection.projectedOvulation(candidate))
		if betweenInclusive(day, fertileStart, fertileEnd) {
			calendarDay.DayType = DayTypeFertile
			calendarDay.IsPredicted = true
			return calendarDay
		}
	}
	return calendarDay
}

func (projection calendarProjection) projectedOvulation(cycleIndex int) time.Time {
	cycleLength := projection.summary.AverageCycleLength
	cycleStart := addDays(projection.last.Start, cycleIndex*cycleLength)
	return addDays(cycleStart, projection.predictor.OvulationOffset(cycleLength))
}

// loggedIndexAtOrBefore returns the index of the last logged period starting
// on or before day, or -1.
func (projection calendarProjection) loggedIndexAtOrBefore(day time.Time) int {
	periods := projection.summary.Periods
	next := sort.Search(len(periods), func(i int) bool {
		return periods[i].Start.After(day)
	})
	return next - 1
}

func (projection calendarProjection) isLoggedPeriod(day time.Time) bool {
	index := projection.loggedIndexAtOrBefore(day)
	return index >= 0 && projection.summary.Periods[index].Contains(day)
}

func (projection calendarProjection) anchorFor(day time.Time) (cycleAnchor, bool) {
	periods := projection.summary.Periods
	index := projection.loggedIndexAtOrBefore(day)
	if index < 0 {
		return cycleAnchor{}, false
	}

	if index < len(periods)-1 {
		luteal := projection.predictor.config.LutealPhaseDays
		return cycleAnchor{
			start:        periods[index].Start,
			periodLength: periods[index].Duration(),
			ovulation:    addDays(periods[index+1].Start, -luteal),
			hasOvulation: true,
		}, true
	}

	if !projection.enabled {
		return cycleAnchor{
			start:        projection.last.Start,
			periodLength: projection.last.Duration(),
		}, true
	}

	cycleLength := projection.summary.AverageCycleLength
	cycleIndex := floorDiv(daysBetween(projection.last.Start, day), cycleLength)
	anchor := cycleAnchor{
		start:        addDays(projection.last.Start, cycleIndex*cycleLength),
		periodLength: projection.summary.AveragePeriodLength,
		ovulation:    projection.projectedOvulation(cycleIndex),
		hasOvulation: true,
	}
	if cycleIndex == 0 {
		anchor.periodLength = projection.last.Duration()
	}
	return anchor, true
}

func phaseFor(day time.Time, cycleDay int, anchor cycleAnchor) CyclePhase {
	if cycleDay <= anchor.periodLength {
		return PhaseMenstrual
	}
	if !anchor.hasOvulation {
		return ""
	}
	distance := daysBetween(anchor.ovulation, day)
	switch {
	case distance >= -1 && distance <= 1:
		return PhaseOvulation
	case distance > 1:
		return PhaseLuteal
	default:
		return PhaseFollicular
	}
}

func floorDiv(value int, divisor int) int {
	quotient := value / divisor
	if value%divisor != 0 && (value < 0) != (divisor < 0) {
		quotient--
	}
	return quotient
}
