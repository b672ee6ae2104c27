package services

import (
	"errors"
	"time"
)

const (
	// DefaultLutealPhaseDays is the clinical approximation of the fixed span
	// between ovulation and the next period start.
	DefaultLutealPhaseDays            = 14
	DefaultFertileDaysBeforeOvulation = 5
	DefaultFertileDaysAfterOvulation  = 1
	DefaultPredictionHorizon          = 3
	MaxPredictionHorizon              = 12
	MaxAverageCycleLength             = 365
)

type PredictorConfig struct {
	LutealPhaseDays            int
	FertileDaysBeforeOvulation int
	FertileDaysAfterOvulation  int
	DefaultHorizon             int
	MaxHorizon                 int
}

func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		LutealPhaseDays:            DefaultLutealPhaseDays,
		FertileDaysBeforeOvulation: DefaultFertileDaysBeforeOvulation,
		FertileDaysAfterOvulation:  DefaultFertileDaysAfterOvulation,
		DefaultHorizon:             DefaultPredictionHorizon,
		MaxHorizon:                 MaxPredictionHorizon,
	}
}

func (config PredictorConfig) withDefaults() PredictorConfig {
	defaults := DefaultPredictorConfig()
	if config.LutealPhaseDays <= 0 {
		config.LutealPhaseDays = defaults.LutealPhaseDays
	}
	if config.FertileDaysBeforeOvulation <= 0 {
		config.FertileDaysBeforeOvulation = defaults.FertileDaysBeforeOvulation
	}
	if config.FertileDaysAfterOvulation < 0 {
		config.FertileDaysAfterOvulation = defaults.FertileDaysAfterOvulation
	}
	if config.MaxHorizon <= 0 {
		config.MaxHorizon = defaults.MaxHorizon
	}
	if config.DefaultHorizon <= 0 || config.DefaultHorizon > config.MaxHorizon {
		config.DefaultHorizon = min(defaults.DefaultHorizon, config.MaxHorizon)
	}
	return config
}

type PredictionInput struct {
	LastPeriodStart    time.Time
	PeriodLength       int
	AverageCycleLength int
	// Horizon is the number of cycles to project; zero selects the configured default.
	Horizon int
}

type MonthInfo struct {
	Month       time.Month
	Year        int
	DaysInMonth int
	IsLeapYear  bool
}

func monthInfoFor(day time.Time) MonthInfo {
	return MonthInfo{
		Month:       day.Month(),
		Year:        day.Year(),
		DaysInMonth: DaysInMonth(day.Year(), day.Month()),
		IsLeapYear:  IsLeapYear(day.Year()),
	}
}

// PeriodPrediction describes projected cycle PeriodNumber: the cycle that
// begins at CycleStart, its ovulation and fertile window, and the period that
// closes it at PeriodStartDate.
type PeriodPrediction struct {
	PeriodNumber       int
	CycleStart         time.Time
	PeriodStartDate    time.Time
	PeriodEndDate      time.Time
	OvulationDate      time.Time
	FertileWindowStart time.Time
	FertileWindowEnd   time.Time
	CycleDay           int
	MonthInfo          MonthInfo
}

type Predictor struct {
	config PredictorConfig
}

func NewPredictor(config PredictorConfig) *Predictor {
	return &Predictor{config: config.withDefaults()}
}

func (predictor *Predictor) Config() PredictorConfig {
	return predictor.config
}

// OvulationOffset is the zero-based day of ovulation inside a cycle.
func (predictor *Predictor) OvulationOffset(cycleLength int) int {
	return cycleLength - predictor.config.LutealPhaseDays
}

func (predictor *Predictor) FertileWindow(ovulation time.Time) (time.Time, time.Time) {
	return addDays(ovulation, -predictor.config.FertileDaysBeforeOvulation),
		addDays(ovulation, predictor.config.FertileDaysAfterOvulation)
}

// ValidateCycleShape checks that a period length and cycle length can produce
// an ovulation date strictly inside the cycle.
func (predictor *Predictor) ValidateCycleShape(periodLength int, cycleLength int) error {
	if periodLength < 1 {
		return newValidationError("periodLength", "must be at least 1 day")
	}
	if cycleLength < 1 || cycleLength > MaxAverageCycleLength {
		return newValidationError("averageCycleLength", "must be between 1 and %d days", MaxAverageCycleLength)
	}
	if periodLength >= cycleLength {
		return newValidationError("periodLength", "period length %d must be shorter than the average cycle length %d", periodLength, cycleLength)
	}
	if cycleLength <= predictor.config.LutealPhaseDays {
		return newValidationError("averageCycleLength", "average cycle length %d must exceed the %d-day luteal phase", cycleLength, predictor.config.LutealPhaseDays)
	}
	return nil
}

func (predictor *Predictor) ResolveHorizon(requested int) (int, error) {
	if requested == 0 {
		return predictor.config.DefaultHorizon, nil
	}
	if requested < 1 || requested > predictor.config.MaxHorizon {
		return 0, newValidationError("horizon", "must be between 1 and %d", predictor.config.MaxHorizon)
	}
	return requested, nil
}

// ExplicitHorizon validates a horizon the caller supplied. A nil value
// selects the default; an explicit zero is rejected.
func (predictor *Predictor) ExplicitHorizon(requested *int) (int, error) {
	if requested == nil {
		return predictor.config.DefaultHorizon, nil
	}
	if *requested < 1 || *requested > predictor.config.MaxHorizon {
		return 0, newValidationError("horizon", "must be between 1 and %d", predictor.config.MaxHorizon)
	}
	return *requested, nil
}

// Predict projects Horizon cycles forward from the last period start. Every
// cycle reuses the same baseline lengths; there is no re-estimation inside the
// horizon.
func (predictor *Predictor) Predict(input PredictionInput) ([]PeriodPrediction, error) {
	if input.LastPeriodStart.IsZero() {
		return nil, newValidationError("lastPeriodStartDate", "is required")
	}
	base := civilDate(input.LastPeriodStart)
	if !yearSupported(base.Year()) {
		return nil, newValidationError("lastPeriodStartDate", "must fall between %d and %d", MinSupportedYear, MaxSupportedYear)
	}
	if err := predictor.ValidateCycleShape(input.PeriodLength, input.AverageCycleLength); err != nil {
		return nil, err
	}
	horizon, err := predictor.ResolveHorizon(input.Horizon)
	if err != nil {
		return nil, err
	}

	ovulationOffset := predictor.OvulationOffset(input.AverageCycleLength)
	predictions := make([]PeriodPrediction, 0, horizon)
	for k := 1; k <= horizon; k++ {
		cycleStart := addDays(base, (k-1)*input.AverageCycleLength)
		periodStart := addDays(base, k*input.AverageCycleLength)
		periodEnd := addDays(periodStart, input.PeriodLength-1)
		ovulation := addDays(cycleStart, ovulationOffset)
		fertileStart, fertileEnd := predictor.FertileWindow(ovulation)

		if err := guardProjectedDate("predict", periodEnd); err != nil {
			return nil, err
		}

		predictions = append(predictions, PeriodPrediction{
			PeriodNumber:       k,
			CycleStart:         cycleStart,
			PeriodStartDate:    periodStart,
			PeriodEndDate:      periodEnd,
			OvulationDate:      ovulation,
			FertileWindowStart: fertileStart,
			FertileWindowEnd:   fertileEnd,
			CycleDay:           ovulationOffset + 1,
			MonthInfo:          monthInfoFor(periodStart),
		})
	}
	return predictions, nil
}

var errDateOutOfRange = errors.New("date outside the representable calendar range")

func guardProjectedDate(operation string, value time.Time) error {
	if value.Year() < 1 || value.Year() > 9999 {
		return &InternalComputationError{Operation: operation, Err: errDateOutOfRange}
	}
	return nil
}
