package services

import (
	"fmt"
	"time"
)

type PredictionResult struct {
	Predictions       []PeriodPrediction
	CalendarData      []CalendarDay
	NextPeriodDate    time.Time
	NextOvulationDate time.Time
}

// CycleEngine is the stateless boundary around the predictor and the calendar
// builder. It never lets a panic escape; callers always receive an error.
type CycleEngine struct {
	predictor *Predictor
}

func NewCycleEngine(predictor *Predictor) *CycleEngine {
	if predictor == nil {
		predictor = NewPredictor(DefaultPredictorConfig())
	}
	return &CycleEngine{predictor: predictor}
}

func (engine *CycleEngine) Predictor() *Predictor {
	return engine.predictor
}

// Predict projects the requested cycles and renders every month from the base
// month through the end of the last predicted period, treating the base period
// as logged.
func (engine *CycleEngine) Predict(input PredictionInput) (result PredictionResult, err error) {
	defer recoverComputation("predict", &err)

	predictions, err := engine.predictor.Predict(input)
	if err != nil {
		return PredictionResult{}, err
	}

	base := civilDate(input.LastPeriodStart)
	summary := CycleSummary{
		Periods:             []PeriodRange{{Start: base, End: addDays(base, input.PeriodLength-1)}},
		Statistics:          []CycleStatistic{},
		MeanCycleLength:     float64(input.AverageCycleLength),
		MeanPeriodLength:    float64(input.PeriodLength),
		AverageCycleLength:  input.AverageCycleLength,
		AveragePeriodLength: input.PeriodLength,
	}

	lastEnd := predictions[len(predictions)-1].PeriodEndDate
	calendarData := make([]CalendarDay, 0, daysBetween(base, lastEnd)+62)
	cursor := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, time.UTC)
	stop := time.Date(lastEnd.Year(), lastEnd.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(stop) {
		month := engine.predictor.buildMonth(summary, cursor.Year(), cursor.Month())
		calendarData = append(calendarData, month.Days...)
		cursor = cursor.AddDate(0, 1, 0)
	}

	return PredictionResult{
		Predictions:       predictions,
		CalendarData:      calendarData,
		NextPeriodDate:    predictions[0].PeriodStartDate,
		NextOvulationDate: predictions[0].OvulationDate,
	}, nil
}

func (engine *CycleEngine) Calendar(summary CycleSummary, year int, month time.Month) (result CalendarMonth, err error) {
	defer recoverComputation("calendar", &err)
	return engine.predictor.BuildCalendarMonth(summary, year, month)
}

func recoverComputation(operation string, err *error) {
	if recovered := recover(); recovered != nil {
		*err = &InternalComputationError{Operation: operation, Err: fmt.Errorf("panic: %v", recovered)}
	}
}
