package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	DegradedReasonNoHistory             = "no_history"
	DegradedReasonDefaultCycleConstants = "default_cycle_constants"
	DegradedReasonIrregularHistory      = "irregular_history"
)

var ErrForecastHistoryLoadFailed = errors.New("load period history failed")

type ForecastHistoryRepository interface {
	ListByUser(userID uint) ([]models.PeriodEntry, error)
}

// ForecastResult is a history-backed prediction. Degraded is set whenever the
// dates are not computed from at least one observed cycle.
type ForecastResult struct {
	Summary           CycleSummary
	Predictions       []PeriodPrediction
	NextPeriodDate    time.Time
	NextOvulationDate time.Time
	Degraded          bool
	Reason            string
}

// ForecastService runs the cycle engine against a user's stored history. The
// history is reloaded and summarized on every call.
type ForecastService struct {
	history ForecastHistoryRepository
	engine  *CycleEngine
}

func NewForecastService(history ForecastHistoryRepository, engine *CycleEngine) *ForecastService {
	if engine == nil {
		engine = NewCycleEngine(nil)
	}
	return &ForecastService{history: history, engine: engine}
}

func (service *ForecastService) Statistics(userID uint) (CycleSummary, error) {
	entries, err := service.history.ListByUser(userID)
	if err != nil {
		return CycleSummary{}, ErrForecastHistoryLoadFailed
	}
	return summarizeHistory(entries)
}

func (service *ForecastService) Forecast(userID uint, horizon int) (ForecastResult, error) {
	if _, err := service.engine.Predictor().ResolveHorizon(horizon); err != nil {
		return ForecastResult{}, err
	}

	summary, err := service.Statistics(userID)
	if err != nil {
		return ForecastResult{}, err
	}

	last, ok := summary.LastPeriod()
	if !ok {
		return ForecastResult{
			Summary:     summary,
			Predictions: []PeriodPrediction{},
			Degraded:    true,
			Reason:      DegradedReasonNoHistory,
		}, nil
	}

	prediction, err := service.engine.Predict(PredictionInput{
		LastPeriodStart:    last.Start,
		PeriodLength:       summary.AveragePeriodLength,
		AverageCycleLength: summary.AverageCycleLength,
		Horizon:            horizon,
	})
	if err != nil {
		if IsValidationError(err) {
			return ForecastResult{
				Summary:     summary,
				Predictions: []PeriodPrediction{},
				Degraded:    true,
				Reason:      DegradedReasonIrregularHistory,
			}, nil
		}
		return ForecastResult{}, err
	}

	result := ForecastResult{
		Summary:           summary,
		Predictions:       prediction.Predictions,
		NextPeriodDate:    prediction.NextPeriodDate,
		NextOvulationDate: prediction.NextOvulationDate,
	}
	if summary.UsesDefaults {
		result.Degraded = true
		result.Reason = DegradedReasonDefaultCycleConstants
	}
	return result, nil
}

func (service *ForecastService) Calendar(userID uint, year int, month time.Month) (CalendarMonth, error) {
	if err := ValidateCalendarMonth(year, month); err != nil {
		return CalendarMonth{}, err
	}
	summary, err := service.Statistics(userID)
	if err != nil {
		return CalendarMonth{}, err
	}
	return service.engine.Calendar(summary, year, month)
}

func summarizeHistory(entries []models.PeriodEntry) (CycleSummary, error) {
	if len(entries) == 0 {
		return CycleSummary{
			Periods:             []PeriodRange{},
			Statistics:          []CycleStatistic{},
			MeanCycleLength:     float64(models.DefaultCycleLength),
			MeanPeriodLength:    float64(models.DefaultPeriodLength),
			AverageCycleLength:  models.DefaultCycleLength,
			AveragePeriodLength: models.DefaultPeriodLength,
			UsesDefaults:        true,
		}, nil
	}
	return BuildCycleSummary(PeriodRangesFromEntries(entries))
}
