package services

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestCycleEnginePredictBuildsCalendarThroughLastPeriod(t *testing.T) {
	engine := NewCycleEngine(nil)
	input := PredictionInput{
		LastPeriodStart:    mustDate(t, "2024-01-10"),
		PeriodLength:       5,
		AverageCycleLength: 28,
		Horizon:            1,
	}

	result, err := engine.Predict(input)
	if err != nil {
		t.Fatalf("Predict() unexpected error: %v", err)
	}
	if FormatISODate(result.NextPeriodDate) != "2024-02-07" {
		t.Fatalf("expected next period 2024-02-07, got %s", FormatISODate(result.NextPeriodDate))
	}
	if FormatISODate(result.NextOvulationDate) != "2024-01-24" {
		t.Fatalf("expected next ovulation 2024-01-24, got %s", FormatISODate(result.NextOvulationDate))
	}
	if len(result.CalendarData) != 31+29 {
		t.Fatalf("expected January and February 2024 (60 days), got %d", len(result.CalendarData))
	}
	if first := result.CalendarData[0]; FormatISODate(first.Date) != "2024-01-01" {
		t.Fatalf("expected calendar to start on 2024-01-01, got %s", FormatISODate(first.Date))
	}
	if base := result.CalendarData[9]; base.DayType != DayTypePeriod || base.IsPredicted {
		t.Fatalf("expected base period to be treated as logged, got %+v", base)
	}

	again, err := engine.Predict(input)
	if err != nil {
		t.Fatalf("second Predict() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(result, again) {
		t.Fatal("expected identical results for identical input")
	}
}

func TestCycleEnginePredictCrossesYearBoundary(t *testing.T) {
	engine := NewCycleEngine(nil)
	result, err := engine.Predict(PredictionInput{
		LastPeriodStart:    mustDate(t, "2024-11-20"),
		PeriodLength:       5,
		AverageCycleLength: 30,
		Horizon:            2,
	})
	if err != nil {
		t.Fatalf("Predict() unexpected error: %v", err)
	}
	last := result.Predictions[len(result.Predictions)-1]
	if FormatISODate(last.PeriodStartDate) != "2025-01-19" {
		t.Fatalf("expected second period on 2025-01-19, got %s", FormatISODate(last.PeriodStartDate))
	}
	if len(result.CalendarData) != 30+31+31 {
		t.Fatalf("expected November through January, got %d days", len(result.CalendarData))
	}
}

func TestCycleEnginePredictRendersMonthsPastLastSupportedYear(t *testing.T) {
	engine := NewCycleEngine(nil)
	result, err := engine.Predict(PredictionInput{
		LastPeriodStart:    mustDate(t, "2200-12-10"),
		PeriodLength:       5,
		AverageCycleLength: 28,
		Horizon:            1,
	})
	if err != nil {
		t.Fatalf("Predict() unexpected error: %v", err)
	}
	if FormatISODate(result.NextPeriodDate) != "2201-01-07" {
		t.Fatalf("expected next period 2201-01-07, got %s", FormatISODate(result.NextPeriodDate))
	}
	if len(result.CalendarData) != 31+31 {
		t.Fatalf("expected December 2200 and January 2201, got %d days", len(result.CalendarData))
	}
	last := result.CalendarData[len(result.CalendarData)-1]
	if FormatISODate(last.Date) != "2201-01-31" {
		t.Fatalf("expected calendar to end on 2201-01-31, got %s", FormatISODate(last.Date))
	}
	if predicted := result.CalendarData[31+6]; predicted.DayType != DayTypePeriod || !predicted.IsPredicted {
		t.Fatalf("expected 2201-01-07 to be a predicted period day, got %+v", predicted)
	}

	if _, err := engine.Calendar(CycleSummary{}, 2201, time.January); !IsValidationError(err) {
		t.Fatalf("expected calendar requests past 2200 to stay rejected, got %v", err)
	}
}

func TestCycleEnginePredictReportsValidationFailure(t *testing.T) {
	engine := NewCycleEngine(nil)
	_, err := engine.Predict(PredictionInput{
		LastPeriodStart:    mustDate(t, "2024-01-10"),
		PeriodLength:       10,
		AverageCycleLength: 8,
	})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCycleEngineCalendarDelegatesToBuilder(t *testing.T) {
	engine := NewCycleEngine(NewPredictor(DefaultPredictorConfig()))
	month, err := engine.Calendar(CycleSummary{}, 2023, time.February)
	if err != nil {
		t.Fatalf("Calendar() unexpected error: %v", err)
	}
	if len(month.Days) != 28 {
		t.Fatalf("expected 28 days in February 2023, got %d", len(month.Days))
	}
}

func TestRecoverComputationConvertsPanics(t *testing.T) {
	run := func() (err error) {
		defer recoverComputation("calendar", &err)
		panic("index out of range")
	}

	err := run()
	var computationErr *InternalComputationError
	if !errors.As(err, &computationErr) {
		t.Fatalf("expected InternalComputationError, got %v", err)
	}
	if computationErr.Operation != "calendar" {
		t.Fatalf("expected calendar operation, got %q", computationErr.Operation)
	}
}
