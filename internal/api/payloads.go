package api

import (
	"strings"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/services"
)

type credentialsInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword" form:"current_password"`
	NewPassword     string `json:"newPassword" form:"new_password"`
}

type predictRequest struct {
	LastPeriodStartDate string `json:"lastPeriodStartDate"`
	PeriodLength        int    `json:"periodLength"`
	AverageCycleLength  int    `json:"averageCycleLength"`
	Horizon             *int   `json:"horizon"`
}

type periodEntryRequest struct {
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Flow      string   `json:"flow"`
	Symptoms  []string `json:"symptoms"`
	Notes     string   `json:"notes"`
}

type periodEntryPatchRequest struct {
	StartDate *string   `json:"startDate"`
	EndDate   *string   `json:"endDate"`
	Flow      *string   `json:"flow"`
	Symptoms  *[]string `json:"symptoms"`
	Notes     *string   `json:"notes"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type monthInfoPayload struct {
	Month       int  `json:"month"`
	Year        int  `json:"year"`
	DaysInMonth int  `json:"daysInMonth"`
	IsLeapYear  bool `json:"isLeapYear"`
}

type predictionPayload struct {
	PeriodNumber       int              `json:"periodNumber"`
	PeriodStartDate    string           `json:"periodStartDate"`
	PeriodEndDate      string           `json:"periodEndDate"`
	OvulationDate      string           `json:"ovulationDate"`
	FertileWindowStart string           `json:"fertileWindowStart"`
	FertileWindowEnd   string           `json:"fertileWindowEnd"`
	CycleDay           int              `json:"cycleDay"`
	MonthInfo          monthInfoPayload `json:"monthInfo"`
}

type calendarDayPayload struct {
	Date        string `json:"date"`
	DayType     string `json:"dayType"`
	CycleDay    int    `json:"cycleDay"`
	Phase       string `json:"phase,omitempty"`
	IsPredicted bool   `json:"isPredicted"`
}

type predictResponse struct {
	Success           bool                 `json:"success"`
	Predictions       []predictionPayload  `json:"predictions"`
	CalendarData      []calendarDayPayload `json:"calendarData"`
	NextPeriodDate    string               `json:"nextPeriodDate"`
	NextOvulationDate string               `json:"nextOvulationDate"`
}

type calendarResponse struct {
	Success              bool                 `json:"success"`
	Year                 int                  `json:"year"`
	Month                int                  `json:"month"`
	PredictionsAvailable bool                 `json:"predictionsAvailable"`
	CalendarData         []calendarDayPayload `json:"calendarData"`
}

type cycleStatisticPayload struct {
	StartDate      string `json:"startDate"`
	CycleLength    int    `json:"cycleLength"`
	PeriodDuration int    `json:"periodDuration"`
}

type statisticsPayload struct {
	PeriodCount         int                     `json:"periodCount"`
	Cycles              []cycleStatisticPayload `json:"cycles"`
	AverageCycleLength  int                     `json:"averageCycleLength"`
	AveragePeriodLength int                     `json:"averagePeriodLength"`
	MeanCycleLength     float64                 `json:"meanCycleLength"`
	MeanPeriodLength    float64                 `json:"meanPeriodLength"`
	UsesDefaults        bool                    `json:"usesDefaults"`
}

type statisticsResponse struct {
	Success    bool              `json:"success"`
	Statistics statisticsPayload `json:"statistics"`
}

type forecastResponse struct {
	Success           bool                `json:"success"`
	Degraded          bool                `json:"degraded"`
	Reason            string              `json:"reason,omitempty"`
	Predictions       []predictionPayload `json:"predictions"`
	NextPeriodDate    string              `json:"nextPeriodDate,omitempty"`
	NextOvulationDate string              `json:"nextOvulationDate,omitempty"`
	Statistics        statisticsPayload   `json:"statistics"`
}

type periodEntryPayload struct {
	ID        string   `json:"id"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Flow      string   `json:"flow"`
	Symptoms  []string `json:"symptoms"`
	Notes     string   `json:"notes"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

type userPayload struct {
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func parseDateField(field string, raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, &services.ValidationError{Field: field, Message: "is required"}
	}
	parsed, err := services.ParseISODate(trimmed)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return parsed, nil
}

func parseOptionalDateField(field string, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseDateField(field, raw)
}

func toPredictionPayloads(predictions []services.PeriodPrediction) []predictionPayload {
	payloads := make([]predictionPayload, 0, len(predictions))
	for _, prediction := range predictions {
		payloads = append(payloads, predictionPayload{
			PeriodNumber:       prediction.PeriodNumber,
			PeriodStartDate:    services.FormatISODate(prediction.PeriodStartDate),
			PeriodEndDate:      services.FormatISODate(prediction.PeriodEndDate),
			OvulationDate:      services.FormatISODate(prediction.OvulationDate),
			FertileWindowStart: services.FormatISODate(prediction.FertileWindowStart),
			FertileWindowEnd:   services.FormatISODate(prediction.FertileWindowEnd),
			CycleDay:           prediction.CycleDay,
			MonthInfo: monthInfoPayload{
				Month:       int(prediction.MonthInfo.Month),
				Year:        prediction.MonthInfo.Year,
				DaysInMonth: prediction.MonthInfo.DaysInMonth,
				IsLeapYear:  prediction.MonthInfo.IsLeapYear,
			},
		})
	}
	return payloads
}

func toCalendarDayPayloads(days []services.CalendarDay) []calendarDayPayload {
	payloads := make([]calendarDayPayload, 0, len(days))
	for _, day := range days {
		payloads = append(payloads, calendarDayPayload{
			Date:        services.FormatISODate(day.Date),
			DayType:     string(day.DayType),
			CycleDay:    day.CycleDay,
			Phase:       string(day.Phase),
			IsPredicted: day.IsPredicted,
		})
	}
	return payloads
}

func toStatisticsPayload(summary services.CycleSummary) statisticsPayload {
	cycles := make([]cycleStatisticPayload, 0, len(summary.Statistics))
	for _, statistic := range summary.Statistics {
		cycles = append(cycles, cycleStatisticPayload{
			StartDate:      services.FormatISODate(statistic.StartDate),
			CycleLength:    statistic.CycleLength,
			PeriodDuration: statistic.PeriodDuration,
		})
	}
	return statisticsPayload{
		PeriodCount:         len(summary.Periods),
		Cycles:              cycles,
		AverageCycleLength:  summary.AverageCycleLength,
		AveragePeriodLength: summary.AveragePeriodLength,
		MeanCycleLength:     summary.MeanCycleLength,
		MeanPeriodLength:    summary.MeanPeriodLength,
		UsesDefaults:        summary.UsesDefaults,
	}
}

func toPeriodEntryPayload(entry models.PeriodEntry) periodEntryPayload {
	symptoms := entry.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return periodEntryPayload{
		ID:        entry.ID,
		StartDate: services.FormatISODate(entry.StartDate),
		EndDate:   services.FormatISODate(entry.EndDate),
		Flow:      entry.Flow,
		Symptoms:  symptoms,
		Notes:     entry.Notes,
		CreatedAt: formatTimestamp(entry.CreatedAt),
		UpdatedAt: formatTimestamp(entry.UpdatedAt),
	}
}

func toUserPayload(user *models.User) userPayload {
	return userPayload{
		ID:                 user.ID,
		Email:              user.Email,
		MustChangePassword: user.MustChangePassword,
	}
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
