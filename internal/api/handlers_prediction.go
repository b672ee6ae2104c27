package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/services"
)

// Predict is the stateless contract: no stored history is read or written.
func (handler *Handler) Predict(c *fiber.Ctx) error {
	input := predictRequest{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(failureResponse{Message: "invalid request body"})
	}

	lastStart, err := parseDateField("lastPeriodStartDate", input.LastPeriodStartDate)
	if err != nil {
		return handler.engineFailure(c, err)
	}

	handler.ensureDependencies()
	horizon, err := handler.engine.Predictor().ExplicitHorizon(input.Horizon)
	if err != nil {
		return handler.engineFailure(c, err)
	}
	result, err := handler.engine.Predict(services.PredictionInput{
		LastPeriodStart:    lastStart,
		PeriodLength:       input.PeriodLength,
		AverageCycleLength: input.AverageCycleLength,
		Horizon:            horizon,
	})
	if err != nil {
		return handler.engineFailure(c, err)
	}

	return c.JSON(predictResponse{
		Success:           true,
		Predictions:       toPredictionPayloads(result.Predictions),
		CalendarData:      toCalendarDayPayloads(result.CalendarData),
		NextPeriodDate:    services.FormatISODate(result.NextPeriodDate),
		NextOvulationDate: services.FormatISODate(result.NextOvulationDate),
	})
}

func (handler *Handler) Calendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	year, yearErr := strconv.Atoi(c.Params("year"))
	month, monthErr := strconv.Atoi(c.Params("month"))
	if yearErr != nil || monthErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(failureResponse{Message: "year and month must be integers"})
	}

	handler.ensureDependencies()
	calendar, err := handler.forecastService.Calendar(user.ID, year, time.Month(month))
	if err != nil {
		return handler.engineFailure(c, err)
	}

	return c.JSON(calendarResponse{
		Success:              true,
		Year:                 calendar.Year,
		Month:                int(calendar.Month),
		PredictionsAvailable: calendar.PredictionsAvailable,
		CalendarData:         toCalendarDayPayloads(calendar.Days),
	})
}

func (handler *Handler) Forecast(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var requested *int
	if raw := strings.TrimSpace(c.Query("horizon")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(failureResponse{Message: "horizon must be an integer"})
		}
		requested = &parsed
	}

	handler.ensureDependencies()
	horizon, err := handler.engine.Predictor().ExplicitHorizon(requested)
	if err != nil {
		return handler.engineFailure(c, err)
	}
	forecast, err := handler.forecastService.Forecast(user.ID, horizon)
	if err != nil {
		return handler.engineFailure(c, err)
	}

	response := forecastResponse{
		Success:     true,
		Degraded:    forecast.Degraded,
		Reason:      forecast.Reason,
		Predictions: toPredictionPayloads(forecast.Predictions),
		Statistics:  toStatisticsPayload(forecast.Summary),
	}
	if len(forecast.Predictions) > 0 {
		response.NextPeriodDate = services.FormatISODate(forecast.NextPeriodDate)
		response.NextOvulationDate = services.FormatISODate(forecast.NextOvulationDate)
	}
	return c.JSON(response)
}

func (handler *Handler) Statistics(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	summary, err := handler.forecastService.Statistics(user.ID)
	if err != nil {
		return handler.engineFailure(c, err)
	}
	return c.JSON(statisticsResponse{Success: true, Statistics: toStatisticsPayload(summary)})
}
