package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/services"
	"go.uber.org/zap"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// engineFailure writes the {success:false, message} envelope the prediction
// routes share. Validation problems are the caller's fault; anything else is
// logged and reported as a server error.
func (handler *Handler) engineFailure(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(failureResponse{Message: validationErr.Error()})
	case errors.Is(err, services.ErrInsufficientHistory):
		return c.Status(fiber.StatusBadRequest).JSON(failureResponse{Message: "not enough period history"})
	}

	handler.logger.Error("cycle engine failed",
		zap.Error(err),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(failureResponse{Message: "predictions are temporarily unavailable"})
}

// periodStoreFailure maps period store errors to {"error": ...} responses.
func (handler *Handler) periodStoreFailure(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return apiError(c, fiber.StatusBadRequest, validationErr.Error())
	case errors.Is(err, services.ErrPeriodEntryNotFound):
		return apiError(c, fiber.StatusNotFound, "period entry not found")
	case errors.Is(err, services.ErrPeriodStartConflict):
		return apiError(c, fiber.StatusConflict, "a period already starts on this date")
	case errors.Is(err, services.ErrPeriodOverlap):
		return apiError(c, fiber.StatusConflict, "period overlaps an existing entry")
	}

	handler.logger.Error("period store failed", zap.Error(err), zap.String("path", c.Path()))
	return apiError(c, fiber.StatusInternalServerError, "failed to store period entry")
}
