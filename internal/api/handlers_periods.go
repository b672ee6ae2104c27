package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/services"
)

func (handler *Handler) ListPeriods(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	entries, err := handler.periodService.List(user.ID)
	if err != nil {
		return handler.periodStoreFailure(c, err)
	}

	payload := make([]periodEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, toPeriodEntryPayload(entry))
	}
	return c.JSON(fiber.Map{"periods": payload})
}

func (handler *Handler) GetPeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	entry, err := handler.periodService.Get(user.ID, c.Params("id"))
	if err != nil {
		return handler.periodStoreFailure(c, err)
	}
	return c.JSON(toPeriodEntryPayload(entry))
}

func (handler *Handler) CreatePeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := periodEntryRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	input, err := parsePeriodEntryRequest(request)
	if err != nil {
		return handler.periodStoreFailure(c, err)
	}

	handler.ensureDependencies()
	entry, err := handler.periodService.Create(user.ID, input)
	if err != nil {
		return handler.periodStoreFailure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPeriodEntryPayload(entry))
}

func (handler *Handler) UpdatePeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := periodEntryPatchRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	patch, err := parsePeriodEntryPatch(request)
	if err != nil {
		return handler.periodStoreFailure(c, err)
	}

	handler.ensureDependencies()
	entry, err := handler.periodService.Update(user.ID, c.Params("id"), patch)
	if err != nil {
		return handler.periodStoreFailure(c, err)
	}
	return c.JSON(toPeriodEntryPayload(entry))
}

func (handler *Handler) DeletePeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	if err := handler.periodService.Delete(user.ID, c.Params("id")); err != nil {
		return handler.periodStoreFailure(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parsePeriodEntryRequest(request periodEntryRequest) (services.PeriodEntryInput, error) {
	start, err := parseDateField("startDate", request.StartDate)
	if err != nil {
		return services.PeriodEntryInput{}, err
	}
	end, err := parseOptionalDateField("endDate", request.EndDate)
	if err != nil {
		return services.PeriodEntryInput{}, err
	}
	return services.PeriodEntryInput{
		StartDate: start,
		EndDate:   end,
		Flow:      request.Flow,
		Symptoms:  request.Symptoms,
		Notes:     request.Notes,
	}, nil
}

func parsePeriodEntryPatch(request periodEntryPatchRequest) (services.PeriodEntryPatch, error) {
	patch := services.PeriodEntryPatch{
		Flow:     request.Flow,
		Symptoms: request.Symptoms,
		Notes:    request.Notes,
	}
	if request.StartDate != nil {
		start, err := parseDateField("startDate", *request.StartDate)
		if err != nil {
			return services.PeriodEntryPatch{}, err
		}
		patch.StartDate = &start
	}
	if request.EndDate != nil {
		// An empty end date collapses the entry to a single day.
		end, err := parseOptionalDateField("endDate", *request.EndDate)
		if err != nil {
			return services.PeriodEntryPatch{}, err
		}
		patch.EndDate = &end
	}
	return patch, nil
}
