package api

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/services"
	"go.uber.org/zap"
)

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	user, err := handler.authService.Register(input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthCredentialsInvalid):
			return apiError(c, fiber.StatusBadRequest, "invalid email or password")
		case errors.Is(err, services.ErrWeakPassword):
			return apiError(c, fiber.StatusBadRequest, "password must be at least 8 characters and include upper case, lower case and a digit")
		case errors.Is(err, services.ErrAuthEmailExists):
			return apiError(c, fiber.StatusConflict, "email already exists")
		default:
			handler.logger.Error("register failed", zap.Error(err))
			return apiError(c, fiber.StatusInternalServerError, "failed to create account")
		}
	}

	token, err := handler.setAuthCookie(c, &user)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	handler.logger.Info("user registered", zap.Uint("user_id", user.ID))

	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: toUserPayload(&user)})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := time.Now()
	if handler.loginLimiter.tooManyRecent(limiterKey, now, loginFailureLimit, loginFailureWindow) {
		wait := handler.loginLimiter.retryAfter(limiterKey, now, loginFailureWindow)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	user, err := handler.authService.Authenticate(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginLimiter.addFailure(limiterKey, now, loginFailureWindow)
			return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		handler.logger.Error("login failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to sign in")
	}
	handler.loginLimiter.reset(limiterKey)

	token, err := handler.setAuthCookie(c, &user)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(authResponse{Token: token, User: toUserPayload(&user)})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(toUserPayload(user))
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	updated, err := handler.authService.ChangePassword(user.ID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthCredentialsInvalid):
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		case errors.Is(err, services.ErrAuthInvalidCurrentSecret):
			return apiError(c, fiber.StatusUnauthorized, "invalid current password")
		case errors.Is(err, services.ErrAuthPasswordMustDiffer):
			return apiError(c, fiber.StatusBadRequest, "new password must differ from current password")
		case errors.Is(err, services.ErrWeakPassword):
			return apiError(c, fiber.StatusBadRequest, "password must be at least 8 characters and include upper case, lower case and a digit")
		case errors.Is(err, services.ErrAuthUserNotFound):
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		default:
			handler.logger.Error("change password failed", zap.Error(err), zap.Uint("user_id", user.ID))
			return apiError(c, fiber.StatusInternalServerError, "failed to update password")
		}
	}

	token, err := handler.setAuthCookie(c, &updated)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(authResponse{Token: token, User: toUserPayload(&updated)})
}
