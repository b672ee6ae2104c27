package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")
	api.Get("/status", handler.Status)

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	period := api.Group("/period")
	period.Post("/predict", handler.Predict)
	period.Get("/calendar/:year/:month", handler.AuthRequired, handler.Calendar)
	period.Get("/forecast", handler.AuthRequired, handler.Forecast)
	period.Get("/statistics", handler.AuthRequired, handler.Statistics)

	periods := api.Group("/periods", handler.AuthRequired)
	periods.Get("", handler.ListPeriods)
	periods.Post("", handler.CreatePeriod)
	periods.Get("/:id", handler.GetPeriod)
	periods.Patch("/:id", handler.UpdatePeriod)
	periods.Delete("/:id", handler.DeletePeriod)
}
