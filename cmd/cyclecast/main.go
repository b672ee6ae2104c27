package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/terraincognita07/cyclecast/internal/api"
	"github.com/terraincognita07/cyclecast/internal/cli"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/db"
	"github.com/terraincognita07/cyclecast/internal/logging"
	"github.com/terraincognita07/cyclecast/internal/services"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if err := runResetPassword(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "reset-password: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(); err != nil {
		fmt.Fprintf(os.Stderr, "cyclecast: %v\n", err)
		os.Exit(1)
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	location, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to UTC", zap.Error(err))
	}

	database, err := db.OpenSQLite(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	handler, err := api.NewHandler(database, api.HandlerConfig{
		SecretKey:    cfg.Auth.SecretKey,
		Location:     location,
		CookieSecure: cfg.Server.CookieSecure,
		TokenTTL:     cfg.Auth.TokenTTL,
		Predictor:    predictorConfig(cfg.Prediction),
		Logger:       logger,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(cfg, handler, logger)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("cyclecast listening",
		zap.String("port", cfg.Server.Port),
		zap.String("db", cfg.Database.Path),
		zap.String("tz", location.String()),
		zap.String("env", cfg.Server.Environment),
		zap.String("version", version),
	)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(cfg *config.Config, handler *api.Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Cyclecast " + version,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(api.RequestLogger(logger))
	app.Use(compress.New())
	app.Use(cors.New(corsMiddlewareConfig(cfg.Server.CORSAllowedOrigins)))

	api.RegisterRoutes(app, handler)
	return app
}

func corsMiddlewareConfig(allowedOrigins string) cors.Config {
	origins := make([]string, 0)
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	corsConfig := cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}
	// Credentials cannot be combined with a wildcard origin.
	corsConfig.AllowCredentials = corsConfig.AllowOrigins != "" && corsConfig.AllowOrigins != "*"
	if corsConfig.AllowOrigins == "" {
		corsConfig.AllowOrigins = "*"
	}
	return corsConfig
}

func predictorConfig(prediction config.PredictionConfig) services.PredictorConfig {
	predictor := services.DefaultPredictorConfig()
	predictor.LutealPhaseDays = prediction.LutealPhaseDays
	predictor.DefaultHorizon = prediction.DefaultHorizon
	predictor.MaxHorizon = prediction.MaxHorizon
	return predictor
}

func runResetPassword(args []string) error {
	flags := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	interactive := flags.Bool("interactive", false, "prompt for the temporary password instead of generating one")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: cyclecast reset-password [-interactive] <email>")
	}

	cfg, err := config.LoadForOperator()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	return cli.RunResetPasswordCommand(cli.ResetPasswordOptions{
		DBPath:      cfg.Database.Path,
		Email:       flags.Arg(0),
		Interactive: *interactive,
		Logger:      logger,
	})
}
