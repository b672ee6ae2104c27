package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/cyclecast/internal/db"
	"github.com/terraincognita07/cyclecast/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultAuthTokenTTL = 7 * 24 * time.Hour

type HandlerConfig struct {
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	TokenTTL     time.Duration
	Predictor    services.PredictorConfig
	Logger       *zap.Logger
	Version      string
}

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	tokenTTL     time.Duration
	version      string
	logger       *zap.Logger
	loginLimiter *attemptLimiter

	predictorConfig services.PredictorConfig
	repositories    *db.Repositories
	authService     *services.AuthService
	periodService   *services.PeriodService
	forecastService *services.ForecastService
	engine          *services.CycleEngine
}

func NewHandler(database *gorm.DB, config HandlerConfig) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	secret := strings.TrimSpace(config.SecretKey)
	if secret == "" {
		return nil, errors.New("secret key is required")
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = defaultAuthTokenTTL
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	handler := &Handler{
		db:              database,
		secretKey:       []byte(secret),
		location:        config.Location,
		cookieSecure:    config.CookieSecure,
		tokenTTL:        config.TokenTTL,
		version:         config.Version,
		logger:          config.Logger,
		loginLimiter:    newAttemptLimiter(),
		predictorConfig: config.Predictor,
	}
	return handler.withDependencies(database), nil
}

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.engine = services.NewCycleEngine(services.NewPredictor(handler.predictorConfig))
	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.periodService = services.NewPeriodService(handler.repositories.Periods, handler.location)
	handler.forecastService = services.NewForecastService(handler.repositories.Periods, handler.engine)
	return handler
}

func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}
	if handler.engine == nil {
		handler.engine = services.NewCycleEngine(services.NewPredictor(handler.predictorConfig))
	}
	if handler.authService == nil {
		handler.authService = services.NewAuthService(handler.repositories.Users)
	}
	if handler.periodService == nil {
		handler.periodService = services.NewPeriodService(handler.repositories.Periods, handler.location)
	}
	if handler.forecastService == nil {
		handler.forecastService = services.NewForecastService(handler.repositories.Periods, handler.engine)
	}
	if handler.loginLimiter == nil {
		handler.loginLimiter = newAttemptLimiter()
	}
	if handler.logger == nil {
		handler.logger = zap.NewNop()
	}
}
