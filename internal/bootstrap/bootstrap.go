package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/ucu/innovators-hub/internal/app/controllers"
	appMigrations "github.com/ucu/innovators-hub/internal/app/migrations"
	appRepos "github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/app/repositories/memory"
	appRoutes "github.com/ucu/innovators-hub/internal/app/routes"
	appServices "github.com/ucu/innovators-hub/internal/app/services"
	"github.com/ucu/innovators-hub/internal/config"
	"github.com/ucu/innovators-hub/internal/db"
	appMiddleware "github.com/ucu/innovators-hub/internal/middleware"
	pkgAuth "github.com/ucu/innovators-hub/internal/pkg/auth"
	"github.com/ucu/innovators-hub/internal/pkg/email"
	"github.com/ucu/innovators-hub/internal/pkg/filestorage"
	"github.com/ucu/innovators-hub/internal/pkg/helpers"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
	"github.com/ucu/innovators-hub/internal/seed"
)

// Database is the opened store behind the repositories
type Database struct {
	Repos    *appRepos.Repositories
	postgres *db.PostgresDB
}

// Close releases the connection pool, if any
func (d *Database) Close() {
	if d.postgres != nil {
		d.postgres.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Hasher         pkgAuth.PasswordHasher
	JWTService     *pkgAuth.JWTService
	Mailer         email.Mailer
	FileStorage    *filestorage.LocalStorage
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	Redis          *redis.Client
	Logger         zerolog.Logger
}

// Close releases the rate limiter resources
func (d *Dependencies) Close() {
	if d.RateLimiter != nil {
		d.RateLimiter.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: appRoutes.ServiceName,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured store. For PostgreSQL it also applies
// pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Database, error) {
	if cfg.UsesMemoryStore() {
		lgr.Warn().Msg("Using the in-memory store, data is lost on restart")
		return &Database{Repos: memory.NewRepositories(memory.Open())}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	applied, err := migrator.Apply(ctx, os.DirFS(migrationsDir))
	if err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations up to date")

	return &Database{Repos: appRepos.NewRepositories(database), postgres: database}, nil
}

// newMailer picks the configured mail transport
func newMailer(cfg *config.Config, lgr zerolog.Logger) email.Mailer {
	switch strings.ToLower(cfg.Mail.Transport) {
	case "sendgrid":
		return email.NewSendGridMailer(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, lgr)
	case "log":
		return email.NewLogMailer(lgr)
	default:
		return email.NewSMTPMailer(email.SMTPConfig{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.Username,
			Password:  cfg.Mail.Password,
			FromName:  cfg.Mail.FromName,
			FromEmail: cfg.Mail.FromEmail,
			UseTLS:    cfg.Mail.UseTLS,
		}, lgr)
	}
}

// newRedisClient connects to the rate limit store. It returns nil when no
// URL is configured.
func newRedisClient(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if cfg.RateLimit.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// the limiter falls back to process memory while redis is down
		lgr.Warn().Err(err).Msg("Redis not reachable, rate limiting locally until it is")
	} else {
		lgr.Info().Str("addr", opts.Addr).Msg("Rate limiting with redis")
	}
	return client, nil
}

// BuildDependencies initializes application services, middleware and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Hasher = pkgAuth.NewBcryptHasher(pkgAuth.BcryptCost)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.Mailer = newMailer(cfg, lgr)

	deps.Services = appServices.NewServices(appServices.Dependencies{
		Repos:       repos,
		Hasher:      deps.Hasher,
		Tokens:      deps.JWTService,
		Mailer:      deps.Mailer,
		Files:       deps.FileStorage,
		FrontendURL: cfg.Mail.FrontendURL,
		Logger:      lgr,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	if cfg.RateLimit.Enabled {
		deps.Redis, err = newRedisClient(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		deps.RateLimiter = appMiddleware.NewRateLimiter(deps.Redis, appMiddleware.RateLimitConfig{
			Limit: appMiddleware.Window(cfg.RateLimit.Requests, cfg.RateLimit.Burst,
				helpers.ParseDuration(cfg.RateLimit.Period, 15*time.Minute)),
			FailOpen: cfg.RateLimit.FailOpen,
		})
	}

	intake := filestorage.NewIntake(deps.FileStorage)
	maxUpload := cfg.Upload.MaxSizeMB << 20
	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.Auth, deps.Services.Provisioning, lgr),
		User:      appControllers.NewUserController(deps.Services.User, intake, maxUpload, lgr),
		Project:   appControllers.NewProjectController(deps.Services.Project, intake, maxUpload, lgr),
		Faculty:   appControllers.NewFacultyController(deps.Services.Faculty),
		Dashboard: appControllers.NewDashboardController(deps.Services.Analytics),
	}

	return deps, nil
}

// SeedDefaultData loads the default org directory and demo accounts when enabled
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if !cfg.Database.Seed {
		return
	}
	if err := seed.CreateDefaultData(ctx, deps.Services.Faculty, deps.Repos.UserRepository, deps.Hasher, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), appMiddleware.CORS())
	router.MaxMultipartMemory = cfg.Upload.MaxSizeMB << 20

	appRoutes.SetupSwagger(router)

	var limiter gin.HandlerFunc
	if deps.RateLimiter != nil {
		limiter = deps.RateLimiter.Handler()
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, limiter)

	router.Static(filestorage.PublicPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for uploads directory")

	return router
}
