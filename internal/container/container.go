package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"marketplace-api/internal/config"
	"marketplace-api/internal/metrics"
	"marketplace-api/internal/repository"
	"marketplace-api/internal/service"
	"marketplace-api/internal/service/auth"
	"marketplace-api/internal/session"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/logger"
	"marketplace-api/pkg/password"
	"marketplace-api/pkg/redis"
	"marketplace-api/pkg/token"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Registry     *prometheus.Registry
	Metrics      *metrics.Collector
	Transport    *session.Transport
	Repositories *repository.Repositories
	Services     *service.Services
}

// New connects to Postgres and, when configured, Redis, then wires the
// Postgres repositories into services.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Redis is optional; without it the guard reads identities straight from Postgres
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without identity cache")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without identity cache")
	}

	repos := &repository.Repositories{
		Users:      repository.NewUserRepository(db),
		Categories: repository.NewCategoryRepository(db),
		Products:   repository.NewProductRepository(db),
		Reviews:    repository.NewReviewRepository(db),
		Orders:     repository.NewOrderRepository(db),
	}

	c, err := Build(cfg, log, repos, redisClient)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		db.Close()
		return nil, err
	}
	c.DB = db
	return c, nil
}

// Build wires services over the given repositories. A non-nil redisClient
// puts the identity cache in front of repos.Users.
func Build(cfg *config.Config, log *logger.Logger, repos *repository.Repositories, redisClient *redis.Client) (*Container, error) {
	codec, err := token.NewCodec(cfg.TokenSigningSecret, cfg.TokenTTL, token.WithIssuer(cfg.TokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}
	if cfg.TokenTTL == 0 {
		log.Warn("TOKEN_TTL is not set; access tokens never expire")
	}

	if redisClient != nil {
		repos.Users = repository.NewCachedUserRepository(repos.Users, redisClient, cfg.IdentityCacheTTL, log)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	transport := session.NewTransport(session.Options{
		Domain:   cfg.CookieDomain,
		Path:     "/",
		MaxAge:   cfg.CookieMaxAge,
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	hasher := password.NewHasher(cfg.BcryptCost, log)

	services := &service.Services{
		Auth:       auth.NewService(repos.Users, hasher, codec, collector, log),
		Accounts:   service.NewAccountService(repos.Users, collector, log),
		Categories: service.NewCategoryService(repos.Categories, log),
		Products:   service.NewProductService(repos.Products, repos.Categories, collector, log),
		Reviews:    service.NewReviewService(repos.Reviews, repos.Products, collector, log),
		Orders:     service.NewOrderService(repos.Orders, repos.Products, log),
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		RedisClient:  redisClient,
		Registry:     registry,
		Metrics:      collector,
		Transport:    transport,
		Repositories: repos,
		Services:     services,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// HasDatabase returns true when backed by Postgres
func (c *Container) HasDatabase() bool {
	return c.DB != nil
}
