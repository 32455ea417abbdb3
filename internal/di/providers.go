package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/app"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/config"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/database"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/handler"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/middleware"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/router"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/observability"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(observability.NewLogger)

var InfraSet = wire.NewSet(
	provideMongoConn,
	provideMongoClient,
	provideMongoDatabase,
	provideRedisClient,
)

var RepositorySet = wire.NewSet(
	repository.NewAccountRepository,
	repository.NewCodeRepository,
	repository.NewEventRepository,
	repository.NewRiddleRepository,
	repository.NewBlogRepository,
)

var SecuritySet = wire.NewSet(
	provideHasher,
	provideJWTManager,
	provideCookieManager,
)

var ServiceSet = wire.NewSet(
	provideMailer,
	provideCodeService,
	provideLeaderboardCache,
	service.NewAuthService,
	service.NewRegistrationService,
	service.NewRiddleService,
	service.NewBlogService,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewEventHandler,
	handler.NewRiddleHandler,
	handler.NewBlogHandler,
	provideSessionGuard,
	provideRouterDependencies,
	provideRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

type mongoConn struct {
	client *mongo.Client
	db     *mongo.Database
}

func provideMongoConn(cfg *config.Config, logger *slog.Logger) (*mongoConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	logger.Info("mongo connected", "database", cfg.MongoDB)
	return &mongoConn{client: client, db: db}, nil
}

func provideMongoClient(conn *mongoConn) *mongo.Client     { return conn.client }
func provideMongoDatabase(conn *mongoConn) *mongo.Database { return conn.db }

// provideRedisClient returns nil when no address is configured; the
// cache and limiter consumers degrade to local behavior.
func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	logger.Info("redis configured", "addr", cfg.RedisAddr)
	return client
}

func provideHasher(cfg *config.Config) *security.Hasher {
	return security.NewHasher(cfg.BcryptCost)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite)
}

func provideMailer(cfg *config.Config, logger *slog.Logger) service.Mailer {
	if cfg.SMTPConfigured() {
		return service.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}
	logger.Warn("smtp not configured, codes will only be logged")
	return service.NewLogMailer(logger)
}

func provideCodeService(codes repository.CodeRepository, hasher *security.Hasher, mailer service.Mailer, logger *slog.Logger, cfg *config.Config) *service.CodeService {
	return service.NewCodeService(codes, hasher, mailer, logger, cfg.OTPLength)
}

func provideLeaderboardCache(client redis.UniversalClient) service.LeaderboardCache {
	return service.NewRedisLeaderboardCache(client, "kgts:leaderboard")
}

func provideSessionGuard(authSvc *service.AuthService, logger *slog.Logger) *middleware.SessionGuard {
	return middleware.NewSessionGuard(authSvc, logger)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	eventHandler *handler.EventHandler,
	riddleHandler *handler.RiddleHandler,
	blogHandler *handler.BlogHandler,
	guard *middleware.SessionGuard,
	jwtMgr *security.JWTManager,
	redisClient redis.UniversalClient,
	conn *mongoConn,
	logger *slog.Logger,
	cfg *config.Config,
) router.Dependencies {
	keyFunc := middleware.SubjectOrIPKeyFunc(jwtMgr)

	var authLimiter, apiLimiter *middleware.RateLimiter
	if redisClient != nil {
		shared := middleware.NewRedisFixedWindowLimiter(redisClient, "kgts:rl")
		authLimiter = middleware.NewDistributedRateLimiterWithKey(shared, cfg.AuthRateLimitPerMin, time.Minute, middleware.FailClosed, "auth", keyFunc)
		apiLimiter = middleware.NewDistributedRateLimiterWithKey(shared, cfg.APIRateLimitPerMin, time.Minute, middleware.FailOpen, "api", keyFunc)
	} else {
		authLimiter = middleware.NewRateLimiterWithKey(cfg.AuthRateLimitPerMin, time.Minute, keyFunc)
		apiLimiter = middleware.NewRateLimiterWithKey(cfg.APIRateLimitPerMin, time.Minute, keyFunc)
	}

	var ready func(ctx context.Context) error
	if conn != nil {
		ready = func(ctx context.Context) error {
			return conn.client.Ping(ctx, readpref.Primary())
		}
	}

	return router.Dependencies{
		Logger:           logger,
		AuthHandler:      authHandler,
		EventHandler:     eventHandler,
		RiddleHandler:    riddleHandler,
		BlogHandler:      blogHandler,
		Guard:            guard,
		AuthLimiter:      authLimiter,
		APILimiter:       apiLimiter,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
		Ready:            ready,
	}
}

func provideRouter(dep router.Dependencies) http.Handler {
	return router.New(dep)
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
