package main

import (
	"context"
	"log"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todo-api/api/handler"
	"github.com/fastygo/todo-api/internal/config"
	"github.com/fastygo/todo-api/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/todo-api/internal/infrastructure/redis"
	"github.com/fastygo/todo-api/internal/middleware"
	"github.com/fastygo/todo-api/internal/router"
	"github.com/fastygo/todo-api/internal/services/lifecycle"
	"github.com/fastygo/todo-api/pkg/httpcontext"
	"github.com/fastygo/todo-api/pkg/logger"
	"github.com/fastygo/todo-api/repository"
	"github.com/fastygo/todo-api/repository/memory"
	redisRepo "github.com/fastygo/todo-api/repository/redis"
	authUC "github.com/fastygo/todo-api/usecase/auth"
	profileUC "github.com/fastygo/todo-api/usecase/profile"
	taskUC "github.com/fastygo/todo-api/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.GeneratedSecret {
		zapLogger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage connection failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	users := store.users

	var (
		sessions    repository.SessionRepository
		redisClient *goRedis.Client
		redisProbe  monitor.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		sessions = redisRepo.NewSessionRepository(redisClient, cfg.JWT.TokenTTL)
		redisProbe = monitor.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		zapLogger.Warn("redis disabled, sessions are kept in process memory")
		sessions = memory.NewSessionRepository(cfg.JWT.TokenTTL)
	}

	var cache *redisRepo.CachedUserRepository
	if cfg.Cache.Enabled && redisClient != nil {
		cache = redisRepo.NewCachedUserRepository(users, redisClient, cfg.Cache.TTL, zapLogger)
		users = cache
	}

	mon := monitor.New(users, cfg.Storage.Driver, redisProbe, cfg.Monitor.Interval, zapLogger)
	if store.stats != nil {
		mon.Report("storage", store.stats)
	}
	if cache != nil {
		mon.Report("cache", func() interface{} { return cache.Stats() })
	}
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	tokens := authUC.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer)
	authUseCase := authUC.New(users, sessions, tokens, authUC.Config{
		TokenTTL:   cfg.JWT.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, zapLogger)
	profileUseCase := profileUC.New(users, zapLogger)
	taskUseCase := taskUC.New(users, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(tokens, authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:       middleware.AccessLog(zapLogger)(r.Handler),
		ReadTimeout:   cfg.HTTP.ReadTimeout,
		WriteTimeout:  cfg.HTTP.WriteTimeout,
		IdleTimeout:   cfg.HTTP.IdleTimeout,
		MaxConnsPerIP: cfg.HTTP.MaxConn,
		Name:          cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("env", cfg.Environment),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
