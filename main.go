package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dollpublish/dollpublish/handlers"
	"github.com/dollpublish/dollpublish/internal/config"
	"github.com/dollpublish/dollpublish/internal/credentials"
	"github.com/dollpublish/dollpublish/internal/document/repository"
	"github.com/dollpublish/dollpublish/internal/document/service"
	"github.com/dollpublish/dollpublish/internal/overrides"
	"github.com/dollpublish/dollpublish/internal/presenter"
	"github.com/dollpublish/dollpublish/internal/render"
	"github.com/dollpublish/dollpublish/internal/storage"
	"github.com/dollpublish/dollpublish/pkg/logger"
	"github.com/dollpublish/dollpublish/pkg/metrics"
	"github.com/dollpublish/dollpublish/pkg/middleware"
)

var startTime = time.Now()

// app is everything the router needs. Optional parts are nil when not configured.
type app struct {
	cfg    *config.Config
	creds  *credentials.Store
	docs   *service.Service
	files  *overrides.Store
	redis  *redis.Client
	mirror *storage.MinIOMirror
}

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: data_dir=%s redis=%v minio=%v", cfg.Storage.DataDir, cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, cfg)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := a.router()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting dollpublish on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// setup opens the data directory and connects the optional backends. Optional backends
// that fail to connect are logged and left out.
func setup(ctx context.Context, cfg *config.Config) (*app, error) {
	creds, err := credentials.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("credential registry: %w", err)
	}
	if names := creds.Usernames(); len(names) > 0 {
		logger.Infof("credential registry %s: %d user(s)", creds.Path(), len(names))
	}
	if cfg.Storage.WatchRegistry {
		if err := credentials.Watch(ctx, creds); err != nil {
			logger.Warnf("registry watch disabled: %v", err)
		}
	}

	a := &app{cfg: cfg, creds: creds, files: overrides.NewStore(cfg.Storage.DataDir)}

	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
			_ = client.Close()
		} else {
			logger.Infof("Connected to Redis: %s", cfg.Redis.Addr())
			a.redis = client
		}
	}

	var opts []service.Option
	if cfg.MinIO.Endpoint != "" {
		m, err := storage.NewMinIOMirror(cfg.MinIO)
		if err != nil {
			logger.Warnf("MinIO mirror disabled: %v", err)
		} else {
			logger.Infof("mirroring documents to bucket %q at %s", cfg.MinIO.Bucket, cfg.MinIO.Endpoint)
			a.mirror = m
			opts = append(opts, service.WithMirror(m))
		}
	}

	root, err := filepath.Abs(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	a.docs = service.New(repository.NewFSRepo(root), render.New(), presenter.New(root, ""), opts...)
	return a, nil
}

// guard returns the middleware chain for authenticated routes. The limiter runs before
// the credential check so failed guesses are throttled per client IP.
func (a *app) guard() []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if a.cfg.RateLimit.Enabled {
		if a.cfg.RateLimit.UseRedis && a.redis != nil {
			win := time.Duration(a.cfg.RateLimit.WindowSeconds) * time.Second
			chain = append(chain, middleware.RedisRateLimitMiddleware(a.redis, a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst, win))
		} else {
			chain = append(chain, middleware.RateLimitMiddleware(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst))
		}
	}
	return append(chain, middleware.RequireCredentials(a.creds))
}

func (a *app) router() *gin.Engine {
	r := gin.New()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, api-key, api-secret")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", a.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	handlers.New(a.docs, a.files).Register(r, a.guard()...)
	return r
}

// ready reports 200 when the data directory is usable and configured backends answer.
func (a *app) ready(c *gin.Context) {
	ready := true
	deps := map[string]bool{}

	if fi, err := os.Stat(a.cfg.Storage.DataDir); err != nil || !fi.IsDir() {
		deps["storage"] = false
		ready = false
	} else {
		deps["storage"] = true
	}

	if a.cfg.Redis.Host != "" && a.cfg.RateLimit.UseRedis {
		deps["redis"] = a.redis != nil && a.redis.Ping(c.Request.Context()).Err() == nil
		if !deps["redis"] {
			ready = false
		}
	}
	if a.cfg.MinIO.Endpoint != "" {
		// the mirror is best-effort, so it is reported but never blocks readiness
		deps["mirror"] = a.mirror != nil
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
}
