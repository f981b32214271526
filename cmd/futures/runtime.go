package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/futurestrading/internal/connectivity/infrastructure/client"
	"github.com/wyfcoding/futurestrading/internal/order/application"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
	"github.com/wyfcoding/futurestrading/internal/order/infrastructure/messaging"
	"github.com/wyfcoding/futurestrading/internal/order/infrastructure/repository"
	"github.com/wyfcoding/futurestrading/internal/order/interfaces/cli"
	httphandler "github.com/wyfcoding/futurestrading/internal/order/interfaces/http"
	refapp "github.com/wyfcoding/futurestrading/internal/referencedata/application"
	refdomain "github.com/wyfcoding/futurestrading/internal/referencedata/domain"
	"github.com/wyfcoding/futurestrading/internal/referencedata/infrastructure/persistence/file"
	redisstore "github.com/wyfcoding/futurestrading/internal/referencedata/infrastructure/persistence/redis"
	"github.com/wyfcoding/futurestrading/pkg/cache"
	"github.com/wyfcoding/futurestrading/pkg/config"
	"github.com/wyfcoding/futurestrading/pkg/db"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/metrics"
	"github.com/wyfcoding/futurestrading/pkg/mq"
	"github.com/wyfcoding/futurestrading/pkg/ratelimit"
)

const shutdownTimeout = 10 * time.Second

// runtime 进程级依赖
type runtime struct {
	cfg      *config.Config
	database *db.DB
	redis    *cache.RedisCache
	producer *mq.KafkaProducer
	metrics  *metrics.Metrics
	svc      *application.OrderService
}

var _ cli.Runtime = (*runtime)(nil)

// loadRuntime 按配置构建全部依赖，任一步失败都会释放已创建的资源
func loadRuntime(ctx context.Context, opts cli.Options) (cli.Runtime, error) {
	// 1. 加载配置
	cfg, err := config.LoadWithDefaults(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	// 2. 初始化日志
	level := cfg.Logger.Level
	if opts.Verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:      level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug(ctx, "Runtime loading",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)
	if !cfg.Exchange.HasCredentials() {
		logger.Warn(ctx, "Exchange API credentials are not configured; signed requests will be rejected")
	}

	rt := &runtime{cfg: cfg}
	if err := rt.init(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (r *runtime) init(ctx context.Context) error {
	cfg := r.cfg

	// 3. 初始化指标
	if cfg.Metrics.Enabled {
		r.metrics = metrics.New(cfg.ServiceName)
	}

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return err
	}
	r.database = database
	if err := repository.AutoMigrate(database); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 5. 初始化交易所客户端
	exchangeClient := client.NewBinanceFuturesClient(client.Config{
		BaseURL:    cfg.Exchange.BaseURL,
		APIKey:     cfg.Exchange.APIKey,
		APISecret:  cfg.Exchange.APISecret,
		RecvWindow: cfg.Exchange.RecvWindow,
		Timeout:    time.Duration(cfg.Exchange.Timeout) * time.Second,
	}, r.metrics)

	// 6. 初始化合约规则缓存
	store, err := r.snapshotStore()
	if err != nil {
		return err
	}
	rules := refapp.NewRulesCache(ctx, exchangeClient, store, r.metrics)

	// 7. 初始化事件发布（未配置 broker 时不发布）
	var publisher domain.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			return err
		}
		r.producer = producer
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.TopicPrefix)
	}

	// 8. 初始化应用服务
	var opts []application.Option
	if cfg.Exchange.ClientOrderIDs {
		opts = append(opts, application.WithClientOrderIDs())
	}
	r.svc = application.NewOrderService(
		exchangeClient,
		rules,
		repository.NewOrderRepository(database),
		repository.NewActivityRepository(database),
		publisher,
		r.metrics,
		opts...,
	)
	return nil
}

func (r *runtime) snapshotStore() (refdomain.SnapshotStore, error) {
	cfg := r.cfg
	if cfg.Metadata.Snapshot != "redis" {
		return file.NewSnapshotStore(cfg.Metadata.Path), nil
	}
	redisCache, err := r.redisCache()
	if err != nil {
		return nil, err
	}
	return redisstore.NewSnapshotStore(redisCache, cfg.Metadata.RedisKey), nil
}

// redisCache 按需建立 Redis 连接，快照存储与限流器共用
func (r *runtime) redisCache() (*cache.RedisCache, error) {
	if r.redis != nil {
		return r.redis, nil
	}
	cfg := r.cfg
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}
	r.redis = redisCache
	return redisCache, nil
}

func (r *runtime) OrderService() *application.OrderService {
	return r.svc
}

// Serve 启动 Web API，ctx 取消后优雅关停
func (r *runtime) Serve(ctx context.Context) error {
	server, err := r.createHTTPServer()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	logger.Info(context.Background(), "HTTP server stopped")
	return nil
}

// createHTTPServer 创建 HTTP 服务器
func (r *runtime) createHTTPServer() (*http.Server, error) {
	cfg := r.cfg
	gin.SetMode(gin.ReleaseMode)

	limiter, err := r.rateLimiter()
	if err != nil {
		return nil, err
	}

	router := httphandler.NewRouter(httphandler.NewOrderHandler(r.svc), httphandler.RouterOptions{
		ServiceName: cfg.ServiceName,
		Metrics:     r.metrics,
		MetricsPath: cfg.Metrics.Path,
		Limiter:     limiter,
		RateLimit:   cfg.RateLimit,
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}, nil
}

// rateLimiter 按配置选择本地令牌桶或 Redis 限流，未启用时返回 nil
func (r *runtime) rateLimiter() (ratelimit.RateLimiter, error) {
	rl := r.cfg.RateLimit
	if !rl.Enabled {
		return nil, nil
	}
	if rl.Backend != "redis" {
		return ratelimit.NewLocalRateLimiter(), nil
	}
	redisCache, err := r.redisCache()
	if err != nil {
		return nil, err
	}
	return ratelimit.NewRedisRateLimiter(redisCache.Client()), nil
}

// Close 释放 Kafka、Redis 与数据库连接
func (r *runtime) Close() error {
	var errs []error
	if r.producer != nil {
		errs = append(errs, r.producer.Close())
	}
	if r.redis != nil {
		errs = append(errs, r.redis.Close())
	}
	if r.database != nil {
		errs = append(errs, r.database.Close())
	}
	return errors.Join(errs...)
}
