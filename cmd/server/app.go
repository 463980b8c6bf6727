package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	accountadapters "paam/internal/account/adapters"
	accounthandler "paam/internal/account/handler"
	accountmetrics "paam/internal/account/metrics"
	accountservice "paam/internal/account/service"
	customerhandler "paam/internal/customer/handler"
	customermetrics "paam/internal/customer/metrics"
	customerservice "paam/internal/customer/service"
	kycadapters "paam/internal/kyc/adapters"
	kychandler "paam/internal/kyc/handler"
	kycmetrics "paam/internal/kyc/metrics"
	kycmodels "paam/internal/kyc/models"
	kycservice "paam/internal/kyc/service"
	"paam/internal/platform/config"
	"paam/internal/platform/health"
	"paam/internal/platform/kafka"
	"paam/internal/platform/kafka/producer"
	"paam/internal/platform/redis"
	projectadapters "paam/internal/project/adapters"
	projecthandler "paam/internal/project/handler"
	projectmetrics "paam/internal/project/metrics"
	projectservice "paam/internal/project/service"
	ratelimitmetrics "paam/internal/ratelimit/metrics"
	ratelimit "paam/internal/ratelimit/middleware"
	ratelimitmodels "paam/internal/ratelimit/models"
	ratelimitstore "paam/internal/ratelimit/store"
	sdkcache "paam/internal/sdk/cache"
	sdkhandler "paam/internal/sdk/handler"
	sdkmetrics "paam/internal/sdk/metrics"
	sdkservice "paam/internal/sdk/service"
	httptransport "paam/internal/transport/http"
	"paam/pkg/platform/circuit"
	"paam/pkg/platform/middleware/auth"
	"paam/pkg/platform/middleware/metadata"
	"paam/pkg/platform/middleware/request"
	outboxmetrics "paam/pkg/platform/outbox/metrics"
	outboxworker "paam/pkg/platform/outbox/worker"
	"paam/pkg/platform/tracer"
)

// app owns the long-lived components of one server process.
type app struct {
	router      http.Handler
	worker      *outboxworker.Worker
	redis       *redis.Client
	limits      *ratelimitstore.Memory
	limitWindow time.Duration
	producer    *producer.Producer
	backends    *backends
	health      *health.Handler
	log         *slog.Logger
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	checks := health.New(cfg.Environment, health.WithLogger(log))

	b, err := openBackends(ctx, cfg, log, checks)
	if err != nil {
		return nil, err
	}
	a := &app{backends: b, health: checks, log: log}

	rdb, err := redis.New(ctx, redis.DefaultConfig(cfg.RedisURL))
	if err != nil {
		a.close()
		return nil, err
	}
	if rdb != nil {
		a.redis = rdb
		checks.RegisterCheck("redis", rdb.Health)
		if err := rdb.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			a.close()
			return nil, fmt.Errorf("register redis metrics: %w", err)
		}
	}

	publisher, err := a.publisher(cfg, checks)
	if err != nil {
		a.close()
		return nil, err
	}

	// Domain services.
	customers := customerservice.New(b.customers,
		customerservice.WithMetrics(customermetrics.New()),
		customerservice.WithLogger(log),
	)
	kyc := kycservice.New(b.kyc, b.tx, kycadapters.NewCustomerDirectory(customers),
		kycservice.WithOutbox(b.outbox),
		kycservice.WithTransitionPolicy(kycmodels.PolicyByName(cfg.KYCTransitionPolicy)),
		kycservice.WithTracer(tracer.NewOTel()),
		kycservice.WithMetrics(kycmetrics.New()),
		kycservice.WithLogger(log),
	)
	sdkOpts := []sdkservice.Option{
		sdkservice.WithMetrics(sdkmetrics.New()),
		sdkservice.WithLogger(log),
	}
	if a.redis != nil {
		sdkOpts = append(sdkOpts, sdkservice.WithCache(sdkcache.NewRedis(a.redis.Client, cfg.AnalyticsCacheTTL)))
	}
	sdk := sdkservice.New(b.sdk, sdkOpts...)
	projects := projectservice.New(b.projects,
		projectservice.WithVersionLookup(projectadapters.NewSDKVersions(sdk)),
		projectservice.WithMetrics(projectmetrics.New()),
		projectservice.WithLogger(log),
	)
	accounts := accountservice.New(b.accounts,
		accountservice.WithMetrics(accountmetrics.New()),
		accountservice.WithLogger(log),
	)

	workerOpts := []outboxworker.Option{
		outboxworker.WithCircuitBreaker(circuit.New("outbox_publisher")),
		outboxworker.WithRetention(7 * 24 * time.Hour),
		outboxworker.WithMetrics(outboxmetrics.New()),
		outboxworker.WithLogger(log),
	}
	if b.workerTx != nil {
		workerOpts = append(workerOpts, outboxworker.WithTxRunner(b.workerTx))
	}
	a.worker = outboxworker.New(b.outbox, publisher, workerOpts...)

	trusted, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	sdkRoutes := sdkhandler.New(sdk, log, cfg.DownloadWindow)
	accountRoutes := accounthandler.New(accounts, log)
	a.router = httptransport.NewRouter(httptransport.Router{
		Config: httptransport.Config{
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			TrustedProxies:     trusted,
			RequestTimeout:     cfg.RequestTimeout,
			MaxBodyBytes:       cfg.MaxBodyBytes,
		},
		Logger:        log,
		Metrics:       request.NewMetrics(),
		Authenticator: auth.NewAuthenticator(auth.NewSessions(cfg.JWTSigningKey, cfg.SessionTTL), accountadapters.NewAPIKeys(accounts), log),
		RateLimit:     a.rateLimiter(cfg),
		Health:        checks,
		MetricsPath:   httptransport.DefaultMetricsHandler(),
		Public:        []httptransport.PublicRoutes{sdkRoutes},
		Admin: []httptransport.AdminRoutes{
			httptransport.AsAdmin(kychandler.New(kyc, log)),
			httptransport.AsAdmin(customerhandler.New(customers, log)),
			sdkRoutes,
			accountRoutes,
		},
		Session: []httptransport.Routes{
			projecthandler.New(projects, log),
			accountRoutes,
		},
	})
	return a, nil
}

// rateLimiter shares counters through Redis when available. Returns nil when
// throttling is disabled.
func (a *app) rateLimiter(cfg config.Server) *ratelimit.Middleware {
	if !cfg.RateLimitEnabled {
		return nil
	}
	var st ratelimit.Store
	if a.redis != nil {
		st = ratelimitstore.NewRedis(a.redis.Client)
	} else {
		a.limits = ratelimitstore.NewMemory()
		a.limitWindow = cfg.RateLimitWindow
		st = a.limits
	}
	return ratelimit.New(st, map[ratelimitmodels.Class]ratelimitmodels.Limit{
		ratelimitmodels.ClassPublic: {Requests: cfg.RateLimitPublic, Window: cfg.RateLimitWindow},
		ratelimitmodels.ClassAPI:    {Requests: cfg.RateLimitAPI, Window: cfg.RateLimitWindow},
	}, ratelimit.WithMetrics(ratelimitmetrics.New()), ratelimit.WithLogger(a.log))
}

// publisher picks Kafka when brokers are configured and the log publisher
// otherwise.
func (a *app) publisher(cfg config.Server, checks *health.Handler) (outboxworker.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		a.log.Warn("KAFKA_BROKERS not set, KYC events are logged instead of published")
		return outboxworker.NewLogPublisher(a.log), nil
	}
	p, err := producer.New(cfg.KafkaBrokers, producer.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	a.producer = p
	hc := kafka.NewHealthChecker(p.Client())
	checks.RegisterCheck(hc.Name(), hc.Check)
	return outboxworker.NewKafkaPublisher(p, cfg.KafkaAuditTopic), nil
}

// start launches background loops. They stop with ctx or in stop.
func (a *app) start(ctx context.Context) {
	a.worker.Start()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.worker.UpdateMetrics(ctx); err != nil {
					a.log.WarnContext(ctx, "failed to refresh outbox depth", "error", err)
				}
			}
		}
	}()
	if a.limits != nil {
		go a.sweepLimits(ctx, a.limitWindow)
	}
}

func (a *app) sweepLimits(ctx context.Context, window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limits.Sweep(window); n > 0 {
				a.log.DebugContext(ctx, "swept idle rate limit buckets", "count", n)
			}
		}
	}
}

// drain fails readiness ahead of http.Server.Shutdown.
func (a *app) drain() {
	a.health.MarkDraining()
}

// stop drains the outbox before the producer closes.
func (a *app) stop(ctx context.Context) {
	if err := a.worker.Stop(ctx); err != nil {
		a.log.Warn("outbox worker did not stop cleanly", "error", err)
	}
}

func (a *app) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("failed to close kafka producer", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", "error", err)
		}
	}
	a.backends.close()
}
