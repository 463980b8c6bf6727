package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	accountservice "paam/internal/account/service"
	accountstore "paam/internal/account/store"
	customerservice "paam/internal/customer/service"
	customerstore "paam/internal/customer/store"
	kycservice "paam/internal/kyc/service"
	kycstore "paam/internal/kyc/store"
	"paam/internal/platform/config"
	"paam/internal/platform/database"
	"paam/internal/platform/health"
	projectservice "paam/internal/project/service"
	projectstore "paam/internal/project/store"
	sdkservice "paam/internal/sdk/service"
	sdkstore "paam/internal/sdk/store"
	"paam/migrations"
	"paam/pkg/platform/outbox"
	outboxstore "paam/pkg/platform/outbox/store"
	txcontext "paam/pkg/platform/tx"
)

// backends groups the store implementations for one process. Either every
// store is Postgres-backed or every store lives in memory.
type backends struct {
	kyc       kycservice.Store
	tx        txcontext.Runner
	customers customerservice.Store
	sdk       sdkservice.Store
	projects  projectservice.Store
	accounts  accountservice.Store
	outbox    outbox.Store

	// workerTx is set for Postgres so the outbox worker's row locks hold
	// until a batch is marked.
	workerTx txcontext.Runner
	pool     *database.Pool
}

func openBackends(ctx context.Context, cfg config.Server, log *slog.Logger, checks *health.Handler) (*backends, error) {
	if !cfg.HasDatabase() {
		log.Warn("DATABASE_URL not set, using in-memory stores; data is lost on restart")
		kyc := kycstore.NewInMemory()
		return &backends{
			kyc:       kyc,
			tx:        kyc,
			customers: customerstore.NewInMemory(),
			sdk:       sdkstore.NewInMemory(),
			projects:  projectstore.NewInMemory(),
			accounts:  accountstore.NewInMemory(),
			outbox:    outboxstore.NewInMemory(),
		}, nil
	}

	pool, err := database.New(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	if err != nil {
		return nil, err
	}
	applied, err := database.Migrate(ctx, pool.DB(), migrations.FS)
	if err != nil {
		pool.Close() //nolint:errcheck // startup failure path
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		log.Info("applied database migrations", "versions", applied)
	}
	if err := pool.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		log.Warn("failed to register database pool metrics", "error", err)
	}
	checks.RegisterCheck("postgres", pool.Health)

	db := pool.DB()
	tx := txcontext.NewPostgres(db)
	return &backends{
		kyc:       kycstore.NewPostgres(db),
		tx:        tx,
		customers: customerstore.NewPostgres(db),
		sdk:       sdkstore.NewPostgres(db),
		projects:  projectstore.NewPostgres(db),
		accounts:  accountstore.NewPostgres(db),
		outbox:    outboxstore.NewPostgres(db),
		workerTx:  tx,
		pool:      pool,
	}, nil
}

func (b *backends) close() {
	if b.pool != nil {
		b.pool.Close() //nolint:errcheck // shutdown path
	}
}
