// Package bootstrap wires the engine's dependencies from configuration. It is
// shared by the HTTP server, the Lambda handlers and the cron runner.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/wallet-payout-engine/pkg/bookings"
	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/config"
	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/jobs"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/logger"
	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/payouts"
	"github.com/chris/wallet-payout-engine/pkg/reconcile"
	"github.com/chris/wallet-payout-engine/pkg/referrals"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/chris/wallet-payout-engine/pkg/storage/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App holds every wired component.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    storage.Storage
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Notifier outbox.Notifier

	Ledger     *ledger.Service
	Earnings   *earnings.Aggregator
	Payouts    *payouts.Service
	Referrals  *referrals.Service
	Campaigns  *campaigns.Service
	Reconciler *reconcile.Reconciler
	Jobs       *jobs.Runner

	closers []func() error
}

// Init loads configuration (CONFIG_PATH, .env and the environment), builds the
// logger and wires the AWS backed App.
func Init(ctx context.Context) (*App, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return New(ctx, cfg, log)
}

// New connects to DynamoDB, SQS and the bookings database as configured and
// wires the services.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	store := dynamodb.New(awsdynamodb.NewFromConfig(awsCfg), dynamodb.Tables{
		Users:         cfg.Tables.Users,
		Ledger:        cfg.Tables.Ledger,
		Referrals:     cfg.Tables.Referrals,
		Campaigns:     cfg.Tables.Campaigns,
		Payouts:       cfg.Tables.Payouts,
		Notifications: cfg.Tables.Notifications,
	})

	var notifier outbox.Notifier = &outbox.NoopNotifier{Logger: log}
	if cfg.Queue.URL != "" {
		notifier = outbox.NewSQSNotifier(sqs.NewFromConfig(awsCfg), cfg.Queue.URL, log)
	} else {
		log.Warn("SQS_QUEUE_URL not set, notifications are dropped")
	}

	var closers []func() error
	var reader bookings.Reader = bookings.Empty{}
	if cfg.Bookings.DSN != "" {
		db, err := bookings.Open(cfg.Bookings.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get bookings connection pool: %w", err)
		}
		closers = append(closers, sqlDB.Close)
		reader = bookings.NewStore(db)
	} else {
		log.Warn("BOOKINGS_DATABASE_URL not set, booking earnings are not counted")
	}

	app := Wire(cfg, store, reader, notifier, log)
	app.closers = closers
	return app, nil
}

// Wire builds the services on top of already constructed backends.
func Wire(cfg *config.Config, store storage.Storage, reader bookings.Reader, notifier outbox.Notifier, log *zap.Logger) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, log)

	ledgerSvc := ledger.NewService(store, log.Named("ledger"), ledger.WithMetrics(m))
	aggregator := earnings.NewAggregator(store, reader, log.Named("earnings"))
	payoutSvc := payouts.NewService(store, ledgerSvc, aggregator, notifier, log.Named("payouts"),
		payouts.WithMaxAttempts(cfg.Payouts.MaxAttempts),
		payouts.WithDuplicateWindow(cfg.Payouts.DuplicateWindow),
		payouts.WithMetrics(m),
	)
	referralSvc := referrals.NewService(store, ledgerSvc, notifier, log.Named("referrals"), referrals.WithMetrics(m))
	campaignSvc := campaigns.NewService(store, ledgerSvc, notifier, log.Named("campaigns"), campaigns.WithMetrics(m))
	reconciler := reconcile.New(store, payoutSvc, referralSvc, campaignSvc, log.Named("reconcile"),
		reconcile.WithThresholds(cfg.Reconcile.StaleClaimAfter, cfg.Reconcile.StuckReferralAfter),
		reconcile.WithMetrics(m),
	)

	return &App{
		Config:     cfg,
		Logger:     log,
		Store:      store,
		Registry:   reg,
		Metrics:    m,
		Notifier:   notifier,
		Ledger:     ledgerSvc,
		Earnings:   aggregator,
		Payouts:    payoutSvc,
		Referrals:  referralSvc,
		Campaigns:  campaignSvc,
		Reconciler: reconciler,
		Jobs:       jobs.NewRunner(payoutSvc, campaignSvc, reconciler, m, log.Named("jobs")),
	}
}

// Deduper returns the Redis de-duplicator when REDIS_ADDR is set and a
// process-local one otherwise.
func (a *App) Deduper(ctx context.Context) (outbox.Deduper, error) {
	if a.Config.Redis.Addr == "" {
		a.Logger.Warn("REDIS_ADDR not set, notification de-duplication is process-local")
		return &outbox.MemoryDeduper{}, nil
	}
	rdb, err := outbox.ConnectRedis(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rdb.Close)
	return outbox.NewRedisDeduper(rdb, a.Config.Redis.DedupTTL), nil
}

// Close releases connections and flushes the logger.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
