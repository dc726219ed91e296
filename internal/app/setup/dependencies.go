package setup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/squeakroad/case-service/internal/config"
	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/idempotency"
	"github.com/squeakroad/case-service/internal/infrastructure/kafka"
	"github.com/squeakroad/case-service/internal/infrastructure/lightning"
	"github.com/squeakroad/case-service/internal/infrastructure/logger"
	"github.com/squeakroad/case-service/internal/infrastructure/metrics"
	"github.com/squeakroad/case-service/internal/infrastructure/migrate"
	"github.com/squeakroad/case-service/internal/infrastructure/postgres"
	"github.com/squeakroad/case-service/internal/infrastructure/postgres/repository"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config   *config.CaseConfig
	Log      *slog.Logger
	DB       *gorm.DB
	Registry *prometheus.Registry
	Metrics  *metrics.CaseMetrics

	Lightning   *lightning.Client
	Publisher   *kafka.DefaultKafkaPublisher
	CaseEvents  *kafka.CaseEventPublisher
	Settlements domain.SettlementSource
	Dedup       *idempotency.Store // nil when redis is not configured

	Repositories *Repositories

	closers []io.Closer
}

type Repositories struct {
	CaseRepo    domain.CaseRepository
	ListingRepo domain.ListingRepository
	FailureLog  domain.CaseFailureLogger
}

func InitializeDependencies(cfg *config.CaseConfig, log *slog.Logger) (*Dependencies, error) {
	db, err := postgres.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := migrate.RunMigrations(db, cfg.CaseDB.MigrationsPath, log); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	deps := &Dependencies{
		Config: cfg,
		Log:    log,
		DB:     db,
		Repositories: &Repositories{
			CaseRepo:    repository.NewDefaultCaseRepository(db),
			ListingRepo: repository.NewDefaultListingRepository(db),
			FailureLog:  logger.NewPGCaseEventLogger(db),
		},
	}

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.NewCaseMetrics(deps.Registry)

	lnd, err := lightning.NewClient(cfg, log)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("lightning client: %w", err)
	}
	deps.Lightning = lnd
	deps.closers = append(deps.closers, lnd)

	brokers := cfg.KafkaBrokers()
	deps.Publisher = kafka.NewDefaultKafkaPublisher(brokers, log)
	deps.closers = append(deps.closers, deps.Publisher)

	deps.CaseEvents, err = kafka.NewCaseEventPublisher(deps.Publisher, cfg.KafkaService.CaseTopic)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("case event publisher: %w", err)
	}

	deps.Settlements = initSettlementSource(cfg, lnd, brokers, log)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		deps.Dedup = idempotency.NewStore(rdb, cfg.Redis.DedupTTL)
		deps.closers = append(deps.closers, rdb)
	}

	return deps, nil
}

func initSettlementSource(cfg *config.CaseConfig, lnd *lightning.Client, brokers []string, log *slog.Logger) domain.SettlementSource {
	if cfg.PaymentWatcher.Source == "kafka" {
		sub := kafka.NewDefaultKafkaSubscriber(brokers, log)
		return kafka.NewSettlementSource(sub, cfg.KafkaService.SettlementTopic, cfg.KafkaService.GroupID, log)
	}
	return lnd
}

// Close releases external connections in reverse order of creation.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
