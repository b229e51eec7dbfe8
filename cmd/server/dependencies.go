package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	auditHandler "statedeck/internal/audit/handler"
	"statedeck/internal/audit/ingest"
	auditMetrics "statedeck/internal/audit/metrics"
	auditModels "statedeck/internal/audit/models"
	auditService "statedeck/internal/audit/service"
	auditMemory "statedeck/internal/audit/store/memory"
	auditPostgres "statedeck/internal/audit/store/postgres"
	credHandler "statedeck/internal/credentials/handler"
	credModels "statedeck/internal/credentials/models"
	credService "statedeck/internal/credentials/service"
	credMemory "statedeck/internal/credentials/store/memory"
	"statedeck/internal/platform/config"
	"statedeck/internal/platform/kafka/consumer"
	"statedeck/internal/platform/metrics"
	"statedeck/internal/platform/postgres"
	"statedeck/internal/platform/redis"
	"statedeck/internal/versions/cache"
	versionsHandler "statedeck/internal/versions/handler"
	versionsMetrics "statedeck/internal/versions/metrics"
	versionsModels "statedeck/internal/versions/models"
	versionsService "statedeck/internal/versions/service"
	versionsMemory "statedeck/internal/versions/store/memory"
	versionsPostgres "statedeck/internal/versions/store/postgres"
	dErrors "statedeck/pkg/domain-errors"
	"statedeck/pkg/platform/tx"
)

const ingestBuffer = 256

type dependencies struct {
	log   *slog.Logger
	db    *sql.DB
	redis *redis.Client

	consumer     *consumer.Consumer
	ingestWorker *ingest.Worker

	auditHandler       *auditHandler.Handler
	versionsHandler    *versionsHandler.Handler
	credentialsHandler *credHandler.Handler
}

func buildDependencies(ctx context.Context, cfg config.Server, log *slog.Logger, m *metrics.Metrics) (*dependencies, error) {
	deps := &dependencies{log: log}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	deps.db = db
	if db != nil && cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			deps.Close()
			return nil, err
		}
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.redis = redisClient

	am := auditMetrics.New(m.Registerer())
	audit, err := auditService.New(deps.auditStore(),
		auditService.WithLogger(log),
		auditService.WithMetrics(am),
		auditService.WithLocation(cfg.Timeline.Location),
		auditService.WithPageSize(cfg.Timeline.PageSize),
	)
	if err != nil {
		deps.Close()
		return nil, err
	}

	versionOpts := []versionsService.Option{
		versionsService.WithLogger(log),
		versionsService.WithMetrics(versionsMetrics.New(m.Registerer())),
	}
	if redisClient != nil {
		versionOpts = append(versionOpts, versionsService.WithCache(cache.NewRedisDiffCache(redisClient.Client, cfg.Redis.DiffCacheTTL)))
	}
	versions, err := versionsService.New(deps.versionStore(), versionOpts...)
	if err != nil {
		deps.Close()
		return nil, err
	}

	credStore := credMemory.NewInMemoryStore()
	credentials, err := credService.New(credStore, credService.WithLogger(log))
	if err != nil {
		deps.Close()
		return nil, err
	}

	if cfg.SeedSampleData || (cfg.IsDevelopment() && db == nil) {
		credStore.Seed(credModels.SampleAPIKeys(), credModels.SampleJWTTokens())
		if err := seed(ctx, db, audit, versions); err != nil {
			deps.Close()
			return nil, err
		}
		log.Info("sample data seeded")
	}

	if cfg.Kafka.Enabled() {
		if err := deps.startIngest(ctx, cfg.Kafka, audit, versions, am); err != nil {
			deps.Close()
			return nil, err
		}
	}

	deps.auditHandler = auditHandler.New(audit, log, cfg.Timeline.Location)
	deps.versionsHandler = versionsHandler.New(versions, log, cfg.Timeline.Location)
	deps.credentialsHandler = credHandler.New(credentials, log)
	return deps, nil
}

func (d *dependencies) auditStore() auditService.Store {
	if d.db != nil {
		return auditPostgres.New(d.db)
	}
	return auditMemory.NewInMemoryStore()
}

func (d *dependencies) versionStore() versionsService.Store {
	if d.db != nil {
		return versionsPostgres.New(d.db)
	}
	return versionsMemory.NewInMemoryStore()
}

func (d *dependencies) startIngest(ctx context.Context, cfg config.KafkaConfig, audit *auditService.Service, versions *versionsService.Service, am *auditMetrics.Metrics) error {
	if cfg.CreateTopics {
		if err := consumer.EnsureTopics(ctx, cfg.Brokers, cfg.AuditTopic, cfg.VersionsTopic); err != nil {
			return err
		}
	}

	inbox := make(chan ingest.Job, ingestBuffer)
	router := consumer.NewRouter(d.log, nil)
	router.Register(cfg.AuditTopic, ingest.NewEntryHandler(inbox, d.log, am))
	router.Register(cfg.VersionsTopic, ingest.NewVersionHandler(versions, d.log))

	c, err := consumer.New(cfg, router, consumer.WithLogger(d.log))
	if err != nil {
		return err
	}
	d.consumer = c
	d.ingestWorker = ingest.NewWorker(audit, inbox, d.log, am)
	return nil
}

// seed records the sample data through the services so postgres and memory
// stores are filled the same way. Entries that already exist are left alone.
// With postgres the whole seed is one transaction.
func seed(ctx context.Context, db *sql.DB, audit *auditService.Service, versions *versionsService.Service) error {
	if db != nil {
		return tx.Run(ctx, db, func(ctx context.Context) error {
			return seedSamples(ctx, audit, versions)
		})
	}
	return seedSamples(ctx, audit, versions)
}

func seedSamples(ctx context.Context, audit *auditService.Service, versions *versionsService.Service) error {
	for _, e := range auditModels.SampleEntries() {
		if _, err := audit.Record(ctx, e); err != nil && !dErrors.HasCode(err, dErrors.CodeConflict) {
			return fmt.Errorf("seed audit entry %s: %w", e.ID, err)
		}
	}
	for _, v := range versionsModels.SampleVersions() {
		if err := versions.Save(ctx, v); err != nil && !dErrors.HasCode(err, dErrors.CodeConflict) {
			return fmt.Errorf("seed version %s: %w", v.ID, err)
		}
	}
	return nil
}

type healthStatus struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

// Health pings the configured backends. Redis is a cache, so its failure
// degrades the status without failing the check.
func (d *dependencies) Health(ctx context.Context) (healthStatus, int) {
	status := healthStatus{Status: "ok"}
	code := http.StatusOK
	if d.db != nil {
		status.Postgres = "ok"
		if err := d.db.PingContext(ctx); err != nil {
			status.Status, status.Postgres = "unavailable", err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if d.redis != nil {
		status.Redis = "ok"
		if err := d.redis.Health(ctx); err != nil {
			status.Redis = err.Error()
			if code == http.StatusOK {
				status.Status = "degraded"
			}
		}
	}
	return status, code
}

func (d *dependencies) Close() {
	if d.consumer != nil {
		d.consumer.Close()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.log.Warn("failed to close redis", "error", err)
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			d.log.Warn("failed to close postgres", "error", err)
		}
	}
}
