//go:build integration

package ingest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"statedeck/internal/audit/models"
	"statedeck/internal/audit/service"
	"statedeck/internal/audit/store/memory"
	"statedeck/internal/platform/config"
	"statedeck/internal/platform/kafka/consumer"
	vmodels "statedeck/internal/versions/models"
	vservice "statedeck/internal/versions/service"
	vmemory "statedeck/internal/versions/store/memory"
	"statedeck/pkg/testutil/containers"
)

func TestConsumeFromRedpanda(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t).Broker
	cfg := config.KafkaConfig{
		Brokers:       []string{broker},
		AuditTopic:    "statedeck.audit.it",
		VersionsTopic: "statedeck.versions.it",
		GroupID:       "statedeck-it",
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	require.NoError(t, consumer.EnsureTopics(ctx, cfg.Brokers, cfg.AuditTopic, cfg.VersionsTopic))

	producer, err := kgo.NewClient(kgo.SeedBrokers(broker))
	require.NoError(t, err)
	defer producer.Close()

	entry, err := json.Marshal(models.SampleEntries()[0])
	require.NoError(t, err)
	version, err := json.Marshal(vmodels.SampleVersions()[0])
	require.NoError(t, err)
	results := producer.ProduceSync(ctx,
		&kgo.Record{Topic: cfg.AuditTopic, Key: []byte("event-001"), Value: entry},
		&kgo.Record{Topic: cfg.AuditTopic, Value: []byte("garbage")},
		&kgo.Record{Topic: cfg.VersionsTopic, Value: version},
	)
	require.NoError(t, results.FirstErr())

	auditStore := memory.NewInMemoryStore()
	auditSvc, err := service.New(auditStore)
	require.NoError(t, err)
	versionStore := vmemory.NewInMemoryStore()
	versionSvc, err := vservice.New(versionStore)
	require.NoError(t, err)

	inbox := make(chan Job, 8)
	router := consumer.NewRouter(discard, nil)
	router.Register(cfg.AuditTopic, NewEntryHandler(inbox, discard, nil))
	router.Register(cfg.VersionsTopic, NewVersionHandler(versionSvc, discard))

	c, err := consumer.New(cfg, router, consumer.WithLogger(discard))
	require.NoError(t, err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return c.Run(gctx) })
	g.Go(func() error { return NewWorker(auditSvc, inbox, discard, nil).Run(gctx) })

	require.Eventually(t, func() bool {
		entries, _ := auditStore.List(ctx)
		_, verr := versionStore.FindByID(ctx, "ver-001")
		return len(entries) == 1 && verr == nil
	}, 30*time.Second, 200*time.Millisecond)

	stop()
	_ = g.Wait()
}
