package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/GregMSThompson/atm-backend/internal/config"
	"github.com/GregMSThompson/atm-backend/internal/events"
	"github.com/GregMSThompson/atm-backend/internal/metrics"
	"github.com/GregMSThompson/atm-backend/internal/resilience"
	"github.com/GregMSThompson/atm-backend/internal/state"
	"github.com/GregMSThompson/atm-backend/internal/store"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

const metricsNamespace = "atm"

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client // nil unless PROJECTID is set
	Redis     *redis.Client     // nil unless REDISADDR is set
	Registry  *prometheus.Registry
	Metrics   *metrics.Collector

	sinkTimeout time.Duration
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewJSONHandler)
	bs.sinkTimeout = cfg.SinkTimeout

	bs.Registry = prometheus.NewRegistry()
	bs.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bs.Metrics = metrics.NewCollector(metricsNamespace)
	if err = bs.Metrics.Register(bs.Registry); err != nil {
		return bs, err
	}

	if cfg.ProjectID != "" {
		bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
		bs.Log.Info("firestore archive enabled", "project_id", cfg.ProjectID)
	}
	if cfg.RedisAddr != "" {
		bs.Redis, err = InitRedis(applicationCtx, cfg.RedisAddr)
		if err != nil {
			return bs, err
		}
		bs.Log.Info("redis event stream enabled", "addr", cfg.RedisAddr, "stream", events.DefaultStream)
	}

	return bs, nil
}

// Recorders returns the metrics collector followed by a guarded sink for
// each configured backend.
func (bs *Bootstrap) Recorders() []state.Recorder {
	recorders := []state.Recorder{bs.Metrics}
	cfg := resilience.DefaultConfig(bs.sinkTimeout)
	if bs.Firestore != nil {
		recorders = append(recorders, resilience.NewGuardedSink(store.NewArchiveStore(bs.Firestore), cfg, bs.Metrics, bs.Log))
	}
	if bs.Redis != nil {
		recorders = append(recorders, resilience.NewGuardedSink(events.NewPublisher(bs.Redis, events.DefaultStream), cfg, bs.Metrics, bs.Log))
	}
	return recorders
}

func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.Redis != nil {
		errList = append(errList, bs.Redis.Close())
	}
	return errors.Join(errList...)
}
