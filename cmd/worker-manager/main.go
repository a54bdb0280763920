// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"venture-workers/internal/common/aws"
	"venture-workers/internal/common/camunda"
	"venture-workers/internal/common/config"
	"venture-workers/internal/common/database"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/common/observability"
	"venture-workers/pkg/registry"

	vaa "venture-workers/internal/workers/infrastructure/verify-admin-access"

	qe "venture-workers/internal/workers/data-access/query-elasticsearch"
	qp "venture-workers/internal/workers/data-access/query-postgresql"

	css "venture-workers/internal/workers/scoring/calculate-startup-score"
	rs "venture-workers/internal/workers/scoring/rank-startups"

	am "venture-workers/internal/workers/matchmaking/assign-matchmaking"
	em "venture-workers/internal/workers/matchmaking/expire-matchmaking"

	rp "venture-workers/internal/workers/moderation/review-profile"
	vpd "venture-workers/internal/workers/profile/validate-profile-data"

	snl "venture-workers/internal/workers/communication/send-newsletter"
	sn "venture-workers/internal/workers/communication/send-notification"
)

// connectRetry gives dependencies started alongside the manager time to come up.
var connectRetry = camunda.RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

type registration struct {
	taskType string
	handler  worker.JobHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting worker manager",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = camunda.Retry(ctx, connectRetry, nil, func(ctx context.Context) error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.UsePlaintext,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("zeebe client connected", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = camunda.Retry(ctx, connectRetry, nil, func(ctx context.Context) error {
		var err error
		if pg == nil {
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("postgres connected")

	// --- Elasticsearch ---
	var es *database.ElasticsearchClient
	err = camunda.Retry(ctx, connectRetry, nil, func(ctx context.Context) error {
		var err error
		if es == nil {
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
		}
		return es.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	created, err := es.EnsureIndex(ctx, cfg.Search.StartupIndex, database.StartupIndexMapping)
	if err != nil {
		zapLog.Fatal("startup index setup failed", zap.String("index", cfg.Search.StartupIndex), zap.Error(err))
	}
	zapLog.Info("elasticsearch connected", zap.String("index", cfg.Search.StartupIndex), zap.Bool("indexCreated", created))

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = camunda.Retry(ctx, connectRetry, nil, rdb.Ping)
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("redis connected")

	// --- AWS senders ---
	var (
		mailer     sn.EmailSender
		newsMailer snl.EmailSender
		sms        sn.SMSSender
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			mailer = aws.NewSESMailer(awsCfg, cfg.Notifications.Email.FromEmail)
			newsMailer = aws.NewSESMailer(awsCfg, cfg.Newsletter.FromEmail)
		}
		if cfg.Notifications.SMS.Enabled {
			sms = aws.NewSNSSender(awsCfg, cfg.App.Name)
		}
	}

	// --- Workers ---
	registrations := []registration{
		{css.TaskType, css.NewHandler(css.LoadConfig(cfg), pg.DB, rdb.Client, log).Handle},
		{rs.TaskType, rs.NewHandler(rs.LoadConfig(cfg), log).Handle},
		{qp.TaskType, qp.NewHandler(qp.LoadConfig(cfg), pg.DB, log).Handle},
		{qe.TaskType, qe.NewHandler(qe.LoadConfig(cfg), es.Client, log).Handle},
		{am.TaskType, am.NewHandler(am.LoadConfig(cfg), pg.DB, log).Handle},
		{em.TaskType, em.NewHandler(em.LoadConfig(cfg), pg.DB, log).Handle},
		{rp.TaskType, rp.NewHandler(rp.LoadConfig(cfg), pg.DB, es, log).Handle},
		{vpd.TaskType, vpd.NewHandler(vpd.LoadConfig(cfg), log).Handle},
		{vaa.TaskType, vaa.NewHandler(vaa.LoadConfig(cfg), pg.DB, rdb.Client, log).Handle},
		{sn.TaskType, sn.NewHandler(sn.LoadConfig(cfg), pg.DB, mailer, sms, log).Handle},
	}
	if newsMailer != nil {
		registrations = append(registrations,
			registration{snl.TaskType, snl.NewHandler(snl.LoadConfig(cfg), pg.DB, newsMailer, log).Handle})
	} else {
		zapLog.Warn("email disabled, newsletter worker not started")
	}

	checkRegistry(cfg, registrations, zapLog)

	var workers []worker.JobWorker
	for _, r := range registrations {
		if !config.IsWorkerEnabled(cfg, r.taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", r.taskType))
			continue
		}
		wc := config.GetWorkerConfig(cfg, r.taskType)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      r.taskType,
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, r.handler, log, obs))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & metrics ---
	srv := &http.Server{
		Addr:              cfg.App.HealthAddr,
		Handler:           newHealthMux(pg, rdb),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("health/metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health/metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutdown signal received, stopping workers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("health server shutdown failed", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("error closing zeebe client", zap.Error(err))
	}

	zapLog.Info("worker manager stopped")
}

// checkRegistry warns about started task types the activity registry does not describe.
func checkRegistry(cfg *config.Config, registrations []registration, log *zap.Logger) {
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		log.Warn("activity registry unavailable", zap.String("path", cfg.Registry.Path), zap.Error(err))
		return
	}

	var enabled []string
	for _, r := range registrations {
		if config.IsWorkerEnabled(cfg, r.taskType) {
			enabled = append(enabled, r.taskType)
		}
	}
	for _, t := range reg.Missing(enabled) {
		log.Warn("task type missing from activity registry", zap.String("taskType", t))
	}
	log.Info("activity registry loaded",
		zap.String("version", reg.Version),
		zap.Int("activities", len(reg.Activities)),
	)
}

func newHealthMux(pg *database.PostgresClient, rdb *database.RedisClient) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "redis": "ok"}
		status, code := "ready", http.StatusOK
		if err := pg.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeStatus(w, code, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
