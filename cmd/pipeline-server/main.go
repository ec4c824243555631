// cmd/pipeline-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hrdesk-automation/internal/common/aws"
	"hrdesk-automation/internal/common/config"
	"hrdesk-automation/internal/common/database"
	commonhttp "hrdesk-automation/internal/common/http"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/common/observability"
	"hrdesk-automation/internal/docgen"
	"hrdesk-automation/internal/executor"
	"hrdesk-automation/internal/extraction"
	"hrdesk-automation/internal/hris"
	"hrdesk-automation/internal/ingress/webhook"
	"hrdesk-automation/internal/intent"
	"hrdesk-automation/internal/notify"
	"hrdesk-automation/internal/pipeline"
	"hrdesk-automation/internal/reporter"
	"hrdesk-automation/internal/servicedesk"
	"hrdesk-automation/pkg/catalog"

	// Action handlers, one per catalog intent
	il "hrdesk-automation/internal/actions/issue-letter"
	pq "hrdesk-automation/internal/actions/policy-query"
	qr "hrdesk-automation/internal/actions/query-hris-record"
	rp "hrdesk-automation/internal/actions/retrieve-payslip"
	uh "hrdesk-automation/internal/actions/update-hris-record"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting pipeline server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	tracing := observability.NewTracing(cfg.App.Name, os.Getenv("JAEGER_ENDPOINT"))
	obs := observability.New(cfg.App.Name).WithTracing(tracing)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := esClient.Ping(); err != nil {
			return err
		}
		return esClient.IndexReady(ctx, cfg.Database.Elasticsearch.PolicyIndex)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully",
		zap.String("policyIndex", cfg.Database.Elasticsearch.PolicyIndex))

	// --- Intent catalog (fatal on any inconsistency) ---
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err), zap.String("path", cfg.Catalog.Path))
	}
	if err := cat.Validate(); err != nil {
		zapLog.Fatal("catalog validation failed", zap.Error(err))
	}
	zapLog.Info("Intent catalog loaded", zap.Int("intents", len(cat.Intents)))

	// --- Service desk client ---
	deskTimeout := config.GetDuration(cfg.ServiceDesk.Timeout)
	tokens := servicedesk.NewTokenProvider(
		cfg.ServiceDesk.TokenURL,
		cfg.ServiceDesk.ClientID,
		cfg.ServiceDesk.ClientSecret,
		commonhttp.NewClient(deskTimeout),
	)
	desk := servicedesk.NewClient(cfg.ServiceDesk.BaseURL, tokens, deskTimeout)

	// --- Delivery and alerting (feature-flagged AWS clients) ---
	var mailer *notify.Mailer
	if cfg.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		mailer = notify.NewMailer(sesClient, cfg.AWS.SES.FromEmail, true, log)
	} else {
		mailer = notify.NewMailer(nil, "", false, log)
	}

	var alerter *notify.Alerter
	if cfg.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		alerter = notify.NewAlerter(snsClient, cfg.AWS.SNS.AlertTopicARN, true, log)
	} else {
		alerter = notify.NewAlerter(nil, "", false, log)
	}

	// --- Pipeline stages ---
	extractor := extraction.NewExtractor(nil)

	router, err := intent.NewRouter(intent.DefaultRules())
	if err != nil {
		zapLog.Fatal("intent router failed", zap.Error(err))
	}

	store := hris.NewStore(pg.DB)

	generator := docgen.NewGenerator(&docgen.Config{
		RegistryPath: cfg.Documents.RegistryPath,
		SpoolDir:     cfg.Documents.SpoolDir,
		CacheTTL:     time.Duration(cfg.Documents.CacheTTLMinutes) * time.Minute,
	}, log)

	searchCfg := pq.DefaultConfig()
	searchCfg.Index = cfg.Database.Elasticsearch.PolicyIndex
	searcher := pq.NewSearcher(esClient.Client, searchCfg)

	handlers := []executor.Handler{
		il.NewHandler(store, generator, mailer, log),
		rp.NewHandler(store, generator, mailer, rp.DefaultConfig(), log),
		uh.NewHandler(store, log),
		qr.NewHandler(store, qr.DefaultConfig(), log),
		pq.NewHandler(searcher, log),
	}

	exec, err := executor.New(cat, handlers, cfg.Pipeline, log)
	if err != nil {
		zapLog.Fatal("executor validation failed", zap.Error(err))
	}

	rep := reporter.New(desk, alerter, cfg.Pipeline, log)

	registry := pipeline.NewRegistry(rdb.Client, time.Duration(cfg.Pipeline.DedupTTLHours)*time.Hour, log)

	pipe := pipeline.New(extractor, router, exec, rep, registry, tracing,
		cfg.Pipeline.Workers, cfg.Pipeline.QueueSize, log).WithObservability(obs)
	pipe.Start()

	// --- Webhook listener ---
	hook := webhook.NewHandler(pipe, cfg.Server.WebhookSecret, log)
	webhookMux := http.NewServeMux()
	webhookMux.Handle(cfg.Server.WebhookPath, hook)
	srv := &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      webhookMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("Webhook listener started",
			zap.String("address", cfg.Server.ListenAddress),
			zap.String("path", cfg.Server.WebhookPath),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("webhook listener failed", zap.Error(err))
		}
	}()

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.OpsAddress))
		if err := http.ListenAndServe(cfg.Server.OpsAddress, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining pipeline...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop intake first so queued requests can still drain to REPORTED.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("webhook listener shutdown failed", zap.Error(err))
	}
	if err := pipe.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("pipeline drain incomplete", zap.Error(err))
	}

	zapLog.Info("Pipeline server stopped gracefully")
}
