// cmd/gateway/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"negotiation-gateway/internal/classifier"
	"negotiation-gateway/internal/common/camunda"
	"negotiation-gateway/internal/common/config"
	"negotiation-gateway/internal/common/database"
	commonhttp "negotiation-gateway/internal/common/http"
	"negotiation-gateway/internal/common/logger"
	"negotiation-gateway/internal/common/observability"
	"negotiation-gateway/internal/interpret"
	"negotiation-gateway/internal/relay"
	extractbid "negotiation-gateway/internal/workers/negotiation/extract-bid"
	"negotiation-gateway/pkg/round"

	"github.com/gin-gonic/gin"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerLogger narrows logger.Logger to the extract-bid handler's interface,
// whose With returns its own Logger type.
type workerLogger struct {
	logger.Logger
}

func (w workerLogger) With(fields map[string]interface{}) extractbid.Logger {
	return workerLogger{w.Logger.With(fields)}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting negotiation gateway...", zap.String("version", cfg.App.Version))

	gin.SetMode(cfg.Server.Mode)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := map[string]relay.ReadyCheck{}

	// --- Classifier, with optional Redis cache ---
	var opts []classifier.Option
	if cfg.Database.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			rdb = database.NewRedis(cfg.Database.Redis)
			if err := rdb.Ping(ctx); err != nil {
				rdb.Close()
				return err
			}
			return nil
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		if cfg.Classifier.CacheEnabled {
			opts = append(opts, classifier.WithCache(
				classifier.NewCache(rdb, time.Duration(cfg.Classifier.CacheTTL)*time.Second),
			))
		}
		ready["redis"] = rdb.Ping
	}

	classifierClient := classifier.NewClient(
		classifier.NewConfig(cfg.Classifier),
		log.With(map[string]interface{}{"component": "classifier"}),
		opts...,
	)

	interpreter := interpret.New(interpret.Config{
		ConfidenceFloor: cfg.Interpretation.ConfidenceFloor,
		DefaultCurrency: cfg.Interpretation.DefaultCurrency,
		DefaultAgent:    cfg.Interpretation.DefaultAgent,
	})

	extractor := extractbid.NewHandler(
		extractbid.LoadConfig(cfg),
		classifierClient,
		interpreter,
		obs,
		workerLogger{log.With(map[string]interface{}{"worker": extractbid.TaskType})},
	)

	// --- Optional Zeebe job worker ---
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, extractbid.TaskType) {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		wcfg := config.GetWorkerConfig(cfg, extractbid.TaskType)
		w := camunda.NewWorker(
			zeebe.GetClient(),
			extractbid.TaskType,
			wcfg.MaxJobsActive,
			config.GetDuration(wcfg.Timeout),
			extractor,
			zapLog,
		)
		defer w.Stop()

		ready["zeebe"] = zeebe.HealthCheck
	}

	// --- Relay ---
	fixture, err := round.LoadFixture(cfg.Round.FixturePath)
	if err != nil {
		zapLog.Fatal("round fixture load failed", zap.String("path", cfg.Round.FixturePath), zap.Error(err))
	}

	endpoints := relay.Endpoints{
		EnvOrchestrator: cfg.Endpoints.EnvOrchestrator,
		AgentMessage:    cfg.Endpoints.AgentMessage,
		ChatUI:          cfg.Endpoints.ChatUI,
		Utility:         cfg.Endpoints.Utility,
		Input:           cfg.Endpoints.Input,
		Output:          cfg.Endpoints.Output,
	}
	if endpoints.Utility == "" {
		endpoints.Utility = endpoints.EnvOrchestrator
	}

	relayLog := log.With(map[string]interface{}{"component": "relay"})
	httpClient := commonhttp.NewClient(config.GetDuration(cfg.Endpoints.Timeout))

	hub := relay.NewHub(relayLog)
	forwarder := relay.NewForwarder(httpClient, endpoints, cfg.Round.AgentNames, relayLog)

	server := relay.NewServer(relay.ServerConfig{
		Addr:          cfg.Server.Addr(),
		InputPath:     cfg.Endpoints.Input,
		WebSocketPath: cfg.Server.WebSocketPath,
		StaticDir:     cfg.Server.StaticDir,
		AllowOrigins:  cfg.Server.AllowOrigins,
	}, relay.ServerDeps{
		Hub:       hub,
		Forwarder: forwarder,
		Rounds:    relay.NewRoundStarter(httpClient, endpoints, fixture, agentEndpoints(fixture, cfg.Endpoints.Agents), hub, relayLog),
		Totals:    relay.NewTotalsReporter(httpClient, endpoints, cfg.Round.Participants, cfg.Interpretation.DefaultCurrency, hub, relayLog),
		Extractor: extractor,
		Ready:     ready,
		Obs:       obs,
		Logger:    relayLog,
	})

	router := relay.NewRouter(cfg.Server.RouterAddr(), cfg.Endpoints.Output, forwarder,
		log.With(map[string]interface{}{"component": "router"}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return router.Run(gctx) })

	zapLog.Info("Negotiation gateway started",
		zap.String("api", cfg.Server.Addr()),
		zap.String("router", cfg.Server.RouterAddr()),
	)

	if err := g.Wait(); err != nil {
		zapLog.Error("gateway stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Negotiation gateway stopped")
}

// agentEndpoints matches configured endpoints to fixture agents by name.
// Config keys arrive lowercased, fixture names do not.
func agentEndpoints(fixture *round.Round, configured map[string]config.AgentEndpoint) map[string]round.Endpoint {
	out := make(map[string]round.Endpoint, len(configured))
	for _, agent := range fixture.Agents {
		for key, ep := range configured {
			if strings.EqualFold(key, agent.Name) {
				out[agent.Name] = round.Endpoint{Protocol: ep.Protocol, Host: ep.Host, Port: ep.Port}
			}
		}
	}
	return out
}
