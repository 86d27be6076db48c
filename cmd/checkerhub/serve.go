package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/djlord-it/checkerhub/internal/analytics"
	"github.com/djlord-it/checkerhub/internal/api"
	"github.com/djlord-it/checkerhub/internal/circuitbreaker"
	"github.com/djlord-it/checkerhub/internal/config"
	"github.com/djlord-it/checkerhub/internal/jobs"
	"github.com/djlord-it/checkerhub/internal/metrics"
	"github.com/djlord-it/checkerhub/internal/warehouse"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return withCode(exitInvalidConfig, err)
			}
			return runServe(cfg, log)
		},
	}
}

func runServe(cfg config.Config, log *logrus.Logger) error {
	logConfigWarnings(cfg, log)

	var sink metrics.Sink = metrics.NewNoopSink()
	var metricsServer *http.Server

	if cfg.MetricsEnabled {
		sink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer, log)
		log.Infof("checkerhub: metrics enabled (port=%s, path=%s)", cfg.MetricsPort, cfg.MetricsPath)

		// Metrics are served on their own port.
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.MetricsPath, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    ":" + cfg.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			log.Infof("checkerhub: metrics server listening on :%s", cfg.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("checkerhub: metrics server error: %v", err)
			}
		}()
	}

	opener, err := warehouse.DatabricksOpener(cfg)
	if err != nil {
		return err
	}
	wh := warehouse.NewService(opener, log).
		WithQueryTimeout(cfg.QueryTimeout).
		WithMetrics(sink)

	breaker := circuitbreaker.New(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown)
	jobsClient := jobs.NewClient(cfg.JobsAPIURL(), cfg.Token, log).
		WithTimeout(cfg.JobsAPITimeout).
		WithCircuitBreaker(breaker).
		WithMetrics(sink)

	settings := jobs.Settings{
		NotebookPath: cfg.NotebookPath,
		ClusterID:    cfg.ClusterID,
		Timezone:     cfg.JobTimezone,
	}
	handler := api.NewHandler(wh, jobsClient, settings, log).WithMetrics(sink)

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		handler = handler.WithAnalytics(analytics.NewRedisSink(redisClient, cfg.AnalyticsRetention))
		log.Infof("checkerhub: analytics enabled (redis=%s, retention=%s)", cfg.RedisAddr, cfg.AnalyticsRetention)
	}

	if !log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handler, cfg.CORSOrigins),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("checkerhub: http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	log.Infof("checkerhub: started (workspace=%s, cluster=%s, timezone=%s)", cfg.ServerHost, cfg.ClusterID, cfg.JobTimezone)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var runErr error
	select {
	case received := <-sig:
		log.Infof("checkerhub: received signal %v, shutting down", received)
	case runErr = <-serveErr:
		log.Errorf("checkerhub: http server error: %v", runErr)
	}

	// Phase 1: stop accepting requests and let in-flight ones finish.
	log.Info("checkerhub: stopping http server...")
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		log.Errorf("checkerhub: http server shutdown error: %v", err)
	}
	log.Info("checkerhub: http server stopped")

	// Phase 2: metrics server, with the same timeout.
	if metricsServer != nil {
		log.Info("checkerhub: stopping metrics server...")
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer metricsShutdownCancel()
		if err := metricsServer.Shutdown(metricsShutdownCtx); err != nil {
			log.Errorf("checkerhub: metrics server shutdown error: %v", err)
		}
		log.Info("checkerhub: metrics server stopped")
	}

	log.Info("checkerhub: stopped")
	return runErr
}
