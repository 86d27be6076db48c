package main

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/djlord-it/checkerhub/internal/config"
)

func newLogger(cfg config.Config, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

// logConfigWarnings reports settings that are valid but risky.
func logConfigWarnings(cfg config.Config, log logrus.FieldLogger) {
	if cfg.CircuitBreakerThreshold == 0 {
		log.Warn("checkerhub: CIRCUIT_BREAKER_THRESHOLD=0; Jobs API failures will never fail fast")
	}
	if cfg.QueryTimeout == 0 {
		log.Info("checkerhub: QUERY_TIMEOUT not set; metadata queries are bounded only by the client")
	}
	if cfg.JobsAPIEndpoint != "" {
		log.Warnf("checkerhub: JOBS_API_URL overrides the workspace endpoint (%s)", cfg.JobsAPIEndpoint)
	}
	if !cfg.MetricsEnabled {
		log.Info("checkerhub: METRICS_ENABLED not set; metrics disabled")
	}
	if cfg.RedisAddr == "" {
		log.Info("checkerhub: REDIS_ADDR not set; analytics disabled")
	}
}
