package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/djlord-it/checkerhub/internal/config"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

const envHelp = `Environment Variables:
  SERVER_HOST               Workspace hostname, e.g. adb-123.azuredatabricks.net (required)
  HTTP_PATH                 SQL warehouse HTTP path (required)
  TOKEN                     Personal access token (required)
  NOTEBOOK_PATH             Checker notebook path (required)
  CLUSTER_ID                Cluster the checker jobs run on (required)

  HTTP_ADDR                 HTTP server address (default: ":8000")
  CORS_ALLOWED_ORIGINS      Comma-separated origins (default: "http://localhost:3000,http://localhost:8080")
  JOB_TIMEZONE              Timezone of created schedules (default: "Europe/London")
  JOBS_API_URL              Override the Jobs create endpoint (optional)
  JOBS_API_TIMEOUT          Jobs API request timeout (default: "30s")
  QUERY_TIMEOUT             Metadata query timeout, 0 disables (default: "0s")
  HTTP_SHUTDOWN_TIMEOUT     Graceful HTTP shutdown timeout (default: "10s")

  METRICS_ENABLED           Enable Prometheus metrics (default: "false")
  METRICS_PATH              Metrics endpoint path (default: "/metrics")
  METRICS_PORT              Metrics server port (default: "9090")

  REDIS_ADDR                Redis address for submission analytics (optional)
  ANALYTICS_RETENTION       Analytics counter TTL (default: "720h")

  CIRCUIT_BREAKER_THRESHOLD Consecutive Jobs API failures before failing fast, 0 disables (default: "5")
  CIRCUIT_BREAKER_COOLDOWN  Time before a probe request is let through (default: "1m")

  LOG_LEVEL                 trace|debug|info|warn|error (default: "info")
  LOG_FORMAT                text|json (default: "text")`

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCommand()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return exitRuntimeError
	}
	return exitSuccess
}

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "checkerhub",
		Short:         "checkerhub - data-quality checker backend for Databricks",
		Long:          "checkerhub lists warehouse metadata and turns checker forms into scheduled Databricks jobs.\n\n" + envHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment (missing file is ignored)")

	root.AddCommand(
		newServeCommand(),
		newValidateCommand(),
		newConfigCommand(),
		newProbeCommand(),
		newVersionCommand(),
	)
	return root
}

// loadEnvFile fills unset variables from path. Variables already in the
// environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadConfig reads and validates configuration. Validation failures carry exitInvalidConfig.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		return cfg, withCode(exitInvalidConfig, fmt.Errorf("configuration error: %w", err))
	}
	return cfg, nil
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration (no connections made)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
			return nil
		},
	}
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print effective configuration as JSON (token masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Load().MaskedJSON()
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "checkerhub version %s (commit: %s)\n", version, commit)
		},
	}
}
