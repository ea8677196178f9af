package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/model"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes
const (
	exitError     = 1
	exitModelLoad = 3
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "predictor",
	Short:         "Win probability for IPL run chases",
	Long:          `Scores in-progress 20-over chases with a pre-trained classifier and serves the results over HTTP.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(checkModelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, model.ErrModelLoad) {
		return exitModelLoad
	}
	return exitError
}

// loadConfig reads and validates the configuration, tolerating a missing file
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger.NewLogger(cfg.App.LogLevel, cfg.IsProduction()), nil
}

// modelLoader builds the loader for the configured model source
func modelLoader(cfg *config.Config, log *logrus.Logger) model.Loader {
	if cfg.Model.Source != config.ModelSourceRemote {
		return model.LocalLoader(cfg.Model.ArtifactPath)
	}

	rc := model.DefaultRemoteConfig()
	rc.BaseURL = cfg.Model.RemoteURL
	rc.APIKey = cfg.Model.APIKey
	rc.MaxRetries = cfg.Model.RetryAttempts
	rc.RateLimit = cfg.Model.RateLimit
	if t := cfg.Model.Timeout(); t > 0 {
		rc.Timeout = t
	}
	if cfg.Model.BreakerMaxFailures > 0 {
		rc.Breaker.MaxFailures = cfg.Model.BreakerMaxFailures
	}
	if c := cfg.Model.BreakerCooldown(); c > 0 {
		rc.Breaker.CooldownPeriod = c
	}

	return model.CachedLoader(model.RemoteLoader(rc, log), cfg.Model.CacheTTL())
}
