// Package cmd implements the CLI commands for gatekeeper.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy-wilson/gatekeeper/internal/bbapi"
	"github.com/andy-wilson/gatekeeper/internal/config"
	"github.com/andy-wilson/gatekeeper/internal/logging"
	"github.com/andy-wilson/gatekeeper/internal/orchestrator"
	"github.com/andy-wilson/gatekeeper/internal/report"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersionInfo sets the version information from ldflags.
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

// Global flags
var (
	cfgFile    string
	repoOwner  string
	repoSlugs  []string
	username   string
	password   string
	reportJSON string
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "gatekeeper",
	Short: "Summarize pull request review status across Bitbucket Cloud repositories",
	Long: `gatekeeper fetches every open pull request for a set of Bitbucket
Cloud repositories, replays each one's activity timeline, and prints a
per-repository summary of who voted what, whose vote was invalidated by a
later push, who is still owed an answer to an RFC, and the current label set.

It never writes to Bitbucket and never persists state between runs.

Examples:
  gatekeeper -c gatekeeper.yaml
  gatekeeper --repo-owner myteam --repo-slugs "service-*" --repo-slugs shared-lib
  BITBUCKET_USERNAME=ci-bot BITBUCKET_PASSWORD=$TOKEN gatekeeper --repo-owner myteam --repo-slugs core`,
	SilenceUsage: true,
	RunE:         runReport,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./gatekeeper.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet mode (errors only)")

	rootCmd.Flags().StringVar(&repoOwner, "repo-owner", "", "Bitbucket workspace/owner (overrides config)")
	rootCmd.Flags().StringArrayVar(&repoSlugs, "repo-slugs", nil, "repository slug or glob pattern (repeatable, overrides config)")
	rootCmd.Flags().StringVar(&username, "username", "", "Bitbucket username (overrides config, env BITBUCKET_USERNAME)")
	rootCmd.Flags().StringVar(&password, "password", "", "Bitbucket password/app password (overrides config, env BITBUCKET_PASSWORD)")
	rootCmd.Flags().StringVar(&reportJSON, "report-json", "", "also write a structured JSON report to this path")
}

// getConfigPath returns the config file path, using a default if not
// specified.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}

	for _, p := range []string{"gatekeeper.yaml", "gatekeeper.yml", ".gatekeeper.yaml", ".gatekeeper.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// loadConfig builds a Config from a config file if one is found, then
// layers CLI flags on top of it; environment variables only fill in
// credentials, owner and slugs that are still empty after that.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	if cfgPath := getConfigPath(); cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", cfgPath, err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if repoOwner != "" {
		cfg.RepoOwner = repoOwner
	}
	if len(repoSlugs) > 0 {
		cfg.RepoSlugs = repoSlugs
	}
	if username != "" {
		cfg.Auth.Username = username
	}
	if password != "" {
		cfg.Auth.Password = password
	}
	if reportJSON != "" {
		cfg.Report.JSONPath = reportJSON
	}

	if cfg.Auth.Username == "" {
		cfg.Auth.Username = os.Getenv("BITBUCKET_USERNAME")
	}
	if cfg.Auth.Password == "" {
		cfg.Auth.Password = os.Getenv("BITBUCKET_PASSWORD")
	}
	if cfg.RepoOwner == "" {
		cfg.RepoOwner = os.Getenv("REPO_OWNER")
	}
	if len(cfg.RepoSlugs) == 0 {
		if slugs := os.Getenv("REPO_SLUGS"); slugs != "" {
			cfg.RepoSlugs = strings.Split(slugs, ",")
		}
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if quiet {
		cfg.Logging.Level = "error"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runReport(c *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Close()

	client := bbapi.NewClient(cfg.Auth.Username, cfg.Auth.Password, cfg.ToRateLimiterConfig())
	orch := orchestrator.New(client, log)

	ctx := c.Context()

	slugs, err := orch.ResolveRepoSlugs(ctx, cfg.RepoOwner, cfg.RepoSlugs)
	if err != nil {
		return fmt.Errorf("resolving repo_slugs: %w", err)
	}
	log.Info("reporting on %d repositories in %s", len(slugs), cfg.RepoOwner)

	progress := orchestrator.NewProgress(len(slugs), os.Stderr, quiet)
	results := orch.WithProgress(progress).Run(ctx, cfg.RepoOwner, slugs)
	progress.Summary()

	if err := report.WriteText(os.Stdout, results); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if cfg.Report.JSONPath != "" {
		if err := report.WriteJSON(cfg.Report.JSONPath, results); err != nil {
			log.Error("writing structured JSON report: %v", err)
		}
	}

	return nil
}
