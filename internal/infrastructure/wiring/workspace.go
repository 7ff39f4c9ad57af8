// Package wiring assembles the application services from configuration.
package wiring

import (
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/config"
	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/storage"
	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/tracker"
	"github.com/felixgeelhaar/flowmetrics/pkg/application"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/lifecycle"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/metrics"
)

// Workspace bundles the configured repository and services.
type Workspace struct {
	Config  *config.Config
	Repo    domain.HistoryRepository
	Reports *application.ReportService
	Calc    *metrics.Calculator
	Flow    *lifecycle.Flow
}

// NewWorkspace loads configuration from path and wires the repository and
// services it describes. Tracker tokens come from the environment
// (JIRA_TOKEN, GITHUB_TOKEN), never from the config file.
func NewWorkspace(configPath string) (*Workspace, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	repo, err := buildRepository(cfg)
	if err != nil {
		return nil, err
	}

	metricsCfg := cfg.MetricsConfig()
	opts := []application.ServiceOption{}
	if cfg.Workers > 0 {
		opts = append(opts, application.WithWorkers(cfg.Workers))
	}

	return &Workspace{
		Config:  cfg,
		Repo:    repo,
		Reports: application.NewReportService(repo, metricsCfg, opts...),
		Calc:    metrics.NewCalculator(metricsCfg),
		Flow:    lifecycle.NewFlow(metricsCfg),
	}, nil
}

func buildRepository(cfg *config.Config) (domain.HistoryRepository, error) {
	switch cfg.Tracker.Kind {
	case "file":
		return storage.NewSnapshotRepository(cfg.Tracker.Snapshot), nil
	case "jira":
		jira := tracker.NewJiraRepository(tracker.JiraConfig{
			BaseURL:      cfg.Tracker.Jira.BaseURL,
			JQL:          fmt.Sprintf("project = %s ORDER BY created ASC", cfg.Tracker.Jira.Project),
			Token:        os.Getenv("JIRA_TOKEN"),
			RequestDelay: time.Duration(cfg.Tracker.Jira.RequestDelaySeconds) * time.Second,
		})
		return tracker.NewResilientRepository(jira), nil
	case "github":
		gh := tracker.NewGitHubRepository(tracker.GitHubConfig{
			Owner:       cfg.Tracker.GitHub.Owner,
			Repo:        cfg.Tracker.GitHub.Repo,
			LabelPrefix: cfg.Tracker.GitHub.LabelPrefix,
			Token:       os.Getenv("GITHUB_TOKEN"),
		})
		return tracker.NewResilientRepository(gh), nil
	default:
		return nil, fmt.Errorf("unknown tracker kind %q", cfg.Tracker.Kind)
	}
}
