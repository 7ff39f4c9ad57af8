// Package config loads the flowmetrics configuration file: the status
// taxonomy, noise threshold, reporting quarters and tracker settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/flowmetrics/pkg/application"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/metrics"
)

const dateLayout = "2006-01-02"

// StatusesConfig names the taxonomy the calculators work with.
type StatusesConfig struct {
	Pause             string   `yaml:"pause"`
	Ready             string   `yaml:"ready"`
	WorkStarted       string   `yaml:"work_started"`
	ExternalTest      string   `yaml:"external_test"`
	AfterExternalTest []string `yaml:"after_external_test"`
	Done              []string `yaml:"done"`
}

// QuarterConfig is one reporting window; dates use the 2006-01-02 layout and
// end is exclusive.
type QuarterConfig struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// JiraConfig configures the Jira changelog tracker. The token comes from the
// JIRA_TOKEN environment variable, never from the file.
type JiraConfig struct {
	BaseURL             string `yaml:"base_url"`
	Project             string `yaml:"project"`
	RequestDelaySeconds int    `yaml:"request_delay_seconds"`
}

// GitHubConfig configures the GitHub label-timeline tracker. The token comes
// from the GITHUB_TOKEN environment variable.
type GitHubConfig struct {
	Owner       string `yaml:"owner"`
	Repo        string `yaml:"repo"`
	LabelPrefix string `yaml:"label_prefix"`
}

// TrackerConfig selects the history source.
type TrackerConfig struct {
	Kind     string       `yaml:"kind"` // file, jira or github
	Snapshot string       `yaml:"snapshot"`
	Jira     JiraConfig   `yaml:"jira"`
	GitHub   GitHubConfig `yaml:"github"`
}

// Config is the root of flowmetrics.yaml.
type Config struct {
	Statuses              StatusesConfig  `yaml:"statuses"`
	NoiseThresholdSeconds int             `yaml:"noise_threshold_seconds"`
	Quarters              []QuarterConfig `yaml:"quarters"`
	Tracker               TrackerConfig   `yaml:"tracker"`
	Workers               int             `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Statuses: StatusesConfig{
			Pause:        "paused",
			Ready:        "ready_for_dev",
			WorkStarted:  "in_progress",
			ExternalTest: "external_test",
			Done:         []string{"done"},
		},
		NoiseThresholdSeconds: int(metrics.DefaultMinDuration / time.Second),
		Tracker: TrackerConfig{
			Kind:     "file",
			Snapshot: "items.json",
			GitHub:   GitHubConfig{LabelPrefix: "status:"},
		},
	}
}

// Load reads the configuration file and overlays it on the defaults. A
// missing file is not an error; it yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the parts calculations would otherwise silently mangle.
func (c *Config) Validate() error {
	switch c.Tracker.Kind {
	case "file", "jira", "github":
	default:
		return fmt.Errorf("unknown tracker kind %q", c.Tracker.Kind)
	}
	if c.NoiseThresholdSeconds < 0 {
		return fmt.Errorf("noise_threshold_seconds must not be negative")
	}
	if len(c.Statuses.Done) == 0 {
		return fmt.Errorf("statuses.done must list at least one status")
	}
	for _, q := range c.Quarters {
		start, err := time.Parse(dateLayout, q.Start)
		if err != nil {
			return fmt.Errorf("quarter %s: invalid start %q", q.Name, q.Start)
		}
		end, err := time.Parse(dateLayout, q.End)
		if err != nil {
			return fmt.Errorf("quarter %s: invalid end %q", q.Name, q.End)
		}
		if !start.Before(end) {
			return fmt.Errorf("quarter %s: start %s is not before end %s", q.Name, q.Start, q.End)
		}
	}
	return nil
}

// MetricsConfig translates the file representation into the engine's config.
func (c *Config) MetricsConfig() metrics.Config {
	return metrics.Config{
		PauseStatus:        c.Statuses.Pause,
		ReadyStatus:        c.Statuses.Ready,
		WorkStartedStatus:  c.Statuses.WorkStarted,
		ExternalTestStatus: c.Statuses.ExternalTest,
		AfterExternalTest:  c.Statuses.AfterExternalTest,
		DoneStatuses:       metrics.NewTargetStatusSet("done-like", c.Statuses.Done...),
		MinDuration:        time.Duration(c.NoiseThresholdSeconds) * time.Second,
	}
}

// Quarter looks up a reporting period by name. Validate has already checked
// the dates.
func (c *Config) Quarter(name string) (application.Period, bool) {
	for _, q := range c.Quarters {
		if q.Name != name {
			continue
		}
		start, err1 := time.Parse(dateLayout, q.Start)
		end, err2 := time.Parse(dateLayout, q.End)
		if err1 != nil || err2 != nil {
			return application.Period{}, false
		}
		return application.Period{Name: q.Name, Start: start.UTC(), End: end.UTC()}, true
	}
	return application.Period{}, false
}
