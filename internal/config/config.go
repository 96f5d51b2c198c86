package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the pawdue binaries.
type Config struct {
	// StorePath is the path to the SQLite database backing the reminder store.
	StorePath string `yaml:"store_path"`
	// LogLevel is the minimum logging level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// SnoozeLength is how far a snoozed reminder is pushed into the future.
	SnoozeLength time.Duration `yaml:"snooze_length"`
	// HostPollInterval is the retry interval while no host surface can present.
	HostPollInterval time.Duration `yaml:"host_poll_interval"`
	// ReplayStagger is the delay between deferred fires replayed after foregrounding.
	ReplayStagger time.Duration `yaml:"replay_stagger"`
	// UnskipLogTolerance is the symmetric window used to locate a skip-created
	// log around the recorded skip instant.
	UnskipLogTolerance time.Duration `yaml:"unskip_log_tolerance"`
	// ReviewPromptSpacing is the minimum time between review prompts.
	ReviewPromptSpacing time.Duration `yaml:"review_prompt_spacing"`
	// ReviewMinCompleted is how many completed alarms are needed before a
	// review prompt becomes eligible.
	ReviewMinCompleted int `yaml:"review_min_completed"`
}

const (
	// DefaultConfigFilename is the default filename for agent settings.
	DefaultConfigFilename = "pawdue-settings.yaml"

	// DefaultStoreFilename is the default filename for the SQLite store.
	DefaultStoreFilename = "pawdue.db"

	// DefaultSnoozeLength is the default snooze duration.
	DefaultSnoozeLength = 5 * time.Minute

	// DefaultHostPollInterval is the default host surface poll interval.
	DefaultHostPollInterval = 50 * time.Millisecond

	// DefaultReplayStagger is the default spacing between replayed fires.
	DefaultReplayStagger = 25 * time.Millisecond

	// DefaultUnskipLogTolerance is the default skip-log match window.
	DefaultUnskipLogTolerance = 5 * time.Second

	// DefaultReviewPromptSpacing is the default minimum spacing between review prompts.
	DefaultReviewPromptSpacing = 30 * 24 * time.Hour

	// DefaultReviewMinCompleted is the default completed-alarm threshold for review prompts.
	DefaultReviewMinCompleted = 10

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownLogLevel is returned when the log level string is not recognized.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNegativeDuration is returned when a duration field is negative.
	errNegativeDuration = errors.New("durations must not be negative")
)

// knownLogLevels lists the accepted log_level values.
//
//nolint:gochecknoglobals // Static lookup table.
var knownLogLevels = map[string]struct{}{
	"": {}, "debug": {}, "info": {}, "warn": {}, "error": {},
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for omitted fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if _, ok := knownLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	for _, d := range []time.Duration{
		cfg.SnoozeLength,
		cfg.HostPollInterval,
		cfg.ReplayStagger,
		cfg.UnskipLogTolerance,
		cfg.ReviewPromptSpacing,
	} {
		if d < 0 {
			return errNegativeDuration
		}
	}

	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStoreFilename
	}

	if cfg.SnoozeLength == 0 {
		cfg.SnoozeLength = DefaultSnoozeLength
	}

	if cfg.HostPollInterval == 0 {
		cfg.HostPollInterval = DefaultHostPollInterval
	}

	if cfg.ReplayStagger == 0 {
		cfg.ReplayStagger = DefaultReplayStagger
	}

	if cfg.UnskipLogTolerance == 0 {
		cfg.UnskipLogTolerance = DefaultUnskipLogTolerance
	}

	if cfg.ReviewPromptSpacing == 0 {
		cfg.ReviewPromptSpacing = DefaultReviewPromptSpacing
	}

	if cfg.ReviewMinCompleted <= 0 {
		cfg.ReviewMinCompleted = DefaultReviewMinCompleted
	}

	return nil
}
