package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ranksignal/accuracy-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Integration IntegrationConfig `yaml:"integration" mapstructure:"integration"`
	ML          MLConfig          `yaml:"ml" mapstructure:"ml"`
	Monitoring  MonitoringConfig  `yaml:"monitoring" mapstructure:"monitoring"`
}

// StoreConfig configures the report database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// IntegrationConfig declares which data sources are connected, per project
// and as a fallback default. Completeness scoring reads these as the
// expected-available set.
type IntegrationConfig struct {
	DefaultSources []string            `yaml:"default_sources" mapstructure:"default_sources"`
	ProjectSources map[string][]string `yaml:"project_sources" mapstructure:"project_sources"`
}

// MLConfig tunes hybrid batch scoring.
type MLConfig struct {
	BatchGroupSize int `yaml:"batch_group_size" mapstructure:"batch_group_size"`
	BatchPauseMS   int `yaml:"batch_pause_ms" mapstructure:"batch_pause_ms"`
}

// MonitoringConfig configures the background accuracy monitor. An empty
// webhook URL disables it.
type MonitoringConfig struct {
	WebhookURL        string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	IntervalSecs      int     `yaml:"interval_secs" mapstructure:"interval_secs"`
	LookbackHours     int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	MinAccuracyRate   float64 `yaml:"min_accuracy_rate" mapstructure:"min_accuracy_rate"`
	MinAvgConfidence  float64 `yaml:"min_avg_confidence" mapstructure:"min_avg_confidence"`
	MaxCriticalIssues int     `yaml:"max_critical_issues" mapstructure:"max_critical_issues"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ACCURACY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "accuracy.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("integration.default_sources", []string{"search_console", "analytics"})
	v.SetDefault("ml.batch_group_size", 10)
	v.SetDefault("ml.batch_pause_ms", 500)
	v.SetDefault("monitoring.interval_secs", 300)
	v.SetDefault("monitoring.lookback_hours", 24)
	v.SetDefault("monitoring.min_accuracy_rate", 0.7)
	v.SetDefault("monitoring.min_avg_confidence", 60)
	v.SetDefault("monitoring.max_critical_issues", 0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given command mode depends on. Modes:
// "score" and "ml" run without a store, "store" covers the persistence
// commands, "serve" additionally needs the server and monitor settings.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "score", "ml":
		// Pure scoring needs no store access.
	case "store":
		problems = append(problems, c.storeProblems()...)
	case "serve":
		problems = append(problems, c.storeProblems()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		problems = append(problems, c.monitoringProblems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.ML.BatchGroupSize < 1 || c.ML.BatchGroupSize > 100 {
		problems = append(problems, "ml.batch_group_size must be between 1 and 100")
	}
	if c.ML.BatchPauseMS < 0 {
		problems = append(problems, "ml.batch_pause_ms must be >= 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	var problems []string
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	return problems
}

func (c *Config) monitoringProblems() []string {
	if c.Monitoring.WebhookURL == "" {
		return nil
	}
	var problems []string
	if c.Monitoring.IntervalSecs <= 0 {
		problems = append(problems, "monitoring.interval_secs must be > 0")
	}
	if c.Monitoring.LookbackHours <= 0 {
		problems = append(problems, "monitoring.lookback_hours must be > 0")
	}
	if c.Monitoring.MinAccuracyRate < 0 || c.Monitoring.MinAccuracyRate > 1 {
		problems = append(problems, "monitoring.min_accuracy_rate must be between 0 and 1")
	}
	if c.Monitoring.MinAvgConfidence < 0 || c.Monitoring.MinAvgConfidence > 100 {
		problems = append(problems, "monitoring.min_avg_confidence must be between 0 and 100")
	}
	if c.Monitoring.MaxCriticalIssues < 0 {
		problems = append(problems, "monitoring.max_critical_issues must be >= 0")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
