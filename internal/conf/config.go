// Package conf loads and validates the service configuration.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
)

// Database backends
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// WebServerSettings contains settings for the HTTP API.
type WebServerSettings struct {
	Enabled         bool          // true to serve the HTTP API
	Port            string        // port for web server
	Debug           bool          // true to log request details
	ShutdownTimeout time.Duration // grace period for in-flight requests
	RateLimit       float64       // requests per second per client IP, 0 disables
}

// SQLiteSettings contains settings for the SQLite backend.
type SQLiteSettings struct {
	Path string // path to sqlite database
}

// MySQLSettings contains settings for the MySQL backend.
type MySQLSettings struct {
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// DatabaseSettings selects and configures the alert storage backend.
type DatabaseSettings struct {
	Type               string        // sqlite or mysql
	SQLite             SQLiteSettings
	MySQL              MySQLSettings
	QueryTimeout       time.Duration // per-statement timeout; a timed-out write is reported as failed
	SlowQueryThreshold time.Duration // statements slower than this are logged at WARN
}

// AlertingSettings controls threshold evaluation.
type AlertingSettings struct {
	DefaultThreshold   float64       // seeds the global threshold on first start when > 0
	DedupeByInspection bool          // reuse the open alert of an inspection instead of inserting another
	PollInterval       time.Duration // notification surface refresh interval
	DispatchQueueSize  int           // buffered alert events waiting for push delivery
}

// ShoutrrrSettings configures push delivery through shoutrrr service URLs.
type ShoutrrrSettings struct {
	Enabled bool
	URLs    []string
	Timeout time.Duration
}

// WebhookSettings configures forwarding of created alerts to a monitoring server.
type WebhookSettings struct {
	Enabled        bool
	URL            string
	InstallationID string
	Timeout        time.Duration
}

// RateLimitSettings throttles outbound notifications per provider.
type RateLimitSettings struct {
	PerMinute int
	Burst     int
}

// NotificationSettings groups the push providers.
type NotificationSettings struct {
	Shoutrrr  ShoutrrrSettings
	Webhook   WebhookSettings
	RateLimit RateLimitSettings
}

// MQTTSettings contains settings for MQTT integration.
type MQTTSettings struct {
	Enabled  bool   // true to enable MQTT
	Broker   string // MQTT (tcp://host:port)
	Topic    string // base topic, alerts are published to <topic>/alerts
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // true to retain messages at the broker
}

// SentrySettings contains settings for error telemetry.
type SentrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
}

// MetricsSettings contains settings for the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool // true to expose /metrics
}

// Settings contains all configuration options for the service.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-" mapstructure:"-"`
	BuildDate string `yaml:"-" mapstructure:"-"`

	Main struct {
		Name string // name of this installation, used as MQTT client id
	}

	Logging logger.LoggingConfig

	WebServer    WebServerSettings
	Database     DatabaseSettings
	Alerting     AlertingSettings
	Notification NotificationSettings
	MQTT         MQTTSettings
	Sentry       SentrySettings
	Metrics      MetricsSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads config.yaml from the default locations, creating it with
// defaults when absent, applies environment overrides and validates the result.
func Load() (*Settings, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path
// searches the default locations.
func LoadFile(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	v := viper.New()
	if err := initViper(v, configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, binds the environment and reads the configuration file.
func initViper(v *viper.Viper, configFile string) error {
	v.SetConfigType("yaml")
	setDefaultConfig(v)

	if err := bindEnvVars(v); err != nil {
		return err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.New(err).
				Component("configuration").
				Category(errors.CategoryConfiguration).
				Context("operation", "read-config").
				Build()
		}
		return nil
	}

	v.SetConfigName("config")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	err = v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(v, filepath.Join(configPaths[0], "config.yaml"))
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the current defaults to configPath.
func createDefaultConfig(v *viper.Viper, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("error encoding default config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return nil
}

// GetSettings returns the settings loaded by the last successful Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
