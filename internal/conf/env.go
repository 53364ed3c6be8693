// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "ZOZI_DEBUG", validateEnvBool},
		{"main.name", "ZOZI_NAME", nil},
		{"logging.default_level", "ZOZI_LOG_LEVEL", validateEnvLogLevel},

		{"webserver.port", "ZOZI_WEB_PORT", validateEnvPort},

		{"database.type", "ZOZI_DB_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "ZOZI_SQLITE_PATH", nil},
		{"database.mysql.host", "ZOZI_MYSQL_HOST", nil},
		{"database.mysql.port", "ZOZI_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "ZOZI_MYSQL_USERNAME", nil},
		{"database.mysql.password", "ZOZI_MYSQL_PASSWORD", nil},
		{"database.mysql.database", "ZOZI_MYSQL_DATABASE", nil},

		{"alerting.defaultthreshold", "ZOZI_DEFAULT_THRESHOLD", validateEnvThreshold},
		{"alerting.dedupebyinspection", "ZOZI_DEDUPE_BY_INSPECTION", validateEnvBool},

		// Remote alert forwarding
		{"notification.webhook.url", "ZOZI_ALERT_SERVER", validateEnvURL},
		{"notification.webhook.installationid", "ZOZI_INSTALLATION_ID", nil},

		{"mqtt.broker", "ZOZI_MQTT_BROKER", validateEnvURL},
		{"mqtt.username", "ZOZI_MQTT_USERNAME", nil},
		{"mqtt.password", "ZOZI_MQTT_PASSWORD", nil},

		{"sentry.dsn", "ZOZI_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("must be one of trace, debug, info, warn, error")
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch value {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	}
	return fmt.Errorf("must be %s or %s", DatabaseSQLite, DatabaseMySQL)
}

func validateEnvThreshold(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if f < 0 || f > 100 {
		return fmt.Errorf("must be between 0 and 100")
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}
