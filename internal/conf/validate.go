// conf/validate.go

package conf

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		validateLoggingSettings,
		validateWebServerSettings,
		validateDatabaseSettings,
		validateAlertingSettings,
		validateNotificationSettings,
		validateMQTTSettings,
		validateSentrySettings,
	}
	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateLoggingSettings(s *Settings) error {
	fo := s.Logging.FileOutput
	if fo == nil {
		return nil
	}
	if fo.MaxSize < 0 || fo.MaxAge < 0 || fo.MaxRotatedFiles < 0 {
		return fmt.Errorf("logging.file_output rotation limits must not be negative")
	}
	return nil
}

func validateWebServerSettings(s *Settings) error {
	if !s.WebServer.Enabled {
		return nil
	}
	if err := validateEnvPort(s.WebServer.Port); err != nil {
		return fmt.Errorf("webserver.port: %w", err)
	}
	if s.WebServer.RateLimit < 0 {
		return fmt.Errorf("webserver.ratelimit must not be negative")
	}
	return nil
}

func validateDatabaseSettings(s *Settings) error {
	var errs []string

	switch s.Database.Type {
	case DatabaseSQLite:
		if strings.TrimSpace(s.Database.SQLite.Path) == "" {
			errs = append(errs, "database.sqlite.path is required")
		}
	case DatabaseMySQL:
		m := s.Database.MySQL
		if m.Host == "" || m.Database == "" || m.Username == "" {
			errs = append(errs, "database.mysql requires host, database and username")
		}
		if _, err := strconv.Atoi(m.Port); err != nil {
			errs = append(errs, "database.mysql.port must be numeric")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.type %q is not supported", s.Database.Type))
	}

	if s.Database.QueryTimeout <= 0 {
		errs = append(errs, "database.querytimeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("database settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAlertingSettings(s *Settings) error {
	var errs []string
	a := s.Alerting

	if math.IsNaN(a.DefaultThreshold) || a.DefaultThreshold < 0 || a.DefaultThreshold > 100 {
		errs = append(errs, "alerting.defaultthreshold must be between 0 and 100")
	}
	if a.PollInterval <= 0 {
		errs = append(errs, "alerting.pollinterval must be positive")
	}
	if a.DispatchQueueSize <= 0 {
		errs = append(errs, "alerting.dispatchqueuesize must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("alerting settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateNotificationSettings(s *Settings) error {
	var errs []string
	n := s.Notification

	if n.Shoutrrr.Enabled && len(n.Shoutrrr.URLs) == 0 {
		errs = append(errs, "notification.shoutrrr.urls must contain at least one URL")
	}
	if n.Webhook.Enabled {
		u, err := url.Parse(n.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, "notification.webhook.url must be an http(s) URL")
		}
	}
	if n.RateLimit.PerMinute <= 0 || n.RateLimit.Burst <= 0 {
		errs = append(errs, "notification.ratelimit perminute and burst must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateMQTTSettings(s *Settings) error {
	if !s.MQTT.Enabled {
		return nil
	}
	if err := validateEnvURL(s.MQTT.Broker); err != nil {
		return fmt.Errorf("mqtt.broker: %w", err)
	}
	if strings.TrimSpace(s.MQTT.Topic) == "" {
		return fmt.Errorf("mqtt.topic is required when mqtt is enabled")
	}
	return nil
}

func validateSentrySettings(s *Settings) error {
	if s.Sentry.Enabled && s.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	return nil
}
