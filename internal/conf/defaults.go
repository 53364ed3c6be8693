// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers the default value of every configuration key.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("main.name", "zozi-alerts")

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", true)
	v.SetDefault("logging.file_output.path", "logs/alerts.log")
	v.SetDefault("logging.file_output.level", "info")
	v.SetDefault("logging.file_output.max_size", 100)
	v.SetDefault("logging.file_output.max_age", 30)
	v.SetDefault("logging.file_output.max_rotated_files", 10)
	v.SetDefault("logging.file_output.compress", false)

	v.SetDefault("webserver.enabled", true)
	v.SetDefault("webserver.port", "8080")
	v.SetDefault("webserver.debug", false)
	v.SetDefault("webserver.shutdowntimeout", 10*time.Second)
	v.SetDefault("webserver.ratelimit", 20.0)

	v.SetDefault("database.type", DatabaseSQLite)
	v.SetDefault("database.sqlite.path", "inspections.db")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.database", "inspections")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", "3306")
	v.SetDefault("database.querytimeout", 5*time.Second)
	v.SetDefault("database.slowquerythreshold", 200*time.Millisecond)

	v.SetDefault("alerting.defaultthreshold", 0.0)
	v.SetDefault("alerting.dedupebyinspection", true)
	v.SetDefault("alerting.pollinterval", 30*time.Second)
	v.SetDefault("alerting.dispatchqueuesize", 100)

	v.SetDefault("notification.shoutrrr.enabled", false)
	v.SetDefault("notification.shoutrrr.urls", []string{})
	v.SetDefault("notification.shoutrrr.timeout", 10*time.Second)
	v.SetDefault("notification.webhook.enabled", false)
	v.SetDefault("notification.webhook.url", "https://api.zozi-inspections.com/api/alerts")
	v.SetDefault("notification.webhook.installationid", "")
	v.SetDefault("notification.webhook.timeout", 10*time.Second)
	v.SetDefault("notification.ratelimit.perminute", 60)
	v.SetDefault("notification.ratelimit.burst", 10)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", "zozi")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.retain", false)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")

	v.SetDefault("metrics.enabled", true)
}
