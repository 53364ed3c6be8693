package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, "main:\n  name: test-site\n")

	settings, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-site", settings.Main.Name)
	assert.Equal(t, DatabaseSQLite, settings.Database.Type)
	assert.Equal(t, "inspections.db", settings.Database.SQLite.Path)
	assert.Equal(t, 5*time.Second, settings.Database.QueryTimeout)
	assert.True(t, settings.Alerting.DedupeByInspection)
	assert.Equal(t, 30*time.Second, settings.Alerting.PollInterval)
	assert.Equal(t, 100, settings.Alerting.DispatchQueueSize)
	assert.Equal(t, "8080", settings.WebServer.Port)
	assert.Equal(t, "zozi", settings.MQTT.Topic)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	require.NotNil(t, settings.Logging.FileOutput)
	assert.Equal(t, 100, settings.Logging.FileOutput.MaxSize)
	assert.Equal(t, 10, settings.Logging.FileOutput.MaxRotatedFiles)

	assert.Same(t, settings, GetSettings())
}

func TestLoadFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
database:
  querytimeout: 2s
alerting:
  defaultthreshold: 70
  dedupebyinspection: false
  pollinterval: 1m
notification:
  webhook:
    enabled: true
    url: http://localhost:9000/api/alerts
`)

	settings, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, settings.Database.QueryTimeout)
	assert.InDelta(t, 70.0, settings.Alerting.DefaultThreshold, 0.0001)
	assert.False(t, settings.Alerting.DedupeByInspection)
	assert.Equal(t, time.Minute, settings.Alerting.PollInterval)
	assert.True(t, settings.Notification.Webhook.Enabled)
	assert.Equal(t, "http://localhost:9000/api/alerts", settings.Notification.Webhook.URL)
}

func TestLoadFile_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
database:
  type: postgres
alerting:
  defaultthreshold: 150
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.type")
	assert.Contains(t, err.Error(), "defaultthreshold")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	valid := func() *Settings {
		s := &Settings{}
		s.WebServer = WebServerSettings{Enabled: true, Port: "8080"}
		s.Database = DatabaseSettings{Type: DatabaseSQLite, SQLite: SQLiteSettings{Path: "x.db"}, QueryTimeout: time.Second}
		s.Alerting = AlertingSettings{DefaultThreshold: 50, PollInterval: time.Second, DispatchQueueSize: 1}
		s.Notification.RateLimit = RateLimitSettings{PerMinute: 1, Burst: 1}
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"bad port", func(s *Settings) { s.WebServer.Port = "http" }, "webserver.port"},
		{"disabled webserver skips port", func(s *Settings) { s.WebServer.Enabled = false; s.WebServer.Port = "" }, ""},
		{"mysql missing host", func(s *Settings) {
			s.Database.Type = DatabaseMySQL
			s.Database.MySQL = MySQLSettings{Database: "db", Username: "u", Port: "3306"}
		}, "database.mysql"},
		{"negative threshold", func(s *Settings) { s.Alerting.DefaultThreshold = -1 }, "defaultthreshold"},
		{"zero poll interval", func(s *Settings) { s.Alerting.PollInterval = 0 }, "pollinterval"},
		{"webhook without scheme", func(s *Settings) {
			s.Notification.Webhook = WebhookSettings{Enabled: true, URL: "localhost/alerts"}
		}, "webhook.url"},
		{"shoutrrr without urls", func(s *Settings) { s.Notification.Shoutrrr.Enabled = true }, "shoutrrr.urls"},
		{"mqtt without broker", func(s *Settings) { s.MQTT = MQTTSettings{Enabled: true, Topic: "t"} }, "mqtt.broker"},
		{"sentry without dsn", func(s *Settings) { s.Sentry.Enabled = true }, "sentry.dsn"},
		{"negative log rotation", func(s *Settings) {
			s.Logging.FileOutput = &logger.FileOutput{Enabled: true, Path: "x.log", MaxRotatedFiles: -1}
		}, "logging.file_output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
