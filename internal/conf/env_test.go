package conf

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindEnvVars_Overrides(t *testing.T) {
	t.Setenv("ZOZI_DB_TYPE", "mysql")
	t.Setenv("ZOZI_MYSQL_HOST", "db.internal")
	t.Setenv("ZOZI_DEFAULT_THRESHOLD", "65.5")
	t.Setenv("ZOZI_ALERT_SERVER", "https://monitor.example.com/api/alerts")

	v := viper.New()
	setDefaultConfig(v)
	require.NoError(t, bindEnvVars(v))

	assert.Equal(t, "mysql", v.GetString("database.type"))
	assert.Equal(t, "db.internal", v.GetString("database.mysql.host"))
	assert.InDelta(t, 65.5, v.GetFloat64("alerting.defaultthreshold"), 0.0001)
	assert.Equal(t, "https://monitor.example.com/api/alerts", v.GetString("notification.webhook.url"))
}

func TestBindEnvVars_InvalidValues(t *testing.T) {
	t.Setenv("ZOZI_WEB_PORT", "99999")
	t.Setenv("ZOZI_DEFAULT_THRESHOLD", "abc")

	err := bindEnvVars(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZOZI_WEB_PORT")
	assert.Contains(t, err.Error(), "ZOZI_DEFAULT_THRESHOLD")
}

func TestEnvValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		value    string
		valid    bool
	}{
		{"port ok", validateEnvPort, "8080", true},
		{"port zero", validateEnvPort, "0", false},
		{"threshold upper bound", validateEnvThreshold, "100", true},
		{"threshold above", validateEnvThreshold, "100.1", false},
		{"db sqlite", validateEnvDatabaseType, "sqlite", true},
		{"db postgres", validateEnvDatabaseType, "postgres", false},
		{"level upper case", validateEnvLogLevel, "DEBUG", true},
		{"level unknown", validateEnvLogLevel, "verbose", false},
		{"url", validateEnvURL, "tcp://broker:1883", true},
		{"url relative", validateEnvURL, "/alerts", false},
		{"bool", validateEnvBool, "yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
