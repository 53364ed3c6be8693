package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
)

type countingNotifier struct {
	alerts []alerting.Alert
}

func (n *countingNotifier) Notify(alert alerting.Alert) bool {
	n.alerts = append(n.alerts, alert)
	return true
}

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Database.Type = conf.DatabaseSQLite
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "alerts.db")
	settings.Alerting.DefaultThreshold = 70
	settings.Alerting.DedupeByInspection = true
	return settings
}

func openServices(t *testing.T, settings *conf.Settings, opts Options) *Services {
	t.Helper()
	svc, err := Open(t.Context(), settings, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestOpenSeedsGlobalThreshold(t *testing.T) {
	t.Parallel()

	svc := openServices(t, testSettings(t), Options{})

	setting, err := svc.Thresholds.Get(t.Context(), alerting.ScopeGlobal)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.InDelta(t, 70.0, setting.Value, 0.001)
}

func TestOpenKeepsExistingThreshold(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	first, err := Open(t.Context(), settings, Options{})
	require.NoError(t, err)
	_, err = first.Thresholds.Set(t.Context(), alerting.ScopeGlobal, 55)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	svc := openServices(t, settings, Options{})
	setting, err := svc.Thresholds.Get(t.Context(), alerting.ScopeGlobal)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.InDelta(t, 55.0, setting.Value, 0.001)
}

func TestOpenSkipSeed(t *testing.T) {
	t.Parallel()

	svc := openServices(t, testSettings(t), Options{SkipSeed: true})

	setting, err := svc.Thresholds.Get(t.Context(), alerting.ScopeGlobal)
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Database.Type = "postgres"

	_, err := Open(t.Context(), settings, Options{})
	require.Error(t, err)
}

func TestServicesEvaluateAndNotify(t *testing.T) {
	t.Parallel()

	notifier := &countingNotifier{}
	svc := openServices(t, testSettings(t), Options{Notifier: notifier})

	alert, outcome, err := svc.Evaluator.Evaluate(t.Context(), alerting.Submission{
		InspectionID:  101,
		InspectorName: "D. Campbell",
		FormType:      string(alerting.FormSwimmingPool),
		Score:         62.5,
	})
	require.NoError(t, err)
	assert.Equal(t, alerting.OutcomeCreated, outcome)
	require.NotNil(t, alert)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, alert.ID, notifier.alerts[0].ID)

	count, err := svc.Query.UnacknowledgedCount(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	api := svc.API()
	require.NotNil(t, api.Ping)
	require.NoError(t, api.Ping(t.Context()))
}
