package evaluate

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
)

func testContext(t *testing.T, threshold float64, dedupe bool) *app.Context {
	t.Helper()
	settings := &conf.Settings{}
	settings.Database.Type = conf.DatabaseSQLite
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "alerts.db")
	settings.Alerting.DefaultThreshold = threshold
	settings.Alerting.DedupeByInspection = dedupe

	ctx := app.NewContext("test", "")
	ctx.Settings = settings
	return ctx
}

func run(t *testing.T, ctx *app.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := Command(ctx)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestEvaluateOutcomes(t *testing.T) {
	t.Parallel()
	ctx := testContext(t, 70, true)

	out, err := run(t, ctx, "--inspection", "7", "--inspector", "K. Brown", "--form", "small-hotel", "--score", "64")
	require.NoError(t, err)
	assert.Equal(t, "alert 1 created: score 64.0 is below threshold 70.0\n", out)

	out, err = run(t, ctx, "--inspection", "7", "--inspector", "K. Brown", "--form", "small_hotel", "--score", "64")
	require.NoError(t, err)
	assert.Equal(t, "inspection 7 already has open alert 1\n", out)

	out, err = run(t, ctx, "--inspection", "8", "--form", "small_hotel", "--score", "70")
	require.NoError(t, err)
	assert.Equal(t, "score 70.0 meets the threshold, no alert\n", out)
}

func TestEvaluateWithoutThreshold(t *testing.T) {
	t.Parallel()

	out, err := run(t, testContext(t, 0, false), "--inspection", "3", "--form", "burial", "--score", "1")
	require.NoError(t, err)
	assert.Equal(t, "no threshold configured, no alert\n", out)
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	ctx := testContext(t, 70, false)

	_, err := run(t, ctx, "--inspection", "3", "--form", "bakery", "--score", "50")
	require.Error(t, err)

	_, err = run(t, ctx, "--inspection", "0", "--form", "burial", "--score", "50")
	require.ErrorIs(t, err, alerting.ErrInvalidSubmission)

	_, err = run(t, ctx, "--form", "burial", "--score", "50")
	require.Error(t, err, "inspection is required")
}
