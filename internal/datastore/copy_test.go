package datastore

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
)

func openSQLite(t *testing.T, name string) *gorm.DB {
	t.Helper()
	settings := &conf.Settings{}
	settings.Database.Type = conf.DatabaseSQLite
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), name)

	db, err := Open(settings, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func seedSource(t *testing.T, db *gorm.DB, alerts int) {
	t.Helper()
	require.NoError(t, db.Create(&entities.ThresholdSetting{Scope: entities.ScopeGlobal, Value: 70, Enabled: true}).Error)
	require.NoError(t, db.Create(&entities.ThresholdSetting{Scope: "barbershop", Value: 80, Enabled: true}).Error)
	for i := range alerts {
		require.NoError(t, db.Create(&entities.Alert{
			InspectionID:   int64(1000 + i),
			InspectorName:  fmt.Sprintf("inspector %d", i),
			FormType:       "food_establishment",
			Score:          55,
			ThresholdValue: 70,
		}).Error)
	}
}

func statsByName(stats *CopyStats) map[string]TableStats {
	m := make(map[string]TableStats, len(stats.Tables))
	for _, ts := range stats.Tables {
		m[ts.Name] = ts
	}
	return m
}

func TestCopyTransfersRowsInBatches(t *testing.T) {
	t.Parallel()

	src := openSQLite(t, "src.db")
	dst := openSQLite(t, "dst.db")
	seedSource(t, src, 7)

	stats, err := Copy(t.Context(), src, dst, CopyOptions{BatchSize: 3})
	require.NoError(t, err)
	require.NoError(t, stats.Verify())

	byName := statsByName(stats)
	assert.Equal(t, int64(2), byName["threshold_settings"].Copied)
	assert.Equal(t, int64(7), byName["threshold_alerts"].Copied)
	assert.Equal(t, int64(7), byName["threshold_alerts"].Target)

	var srcAlert, dstAlert entities.Alert
	require.NoError(t, src.Order("id").Last(&srcAlert).Error)
	require.NoError(t, dst.First(&dstAlert, srcAlert.ID).Error)
	assert.Equal(t, srcAlert.InspectionID, dstAlert.InspectionID)
	assert.Equal(t, srcAlert.InspectorName, dstAlert.InspectorName)
}

func TestCopyIsIdempotent(t *testing.T) {
	t.Parallel()

	src := openSQLite(t, "src.db")
	dst := openSQLite(t, "dst.db")
	seedSource(t, src, 4)

	_, err := Copy(t.Context(), src, dst, CopyOptions{})
	require.NoError(t, err)

	stats, err := Copy(t.Context(), src, dst, CopyOptions{})
	require.NoError(t, err)

	byName := statsByName(stats)
	assert.Equal(t, int64(0), byName["threshold_alerts"].Copied)
	assert.Equal(t, int64(4), byName["threshold_alerts"].Skipped)
	assert.Equal(t, int64(4), byName["threshold_alerts"].Target)
}

func TestCopyCleanReplacesTarget(t *testing.T) {
	t.Parallel()

	src := openSQLite(t, "src.db")
	dst := openSQLite(t, "dst.db")
	seedSource(t, src, 2)
	require.NoError(t, dst.Create(&entities.Alert{
		ID: 500, InspectionID: 9, InspectorName: "stale", FormType: "barbershop", Score: 10, ThresholdValue: 70,
	}).Error)

	stats, err := Copy(t.Context(), src, dst, CopyOptions{Clean: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), statsByName(stats)["threshold_alerts"].Target)

	var count int64
	require.NoError(t, dst.Model(&entities.Alert{}).Where("id = ?", 500).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCopyStatsVerify(t *testing.T) {
	t.Parallel()

	ok := &CopyStats{Tables: []TableStats{{Name: "threshold_alerts", Source: 3, Target: 5}}}
	require.NoError(t, ok.Verify())

	short := &CopyStats{Tables: []TableStats{{Name: "threshold_alerts", Source: 3, Target: 2}}}
	require.Error(t, short.Verify())
}
