package jobs

import (
	"testing"

	"TallyBridge/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestSweepSQLFiltersOnManifestTimestamp(t *testing.T) {
	// The uploads manifest carries created_at; the sweep must filter on it.
	assert.Contains(t, deleteExpiredUploadsSQL, "created_at <")
	assert.Contains(t, deleteExpiredRowsSQL, "created_at <")
	assert.Contains(t, deleteExpiredRowsSQL, "SELECT temp_table FROM uploads")
}

func TestDefaultRetentionConfig(t *testing.T) {
	cfg := NewDefaultRetentionConfig()
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, "0 2 * * *", cfg.Schedule)
	assert.NotEmpty(t, cfg.TimeZone)
}

func TestAuditLogWithoutLoggerService(t *testing.T) {
	prev := logger.GlobalLogger
	logger.GlobalLogger = nil
	defer func() { logger.GlobalLogger = prev }()

	assert.NotPanics(t, func() {
		auditLog("retention sweep tick")
	})
}
