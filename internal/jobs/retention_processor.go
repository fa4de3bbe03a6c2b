package jobs

import (
	"context"
	"fmt"
	"time"

	"TallyBridge/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// RetentionConfig holds configuration for the staged-upload retention sweep.
type RetentionConfig struct {
	Schedule      string
	RetentionDays int
	TimeZone      string
}

func NewDefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Schedule:      config.DefaultRetentionSchedule,
		RetentionDays: config.RetentionDays,
		TimeZone:      "Asia/Kolkata",
	}
}

// RunRetentionSweeper schedules a job that deletes staged uploads (and their
// rows) older than the retention horizon. Rows already sent to Tally are
// removed along with the rest of the upload; the dispatch record lives in the
// connector, not here.
func RunRetentionSweeper(cfg RetentionConfig, db *pgxpool.Pool) error {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone for retention sweeper: %v", err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		auditLog(fmt.Sprintf("Running staged-upload retention sweep at %s", time.Now().In(loc)))
		deleted, err := sweepExpiredUploads(db, cfg.RetentionDays)
		if err != nil {
			auditLog(fmt.Sprintf("Retention sweep failed: %v", err))
			return
		}
		auditLog(fmt.Sprintf("Retention sweep removed %d expired uploads", deleted))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention cron job: %v", err)
	}

	c.Start()
	auditLog("Retention sweep scheduled for " + cfg.Schedule + " (" + cfg.TimeZone + ")")
	return nil
}

// Expiry is judged on the manifest's created_at timestamp.
const (
	deleteExpiredRowsSQL = `
		DELETE FROM staged_rows
		WHERE upload_id IN (
			SELECT temp_table FROM uploads
			WHERE created_at < NOW() - ($1 || ' days')::interval
		)`
	deleteExpiredUploadsSQL = `
		DELETE FROM uploads
		WHERE created_at < NOW() - ($1 || ' days')::interval`
)

func sweepExpiredUploads(db *pgxpool.Pool, retentionDays int) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin retention transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, deleteExpiredRowsSQL, fmt.Sprintf("%d", retentionDays))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired staged rows: %v", err)
	}

	tag, err := tx.Exec(ctx, deleteExpiredUploadsSQL, fmt.Sprintf("%d", retentionDays))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired uploads: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit retention sweep: %v", err)
	}
	return tag.RowsAffected(), nil
}
