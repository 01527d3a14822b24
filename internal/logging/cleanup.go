package logging

import (
	"log/slog"
	"time"

	"github.com/clientdesk/backend/internal/models"
	"gorm.io/gorm"
)

// StartCleanup deletes system_logs older than retention once at start and
// then daily, until done is closed.
func StartCleanup(db *gorm.DB, retention time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			purgeOlderThan(db, time.Now().Add(-retention))
			select {
			case <-ticker.C:
			case <-done:
				return
			}
		}
	}()
}

func purgeOlderThan(db *gorm.DB, cutoff time.Time) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Warn("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
}
