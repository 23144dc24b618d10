// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/hackmatehq/hackmate/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}
