// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/hackmatehq/hackmate/internal/app/resources"
	"github.com/hackmatehq/hackmate/internal/app/store/oauthstate"
	"github.com/hackmatehq/hackmate/internal/app/system/tasks"
	"github.com/hackmatehq/hackmate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// background holds the task runner so Shutdown can stop it.
var background *tasks.Runner

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// the shared templates, applies configured database timeouts, and starts the
// background maintenance jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	// Zero values keep the timeouts package defaults.
	timeouts.Configure(timeouts.Config{
		Ping:   time.Duration(appCfg.DBTimeoutPingSecs) * time.Second,
		Short:  time.Duration(appCfg.DBTimeoutShortSecs) * time.Second,
		Medium: time.Duration(appCfg.DBTimeoutMediumSecs) * time.Second,
		Long:   time.Duration(appCfg.DBTimeoutLongSecs) * time.Second,
	})

	background = tasks.NewRunner(logger,
		tasks.OAuthStateCleanupJob(oauthstate.New(deps.MongoDatabase), logger),
	)
	background.Start()

	return nil
}
