// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/freightdesk/internal/app/resources"
	sessionstore "github.com/dalemusser/freightdesk/internal/app/store/sessions"
	"github.com/dalemusser/freightdesk/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

var (
	workerMu sync.Mutex
	cleanup  *workers.SessionCleanup
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// the shared templates and starts the idle session sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	workerMu.Lock()
	defer workerMu.Unlock()
	cleanup = workers.NewSessionCleanup(
		sessionstore.New(deps.MongoDatabase),
		logger,
		appCfg.SessionSweepEvery,
		appCfg.SessionIdleTimeout,
	)
	cleanup.Start()
	return nil
}

func stopWorkers() {
	workerMu.Lock()
	defer workerMu.Unlock()
	if cleanup != nil {
		cleanup.Stop()
		cleanup = nil
	}
}
