package types

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/chainlens/chainlens/pkg/artifacts"
	"github.com/chainlens/chainlens/pkg/config"
	"github.com/chainlens/chainlens/pkg/db"
	"github.com/chainlens/chainlens/pkg/enrich"
	"github.com/chainlens/chainlens/pkg/journal"
)

// NameService is the forward-resolution surface exposed over HTTP.
type NameService interface {
	ResolveAddress(ctx context.Context, name string) (string, error)
}

type App struct {
	Config  *config.Config
	LabelDB *db.LabelDB
	// Zap Logger
	Logger *zap.Logger
	// Domain services behind the HTTP surface.
	Enrich    *enrich.Service
	Batch     *enrich.BatchLister
	Artifacts *artifacts.Service
	Status    *journal.StatusAggregator
	Names     NameService
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.LabelDB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	_ = a.Server.Shutdown(shutdownCtx)
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
