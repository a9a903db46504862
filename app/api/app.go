// Package api wires the enrichment, artifact and status services behind the
// public HTTP surface.
package api

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainlens/chainlens/app/api/types"
	"github.com/chainlens/chainlens/pkg/artifacts"
	"github.com/chainlens/chainlens/pkg/config"
	"github.com/chainlens/chainlens/pkg/db"
	"github.com/chainlens/chainlens/pkg/enrich"
	"github.com/chainlens/chainlens/pkg/journal"
	"github.com/chainlens/chainlens/pkg/logging"
	"github.com/chainlens/chainlens/pkg/nameservice"
	"github.com/chainlens/chainlens/pkg/reporter"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Unable to load configuration", zap.Error(err))
	}

	labelDB, err := db.NewLabelDB(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to initialize label database", zap.Error(err))
	}
	if err := labelDB.InitializeDB(ctx); err != nil {
		logger.Fatal("Unable to initialize label database tables", zap.Error(err))
	}

	node, err := ethclient.Dial(cfg.NodeURL)
	if err != nil {
		logger.Fatal("Unable to connect to chain node", zap.String("url", cfg.NodeURL), zap.Error(err))
	}

	journalClient := journal.NewHTTPClient(logger, cfg.JournalURL, cfg.AdminAccessToken)
	rep := reporter.New(logger, journalClient, cfg.DataJournalID)

	objects, err := artifacts.NewS3Store(ctx)
	if err != nil {
		logger.Fatal("Unable to initialize object storage", zap.Error(err))
	}

	resolver := nameservice.NewResolver(logger, node)

	app := &types.App{
		Config:    cfg,
		LabelDB:   labelDB,
		Logger:    logger,
		Enrich:    enrich.NewService(logger, labelDB, resolver, rep),
		Batch:     enrich.NewBatchLister(labelDB),
		Artifacts: artifacts.NewService(logger, labelDB, objects, rep, cfg.ABIBucket, cfg.ABIPrefix),
		Status:    journal.NewStatusAggregator(logger, journalClient, cfg.DataJournalID),
		Names:     resolver,
	}

	return app
}
