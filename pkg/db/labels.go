package db

import (
	"context"
	"fmt"
	"time"

	"github.com/chainlens/chainlens/pkg/db/clickhouse"
	"github.com/chainlens/chainlens/pkg/db/models/labels"
	"github.com/chainlens/chainlens/pkg/utils"
	"go.uber.org/zap"
)

// LabelDB is the ClickHouse-backed LabelStore. The labels table is append
// only: crawlers insert, nothing updates, and re-crawls simply add newer rows.
type LabelDB struct {
	clickhouse.Client
	Name string
}

// NewLabelDB connects to the labels database and returns a store over it.
func NewLabelDB(ctx context.Context, logger *zap.Logger) (*LabelDB, error) {
	dbName := utils.Env("LABELS_DB", "chainlens_labels")

	client, err := clickhouse.New(ctx, logger.With(zap.String("db", dbName)), dbName)
	if err != nil {
		return nil, err
	}

	return &LabelDB{Client: client, Name: dbName}, nil
}

// InitializeDB creates the labels table if it does not already exist.
func (db *LabelDB) InitializeDB(ctx context.Context) error {
	db.Logger.Debug("Initialize labels model", zap.String("name", db.Name))

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."labels" (
			id         UUID DEFAULT generateUUIDv4(),
			address    String,
			kind       LowCardinality(String),
			data       String,
			created_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = MergeTree
		ORDER BY (address, kind, created_at)
	`, db.Name)

	return db.Exec(ctx, query)
}

type labelRow struct {
	ID        string    `ch:"id"`
	Address   string    `ch:"address"`
	Kind      string    `ch:"kind"`
	Data      string    `ch:"data"`
	CreatedAt time.Time `ch:"created_at"`
}

// LabelsFor returns all labels of one kind for an address, most recent first.
func (db *LabelDB) LabelsFor(ctx context.Context, address string, kind labels.Kind) ([]labels.Label, error) {
	query := fmt.Sprintf(`
		SELECT toString(id) AS id, address, kind, data, created_at
		FROM "%s"."labels"
		WHERE address = ? AND kind = ?
		ORDER BY created_at DESC, id DESC
	`, db.Name)

	return db.selectLabels(ctx, query, address, string(kind))
}

// MostRecent returns the winning label for an address and kind, or nil when
// none exists. Precedence lives in labels.Latest so the tie-break rule is in
// exactly one place.
func (db *LabelDB) MostRecent(ctx context.Context, address string, kind labels.Kind) (*labels.Label, error) {
	ls, err := db.LabelsFor(ctx, address, kind)
	if err != nil {
		return nil, err
	}
	return labels.Latest(ls), nil
}

// AllLabels returns every label attached to an address regardless of kind.
func (db *LabelDB) AllLabels(ctx context.Context, address string) ([]labels.Label, error) {
	query := fmt.Sprintf(`
		SELECT toString(id) AS id, address, kind, data, created_at
		FROM "%s"."labels"
		WHERE address = ?
		ORDER BY created_at DESC, id DESC
	`, db.Name)

	return db.selectLabels(ctx, query, address)
}

func (db *LabelDB) selectLabels(ctx context.Context, query string, args ...any) ([]labels.Label, error) {
	rows := make([]labelRow, 0)
	if err := db.Select(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	result := make([]labels.Label, len(rows))
	for i, row := range rows {
		result[i] = labels.Label{
			ID:        row.ID,
			Address:   row.Address,
			Kind:      labels.Kind(row.Kind),
			Data:      labels.DecodeData(row.Data),
			CreatedAt: row.CreatedAt,
		}
	}
	return result, nil
}
