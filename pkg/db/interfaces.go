package db

import (
	"context"
	"errors"

	"github.com/chainlens/chainlens/pkg/db/models/labels"
)

// ErrStorageUnavailable wraps any label-store query failure. Absence of a
// label is load-bearing information, so storage faults always propagate
// instead of masquerading as "no label exists".
var ErrStorageUnavailable = errors.New("label store unavailable")

// LabelStore is the read-only query surface over crawler-written labels.
type LabelStore interface {
	// LabelsFor returns all labels of one kind for an address, most recent
	// first (created_at DESC, id DESC).
	LabelsFor(ctx context.Context, address string, kind labels.Kind) ([]labels.Label, error)
	// MostRecent returns the winning label for an address and kind, or nil
	// when none exists.
	MostRecent(ctx context.Context, address string, kind labels.Kind) (*labels.Label, error)
	// AllLabels returns every label attached to an address regardless of
	// kind, with no precedence applied.
	AllLabels(ctx context.Context, address string) ([]labels.Label, error)
}
