package enrich

import (
	"context"

	"github.com/chainlens/chainlens/pkg/db"
	"github.com/chainlens/chainlens/pkg/db/models/labels"
)

// AddressLabels pairs an address with every raw label attached to it.
type AddressLabels struct {
	Address string         `json:"address"`
	Labels  []labels.Label `json:"labels"`
}

// BatchLister returns raw labels for pages of an address list. No precedence
// is applied: consumers see every crawl, not just the winner.
type BatchLister struct {
	labels db.LabelStore
}

func NewBatchLister(store db.LabelStore) *BatchLister {
	return &BatchLister{labels: store}
}

// ListLabels applies offset/limit slicing to the address list, then fetches
// all labels per selected address. Paging past the end of the list yields an
// empty result, never an error.
func (b *BatchLister) ListLabels(ctx context.Context, addresses []string, start, limit int) ([]AddressLabels, error) {
	result := make([]AddressLabels, 0)

	if start < 0 || limit <= 0 || start >= len(addresses) {
		return result, nil
	}
	end := start + limit
	if end > len(addresses) {
		end = len(addresses)
	}

	for _, address := range addresses[start:end] {
		queryCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		ls, err := b.labels.AllLabels(queryCtx, address)
		cancel()
		if err != nil {
			return nil, err
		}
		if ls == nil {
			ls = []labels.Label{}
		}
		result = append(result, AddressLabels{Address: address, Labels: ls})
	}
	return result, nil
}
