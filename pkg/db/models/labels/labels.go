// Package labels defines the address-label model shared by the store and its
// consumers. Labels are written by external crawlers and are immutable once
// stored; multiple labels of the same kind may exist for one address, so
// consumers pick a winner with Latest rather than assuming uniqueness.
package labels

import (
	"encoding/json"
	"time"
)

// Kind identifies the crawler source of a label. The set is closed: adding a
// source is a code change, not a runtime string.
type Kind string

const (
	// KindTokenRegistry marks token registry entries (name, symbol, links).
	KindTokenRegistry Kind = "token_registry"
	// KindVerifiedContract marks verified-source-code records.
	KindVerifiedContract Kind = "verified_contract"
	// KindNFTCollection marks NFT collection metadata.
	KindNFTCollection Kind = "nft_collection"
)

// Kinds returns every known label kind.
func Kinds() []Kind {
	return []Kind{KindTokenRegistry, KindVerifiedContract, KindNFTCollection}
}

// Label is one crawler-written annotation on an address. Data is an opaque,
// source-defined payload: consumers must tolerate missing keys.
type Label struct {
	ID        string         `json:"id"`
	Address   string         `json:"address"`
	Kind      Kind           `json:"kind"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// DecodeData parses a raw JSON payload into a label data map. A payload that
// does not parse yields an empty map: a single malformed crawler row must not
// poison reads of the whole address.
func DecodeData(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil || data == nil {
		return map[string]any{}
	}
	return data
}

// Latest returns the label with the greatest CreatedAt, or nil for an empty
// slice. Labels sharing a timestamp are won by the lexicographically greatest
// ID, so the choice is deterministic for a given store state.
func Latest(ls []Label) *Label {
	var latest *Label
	for i := range ls {
		l := &ls[i]
		if latest == nil {
			latest = l
			continue
		}
		if l.CreatedAt.After(latest.CreatedAt) {
			latest = l
			continue
		}
		if l.CreatedAt.Equal(latest.CreatedAt) && l.ID > latest.ID {
			latest = l
		}
	}
	return latest
}

// StringField extracts a string value from a label payload. Missing or
// non-string values report absence instead of failing.
func StringField(data map[string]any, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NumberField extracts a numeric value from a label payload. JSON numbers
// decode as float64; integral strings written by sloppier crawlers are not
// recognized.
func NumberField(data map[string]any, key string) (float64, bool) {
	v, ok := data[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
