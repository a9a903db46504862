// Package enrich composes the per-address metadata view from independently
// crawled label sources and the name service.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainlens/chainlens/pkg/db"
	"github.com/chainlens/chainlens/pkg/db/models/labels"
	"github.com/chainlens/chainlens/pkg/nameservice"
)

// lookupTimeout bounds every external read the fan-out performs. Request
// contexts usually carry no deadline, so without one a hung collaborator
// would stall the whole Enrich call at group.Wait.
const lookupTimeout = 10 * time.Second

// NameResolver is the forward-resolution surface enrichment needs.
type NameResolver interface {
	ResolveName(ctx context.Context, address string) (string, error)
}

// ErrorReporter receives best-effort failure reports.
type ErrorReporter interface {
	ErrorReport(ctx context.Context, err error, tags ...string)
}

// TokenDetails is the token registry view of an address.
type TokenDetails struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	ExternalURLs []string `json:"external_url"`
}

// ContractDetails is the verified-contract view of an address.
type ContractDetails struct {
	Name         string   `json:"name"`
	ExternalURLs []string `json:"external_url"`
}

// NFTDetails is the NFT collection view of an address. Crawlers do not
// guarantee any of the metadata fields, so each is optional.
type NFTDetails struct {
	Name         *string  `json:"name,omitempty"`
	Symbol       *string  `json:"symbol,omitempty"`
	TotalSupply  *float64 `json:"total_supply,omitempty"`
	ExternalURLs []string `json:"external_url"`
}

// AddressInfo is the composed, per-request view of one address. Sub-fields
// are absent when no corresponding label exists; that is a valid outcome,
// not an error.
type AddressInfo struct {
	Address       string           `json:"address"`
	ENSName       string           `json:"ens_name,omitempty"`
	Token         *TokenDetails    `json:"token,omitempty"`
	SmartContract *ContractDetails `json:"smart_contract,omitempty"`
	NFT           *NFTDetails      `json:"nft,omitempty"`
}

// Service is the address enrichment orchestrator. It owns no state beyond
// shared, concurrency-safe handles; every Enrich call composes a fresh
// result.
type Service struct {
	logger   *zap.Logger
	labels   db.LabelStore
	names    NameResolver
	reporter ErrorReporter
	pool     pond.Pool
}

func NewService(logger *zap.Logger, labelStore db.LabelStore, names NameResolver, rep ErrorReporter) *Service {
	return &Service{
		logger:   logger,
		labels:   labelStore,
		names:    names,
		reporter: rep,
		pool:     pond.NewPool(16),
	}
}

// Enrich builds the composed view for one address. The name lookup and the
// three label queries are independent reads dispatched concurrently; the name
// service is the single best-effort point (a downed node never blocks
// enrichment), while label-store faults propagate because label absence is
// load-bearing information.
func (s *Service) Enrich(ctx context.Context, address string) (*AddressInfo, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %s", nameservice.ErrInvalidAddress, address)
	}

	kinds := []labels.Kind{labels.KindTokenRegistry, labels.KindVerifiedContract, labels.KindNFTCollection}
	found := make([]*labels.Label, len(kinds))
	queryErrs := make([]error, len(kinds))
	var ensName string

	group := s.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	group.Submit(func() {
		if groupCtx.Err() != nil {
			return
		}
		callCtx, cancel := context.WithTimeout(groupCtx, lookupTimeout)
		defer cancel()

		name, err := s.names.ResolveName(callCtx, address)
		if err != nil {
			s.logger.Warn("Name resolution failed, continuing without ens name",
				zap.String("address", address), zap.Error(err))
			s.reporter.ErrorReport(groupCtx, err, "source:ens")
			return
		}
		ensName = name
	})

	for i, kind := range kinds {
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				queryErrs[i] = err
				return
			}
			callCtx, cancel := context.WithTimeout(groupCtx, lookupTimeout)
			defer cancel()

			found[i], queryErrs[i] = s.labels.MostRecent(callCtx, address, kind)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		s.logger.Warn("enrichment fan-out encountered error",
			zap.String("address", address), zap.Error(err))
	}

	for i, kind := range kinds {
		if queryErrs[i] != nil {
			return nil, fmt.Errorf("query %s label for %s: %w", kind, address, queryErrs[i])
		}
	}

	info := &AddressInfo{Address: address, ENSName: ensName}
	for i, kind := range kinds {
		label := found[i]
		if label == nil {
			continue
		}
		switch kind {
		case labels.KindTokenRegistry:
			info.Token = tokenDetails(address, label)
		case labels.KindVerifiedContract:
			info.SmartContract = contractDetails(address, label)
		case labels.KindNFTCollection:
			info.NFT = nftDetails(address, label)
		}
	}
	return info, nil
}

// Payload fields are crawler-populated and untrusted: missing or mistyped
// keys degrade to zero values, never failures.

func tokenDetails(address string, label *labels.Label) *TokenDetails {
	name, _ := labels.StringField(label.Data, "name")
	symbol, _ := labels.StringField(label.Data, "symbol")
	return &TokenDetails{Name: name, Symbol: symbol, ExternalURLs: TokenLinks(address)}
}

func contractDetails(address string, label *labels.Label) *ContractDetails {
	name, _ := labels.StringField(label.Data, "name")
	return &ContractDetails{Name: name, ExternalURLs: AddressLinks(address)}
}

func nftDetails(address string, label *labels.Label) *NFTDetails {
	details := &NFTDetails{ExternalURLs: TokenLinks(address)}
	if name, ok := labels.StringField(label.Data, "name"); ok {
		details.Name = &name
	}
	if symbol, ok := labels.StringField(label.Data, "symbol"); ok {
		details.Symbol = &symbol
	}
	if supply, ok := labels.NumberField(label.Data, "totalSupply"); ok {
		details.TotalSupply = &supply
	}
	return details
}
