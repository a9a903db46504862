// Package nameservice wraps forward and reverse ENS lookups against a chain
// node. Inputs are validated syntactically before any network call, and
// "nothing registered" is reported as absence rather than an error so callers
// can tell a missing record from a misbehaving node.
package nameservice

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	ens "github.com/wealdtech/go-ens/v3"
	"go.uber.org/zap"
)

// lookupTimeout bounds each resolution against the node. Callers frequently
// arrive with deadline-free request contexts, and a hung node must surface as
// a failure rather than a stalled lookup.
const lookupTimeout = 10 * time.Second

var (
	// ErrInvalidAddress marks a syntactically invalid chain address.
	ErrInvalidAddress = errors.New("invalid chain address")
	// ErrInvalidName marks a name that does not satisfy the naming grammar.
	ErrInvalidName = errors.New("invalid name-service name")
	// ErrNodeUnavailable marks an unreachable or failing chain node.
	ErrNodeUnavailable = errors.New("chain node unavailable")
)

// Resolver resolves ENS names through a shared ethclient handle. It is
// stateless and safe for concurrent use.
type Resolver struct {
	logger *zap.Logger
	client *ethclient.Client
}

func NewResolver(logger *zap.Logger, client *ethclient.Client) *Resolver {
	return &Resolver{logger: logger, client: client}
}

// ResolveName returns the primary ENS name for an address, or "" when no
// reverse record exists. Lookups are idempotent and safe to retry.
func (r *Resolver) ResolveName(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	name, err := ens.ReverseResolve(r.backend(ctx), common.HexToAddress(address))
	if err != nil {
		if isUnresolved(err) {
			return "", nil
		}
		r.logger.Error("Cannot reverse-resolve address, node may be down",
			zap.String("address", address), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrNodeUnavailable, err)
	}
	return name, nil
}

// ResolveAddress returns the address registered for a name in lower-case
// canonical form, or "" when the name does not resolve.
func (r *Resolver) ResolveAddress(ctx context.Context, name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	addr, err := ens.Resolve(r.backend(ctx), name)
	if err != nil {
		if isUnresolved(err) {
			return "", nil
		}
		r.logger.Error("Cannot resolve name, node may be down",
			zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrNodeUnavailable, err)
	}
	return strings.ToLower(addr.Hex()), nil
}

// ValidName reports whether name satisfies the naming grammar: dot-separated
// non-empty labels, at least two of them, no whitespace.
func ValidName(name string) bool {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return false
	}
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// isUnresolved classifies the resolver library's known not-found conditions;
// anything else is treated as a node failure.
func isUnresolved(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"unregistered name",
		"no resolution",
		"no resolver",
		"not a resolver",
		"no address",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// backend threads the caller's context into resolver library calls, which
// otherwise issue contract reads without one. Cancelling the request aborts
// the in-flight node call.
func (r *Resolver) backend(ctx context.Context) *ctxBackend {
	return &ctxBackend{Client: r.client, ctx: ctx}
}

type ctxBackend struct {
	*ethclient.Client
	ctx context.Context
}

func (b *ctxBackend) CodeAt(_ context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return b.Client.CodeAt(b.ctx, contract, blockNumber)
}

func (b *ctxBackend) CallContract(_ context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return b.Client.CallContract(b.ctx, msg, blockNumber)
}
