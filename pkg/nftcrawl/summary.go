// Package nftcrawl summarizes ERC-721 transfer activity over a block range.
package nftcrawl

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// LogFilterer is the slice of the node API the crawl needs.
type LogFilterer interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// transferTopic is the ERC-721 (and ERC-20) Transfer event signature. ERC-721
// emits it with three indexed arguments, so its logs carry four topics; that
// topic count is what separates NFT transfers from fungible ones.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// zeroTopic marks mints (from) and burns (to).
var zeroTopic = common.Hash{}

// chunkBlocks bounds the block span of a single eth_getLogs call. Public
// nodes reject or truncate overly wide filters.
const chunkBlocks = 500

// filterTimeout bounds each eth_getLogs call so one hung chunk cannot stall
// the whole crawl.
const filterTimeout = 30 * time.Second

// Summary is the aggregated result of one crawl.
type Summary struct {
	CrawlType   string    `json:"crawl_type"`
	StartBlock  uint64    `json:"start_block"`
	EndBlock    uint64    `json:"end_block"`
	Address     string    `json:"address,omitempty"`
	Transfers   uint64    `json:"transfers"`
	Mints       uint64    `json:"mints"`
	Burns       uint64    `json:"burns"`
	Collections int       `json:"collections"`
	GeneratedAt time.Time `json:"generated_at"`
}

type blockRange struct {
	from, to uint64
}

type chunkStats struct {
	transfers, mints, burns uint64
	collections             map[common.Address]struct{}
}

// Summarize crawls [start, end] (inclusive) and aggregates ERC-721 Transfer
// events, optionally restricted to one contract address. Chunks are fetched
// concurrently on a pool of the given width; any chunk failure fails the
// whole crawl, since a partial summary would silently undercount.
func Summarize(ctx context.Context, logger *zap.Logger, client LogFilterer, start, end uint64, address string, workers int) (*Summary, error) {
	if end < start {
		return nil, fmt.Errorf("invalid block range %d-%d", start, end)
	}
	if address != "" && !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	if workers < 1 {
		workers = 1
	}

	var addresses []common.Address
	if address != "" {
		addresses = []common.Address{common.HexToAddress(address)}
	}

	ranges := splitRange(start, end)
	results := make([]*chunkStats, len(ranges))
	chunkErrs := make([]error, len(ranges))

	pool := pond.NewPool(workers)
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for i, r := range ranges {
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				chunkErrs[i] = err
				return
			}
			results[i], chunkErrs[i] = crawlChunk(groupCtx, client, r, addresses)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		logger.Warn("nft crawl group reported error", zap.Error(err))
	}
	pool.StopAndWait()

	summary := &Summary{
		CrawlType:   "ethereum_nft",
		StartBlock:  start,
		EndBlock:    end,
		Address:     address,
		GeneratedAt: time.Now().UTC(),
	}
	collections := make(map[common.Address]struct{})
	for i, r := range ranges {
		if chunkErrs[i] != nil {
			return nil, fmt.Errorf("crawl blocks %d-%d: %w", r.from, r.to, chunkErrs[i])
		}
		summary.Transfers += results[i].transfers
		summary.Mints += results[i].mints
		summary.Burns += results[i].burns
		for addr := range results[i].collections {
			collections[addr] = struct{}{}
		}
	}
	summary.Collections = len(collections)

	logger.Info("Crawl complete",
		zap.Uint64("start_block", start),
		zap.Uint64("end_block", end),
		zap.Uint64("transfers", summary.Transfers),
		zap.Int("collections", summary.Collections))
	return summary, nil
}

// splitRange cuts [start, end] into chunkBlocks-sized pieces. Bounds are
// checked by subtraction so ranges ending near the top of the uint64 space
// never overflow.
func splitRange(start, end uint64) []blockRange {
	var ranges []blockRange
	from := start
	for {
		to := end
		if end-from >= chunkBlocks {
			to = from + chunkBlocks - 1
		}
		ranges = append(ranges, blockRange{from: from, to: to})
		if to == end {
			return ranges
		}
		from = to + 1
	}
}

func crawlChunk(ctx context.Context, client LogFilterer, r blockRange, addresses []common.Address) (*chunkStats, error) {
	callCtx, cancel := context.WithTimeout(ctx, filterTimeout)
	defer cancel()

	logs, err := client.FilterLogs(callCtx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(r.from),
		ToBlock:   new(big.Int).SetUint64(r.to),
		Addresses: addresses,
		Topics:    [][]common.Hash{{transferTopic}},
	})
	if err != nil {
		return nil, err
	}

	stats := &chunkStats{collections: make(map[common.Address]struct{})}
	for _, entry := range logs {
		if len(entry.Topics) != 4 {
			continue
		}
		stats.transfers++
		if entry.Topics[1] == zeroTopic {
			stats.mints++
		}
		if entry.Topics[2] == zeroTopic {
			stats.burns++
		}
		stats.collections[entry.Address] = struct{}{}
	}
	return stats, nil
}
