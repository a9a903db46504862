package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// Tracked crawl types. Health is reported per type from its most recent
// journal event.
const (
	CrawlTypeTxpool   = "ethereum_txpool"
	CrawlTypeTrending = "ethereum_trending"
)

// CrawlTypes returns the fixed set of tracked crawl-type identifiers.
func CrawlTypes() []string {
	return []string{CrawlTypeTxpool, CrawlTypeTrending}
}

// StatusError marks a failed journal query for one crawl type. Status
// reporting is all-or-nothing: a degraded journal is reported, never papered
// over with a partial health picture.
type StatusError struct {
	CrawlType string
	Err       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unable to get status for crawler with type %s: %v", e.CrawlType, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusAggregator reports the most recent successful run per crawl type.
type StatusAggregator struct {
	logger    *zap.Logger
	client    Client
	journalID string
	pool      pond.Pool
}

func NewStatusAggregator(logger *zap.Logger, client Client, journalID string) *StatusAggregator {
	return &StatusAggregator{
		logger:    logger,
		client:    client,
		journalID: journalID,
		pool:      pond.NewPool(len(CrawlTypes())),
	}
}

// Status returns the last-observed event timestamp per crawl type, nil for
// types with no events yet. Queries for the tracked types run concurrently;
// any query failure fails the whole call with the crawl type attached.
func (s *StatusAggregator) Status(ctx context.Context) (map[string]*time.Time, error) {
	crawlTypes := CrawlTypes()

	observed := xsync.NewMap[string, *time.Time]()
	queryErrs := make([]error, len(crawlTypes))

	group := s.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for i, crawlType := range crawlTypes {
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				queryErrs[i] = err
				return
			}

			resp, err := s.client.SearchMostRecent(groupCtx, s.journalID, "tag:crawl_type:"+crawlType)
			if err != nil {
				queryErrs[i] = err
				return
			}

			if len(resp.Results) >= 1 {
				ts := resp.Results[0].CreatedAt
				observed.Store(crawlType, &ts)
			}
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		s.logger.Warn("crawl status fan-out encountered error", zap.Error(err))
	}

	for i, crawlType := range crawlTypes {
		if queryErrs[i] != nil {
			return nil, &StatusError{CrawlType: crawlType, Err: queryErrs[i]}
		}
	}

	status := make(map[string]*time.Time, len(crawlTypes))
	for _, crawlType := range crawlTypes {
		ts, _ := observed.Load(crawlType)
		status[crawlType] = ts
	}
	return status, nil
}
