package nftcrawl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chainlens/chainlens/pkg/journal"
)

// Publish writes a crawl summary into the reporting journal so downstream
// status checks and dashboards can pick it up.
func Publish(ctx context.Context, client journal.Client, journalID string, summary *Summary) error {
	content, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	title := fmt.Sprintf("NFT crawl summary: blocks %d-%d", summary.StartBlock, summary.EndBlock)
	tags := []string{
		"crawl_type:" + summary.CrawlType,
		fmt.Sprintf("start_block:%d", summary.StartBlock),
		fmt.Sprintf("end_block:%d", summary.EndBlock),
	}
	if summary.Address != "" {
		tags = append(tags, "address:"+summary.Address)
	}

	if err := client.CreateEntry(ctx, journalID, journal.Entry{Title: title, Content: string(content), Tags: tags}); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	return nil
}
