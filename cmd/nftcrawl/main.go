package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chainlens/chainlens/pkg/config"
	"github.com/chainlens/chainlens/pkg/journal"
	"github.com/chainlens/chainlens/pkg/logging"
	"github.com/chainlens/chainlens/pkg/nftcrawl"
	"github.com/chainlens/chainlens/pkg/utils"
)

func main() {
	var (
		startBlock   uint64
		endBlock     uint64
		address      string
		web3URL      string
		publishToken string
		outfile      string
	)

	rootCmd := &cobra.Command{
		Use:          "nftcrawl",
		Short:        "NFT activity crawler",
		SilenceUsage: true,
	}

	ethereumCmd := &cobra.Command{
		Use:   "ethereum",
		Short: "Summarize ERC-721 transfer activity over a block range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Flags override the environment so one-off crawls can target
			// another node without reconfiguring the process.
			if web3URL == "" {
				web3URL = utils.Env("CHAINLENS_NODE_URL", "http://127.0.0.1:8545")
			}
			if publishToken == "" {
				publishToken = os.Getenv("CHAINLENS_NFT_PUBLISH_TOKEN")
			}
			workers := utils.EnvInt("CHAINLENS_CRAWL_WORKERS", config.DefaultCrawlWorkers)

			node, err := ethclient.DialContext(ctx, web3URL)
			if err != nil {
				return fmt.Errorf("connect to node %s: %w", web3URL, err)
			}
			defer node.Close()

			summary, err := nftcrawl.Summarize(ctx, logger, node, startBlock, endBlock, address, workers)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outfile != "" {
				f, err := os.Create(outfile)
				if err != nil {
					return fmt.Errorf("open outfile: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(summary); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}

			if publishToken != "" {
				journalID := os.Getenv("CHAINLENS_DATA_JOURNAL_ID")
				if journalID == "" {
					return fmt.Errorf("CHAINLENS_DATA_JOURNAL_ID must be set to publish the summary")
				}
				journalURL := utils.Env("CHAINLENS_JOURNAL_URL", "https://journal.chainlens.dev")

				client := journal.NewHTTPClient(logger, journalURL, publishToken)
				if err := nftcrawl.Publish(ctx, client, journalID, summary); err != nil {
					return err
				}
				logger.Info("Published crawl summary", zap.String("journal_id", journalID))
			}

			return nil
		},
	}

	ethereumCmd.Flags().Uint64VarP(&startBlock, "start", "s", 0, "first block of the crawl range")
	ethereumCmd.Flags().Uint64VarP(&endBlock, "end", "e", 0, "last block of the crawl range")
	ethereumCmd.Flags().StringVarP(&address, "address", "a", "", "restrict the crawl to one contract address")
	ethereumCmd.Flags().StringVar(&web3URL, "web3", "", "node RPC endpoint (overrides CHAINLENS_NODE_URL)")
	ethereumCmd.Flags().StringVar(&publishToken, "publish-token", "", "journal token for publishing the summary (overrides CHAINLENS_NFT_PUBLISH_TOKEN)")
	ethereumCmd.Flags().StringVarP(&outfile, "outfile", "o", "", "summary destination (default stdout)")
	_ = ethereumCmd.MarkFlagRequired("start")
	_ = ethereumCmd.MarkFlagRequired("end")

	rootCmd.AddCommand(ethereumCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
