package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chainlens/chainlens/pkg/utils"
)

// DefaultCrawlWorkers is used when CHAINLENS_CRAWL_WORKERS is unset.
const DefaultCrawlWorkers = 4

// Config holds process configuration read from the environment.
// Required values are validated once at startup; a missing value aborts the
// process rather than surfacing later as a half-configured request.
type Config struct {
	// Origins is the allowed CORS origin list for the HTTP API.
	Origins []string
	// AdminAccessToken authenticates journal searches and status checks.
	AdminAccessToken string
	// DataJournalID is the journal holding crawl events and error reports.
	DataJournalID string
	// ABIBucket and ABIPrefix locate uploaded contract ABI artifacts.
	ABIBucket string
	ABIPrefix string
	// NFTPublishToken authenticates NFT crawl summary publishing.
	NFTPublishToken string
	// CrawlWorkers sizes the crawl worker pool.
	CrawlWorkers int
	// NodeURL is the chain node RPC endpoint.
	NodeURL string
	// JournalURL is the journal API base URL.
	JournalURL string
}

// New reads and validates configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{
		NodeURL:    utils.Env("CHAINLENS_NODE_URL", "http://127.0.0.1:8545"),
		JournalURL: utils.Env("CHAINLENS_JOURNAL_URL", "https://journal.chainlens.dev"),
	}

	rawOrigins, err := requireEnv("CHAINLENS_CORS_ALLOWED_ORIGINS")
	if err != nil {
		return nil, err
	}
	for _, origin := range strings.Split(rawOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.Origins = append(cfg.Origins, origin)
		}
	}
	if len(cfg.Origins) == 0 {
		return nil, fmt.Errorf("CHAINLENS_CORS_ALLOWED_ORIGINS must contain at least one origin")
	}

	if cfg.AdminAccessToken, err = requireEnv("CHAINLENS_ADMIN_ACCESS_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.DataJournalID, err = requireEnv("CHAINLENS_DATA_JOURNAL_ID"); err != nil {
		return nil, err
	}
	if cfg.ABIBucket, err = requireEnv("CHAINLENS_S3_SMARTCONTRACTS_ABI_BUCKET"); err != nil {
		return nil, err
	}
	if cfg.ABIPrefix, err = requireEnv("CHAINLENS_S3_SMARTCONTRACTS_ABI_PREFIX"); err != nil {
		return nil, err
	}
	if cfg.NFTPublishToken, err = requireEnv("CHAINLENS_NFT_PUBLISH_TOKEN"); err != nil {
		return nil, err
	}

	cfg.CrawlWorkers = DefaultCrawlWorkers
	if raw := os.Getenv("CHAINLENS_CRAWL_WORKERS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("could not parse CHAINLENS_CRAWL_WORKERS as a positive int: %q", raw)
		}
		cfg.CrawlWorkers = n
	}

	return cfg, nil
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s environment variable must be set", key)
	}
	return v, nil
}
