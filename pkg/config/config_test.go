package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("CHAINLENS_CORS_ALLOWED_ORIGINS", "https://app.chainlens.dev,http://localhost:3000")
	t.Setenv("CHAINLENS_ADMIN_ACCESS_TOKEN", "admin-token")
	t.Setenv("CHAINLENS_DATA_JOURNAL_ID", "journal-1")
	t.Setenv("CHAINLENS_S3_SMARTCONTRACTS_ABI_BUCKET", "abi-bucket")
	t.Setenv("CHAINLENS_S3_SMARTCONTRACTS_ABI_PREFIX", "v1/abis")
	t.Setenv("CHAINLENS_NFT_PUBLISH_TOKEN", "nft-token")
}

func TestNewReadsEnvironment(t *testing.T) {
	setRequired(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.chainlens.dev", "http://localhost:3000"}, cfg.Origins)
	assert.Equal(t, "admin-token", cfg.AdminAccessToken)
	assert.Equal(t, "journal-1", cfg.DataJournalID)
	assert.Equal(t, "abi-bucket", cfg.ABIBucket)
	assert.Equal(t, "v1/abis", cfg.ABIPrefix)
	assert.Equal(t, "nft-token", cfg.NFTPublishToken)
	assert.Equal(t, DefaultCrawlWorkers, cfg.CrawlWorkers)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.NodeURL)
}

func TestNewMissingRequiredVariable(t *testing.T) {
	setRequired(t)
	t.Setenv("CHAINLENS_ADMIN_ACCESS_TOKEN", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHAINLENS_ADMIN_ACCESS_TOKEN")
}

func TestNewCrawlWorkersOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("CHAINLENS_CRAWL_WORKERS", "12")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.CrawlWorkers)
}

func TestNewCrawlWorkersUnparseable(t *testing.T) {
	setRequired(t)
	t.Setenv("CHAINLENS_CRAWL_WORKERS", "a-few")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHAINLENS_CRAWL_WORKERS")
}

func TestNewEmptyOriginList(t *testing.T) {
	setRequired(t)
	t.Setenv("CHAINLENS_CORS_ALLOWED_ORIGINS", " , ,")

	_, err := New()
	require.Error(t, err)
}
