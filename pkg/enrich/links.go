package enrich

import "fmt"

// Explorer link templates. Links are derived from the address and label kind,
// never read from crawler payloads.
const (
	explorerAddressURL   = "https://etherscan.io/address/%s"
	explorerTokenURL     = "https://etherscan.io/token/%s"
	blockchainAddressURL = "https://www.blockchain.com/eth/address/%s"
)

// AddressLinks returns the canonical explorer links for a plain address or
// contract.
func AddressLinks(address string) []string {
	return []string{
		fmt.Sprintf(explorerAddressURL, address),
		fmt.Sprintf(blockchainAddressURL, address),
	}
}

// TokenLinks returns the canonical explorer links for a token or NFT
// contract.
func TokenLinks(address string) []string {
	return []string{
		fmt.Sprintf(explorerTokenURL, address),
		fmt.Sprintf(blockchainAddressURL, address),
	}
}
