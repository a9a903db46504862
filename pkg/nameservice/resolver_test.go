package nameservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// The registry contract lives at one well-known address on every chain, so a
// node stub can tell registry reads from resolver reads by the call target.
const registryAddr = "0x00000000000c2e074ec69a0dfb2997ba6c7d2e1e"

// newScriptedNode returns a resolver wired to a node stub that answers each
// eth_call through the supplied function, keyed by the lower-cased call
// target.
func newScriptedNode(t *testing.T, calls func(to string) string) *Resolver {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result := "0x"
		switch req.Method {
		case "eth_call":
			var msg struct {
				To string `json:"to"`
			}
			require.NoError(t, json.Unmarshal(req.Params[0], &msg))
			result = calls(strings.ToLower(msg.To))
		case "eth_getCode":
			result = "0x06"
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%q}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)

	client, err := ethclient.Dial(srv.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return NewResolver(zaptest.NewLogger(t), client)
}

// addressResult ABI-encodes a single address return value.
func addressResult(addr common.Address) string {
	return "0x" + common.Bytes2Hex(common.LeftPadBytes(addr.Bytes(), 32))
}

// stringResult ABI-encodes a single string return value.
func stringResult(s string) string {
	buf := common.LeftPadBytes(big.NewInt(32).Bytes(), 32)
	buf = append(buf, common.LeftPadBytes(big.NewInt(int64(len(s))).Bytes(), 32)...)
	padded := make([]byte, (len(s)+31)/32*32)
	copy(padded, s)
	return "0x" + common.Bytes2Hex(append(buf, padded...))
}

// newCountingNode returns a resolver wired to a node stub that records how
// many RPC requests it served.
func newCountingNode(t *testing.T, handler http.HandlerFunc) (*Resolver, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := ethclient.Dial(srv.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return NewResolver(zaptest.NewLogger(t), client), &hits
}

func TestResolveNameInvalidAddressBeforeNetwork(t *testing.T) {
	resolver, hits := newCountingNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := resolver.ResolveName(context.Background(), "0xnot-an-address")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Equal(t, int64(0), hits.Load(), "no RPC call should be issued for invalid input")
}

func TestResolveAddressInvalidNameBeforeNetwork(t *testing.T) {
	resolver, hits := newCountingNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, name := range []string{"", "noperiod", ".eth", "trailing.", "has space.eth"} {
		_, err := resolver.ResolveAddress(context.Background(), name)
		require.Error(t, err, "name %q", name)
		assert.ErrorIs(t, err, ErrInvalidName)
	}
	assert.Equal(t, int64(0), hits.Load())
}

func TestResolveNameNodeFailure(t *testing.T) {
	resolver, hits := newCountingNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := resolver.ResolveName(context.Background(), "0x06012c8cf97BEaD5deAe237070F9587f8E7A266d")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeUnavailable)
	assert.Positive(t, hits.Load())
}

func TestResolveAddressNormalizesToLowerCase(t *testing.T) {
	resolverContract := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	target := common.HexToAddress("0xDAC17F958D2ee523a2206206994597C13D831ec7")

	resolver := newScriptedNode(t, func(to string) string {
		if to == registryAddr {
			return addressResult(resolverContract)
		}
		return addressResult(target)
	})

	addr, err := resolver.ResolveAddress(context.Background(), "tether.eth")
	require.NoError(t, err)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", addr,
		"resolved addresses must come back lower-cased, not EIP-55 mixed case")
}

func TestResolveNameSuccess(t *testing.T) {
	resolverContract := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")

	resolver := newScriptedNode(t, func(to string) string {
		if to == registryAddr {
			return addressResult(resolverContract)
		}
		return stringResult("tether.eth")
	})

	name, err := resolver.ResolveName(context.Background(), "0xDAC17F958D2ee523a2206206994597C13D831ec7")
	require.NoError(t, err)
	assert.Equal(t, "tether.eth", name)
}

func TestResolveUnregisteredIsAbsence(t *testing.T) {
	// A registry that knows nothing answers every read with zeroes. Both
	// directions must report absence, not an error.
	zeroWord := "0x" + strings.Repeat("00", 32)
	resolver := newScriptedNode(t, func(string) string { return zeroWord })

	name, err := resolver.ResolveName(context.Background(), "0xDAC17F958D2ee523a2206206994597C13D831ec7")
	require.NoError(t, err)
	assert.Empty(t, name)

	addr, err := resolver.ResolveAddress(context.Background(), "nosuchname.eth")
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestIsUnresolved(t *testing.T) {
	unresolved := []string{
		"unregistered name",
		"no resolution",
		"no resolver",
		"not a resolver",
		"no address",
	}
	for _, msg := range unresolved {
		assert.True(t, isUnresolved(errors.New(msg)), msg)
	}

	assert.False(t, isUnresolved(errors.New("dial tcp: connection refused")))
	assert.False(t, isUnresolved(errors.New("context deadline exceeded")))
}

func TestValidName(t *testing.T) {
	valid := []string{"vitalik.eth", "sub.domain.eth", "a.b"}
	for _, name := range valid {
		assert.True(t, ValidName(name), name)
	}

	invalid := []string{"", "eth", ".eth", "abc.", "a..b", "white space.eth"}
	for _, name := range invalid {
		assert.False(t, ValidName(name), name)
	}
}
