package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalABI = `[
	{
		"type": "function",
		"name": "balanceOf",
		"stateMutability": "view",
		"inputs": [{"name": "owner", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

func TestValidateABIMinimalFunction(t *testing.T) {
	require.NoError(t, ValidateABI(minimalABI))
}

func TestValidateABIFullDocument(t *testing.T) {
	doc := `[
		{"type": "constructor", "inputs": [{"name": "supply", "type": "uint256"}]},
		{"type": "function", "name": "transfer", "inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		], "outputs": [{"name": "", "type": "bool"}]},
		{"type": "event", "name": "Transfer", "inputs": [
			{"name": "from", "type": "address", "indexed": true},
			{"name": "to", "type": "address", "indexed": true},
			{"name": "value", "type": "uint256"}
		]},
		{"type": "fallback", "stateMutability": "payable"}
	]`
	require.NoError(t, ValidateABI(doc))
}

func TestValidateABINotJSON(t *testing.T) {
	err := ValidateABI("this is not json {")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestValidateABISchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"top-level object", `{"type": "function", "name": "f"}`},
		{"non-object entry", `["function"]`},
		{"missing type", `[{"name": "f", "inputs": []}]`},
		{"unknown type", `[{"type": "modifier", "name": "f"}]`},
		{"unnamed function", `[{"type": "function", "inputs": []}]`},
		{"bad parameter type", `[{"type": "function", "name": "f", "inputs": [{"name": "x", "type": "uint257"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateABI(tt.doc)
			require.Error(t, err)

			var schemaErr *SchemaError
			assert.ErrorAs(t, err, &schemaErr)
			assert.NotErrorIs(t, err, ErrMalformed)
		})
	}
}
