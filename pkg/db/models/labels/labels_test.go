package labels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestEmpty(t *testing.T) {
	assert.Nil(t, Latest(nil))
	assert.Nil(t, Latest([]Label{}))
}

func TestLatestPicksGreatestCreatedAt(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ls := []Label{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
	}

	latest := Latest(ls)
	require.NotNil(t, latest)
	assert.Equal(t, "b", latest.ID)
}

func TestLatestTieBreaksOnGreatestID(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ls := []Label{
		{ID: "2f9d", CreatedAt: ts},
		{ID: "c81a", CreatedAt: ts},
		{ID: "77b0", CreatedAt: ts},
	}

	latest := Latest(ls)
	require.NotNil(t, latest)
	assert.Equal(t, "c81a", latest.ID)
}

func TestDecodeData(t *testing.T) {
	data := DecodeData(`{"name":"Wrapped Ether","symbol":"WETH"}`)
	assert.Equal(t, "Wrapped Ether", data["name"])

	// Malformed payloads degrade to empty, never nil
	assert.NotNil(t, DecodeData("{not json"))
	assert.Empty(t, DecodeData("{not json"))
	assert.Empty(t, DecodeData(""))
	assert.Empty(t, DecodeData("null"))
}

func TestStringField(t *testing.T) {
	data := map[string]any{"name": "CryptoKitties", "totalSupply": float64(2_000_000)}

	name, ok := StringField(data, "name")
	assert.True(t, ok)
	assert.Equal(t, "CryptoKitties", name)

	_, ok = StringField(data, "symbol")
	assert.False(t, ok)

	// Wrong type reports absence, not a crash
	_, ok = StringField(data, "totalSupply")
	assert.False(t, ok)

	supply, ok := NumberField(data, "totalSupply")
	assert.True(t, ok)
	assert.Equal(t, float64(2_000_000), supply)
}
