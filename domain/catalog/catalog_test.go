package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "pagecraft-backend/pkg/errors"
)

func TestLookup(t *testing.T) {
	entry, err := Lookup("button")
	require.NoError(t, err)
	assert.Equal(t, "button", entry.Kind)
	assert.Equal(t, "Click me", entry.DefaultAttributes.Text())

	_, err = Lookup("hologram")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestHas(t *testing.T) {
	assert.True(t, Has("form"))
	assert.False(t, Has("hologram"))
}

func TestEntries_EveryEntryIsAddressable(t *testing.T) {
	entries := Entries()
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		assert.True(t, Has(entry.Kind), "kind: %s", entry.Kind)
		found, err := Lookup(entry.Kind)
		require.NoError(t, err, "kind: %s", entry.Kind)
		assert.Equal(t, entry.Kind, found.Kind)
	}
}
