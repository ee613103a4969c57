package commands

import (
	"os"
	"path/filepath"
	"testing"

	"investor-parser/lib/scrapers/signal"

	"github.com/stretchr/testify/require"
)

func TestReadUrlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "investor_urls.txt")
	err := os.WriteFile(path, []byte(`
# seed list
https://signal.nfx.com/investors/jane-doe
Alice Chen, https://signal.nfx.com/investors/alice-chen

`), 0644)
	require.NoError(t, err)

	entries, err := readUrlFile(path)
	require.NoError(t, err)
	require.Equal(t, []urlEntry{
		{Url: "https://signal.nfx.com/investors/jane-doe"},
		{Name: "Alice Chen", Url: "https://signal.nfx.com/investors/alice-chen"},
	}, entries)
}

func TestLookupRecord(t *testing.T) {
	records := []signal.InvestorRecord{
		{Name: "Jane Doe"},
		{Name: "Alice Chen"},
	}

	record, ok := lookupRecord(records, "jane doe")
	require.True(t, ok)
	require.Equal(t, "Jane Doe", record.Name)

	// close enough for a typo
	record, ok = lookupRecord(records, "Alice Chan")
	require.True(t, ok)
	require.Equal(t, "Alice Chen", record.Name)

	_, ok = lookupRecord(records, "Zebulon Pike")
	require.False(t, ok)
}
