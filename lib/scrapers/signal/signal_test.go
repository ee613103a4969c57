package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPrefersState(t *testing.T) {
	content := readFixture(t, "apollo_profile.html")

	record, err := Extract(content, PageHint{SourceFile: "apollo_profile.html"})
	require.NoError(t, err)
	// the state blob names her "Jane Doe", the markup "Jane A. Doe"
	require.Equal(t, "Jane Doe", record.Name)
	require.Equal(t, MethodApolloState, record.ExtractionMethod)
}

func TestExtractFallsBackToMarkup(t *testing.T) {
	content := readFixture(t, "markup_profile.html")

	record, err := Extract(content, PageHint{SourceFile: "markup_profile.html"})
	require.NoError(t, err)
	require.Equal(t, "John Smith", record.Name)
	require.Equal(t, MethodHTML, record.ExtractionMethod)
}

func TestExtractFallsBackWhenStateUnnamed(t *testing.T) {
	content := `<html><head><script>
window.__APOLLO_STATE__ = {"Person:1":{"position":"Partner"}};
</script></head><body><h1>Markup Name</h1></body></html>`

	record, err := Extract(content, PageHint{SourceFile: "page.html"})
	require.NoError(t, err)
	require.Equal(t, "Markup Name", record.Name)
	require.Equal(t, MethodHTML, record.ExtractionMethod)
}

func TestExtractFailure(t *testing.T) {
	record, err := Extract("<html><body><p>nothing here</p></body></html>", PageHint{SourceFile: "page.html"})
	require.Error(t, err)
	require.Empty(t, record.Name)

	var failure *ExtractionFailure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, ReasonNoNameResolved, failure.Reason)
	require.Equal(t, "page.html", failure.Source)
}

func TestExtractNeverPanics(t *testing.T) {
	pages := []string{
		"",
		"<",
		"not html at all",
		"<html><script>window.__APOLLO_STATE__ = garbage;</script></html>",
		"<html><script>window.__APOLLO_STATE__ = {\"Person:1\": 12};</script></html>",
		"<table><tr><td></td></tr></table>",
		string([]byte{0x00, 0xff, 0xfe}),
	}
	for _, page := range pages {
		record, err := Extract(page, PageHint{SourceFile: "garbage.html"})
		if err == nil {
			require.NotEmpty(t, record.Name)
		}
	}
}

// extraction is pure: the same content yields byte-identical output
func TestExtractIdempotent(t *testing.T) {
	for _, fixture := range []string{"apollo_profile.html", "markup_profile.html"} {
		content := readFixture(t, fixture)
		hint := PageHint{SourceFile: fixture}

		first, err := Extract(content, hint)
		require.NoError(t, err)
		second, err := Extract(content, hint)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		require.True(t, bytes.Equal(a, b), "fixture %s", fixture)
	}
}

func TestRecordJSONShape(t *testing.T) {
	record, err := Extract(readFixture(t, "apollo_profile.html"), PageHint{SourceFile: "apollo_profile.html"})
	require.NoError(t, err)

	encoded, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	for _, key := range []string{
		"name", "position", "firm", "location", "investment_range",
		"areas_of_interest", "not_interested_in", "investments",
		"investment_count", "current_fund_size", "roles", "co_investors",
		"scouts_angels", "links", "extraction_method", "source_file",
	} {
		require.Contains(t, decoded, key)
	}
	// absent optionals are explicit nulls
	require.Nil(t, decoded["current_fund_size"])
	require.Equal(t, "apollo_state", decoded["extraction_method"])
}

func TestNullStringJSON(t *testing.T) {
	encoded, err := json.Marshal(struct {
		Empty NullString `json:"empty"`
		Full  NullString `json:"full"`
	}{Full: "value"})
	require.NoError(t, err)
	require.JSONEq(t, `{"empty": null, "full": "value"}`, string(encoded))

	var decoded struct {
		Empty NullString `json:"empty"`
		Full  NullString `json:"full"`
	}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Equal(t, NullString(""), decoded.Empty)
	require.Equal(t, NullString("value"), decoded.Full)
}

func TestSlug(t *testing.T) {
	require.Equal(t, "jane-doe", Slug("https://signal.nfx.com/investors/jane-doe"))
	require.Equal(t, "jane-doe", Slug("/investors/jane-doe?tab=investments"))
	require.Equal(t, "", Slug("https://signal.nfx.com/firms/acme"))
}

func TestPageFileName(t *testing.T) {
	require.Equal(t, "investors-jane-doe.html", PageFileName("jane-doe"))
}

func TestNeedsInteractiveFetch(t *testing.T) {
	require.True(t, NeedsInteractiveFetch(`<a class="btn">See all investments</a>`))
	require.False(t, NeedsInteractiveFetch(`<table class="past-investments-table"></table>`))
}

func FuzzExtract(f *testing.F) {
	f.Add("<html><body><h1>Name</h1></body></html>")
	f.Add(`<html><script>window.__APOLLO_STATE__ = {"Person:1":{"name":"A"}};</script></html>`)
	f.Add("")
	f.Fuzz(func(t *testing.T, content string) {
		record, err := Extract(content, PageHint{SourceFile: "fuzz.html"})
		if err == nil && record.Name == "" {
			t.Fatal("nil error with empty name")
		}
	})
}
