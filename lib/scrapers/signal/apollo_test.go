package signal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(content)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestExtractStateFullProfile(t *testing.T) {
	content := readFixture(t, "apollo_profile.html")

	got, found := ExtractState(content, PageHint{SourceFile: "apollo_profile.html"})
	require.True(t, found)

	want := InvestorRecord{
		Name:     "Jane Doe",
		Position: "General Partner",
		Firm:     "Acme Ventures",
		Location: "San Francisco Bay Area",
		InvestmentRange: InvestmentRange{
			Min:    int64Ptr(250_000),
			Max:    int64Ptr(5_000_000),
			Target: int64Ptr(1_000_000),
		},
		AreasOfInterest: []string{"Fintech", "Marketplaces", "SaaS"},
		NotInterestedIn: []string{"Crypto"},
		Investments: []Investment{
			{Company: "Widgets Inc", Round: "Series A", Date: "Jan 2021", Amount: "$5M", IsLead: true},
			{Company: "Gadgetly", Round: "Seed", Date: "Sep 2019", Amount: "$750K", IsLead: false},
		},
		InvestmentCount: 2,
		Roles:           []string{},
		CoInvestors:     []string{},
		ScoutsAngels:    []string{},
		Links: map[string]string{
			"linkedin": "https://www.linkedin.com/in/janedoe",
			"twitter":  "https://twitter.com/janedoe",
			"url":      "https://janedoe.example.com",
		},
		ExtractionMethod: MethodApolloState,
		SourceFile:       "apollo_profile.html",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractStateBarePerson(t *testing.T) {
	content := `<html><head><script>
window.__APOLLO_STATE__ = {"Person:1":{"name":"Jane Doe","firm":{"ref":"Org:2"}},"Org:2":{"name":"Acme Ventures"}};
</script></head><body></body></html>`

	got, found := ExtractState(content, PageHint{SourceFile: "page.html"})
	require.True(t, found)
	require.Equal(t, "Jane Doe", got.Name)
	require.Equal(t, NullString("Acme Ventures"), got.Firm)
	require.Equal(t, NullString(""), got.Position)
	require.Equal(t, NullString(""), got.Location)
	require.Equal(t, MethodApolloState, got.ExtractionMethod)
	require.Empty(t, got.Investments)
}

func TestExtractStateReferenceForms(t *testing.T) {
	content := `<html><script>
window.__APOLLO_STATE__ = {
	"PublicInvestorProfile:1": {
		"person": {"__ref": "Person:2"},
		"firm": {"typename": "Organization", "id": "3"},
		"location": {"__typename": "Location", "id": 4}
	},
	"Person:2": {"name": "Ada Example"},
	"Organization:3": {"name": "Example Fund"},
	"Location:4": {"display_name": "London"}
};
</script></html>`

	got, found := ExtractState(content, PageHint{})
	require.True(t, found)
	require.Equal(t, "Ada Example", got.Name)
	require.Equal(t, NullString("Example Fund"), got.Firm)
	require.Equal(t, NullString("London"), got.Location)
}

func TestExtractStateProfileIDSelection(t *testing.T) {
	content := `<html><script>
window.__APOLLO_STATE__ = {
	"PublicInvestorProfile:1": {"person": {"__ref": "Person:10"}},
	"PublicInvestorProfile:2": {"person": {"__ref": "Person:20"}},
	"Person:10": {"name": "First Person"},
	"Person:20": {"name": "Second Person"}
};
</script></html>`

	got, found := ExtractState(content, PageHint{ProfileID: "2"})
	require.True(t, found)
	require.Equal(t, "Second Person", got.Name)

	// without a discriminator the first entry in blob order wins
	got, found = ExtractState(content, PageHint{})
	require.True(t, found)
	require.Equal(t, "First Person", got.Name)
}

func TestExtractStateInvestmentScan(t *testing.T) {
	content := `<html><script>
window.__APOLLO_STATE__ = {
	"Person:1": {"name": "Jane Doe"},
	"Person:2": {"name": "Someone Else"},
	"Investment:5": {"investor": {"__ref": "Person:1"}, "company": {"__ref": "Company:9"}, "round": "Seed", "date": "Feb 2020", "amount": "$1M", "is_lead": true},
	"Investment:6": {"investor": {"__ref": "Person:2"}, "company": {"__ref": "Company:9"}, "round": "Series B"},
	"Investment:7": {"investor": {"__ref": "Person:1"}},
	"Company:9": {"name": "Widgets Inc"}
};
</script></html>`

	got, found := ExtractState(content, PageHint{})
	require.True(t, found)

	want := []Investment{
		{Company: "Widgets Inc", Round: "Seed", Date: "Feb 2020", Amount: "$1M", IsLead: true},
	}
	if diff := cmp.Diff(want, got.Investments); diff != "" {
		t.Fatalf("investments mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 1, got.InvestmentCount)
}

func TestExtractStateNotFound(t *testing.T) {
	cases := map[string]string{
		"no blob":        `<html><body><h1>Jane Doe</h1></body></html>`,
		"malformed blob": `<html><script>window.__APOLLO_STATE__ = {"Person:1":{"name":"X"};</script></html>`,
		"not an object":  `<html><script>window.__APOLLO_STATE__ = [1,2,3];</script></html>`,
		"no candidates":  `<html><script>window.__APOLLO_STATE__ = {"Organization:1":{"name":"Acme"}};</script></html>`,
		"unnamed person": `<html><script>window.__APOLLO_STATE__ = {"Person:1":{"position":"Partner"}};</script></html>`,
	}
	for name, content := range cases {
		_, found := ExtractState(content, PageHint{SourceFile: "page.html"})
		require.False(t, found, "case %q", name)
	}
}

func TestDecodeStateGraphKeepsOrder(t *testing.T) {
	blob := []byte(`{"Person:3":{"name":"c"},"Person:1":{"name":"a"},"meta":7,"Person:2":{"name":"b"}}`)
	graph, err := decodeStateGraph(blob)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Person:3", "Person:1", "Person:2"}
	if diff := cmp.Diff(want, graph.keys); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}
