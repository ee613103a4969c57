package signal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractMarkupFullProfile(t *testing.T) {
	content := readFixture(t, "markup_profile.html")

	got := ExtractMarkup(content, PageHint{SourceFile: "markup_profile.html"})

	want := InvestorRecord{
		Name:     "John Smith",
		Position: "Partner",
		Firm:     "Summit Capital",
		Location: "New York, New York",
		InvestmentRange: InvestmentRange{
			Min:    int64Ptr(25_000),
			Max:    int64Ptr(500_000),
			Target: int64Ptr(100_000),
		},
		AreasOfInterest: []string{"Fintech", "SaaS"},
		NotInterestedIn: []string{},
		Investments: []Investment{
			{Company: "Acme Co", Round: "Series A", Date: "2021-05", Amount: "$5M", IsLead: true},
			{Company: "Widgets Inc", Round: "Seed", Date: "2020-01", Amount: "$750K", IsLead: false},
			{Company: "Gadgetly", Round: "Seed", Date: "Jan 2019", Amount: "$500K", IsLead: false},
			{Company: "Gadgetly", Round: "Series A", Date: "Mar 2020", Amount: "$4M", IsLead: true},
		},
		InvestmentCount:  24,
		CurrentFundSize:  int64Ptr(10_000_000),
		Roles:            []string{"Angel", "Scout"},
		CoInvestors:      []string{"Alice Chen", "Bob Patel", "Dana Lee"},
		ScoutsAngels:     []string{"Carol Wu"},
		Links:            map[string]string{},
		ExtractionMethod: MethodHTML,
		SourceFile:       "markup_profile.html",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMarkupLeadClassOnRow(t *testing.T) {
	content := `<html><body>
<h1>Sam Investor</h1>
<table>
	<tr><th>Company</th><th>Round</th><th>Date</th><th>Amount</th></tr>
	<tr class="row-lead-investor"><td>Acme Co</td><td>Series A</td><td>2021-05</td><td>$5M</td></tr>
</table>
</body></html>`

	got := ExtractMarkup(content, PageHint{SourceFile: "page.html"})
	require.Equal(t, "Sam Investor", got.Name)

	want := []Investment{
		{Company: "Acme Co", Round: "Series A", Date: "2021-05", Amount: "$5M", IsLead: true},
	}
	if diff := cmp.Diff(want, got.Investments); diff != "" {
		t.Fatalf("investments mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMarkupSubheaderFallback(t *testing.T) {
	content := `<html><body>
<h1 class="f3 f1-ns mv1">Jane Roe</h1>
<div class="subheader lower-subheader pb2">Principal at Meridian Partners</div>
</body></html>`

	got := ExtractMarkup(content, PageHint{})
	require.Equal(t, "Jane Roe", got.Name)
	require.Equal(t, NullString("Principal"), got.Position)
	require.Equal(t, NullString("Meridian Partners"), got.Firm)
}

func TestExtractMarkupFirmAnchor(t *testing.T) {
	content := `<html><body>
<h1>Jane Roe</h1>
<div class="line-separated-row row">
	<div class="col-xs-5"><span>Current Investing Position</span></div>
	<div class="col-xs-7"><span><a href="/firms/meridian">Meridian Partners</a> Principal</span></div>
</div>
</body></html>`

	got := ExtractMarkup(content, PageHint{})
	require.Equal(t, NullString("Meridian Partners"), got.Firm)
	require.Equal(t, NullString("Principal"), got.Position)
}

func TestExtractMarkupSkipsRowsWithoutCompany(t *testing.T) {
	content := `<html><body>
<h1>Sam Investor</h1>
<table>
	<tr><td></td><td>Series A</td><td>2021-05</td><td>$5M</td></tr>
	<tr><td>Real Co</td><td>Seed</td><td>2019-01</td><td>$1M</td></tr>
</table>
</body></html>`

	got := ExtractMarkup(content, PageHint{})
	require.Len(t, got.Investments, 1)
	require.Equal(t, "Real Co", got.Investments[0].Company)
}

func TestExtractMarkupEmpty(t *testing.T) {
	got := ExtractMarkup("<html><body></body></html>", PageHint{SourceFile: "empty.html"})
	require.Equal(t, "", got.Name)
	require.Equal(t, MethodHTML, got.ExtractionMethod)
	require.Equal(t, "empty.html", got.SourceFile)
	require.NotNil(t, got.Investments)
	require.NotNil(t, got.Links)
}

func TestSplitRoundBlock(t *testing.T) {
	cases := []struct {
		in     string
		stage  string
		date   string
		amount string
	}{
		{"Series A • Jan 2021 • $5M", "Series A", "Jan 2021", "$5M"},
		{"Seed - Feb 2019 - $500K", "Seed", "Feb 2019", "$500K"},
		{"Seed • Feb 2019", "Seed", "Feb 2019", ""},
		{"Series B Mar 2022 $10M", "Series B", "Mar 2022", "$10M"},
		{"Acquired", "Acquired", "", ""},
		{"", "", "", ""},
	}
	for _, c := range cases {
		stage, date, amount := splitRoundBlock(c.in)
		require.Equal(t, c.stage, stage, "input %q", c.in)
		require.Equal(t, c.date, date, "input %q", c.in)
		require.Equal(t, c.amount, amount, "input %q", c.in)
	}
}
