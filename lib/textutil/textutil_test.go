package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "janedoe", NormalizeName("  Jane\tDoe \n"))
	require.Equal(t, "pastinvestments", NormalizeName("Past  Investments"))
}

func TestMatchName(t *testing.T) {
	matchers := []string{"investments", "portfolio"}
	require.True(t, MatchName("Past Investments", matchers))
	require.True(t, MatchName("PORTFOLIO", matchers))
	require.False(t, MatchName("Sector & Stage Rankings", matchers))
}

func TestSplitCommaList(t *testing.T) {
	require.Equal(t, []string{"Fintech", "SaaS", "Deep Tech"}, SplitCommaList("Fintech, SaaS , Deep Tech"))
	require.Nil(t, SplitCommaList("  "))
	require.Equal(t, []string{"Solo"}, SplitCommaList("Solo,"))
}
