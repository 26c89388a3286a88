package dimacs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrips(t *testing.T) {
	input := "p cnf 3 2\n1 2 3 0\n-1 -2 0\n"
	m, ok := Parse(input)
	require.True(t, ok)
	assert.Equal(t, []byte(input), m.Bytes())
}

func TestParse_ReadsHeaderCounts(t *testing.T) {
	m, ok := Parse("p cnf 10 20\nfoo\n")
	require.True(t, ok)
	assert.Equal(t, 10, m.SaidAtoms)
	assert.Equal(t, 20, m.SaidClauses)
	// "foo" plus the empty line after the trailing newline.
	assert.Equal(t, 2, m.ActualClauses)
}

func TestParse_UnknownCountsOnUnparsableTokens(t *testing.T) {
	m, ok := Parse("p cnf garbage junk\nfoo\n")
	require.True(t, ok)
	assert.True(t, IsUnknown(m.SaidAtoms))
	assert.True(t, IsUnknown(m.SaidClauses))
}

func TestParse_RejectsHeaderWithWrongTokenCount(t *testing.T) {
	_, ok := Parse("p cnf 3\nfoo\n")
	assert.False(t, ok)
}

func TestParse_RejectsTooFewLines(t *testing.T) {
	_, ok := Parse("p cnf 3 2")
	assert.False(t, ok)
}

func TestRewriteHeaderClauseCount_ForcedReplacesFourthToken(t *testing.T) {
	got := RewriteHeaderClauseCount("p cnf 3 2", 99, 0.0)
	assert.Equal(t, "p cnf 3 99", got)
}

func TestRewriteHeaderClauseCount_SkipsAboveThreshold(t *testing.T) {
	got := RewriteHeaderClauseCount("p cnf 3 2", 99, 0.85)
	assert.Equal(t, "p cnf 3 2", got)
}

func TestRewriteHeaderClauseCount_LeavesMalformedHeaderUnchanged(t *testing.T) {
	got := RewriteHeaderClauseCount("p cnf 3", 99, 0.0)
	assert.Equal(t, "p cnf 3", got)
}

func TestRewriteHeaderClauseCount_PreservesOtherTokens(t *testing.T) {
	got := RewriteHeaderClauseCount("p cnf 123 456", 7, 0.0)
	tokens := strings.Fields(got)
	require.Len(t, tokens, 4)
	assert.Equal(t, "p", tokens[0])
	assert.Equal(t, "cnf", tokens[1])
	assert.Equal(t, "123", tokens[2])
	assert.Equal(t, "7", tokens[3])
}
