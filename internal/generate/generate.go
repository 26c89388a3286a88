// Package generate implements the four from-scratch DIMACS CNF generator
// strategies described in spec.md §4.B, selected by a fixed weighted pool.
package generate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satfuzz/satfuzz/internal/rng"
)

// Strategy identifies one of the four generator strategies.
type Strategy int

const (
	Valid Strategy = iota
	ValidSyntaxInvalidSemantics
	InvalidSyntax
	Random
)

// clauseLengthPool is the clause-length distribution shared by the
// generators (spec.md §4.B). 0 and 1 are intentionally sampled to probe
// solvers that skip arity checks.
var clauseLengthPool = rng.NewPool([]rng.Weighted[int]{
	{Item: 0, Weight: 0.005},
	{Item: 1, Weight: 0.005},
	{Item: 2, Weight: 0.2475},
	{Item: 3, Weight: 0.2475},
	{Item: 4, Weight: 0.2475},
	{Item: 5, Weight: 0.2475},
})

// strategyPool is the fixed generator mix from spec.md §4.B.
var strategyPool = rng.NewPool([]rng.Weighted[Strategy]{
	{Item: Valid, Weight: 0.30},
	{Item: ValidSyntaxInvalidSemantics, Weight: 0.50},
	{Item: InvalidSyntax, Weight: 0.10},
	{Item: Random, Weight: 0.10},
})

// Pick selects a generator strategy using the fixed weighted mix.
func Pick(s *rng.Source) Strategy {
	return strategyPool.Choose(s)
}

// Generate produces a complete DIMACS-like text file for the given
// strategy.
func Generate(strategy Strategy, s *rng.Source) []byte {
	switch strategy {
	case Valid:
		return genValid(s)
	case ValidSyntaxInvalidSemantics:
		return genValidSyntaxInvalidSemantics(s)
	case InvalidSyntax:
		return genInvalidSyntax(s)
	case Random:
		return genRandom(s)
	default:
		return genValid(s)
	}
}

// clauseLiterals samples a clause of K atoms, each uniform in [-v, v]; zero
// is a possible literal and, when chosen, terminates the clause
// prematurely — this is deliberate.
func clauseLiterals(s *rng.Source, v int) []int {
	k := clauseLengthPool.Choose(s)
	lits := make([]int, 0, k)
	for i := 0; i < k; i++ {
		lit := s.IntRange(-v, v+1)
		lits = append(lits, lit)
		if lit == 0 {
			break
		}
	}
	return lits
}

func joinLiterals(lits []int) string {
	strs := make([]string, len(lits))
	for i, l := range lits {
		strs[i] = strconv.Itoa(l)
	}
	return strings.Join(strs, " ")
}

// genValid implements the Valid strategy.
func genValid(s *rng.Source) []byte {
	v := s.IntRange(3, 5000)
	c := s.IntRange(3000, 10000)

	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %d %d\n", v, c)
	for i := 0; i < c; i++ {
		lits := clauseLiterals(s, v)
		sb.WriteString(joinLiterals(lits))
		sb.WriteString(" 0\n")
	}
	return []byte(sb.String())
}

// genInvalidSyntax implements the InvalidSyntax strategy: as Valid, but
// with probability 0.3 per clause the trailing " 0" is omitted.
func genInvalidSyntax(s *rng.Source) []byte {
	v := s.IntRange(3, 5000)
	c := s.IntRange(3000, 10000)

	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %d %d\n", v, c)
	for i := 0; i < c; i++ {
		lits := clauseLiterals(s, v)
		sb.WriteString(joinLiterals(lits))
		if !s.Bool(0.3) {
			sb.WriteString(" 0")
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// overflowedInt32 samples a 32-bit-overflowed declared count: 75% positive
// in [2^31, 2^32), 25% negative in (-2^32, -2^31).
func overflowedInt32(s *rng.Source) int {
	const lo31 = 1 << 31
	const lo32 = 1 << 32
	if s.Bool(0.75) {
		return lo31 + s.Intn(lo32-lo31)
	}
	return -(lo31 + 1 + s.Intn(lo32-lo31-1))
}

// declaredV samples a declared atom count: 95% in [3,5000), 5% an
// overflowed 32-bit integer.
func declaredV(s *rng.Source) int {
	if s.Bool(0.95) {
		return s.IntRange(3, 5000)
	}
	return overflowedInt32(s)
}

// genValidSyntaxInvalidSemantics implements the ValidSyntaxInvalidSemantics
// strategy. Each point where a bound is needed re-samples V and C
// independently, so declared and actual counts diverge and per-clause atom
// bounds drift; this re-sampling is deliberate and preserved verbatim.
func genValidSyntaxInvalidSemantics(s *rng.Source) []byte {
	declaredVCount := declaredV(s)
	declaredCCount := s.IntRange(3, 1000)

	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %d %d\n", declaredVCount, declaredCCount)

	// Actual number of clauses emitted is its own independent re-sample.
	actualC := s.IntRange(3, 1000)
	for i := 0; i < actualC; i++ {
		// Per-clause atom bound is yet another independent re-sample; unlike
		// the declared header count, this one never overflows.
		boundV := s.IntRange(3, 5000)
		lits := clauseLiterals(s, boundV)
		sb.WriteString(joinLiterals(lits))
		sb.WriteString(" 0\n")
	}
	return []byte(sb.String())
}

const printableChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()-_=+"

func garbage(s *rng.Source) string {
	n := s.Intn(6) // 0-5 characters
	b := make([]byte, n)
	for i := range b {
		b[i] = printableChars[s.Intn(len(printableChars))]
	}
	return string(b)
}

// genRandom implements the Random strategy: a garbage header followed by
// 0-100 short printable "clauses" with a loosely-DIMACS-shaped tail. Each
// blob is followed by a trailing space, matching the original generator's
// `random_string(0,3) + " "` shape.
func genRandom(s *rng.Source) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %s %s\n", garbage(s), garbage(s))

	n := s.Intn(101) // 0-100 clauses
	for i := 0; i < n; i++ {
		blobLen := s.Intn(4) // 0-3 characters
		blob := make([]byte, blobLen)
		for j := range blob {
			blob[j] = printableChars[s.Intn(len(printableChars))]
		}
		sb.Write(blob)
		sb.WriteByte(' ')
		if s.Bool(0.5) {
			sb.WriteString("0")
		}
		if s.Bool(0.85) {
			sb.WriteByte('\n')
		}
	}
	return []byte(sb.String())
}
