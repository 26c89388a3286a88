// Package mutate implements the four CNF mutation strategies described in
// spec.md §4.D, each consuming a dimacs.MutationFile and producing raw
// output bytes.
package mutate

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/satfuzz/satfuzz/internal/dimacs"
	"github.com/satfuzz/satfuzz/internal/rng"
)

// Strategy identifies one of the four mutator strategies.
type Strategy int

const (
	LineMerger Strategy = iota
	LineRemover
	AtomChanger
	ByteMutator
)

// strategyPool is the fixed mutator mix from spec.md §4.D.
var strategyPool = rng.NewPool([]rng.Weighted[Strategy]{
	{Item: LineMerger, Weight: 0.2},
	{Item: LineRemover, Weight: 0.2},
	{Item: AtomChanger, Weight: 0.4},
	{Item: ByteMutator, Weight: 0.2},
})

// Pick selects a mutator strategy using the fixed weighted mix.
func Pick(s *rng.Source) Strategy {
	return strategyPool.Choose(s)
}

// clauseLengthPool mirrors the generator's shared clause-length
// distribution, reused here for LineRemover's synthesized clauses.
var clauseLengthPool = rng.NewPool([]rng.Weighted[int]{
	{Item: 0, Weight: 0.005},
	{Item: 1, Weight: 0.005},
	{Item: 2, Weight: 0.2475},
	{Item: 3, Weight: 0.2475},
	{Item: 4, Weight: 0.2475},
	{Item: 5, Weight: 0.2475},
})

// Mutate applies the given strategy to m using s for every random decision.
func Mutate(strategy Strategy, m *dimacs.MutationFile, s *rng.Source) []byte {
	switch strategy {
	case LineMerger:
		return lineMerger(m, s)
	case LineRemover:
		return lineRemover(m, s)
	case AtomChanger:
		return atomChanger(m, s)
	case ByteMutator:
		return byteMutator(m, s)
	default:
		return m.Bytes()
	}
}

func rewriteHeader(header string, newCount int, s *rng.Source) string {
	return dimacs.RewriteHeaderClauseCount(header, newCount, s.Float64())
}

// lineMerger implements spec.md §4.D's LineMerger strategy.
func lineMerger(m *dimacs.MutationFile, s *rng.Source) []byte {
	deleteFirstZero := s.Bool(0.9)
	deleteSecondZero := s.Bool(0.1)

	var out []string
	changes := 0

	lines := m.Lines
	i := 0
	for i < len(lines) {
		isNonTerminal := i < len(lines)-1
		if isNonTerminal && s.Bool(0.10) {
			first := lines[i]
			second := lines[i+1]
			if deleteFirstZero {
				first = strings.TrimRight(strings.TrimSuffix(strings.TrimRight(first, " "), "0"), " ")
			}
			if deleteSecondZero {
				second = strings.TrimRight(strings.TrimSuffix(strings.TrimRight(second, " "), "0"), " ")
			}
			out = append(out, first+" "+second)
			changes++
			i += 2
			continue
		}
		out = append(out, lines[i])
		i++
	}

	newHeader := rewriteHeader(m.Header, m.ActualClauses-changes, s)
	return joinHeaderLines(newHeader, out)
}

// lineRemover implements spec.md §4.D's LineRemover strategy. changes is
// signed and decremented on removal, incremented on addition; the header
// rewrite of actual_clauses - changes is preserved verbatim even though it
// means a run of removals inflates the declared count — this mirrors the
// spec's stated quirk rather than a "corrected" clause-count bookkeeping.
func lineRemover(m *dimacs.MutationFile, s *rng.Source) []byte {
	remove := s.Bool(0.5)

	var out []string
	changes := 0

	for _, line := range m.Lines {
		if s.Bool(0.75) {
			out = append(out, line)
			continue
		}
		if remove {
			changes--
			continue
		}
		out = append(out, line)
		out = append(out, synthesizeClause(m, s))
		changes++
	}

	newHeader := rewriteHeader(m.Header, m.ActualClauses-changes, s)
	return joinHeaderLines(newHeader, out)
}

// synthesizeClause draws a fresh clause for LineRemover's addition path.
// Atom bound N is said_atoms with P=0.5 when known, else a fresh [1,1000)
// draw.
func synthesizeClause(m *dimacs.MutationFile, s *rng.Source) string {
	n := m.SaidAtoms
	if dimacs.IsUnknown(n) || !s.Bool(0.5) {
		n = s.IntRange(1, 1000)
	}
	if n <= 0 {
		n = 1
	}

	k := clauseLengthPool.Choose(s)
	atoms := make([]string, 0, k)
	for i := 0; i < k; i++ {
		atoms = append(atoms, strconv.Itoa(s.IntRange(-n, n+1)))
	}
	return strings.Join(atoms, " ")
}

// atomChanger implements spec.md §4.D's AtomChanger strategy. It assumes
// the last space-delimited token of a clause line is the trailing DIMACS
// terminator and drops it unconditionally before working on the remaining
// atoms; lines that do not carry that terminator lose their last real atom
// instead. Preserved as specified.
func atomChanger(m *dimacs.MutationFile, s *rng.Source) []byte {
	remove := s.Bool(0.5)

	out := make([]string, len(m.Lines))
	for i, line := range m.Lines {
		if !s.Bool(0.25) {
			out[i] = line
			continue
		}
		tokens := strings.Split(line, " ")
		if len(tokens) > 0 {
			tokens = tokens[:len(tokens)-1]
		}

		var kept []string
		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			r := s.Float64()
			switch {
			case r < 0.25:
				kept = append(kept, flipSign(tok))
			case r < 0.5:
				if remove {
					continue
				}
				kept = append(kept, tok, syntheticAtom(s))
			default:
				kept = append(kept, tok)
			}
		}
		kept = append(kept, "0")
		out[i] = strings.Join(kept, " ")
	}

	return joinHeaderLines(m.Header, out)
}

func flipSign(tok string) string {
	if strings.HasPrefix(tok, "-") {
		return strings.TrimPrefix(tok, "-")
	}
	return "-" + tok
}

func syntheticAtom(s *rng.Source) string {
	n := s.IntRange(1, 1000)
	if s.Bool(0.5) {
		n = -n
	}
	return strconv.Itoa(n)
}

// byteMutator implements spec.md §4.D's ByteMutator strategy: header is not
// rewritten, and the body is mutated at the byte level then lossily
// redecoded as UTF-8.
func byteMutator(m *dimacs.MutationFile, s *rng.Source) []byte {
	body := []byte(strings.Join(m.Lines, "\n"))
	for i := range body {
		if s.Bool(0.25) {
			body[i] = byte(s.Intn(256))
		}
	}

	decoded := strings.ToValidUTF8(string(body), string(utf8.RuneError))

	var sb strings.Builder
	sb.WriteString(m.Header)
	sb.WriteByte('\n')
	sb.WriteString(decoded)
	return []byte(sb.String())
}

func joinHeaderLines(header string, lines []string) []byte {
	var sb strings.Builder
	sb.WriteString(header)
	for _, l := range lines {
		sb.WriteByte('\n')
		sb.WriteString(l)
	}
	return []byte(sb.String())
}
