// Package dimacs parses and re-serializes the relaxed DIMACS CNF files the
// fuzzer generates and mutates, and implements the shared header-rewriting
// helper used by several mutators.
package dimacs

import (
	"strconv"
	"strings"
)

// unknownCount is the sentinel spec.md §3 calls "unknown": the header's
// 3rd/4th token did not parse as an integer. A header without exactly 4
// whitespace-separated tokens is rejected by Parse instead.
const unknownCount = -1

// IsUnknown reports whether a parsed atom/clause count is the "unknown"
// sentinel.
func IsUnknown(n int) bool { return n == unknownCount }

// MutationFile is the parsed view of a CNF file described in spec.md §3.
type MutationFile struct {
	Header        string   // first line, verbatim
	SaidAtoms     int      // 3rd header token, or unknownCount
	SaidClauses   int      // 4th header token, or unknownCount
	ActualClauses int      // len(Lines) at construction
	Lines         []string // remaining raw lines
}

// Parse splits contents on "\n"; the first line becomes Header, the rest
// become Lines. It returns ok=false (reject — skip mutation) when Lines
// has fewer than 1 entry or Header does not have exactly 4
// whitespace-separated tokens, per spec.md §4.C.
func Parse(contents string) (*MutationFile, bool) {
	lines := strings.Split(contents, "\n")
	if len(lines) < 2 {
		return nil, false
	}

	header := lines[0]
	rest := lines[1:]
	if len(rest) < 1 {
		return nil, false
	}

	tokens := strings.Fields(header)
	if len(tokens) != 4 {
		return nil, false
	}

	said_atoms, err := strconv.Atoi(tokens[2])
	if err != nil {
		said_atoms = unknownCount
	}
	said_clauses, err := strconv.Atoi(tokens[3])
	if err != nil {
		said_clauses = unknownCount
	}

	return &MutationFile{
		Header:        header,
		SaidAtoms:     said_atoms,
		SaidClauses:   said_clauses,
		ActualClauses: len(rest),
		Lines:         append([]string(nil), rest...),
	}, true
}

// Bytes re-serializes the MutationFile back to a single CNF text blob: the
// header, then each line, joined by "\n".
func (m *MutationFile) Bytes() []byte {
	var sb strings.Builder
	sb.WriteString(m.Header)
	for _, l := range m.Lines {
		sb.WriteByte('\n')
		sb.WriteString(l)
	}
	return []byte(sb.String())
}

// RewriteHeaderClauseCount is the shared helper from spec.md §4.D: with
// probability 0.85 it replaces the 4th header token with newCount; with
// probability 0.15 it leaves the header untouched. If header does not have
// exactly 4 tokens it is returned unchanged regardless of the coin flip.
func RewriteHeaderClauseCount(header string, newCount int, roll float64) string {
	tokens := strings.Fields(header)
	if len(tokens) != 4 {
		return header
	}
	if roll >= 0.85 {
		return header
	}
	tokens[3] = strconv.Itoa(newCount)
	return strings.Join(tokens, " ")
}
