// Package crash implements the crash-signature derivation contract from
// spec.md §4.E and ships one concrete, swappable default analyzer.
package crash

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"regexp"
)

// Signature is an opaque, hashable, comparable crash class identifier.
// The core never inspects its internal structure.
type Signature string

// Analyzer derives a Signature from captured stderr. It must be
// deterministic: identical stderr bytes yield an identical signature.
type Analyzer interface {
	Analyze(stderr []byte) (Signature, bool)
}

var (
	signalRe = regexp.MustCompile(`(Terminated|Segmentation fault|Aborted|Floating point exception|Bus error)`)
	asanRe   = regexp.MustCompile(`(AddressSanitizer|UndefinedBehaviorSanitizer): \S*?([A-Za-z][A-Za-z0-9-]*)`)
	panicRe  = regexp.MustCompile(`(?m)^panic: (.*)$`)
)

// RegexAnalyzer is satfuzz's default Analyzer: it classifies stderr into a
// small set of normalized fingerprints using pattern matching, in priority
// order, falling back to a whole-output digest for anything unrecognized.
type RegexAnalyzer struct{}

func NewRegexAnalyzer() *RegexAnalyzer {
	return &RegexAnalyzer{}
}

func (a *RegexAnalyzer) Analyze(stderr []byte) (Signature, bool) {
	trimmed := bytes.TrimSpace(stderr)
	if len(trimmed) == 0 {
		return "", false
	}

	if m := signalRe.FindSubmatch(trimmed); m != nil {
		return Signature("sig:" + string(m[1])), true
	}
	if m := asanRe.FindSubmatch(trimmed); m != nil {
		return Signature("asan:" + string(m[2])), true
	}
	if m := panicRe.FindSubmatch(trimmed); m != nil {
		return Signature("panic:" + digest(m[1])), true
	}
	return Signature("other:" + digest(trimmed)), true
}

// digest returns an 8-hex-character SHA-256 fingerprint, matching the
// truncation scheme used elsewhere for short stable content hashes.
func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return fmt.Sprintf("%08x", sum[:4])
}
