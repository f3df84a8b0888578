// Package match decides whether a textual patch is already applied, cleanly
// applicable, or only recognisable once whitespace is ignored.
//
// The decision is deliberately text-level. A normalized match is a diagnostic
// only: it says the file's logical content is there, but not where the
// replacement boundaries fall in the unnormalized text, so it never drives a
// write.
package match

import "strings"

// Outcome is the tagged result of evaluating a patch against file content.
type Outcome int

const (
	// NotFound means the target is absent even after whitespace normalization.
	NotFound Outcome = iota
	// AlreadyApplied means the replacement is present verbatim
	AlreadyApplied
	// ExactMatchFound means the target is present verbatim
	ExactMatchFound
	// NormalizedMatchOnly means the target matches only with whitespace removed
	NormalizedMatchOnly
)

// String returns the string representation of the Outcome
func (o Outcome) String() string {
	switch o {
	case AlreadyApplied:
		return "already-applied"
	case ExactMatchFound:
		return "exact-match"
	case NormalizedMatchOnly:
		return "normalized-match-only"
	default:
		return "not-found"
	}
}

// Decision carries the outcome and, for ExactMatchFound, the byte offset of
// the first occurrence of the target.
type Decision struct {
	Outcome Outcome
	Offset  int
}

// Evaluate classifies content against a target/replacement pair. The
// replacement check runs first: a wrapping patch leaves the target inside the
// replacement, and checking the target first would patch it twice.
func Evaluate(content, target, replacement string) Decision {
	if replacement != "" && strings.Contains(content, replacement) {
		return Decision{Outcome: AlreadyApplied, Offset: -1}
	}
	if target == "" {
		return Decision{Outcome: NotFound, Offset: -1}
	}
	if i := strings.Index(content, target); i >= 0 {
		return Decision{Outcome: ExactMatchFound, Offset: i}
	}
	normTarget := Normalize(target)
	if normTarget != "" && strings.Contains(Normalize(content), normTarget) {
		return Decision{Outcome: NormalizedMatchOnly, Offset: -1}
	}
	return Decision{Outcome: NotFound, Offset: -1}
}

// Apply substitutes the first occurrence of target with replacement. It
// refuses anything but an ExactMatchFound decision.
func (d Decision) Apply(content, target, replacement string) (string, bool) {
	if d.Outcome != ExactMatchFound || d.Offset < 0 || d.Offset+len(target) > len(content) {
		return content, false
	}
	if content[d.Offset:d.Offset+len(target)] != target {
		return content, false
	}
	var b strings.Builder
	b.Grow(len(content) - len(target) + len(replacement))
	b.WriteString(content[:d.Offset])
	b.WriteString(replacement)
	b.WriteString(content[d.Offset+len(target):])
	return b.String(), true
}

// Normalize strips spaces, tabs, carriage returns and newlines.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
