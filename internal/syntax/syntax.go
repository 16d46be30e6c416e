// Package syntax recognizes sanitizer markers embedded in arbitrary text.
// It classifies single lines only; block structure is the engine's job.
package syntax

import "strings"

// Namespace is the shared prefix of every marker token. A line containing
// it is either a real marker or a suspected misspelling, never plain text.
const Namespace = "REPOBEE-SANITIZER-"

// Canonical marker spellings. Matching is case-sensitive and exact after
// the line's prefix is stripped and trailing whitespace trimmed.
const (
	MarkerStart       = "REPOBEE-SANITIZER-START"
	MarkerReplaceWith = "REPOBEE-SANITIZER-REPLACE-WITH"
	MarkerEnd         = "REPOBEE-SANITIZER-END"
	MarkerShred       = "REPOBEE-SANITIZER-SHRED"
)

// Kind classifies a single line.
type Kind int

const (
	// KindNone means plain content.
	KindNone Kind = iota
	// KindStart opens a block.
	KindStart
	// KindReplaceWith separates removed body from replacement body.
	KindReplaceWith
	// KindEnd closes a block.
	KindEnd
	// KindShred requests whole-file deletion.
	KindShred
	// KindSuspect is text in the marker namespace that matches no
	// canonical spelling. It always surfaces as an error downstream.
	KindSuspect
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStart:
		return "start"
	case KindReplaceWith:
		return "replace-with"
	case KindEnd:
		return "end"
	case KindShred:
		return "shred"
	case KindSuspect:
		return "suspect"
	default:
		return "unknown"
	}
}

// Line is one classified input line.
type Line struct {
	Raw    string // the original line, unmodified
	Kind   Kind
	Prefix string // text preceding the marker token; empty for plain lines
}

// IsMarker reports whether the line is one of the four canonical markers.
func (l Line) IsMarker() bool {
	return l.Kind != KindNone && l.Kind != KindSuspect
}

// Classify scans a line for a marker token. Everything before the first
// occurrence of the marker namespace is the prefix; the remainder, trimmed
// of trailing whitespace, must equal a canonical spelling exactly. A
// namespace hit with a non-canonical remainder is a suspected marker.
func Classify(raw string) Line {
	idx := strings.Index(raw, Namespace)
	if idx < 0 {
		return Line{Raw: raw}
	}

	prefix := raw[:idx]
	token := strings.TrimRight(raw[idx:], " \t\r")

	switch token {
	case MarkerStart:
		return Line{Raw: raw, Kind: KindStart, Prefix: prefix}
	case MarkerReplaceWith:
		return Line{Raw: raw, Kind: KindReplaceWith, Prefix: prefix}
	case MarkerEnd:
		return Line{Raw: raw, Kind: KindEnd, Prefix: prefix}
	case MarkerShred:
		return Line{Raw: raw, Kind: KindShred, Prefix: prefix}
	default:
		return Line{Raw: raw, Kind: KindSuspect, Prefix: prefix}
	}
}

// ClassifyAll classifies every line of a file.
func ClassifyAll(raw []string) []Line {
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Classify(r)
	}
	return lines
}

// Dirty reports whether text contains anything in the marker namespace.
// Files that are not dirty need no sanitization and are left untouched.
// Suspected misspellings count as dirty so their errors get reported.
func Dirty(text string) bool {
	return strings.Contains(text, Namespace)
}
