package engine

import "strings"

// Mode selects the output transformation.
type Mode int

const (
	// ModeSanitize drops removed bodies and surfaces replacement bodies
	// with the block prefix stripped. This produces the student version.
	ModeSanitize Mode = iota
	// ModeStrip drops only the marker lines, keeping both bodies
	// verbatim. This produces a marker-free copy of the full version.
	ModeStrip
)

func (m Mode) String() string {
	switch m {
	case ModeSanitize:
		return "sanitize"
	case ModeStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// ParseMode converts a user-facing mode name.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "sanitize":
		return ModeSanitize, true
	case "strip":
		return ModeStrip, true
	default:
		return 0, false
	}
}

// Render produces the output lines for a validated tree. Marker lines are
// never emitted in either mode.
func Render(t *Tree, mode Mode) []string {
	var out []string
	for _, seg := range t.Segments {
		if seg.Block == nil {
			for _, ln := range seg.Run {
				out = append(out, ln.Raw)
			}
			continue
		}

		blk := seg.Block
		switch mode {
		case ModeSanitize:
			// Exact prefix-length removal turns a commented-out
			// replacement into live code. Validation guarantees the
			// prefix is present on every replacement line.
			for _, ln := range blk.Replacement {
				out = append(out, strings.TrimPrefix(ln.Raw, blk.Prefix))
			}
		case ModeStrip:
			for _, ln := range blk.Removed {
				out = append(out, ln.Raw)
			}
			for _, ln := range blk.Replacement {
				out = append(out, ln.Raw)
			}
		}
	}
	return out
}
