package engine

import "fmt"

// ErrorKind identifies a class of syntax defect.
type ErrorKind int

const (
	// OrphanMarker is a REPLACE-WITH or END with no open block.
	OrphanMarker ErrorKind = iota
	// NestedBlock is a START inside an already open block.
	NestedBlock
	// MalformedBlock is a START or REPLACE-WITH in the replacement phase.
	MalformedBlock
	// UnterminatedBlock is end of file with a block still open.
	UnterminatedBlock
	// PrefixMismatch is a body line that does not carry the block's prefix.
	PrefixMismatch
	// UnrecognizedMarker is marker-namespace text with an invalid suffix.
	UnrecognizedMarker
	// MisplacedShred is a SHRED off line one or mixed with other markers.
	MisplacedShred
)

func (k ErrorKind) String() string {
	switch k {
	case OrphanMarker:
		return "orphan marker"
	case NestedBlock:
		return "nested block"
	case MalformedBlock:
		return "malformed block"
	case UnterminatedBlock:
		return "unterminated block"
	case PrefixMismatch:
		return "prefix mismatch"
	case UnrecognizedMarker:
		return "unrecognized marker"
	case MisplacedShred:
		return "misplaced shred"
	default:
		return "unknown"
	}
}

// SyntaxError is one defect found during validation. Line is 1-based.
type SyntaxError struct {
	Line int
	Kind ErrorKind
	Msg  string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func syntaxErrorf(line int, kind ErrorKind, format string, args ...any) SyntaxError {
	return SyntaxError{Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
