// Package engine turns classified lines into a validated parse tree and
// renders the tree into sanitized or stripped output. It is pure: no I/O,
// no shared state, deterministic for a given input and mode.
package engine

import (
	"strings"

	"github.com/repobee/sanitizer/internal/syntax"
)

// Block is the region delimited by a START/END marker pair. The prefix is
// fixed at the START line and binds every line until and including END.
type Block struct {
	Prefix      string
	Removed     []syntax.Line // body between START and REPLACE-WITH/END
	Replacement []syntax.Line // body between REPLACE-WITH and END
	startLine   int
}

// Segment is one element of the parse tree: a run of plain lines or a
// block. Exactly one of the two fields is set.
type Segment struct {
	Run   []syntax.Line
	Block *Block
}

// Tree is the ordered parse of a whole file, preserving line order.
type Tree struct {
	Segments []Segment
}

// Outcome is a validated parse: either a tree to transform or a shred
// directive meaning the whole file is to be deleted.
type Outcome struct {
	Shred bool
	Tree  *Tree
}

type state int

const (
	stateOutside state = iota
	stateInBlock
	stateInReplace
)

// Parse runs the block state machine over a file's classified lines.
// It accumulates every defect in a single pass; a non-empty error slice
// means no Outcome is produced. Line numbers in errors are 1-based.
func Parse(lines []syntax.Line) (Outcome, []SyntaxError) {
	if len(lines) > 0 && lines[0].Kind == syntax.KindShred {
		return parseShred(lines)
	}

	var (
		st   = stateOutside
		tree = &Tree{}
		run  []syntax.Line
		blk  *Block
		errs []SyntaxError
	)

	flushRun := func() {
		if len(run) > 0 {
			tree.Segments = append(tree.Segments, Segment{Run: run})
			run = nil
		}
	}
	// Structural errors drop the open block and restart from Outside so
	// the rest of the file still gets scanned.
	reset := func() {
		blk = nil
		st = stateOutside
	}

	for i, ln := range lines {
		n := i + 1

		switch ln.Kind {
		case syntax.KindNone:
			switch st {
			case stateOutside:
				run = append(run, ln)
			case stateInBlock:
				if !strings.HasPrefix(ln.Raw, blk.Prefix) {
					errs = append(errs, prefixError(n, blk.Prefix))
				}
				blk.Removed = append(blk.Removed, ln)
			case stateInReplace:
				if !strings.HasPrefix(ln.Raw, blk.Prefix) {
					errs = append(errs, prefixError(n, blk.Prefix))
				}
				blk.Replacement = append(blk.Replacement, ln)
			}

		case syntax.KindStart:
			switch st {
			case stateOutside:
				flushRun()
				blk = &Block{Prefix: ln.Prefix, startLine: n}
				st = stateInBlock
			case stateInBlock:
				errs = append(errs, syntaxErrorf(n, NestedBlock,
					"START inside an open block; blocks do not nest"))
				reset()
			case stateInReplace:
				errs = append(errs, syntaxErrorf(n, MalformedBlock,
					"START inside a replacement body"))
				reset()
			}

		case syntax.KindReplaceWith:
			switch st {
			case stateOutside:
				errs = append(errs, syntaxErrorf(n, OrphanMarker,
					"REPLACE-WITH without an open block"))
			case stateInBlock:
				if ln.Prefix != blk.Prefix {
					errs = append(errs, prefixError(n, blk.Prefix))
				}
				st = stateInReplace
			case stateInReplace:
				errs = append(errs, syntaxErrorf(n, MalformedBlock,
					"duplicate REPLACE-WITH in one block"))
				reset()
			}

		case syntax.KindEnd:
			switch st {
			case stateOutside:
				errs = append(errs, syntaxErrorf(n, OrphanMarker,
					"END without an open block"))
			case stateInBlock, stateInReplace:
				if ln.Prefix != blk.Prefix {
					errs = append(errs, prefixError(n, blk.Prefix))
				}
				tree.Segments = append(tree.Segments, Segment{Block: blk})
				reset()
			}

		case syntax.KindShred:
			errs = append(errs, syntaxErrorf(n, MisplacedShred,
				"SHRED is only valid as the first line of a file"))
			reset()

		case syntax.KindSuspect:
			errs = append(errs, suspectError(n, ln))
			reset()
		}
	}

	if st != stateOutside {
		errs = append(errs, syntaxErrorf(blk.startLine, UnterminatedBlock,
			"block opened here is never closed"))
	}
	flushRun()

	if len(errs) > 0 {
		return Outcome{}, errs
	}
	return Outcome{Tree: tree}, nil
}

// parseShred validates a file whose first line is SHRED: no other marker
// of any kind may appear anywhere in the file.
func parseShred(lines []syntax.Line) (Outcome, []SyntaxError) {
	var errs []SyntaxError
	for i, ln := range lines[1:] {
		n := i + 2
		switch ln.Kind {
		case syntax.KindNone:
		case syntax.KindSuspect:
			errs = append(errs, suspectError(n, ln))
		default:
			errs = append(errs, syntaxErrorf(n, MisplacedShred,
				"no other marker may coexist with SHRED"))
		}
	}
	if len(errs) > 0 {
		return Outcome{}, errs
	}
	return Outcome{Shred: true}, nil
}

func prefixError(line int, prefix string) SyntaxError {
	return syntaxErrorf(line, PrefixMismatch,
		"line does not carry the block prefix %q", prefix)
}

func suspectError(line int, ln syntax.Line) SyntaxError {
	token := strings.TrimRight(ln.Raw[len(ln.Prefix):], " \t\r")
	return syntaxErrorf(line, UnrecognizedMarker,
		"%q looks like a marker but matches no known spelling", token)
}
