package parser

import (
	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
)

type blockKind string

const (
	blockApp       blockKind = "app"
	blockModel     blockKind = "model"
	blockTheme     blockKind = "theme"
	blockGroup     blockKind = "group"
	blockOverrides blockKind = "overrides"
	blockUse       blockKind = "use"
)

// openBrace records where a `{` was seen.
type openBrace struct {
	line   int
	column int
	text   string
}

// frame is the semantic side of an open block: what the statements inside
// it build.
type frame struct {
	kind  blockKind
	model *ast.Model
	theme *ast.Theme
	group ast.Tree
}

// blockTracker matches every `{` with its `}` and keeps the semantic kind
// of each open block. Both stacks always have the same depth.
type blockTracker struct {
	braces []openBrace
	frames []frame
}

func (b *blockTracker) open(brace openBrace, f frame) {
	b.braces = append(b.braces, brace)
	b.frames = append(b.frames, f)
}

// close pops the innermost block.
func (b *blockTracker) close() (frame, error) {
	if len(b.braces) == 0 {
		return frame{}, errors.New(errors.UnexpectedClosingBrace, "Unexpected closing brace - no matching opening brace found")
	}
	f := b.frames[len(b.frames)-1]
	b.braces = b.braces[:len(b.braces)-1]
	b.frames = b.frames[:len(b.frames)-1]
	return f, nil
}

// current returns the innermost open block, or nil at top level.
func (b *blockTracker) current() *frame {
	if len(b.frames) == 0 {
		return nil
	}
	return &b.frames[len(b.frames)-1]
}

// unclosed returns the outermost unmatched brace when input ends with open
// blocks.
func (b *blockTracker) unclosed() (openBrace, bool) {
	if len(b.braces) == 0 {
		return openBrace{}, false
	}
	return b.braces[0], true
}
