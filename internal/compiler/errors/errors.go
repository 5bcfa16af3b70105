package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a ParseError.
type Kind string

const (
	// Grammar
	InvalidDeclaration Kind = "InvalidDeclaration"
	UnexpectedToken    Kind = "UnexpectedToken"

	// Structure
	UnexpectedClosingBrace Kind = "UnexpectedClosingBrace"
	UnclosedBlock          Kind = "UnclosedBlock"

	// Namespace and types
	DuplicateName       Kind = "DuplicateName"
	DuplicateModelName  Kind = "DuplicateModelName"
	DuplicateScreenName Kind = "DuplicateScreenName"
	DuplicateFieldName  Kind = "DuplicateFieldName"
	DuplicateThemeName  Kind = "DuplicateThemeName"
	InvalidFieldType    Kind = "InvalidFieldType"
	InvalidDefaultValue Kind = "InvalidDefaultValue"
	InvalidConstraint   Kind = "InvalidConstraint"
	UnknownConstraint   Kind = "UnknownConstraint"
	UnknownReference    Kind = "UnknownReference"

	// Imports
	ImportFileNotFound     Kind = "ImportFileNotFound"
	CircularImportDetected Kind = "CircularImportDetected"

	// Themes
	UnknownBaseTheme       Kind = "UnknownBaseTheme"
	CircularThemeExtension Kind = "CircularThemeExtension"
	UnknownThemeToken      Kind = "UnknownThemeToken"
	UnknownTheme           Kind = "UnknownTheme"

	Internal Kind = "Internal"
)

// Position represents a location in source code
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	switch {
	case p.File != "" && p.Column > 0:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	case p.File != "":
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	case p.Column > 0:
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%d", p.Line)
	}
}

// ParseError is the single error type surfaced by the front end. Only
// Message is guaranteed; position and context are filled by Attach.
type ParseError struct {
	Kind        Kind
	Message     string
	Pos         Position
	LineContent string
	PrevLine    *string // nil at the start of a file
	NextLine    *string // nil at the end of a file
	Err         error
}

// New creates a ParseError without position.
func New(kind Kind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a ParseError around an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// At sets the error position without source context.
func (e *ParseError) At(file string, line, column int) *ParseError {
	e.Pos = Position{File: file, Line: line, Column: column}
	return e
}

func (e *ParseError) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Pos, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// HasContext reports whether the error already carries a source position.
func (e *ParseError) HasContext() bool {
	return e.Pos.Line > 0
}

// Detail renders the error with the surrounding source lines:
//
//	[InvalidFieldType] todo.seed:3:5: 'invalid_type' is not a valid type
//	   2 |     model Task {
//	>  3 |         title invalid_type
//	   4 |     }
func (e *ParseError) Detail() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if !e.HasContext() {
		return b.String()
	}
	width := len(fmt.Sprint(e.Pos.Line + 1))
	if e.PrevLine != nil {
		fmt.Fprintf(&b, "\n   %*d | %s", width, e.Pos.Line-1, *e.PrevLine)
	}
	fmt.Fprintf(&b, "\n>  %*d | %s", width, e.Pos.Line, e.LineContent)
	if e.NextLine != nil {
		fmt.Fprintf(&b, "\n   %*d | %s", width, e.Pos.Line+1, *e.NextLine)
	}
	return b.String()
}

// As returns the ParseError in err's chain, if any.
func As(err error) (*ParseError, bool) {
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a ParseError of the given kind.
func IsKind(err error, kind Kind) bool {
	pe, ok := As(err)
	return ok && pe.Kind == kind
}
