package errors

import "strings"

// Source keeps the lines of one file so failures can be reported with their
// neighbours.
type Source struct {
	File  string
	lines []string
}

func NewSource(file, text string) *Source {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Source{File: file, lines: strings.Split(text, "\n")}
}

// Line returns the text of a 1-based line.
func (s *Source) Line(n int) (string, bool) {
	if n < 1 || n > len(s.lines) {
		return "", false
	}
	return s.lines[n-1], true
}

// Attach decorates err with the position and ±1 line of context taken from
// the source. Errors that already carry context are returned unchanged, and
// foreign errors are converted to ParseError of kind Internal.
func (s *Source) Attach(err error, line, column int) error {
	if err == nil {
		return nil
	}
	pe, ok := As(err)
	if !ok {
		pe = Wrap(Internal, err, "%v", err)
	}
	if pe.HasContext() {
		return pe
	}
	pe.Pos = Position{File: s.File, Line: line, Column: column}
	s.fill(pe)
	return pe
}

func (s *Source) fill(pe *ParseError) {
	line := pe.Pos.Line
	if text, ok := s.Line(line); ok {
		pe.LineContent = strings.TrimSpace(text)
	}
	if prev, ok := s.Line(line - 1); ok {
		prev = strings.TrimSpace(prev)
		pe.PrevLine = &prev
	}
	if next, ok := s.Line(line + 1); ok {
		next = strings.TrimSpace(next)
		pe.NextLine = &next
	}
}

// SourceSet indexes the sources of one parse by file name.
type SourceSet map[string]*Source

// Add registers src under its file name.
func (ss SourceSet) Add(src *Source) {
	ss[src.File] = src
}

// Contextualize fills the line context of an error raised after parsing,
// when only its position is known. Other errors are returned unchanged.
func (ss SourceSet) Contextualize(err error) error {
	pe, ok := As(err)
	if !ok || !pe.HasContext() || pe.LineContent != "" {
		return err
	}
	if src, ok := ss[pe.Pos.File]; ok {
		src.fill(pe)
	}
	return err
}
