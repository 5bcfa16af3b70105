package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestPositionString(t *testing.T) {
	tests := []struct {
		name     string
		pos      Position
		expected string
	}{
		{
			"with file and column",
			Position{File: "todo.seed", Line: 10, Column: 5},
			"todo.seed:10:5",
		},
		{
			"with file only",
			Position{File: "todo.seed", Line: 10},
			"todo.seed:10",
		},
		{
			"without file",
			Position{Line: 10, Column: 5},
			"10:5",
		},
		{
			"line only",
			Position{Line: 1},
			"1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.pos.String()
			if result != tt.expected {
				t.Errorf("Position.String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestParseErrorError(t *testing.T) {
	err := &ParseError{
		Kind:    InvalidFieldType,
		Message: "'invalid_type' is not a valid type",
		Pos:     Position{File: "todo.seed", Line: 3, Column: 9},
	}

	expected := "[InvalidFieldType] todo.seed:3:9: 'invalid_type' is not a valid type"
	if err.Error() != expected {
		t.Errorf("ParseError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestParseErrorWithoutPosition(t *testing.T) {
	err := New(UnknownBaseTheme, "base theme %q not found", "Dark")

	if err.HasContext() {
		t.Error("fresh error should not have context")
	}
	expected := `[UnknownBaseTheme] base theme "Dark" not found`
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestAttachContext(t *testing.T) {
	src := NewSource("todo.seed", "app Todo \"Todo\" {\n  model Task {\n    title invalid_type\n  }\n}")

	err := src.Attach(New(InvalidFieldType, "bad type"), 3, 5)

	pe, ok := As(err)
	if !ok {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if pe.Pos.Line != 3 || pe.Pos.File != "todo.seed" {
		t.Errorf("unexpected position %+v", pe.Pos)
	}
	if pe.LineContent != "title invalid_type" {
		t.Errorf("LineContent = %q", pe.LineContent)
	}
	if pe.PrevLine == nil || *pe.PrevLine != "model Task {" {
		t.Errorf("PrevLine = %v", pe.PrevLine)
	}
	if pe.NextLine == nil || *pe.NextLine != "}" {
		t.Errorf("NextLine = %v", pe.NextLine)
	}
}

func TestAttachAtFileBoundaries(t *testing.T) {
	src := NewSource("", "model")

	pe, _ := As(src.Attach(New(InvalidDeclaration, "invalid model declaration"), 1, 1))
	if pe.PrevLine != nil {
		t.Errorf("expected no previous line, got %q", *pe.PrevLine)
	}
	if pe.NextLine != nil {
		t.Errorf("expected no next line, got %q", *pe.NextLine)
	}
}

func TestAttachDoesNotDoubleWrap(t *testing.T) {
	inner := NewSource("b.seed", "one\ntwo\nthree")
	outer := NewSource("a.seed", "import \"b\"\nx\ny")

	err := inner.Attach(New(CircularImportDetected, "cycle"), 2, 1)
	err = outer.Attach(err, 1, 1)

	pe, _ := As(err)
	if pe.Pos.File != "b.seed" || pe.Pos.Line != 2 {
		t.Errorf("context was re-applied: %+v", pe.Pos)
	}
	if pe.LineContent != "two" {
		t.Errorf("LineContent = %q, want %q", pe.LineContent, "two")
	}
}

func TestAttachForeignError(t *testing.T) {
	src := NewSource("a.seed", "line")

	err := src.Attach(fmt.Errorf("boom"), 1, 0)

	if !IsKind(err, Internal) {
		t.Fatalf("expected Internal kind, got %v", err)
	}
	if src.Attach(nil, 1, 1) != nil {
		t.Error("Attach(nil) should return nil")
	}
}

func TestUnwrap(t *testing.T) {
	err := Wrap(ImportFileNotFound, fs.ErrNotExist, "import file not found: %s", "x.seed")

	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("expected errors.Is to see the wrapped cause")
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("parse failed: %w", New(UnclosedBlock, "unclosed"))

	if !IsKind(err, UnclosedBlock) {
		t.Error("IsKind should find the ParseError in the chain")
	}
	if IsKind(err, UnexpectedToken) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(fmt.Errorf("plain"), UnclosedBlock) {
		t.Error("IsKind matched a foreign error")
	}
}

func TestDetail(t *testing.T) {
	src := NewSource("todo.seed", "model Task {\n  done bool = maybe\n}")
	pe, _ := As(src.Attach(New(InvalidDefaultValue, "invalid default value for bool field: maybe"), 2, 3))

	detail := pe.Detail()

	for _, want := range []string{
		"[InvalidDefaultValue] todo.seed:2:3",
		"   1 | model Task {",
		">  2 | done bool = maybe",
		"   3 | }",
	} {
		if !strings.Contains(detail, want) {
			t.Errorf("Detail() missing %q, got:\n%s", want, detail)
		}
	}
}

func TestSourceSetContextualize(t *testing.T) {
	set := SourceSet{}
	set.Add(NewSource("themes.seed", "theme A extends A {\n}"))

	err := set.Contextualize(New(CircularThemeExtension, "circular theme extension: A -> A").At("themes.seed", 1, 1))

	pe, _ := As(err)
	if pe.LineContent != "theme A extends A {" {
		t.Errorf("LineContent = %q", pe.LineContent)
	}
	if pe.PrevLine != nil {
		t.Errorf("PrevLine = %q, want nil", *pe.PrevLine)
	}

	plain := New(UnknownTheme, "no position")
	if set.Contextualize(plain) != error(plain) {
		t.Error("error without position should pass through")
	}
}
