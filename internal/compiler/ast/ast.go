package ast

import "fmt"

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	Position() Pos
}

// Pos locates a declaration in its source file.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Spec is the root of a parsed Seed application description. Cross-entity
// references (field types, screen models, theme bases) are names resolved by
// lookup, never pointers.
type Spec struct {
	App     *App      `json:"app,omitempty" yaml:"app,omitempty" toml:"app,omitempty"`
	Models  []*Model  `json:"models" yaml:"models" toml:"models"`
	Screens []*Screen `json:"screens" yaml:"screens" toml:"screens"`
	Themes  []*Theme  `json:"themes" yaml:"themes" toml:"themes"`

	// ActiveTheme is the app's theme after inheritance and `use theme`
	// overrides. Nil when the app does not reference a theme.
	ActiveTheme *Theme `json:"activeTheme,omitempty" yaml:"activeTheme,omitempty" toml:"activeTheme,omitempty"`

	Imports []*Import `json:"-" yaml:"-" toml:"-"`
	Files   []string  `json:"-" yaml:"-" toml:"-"`
}

func (s *Spec) TokenLiteral() string { return "spec" }

// NewSpec returns an empty Spec with non-nil collections.
func NewSpec() *Spec {
	return &Spec{
		Models:  []*Model{},
		Screens: []*Screen{},
		Themes:  []*Theme{},
	}
}

// Model returns the model with the given name, or nil.
func (s *Spec) Model(name string) *Model {
	for _, m := range s.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Screen returns the screen with the given name, or nil.
func (s *Spec) Screen(name string) *Screen {
	for _, sc := range s.Screens {
		if sc.Name == name {
			return sc
		}
	}
	return nil
}

// Theme returns the theme with the given name, or nil.
func (s *Spec) Theme(name string) *Theme {
	for _, t := range s.Themes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// IsEmpty reports whether the spec holds no declaration at all.
func (s *Spec) IsEmpty() bool {
	return s.App == nil && len(s.Models) == 0 && len(s.Screens) == 0 && len(s.Themes) == 0
}

// ============ APP ============

// App represents: app Todo "Todo App" { ... }
type App struct {
	Name           string            `json:"name" yaml:"name" toml:"name"`
	Title          string            `json:"title" yaml:"title" toml:"title"`
	Theme          string            `json:"theme,omitempty" yaml:"theme,omitempty" toml:"theme,omitempty"`
	ThemeOverrides map[string]string `json:"themeOverrides,omitempty" yaml:"themeOverrides,omitempty" toml:"themeOverrides,omitempty"`
	Pos            Pos               `json:"-" yaml:"-" toml:"-"`
}

func (a *App) TokenLiteral() string { return "app" }
func (a *App) Position() Pos        { return a.Pos }

// ============ MODELS ============

// Model represents: model Task { ... }
type Model struct {
	Name   string   `json:"name" yaml:"name" toml:"name"`
	Fields []*Field `json:"fields" yaml:"fields" toml:"fields"`
	Pos    Pos      `json:"-" yaml:"-" toml:"-"`
}

func (m *Model) TokenLiteral() string { return "model" }
func (m *Model) Position() Pos        { return m.Pos }

// Field returns the field with the given name, or nil.
func (m *Model) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// TitleField returns the first field marked `as title`, or nil.
func (m *Model) TitleField() *Field {
	for _, f := range m.Fields {
		if f.IsTitle {
			return f
		}
	}
	return nil
}

// Field represents: title text as title {minLength: 3} = "Untitled"
type Field struct {
	Name        string                `json:"name" yaml:"name" toml:"name"`
	Type        string                `json:"type" yaml:"type" toml:"type"`
	Default     *string               `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
	IsTitle     bool                  `json:"isTitle,omitempty" yaml:"isTitle,omitempty" toml:"isTitle,omitempty"`
	IsReference bool                  `json:"isReference,omitempty" yaml:"isReference,omitempty" toml:"isReference,omitempty"`
	Constraints map[string]Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty" toml:"constraints,omitempty"`
	Pos         Pos                   `json:"-" yaml:"-" toml:"-"`
}

func (f *Field) TokenLiteral() string { return f.Name }
func (f *Field) Position() Pos        { return f.Pos }

// DefaultValue returns the coerced default and whether one was declared.
func (f *Field) DefaultValue() (string, bool) {
	if f.Default == nil {
		return "", false
	}
	return *f.Default, true
}

// Constraint is one entry of a field's inline constraint block. Number is
// only meaningful when Numeric is set.
type Constraint struct {
	Raw     string  `json:"raw" yaml:"raw" toml:"raw"`
	Number  float64 `json:"number,omitempty" yaml:"number,omitempty" toml:"number,omitempty"`
	Numeric bool    `json:"numeric,omitempty" yaml:"numeric,omitempty" toml:"numeric,omitempty"`
}

// ============ SCREENS ============

// Screen represents: screen Tasks using Task
type Screen struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Model string `json:"model" yaml:"model" toml:"model"`
	Pos   Pos    `json:"-" yaml:"-" toml:"-"`
}

func (s *Screen) TokenLiteral() string { return "screen" }
func (s *Screen) Position() Pos        { return s.Pos }

// ============ THEMES ============

// Theme represents: theme Dark "Dark mode" extends Light { ... }
type Theme struct {
	Name       string            `json:"name" yaml:"name" toml:"name"`
	Title      string            `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Extends    string            `json:"extends,omitempty" yaml:"extends,omitempty" toml:"extends,omitempty"`
	Properties Tree              `json:"properties" yaml:"properties" toml:"properties"`
	Overrides  map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty" toml:"overrides,omitempty"`

	// Lineage is the resolved extension chain, the theme itself first.
	Lineage []string `json:"lineage,omitempty" yaml:"lineage,omitempty" toml:"lineage,omitempty"`
	Pos     Pos      `json:"-" yaml:"-" toml:"-"`
}

func (t *Theme) TokenLiteral() string { return "theme" }
func (t *Theme) Position() Pos        { return t.Pos }

// IsResolved reports whether nothing is left to inherit or override.
func (t *Theme) IsResolved() bool {
	return t.Extends == "" && len(t.Overrides) == 0
}

// Clone returns a deep copy of the theme.
func (t *Theme) Clone() *Theme {
	c := *t
	c.Properties = t.Properties.Clone()
	if t.Overrides != nil {
		c.Overrides = make(map[string]string, len(t.Overrides))
		for k, v := range t.Overrides {
			c.Overrides[k] = v
		}
	}
	if t.Lineage != nil {
		c.Lineage = append([]string(nil), t.Lineage...)
	}
	return &c
}

// ============ IMPORTS ============

// Import represents: import "std/themes"
type Import struct {
	Path string `json:"path" yaml:"path" toml:"path"`
	Pos  Pos    `json:"-" yaml:"-" toml:"-"`
}

func (i *Import) TokenLiteral() string { return "import" }
func (i *Import) Position() Pos        { return i.Pos }
