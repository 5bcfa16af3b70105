package ast

// Index is a name-keyed view of the declarations of a Spec. Code that builds
// a Spec adds through the Index so that lookups stay constant-time while the
// Spec slices keep source order.
type Index struct {
	spec    *Spec
	models  map[string]*Model
	screens map[string]*Screen
	themes  map[string]int
	fields  map[*Model]map[string]*Field
}

// NewIndex indexes the current declarations of spec.
func NewIndex(spec *Spec) *Index {
	ix := &Index{
		spec:    spec,
		models:  make(map[string]*Model, len(spec.Models)),
		screens: make(map[string]*Screen, len(spec.Screens)),
		themes:  make(map[string]int, len(spec.Themes)),
		fields:  make(map[*Model]map[string]*Field, len(spec.Models)),
	}
	for _, m := range spec.Models {
		ix.indexModel(m)
	}
	for _, s := range spec.Screens {
		ix.screens[s.Name] = s
	}
	for i, t := range spec.Themes {
		ix.themes[t.Name] = i
	}
	return ix
}

func (ix *Index) indexModel(m *Model) {
	ix.models[m.Name] = m
	fields := make(map[string]*Field, len(m.Fields))
	for _, f := range m.Fields {
		fields[f.Name] = f
	}
	ix.fields[m] = fields
}

func (ix *Index) Model(name string) *Model   { return ix.models[name] }
func (ix *Index) Screen(name string) *Screen { return ix.screens[name] }

func (ix *Index) Theme(name string) *Theme {
	if i, ok := ix.themes[name]; ok {
		return ix.spec.Themes[i]
	}
	return nil
}

// Field returns the field of m with the given name, or nil.
func (ix *Index) Field(m *Model, name string) *Field {
	return ix.fields[m][name]
}

// AddModel appends m. The caller checks for duplicates.
func (ix *Index) AddModel(m *Model) {
	ix.spec.Models = append(ix.spec.Models, m)
	ix.indexModel(m)
}

// AddField appends f to m.
func (ix *Index) AddField(m *Model, f *Field) {
	m.Fields = append(m.Fields, f)
	if ix.fields[m] == nil {
		ix.fields[m] = map[string]*Field{}
	}
	ix.fields[m][f.Name] = f
}

// AddScreen appends s. The caller checks for duplicates.
func (ix *Index) AddScreen(s *Screen) {
	ix.spec.Screens = append(ix.spec.Screens, s)
	ix.screens[s.Name] = s
}

// PutTheme appends t, or replaces in place a theme of the same name.
// It reports whether a theme was replaced.
func (ix *Index) PutTheme(t *Theme) bool {
	if i, ok := ix.themes[t.Name]; ok {
		ix.spec.Themes[i] = t
		return true
	}
	ix.themes[t.Name] = len(ix.spec.Themes)
	ix.spec.Themes = append(ix.spec.Themes, t)
	return false
}
