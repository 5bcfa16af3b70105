package theme

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
)

// Groups are the top-level property groups a theme may declare.
var Groups = map[string]bool{
	"colors":     true,
	"typography": true,
	"spacing":    true,
	"borders":    true,
	"shadows":    true,
}

// Merge overlays child onto base and returns a new tree. Groups present in
// both are merged recursively; on any other conflict the child wins.
// Neither input is modified.
func Merge(base, child ast.Tree) ast.Tree {
	out := base.Clone()
	if out == nil {
		out = ast.Tree{}
	}
	for key, cv := range child {
		childGroup, childIsGroup := cv.(ast.Tree)
		baseGroup, baseIsGroup := out[key].(ast.Tree)
		switch {
		case childIsGroup && baseIsGroup:
			out[key] = Merge(baseGroup, childGroup)
		case childIsGroup:
			out[key] = childGroup.Clone()
		default:
			out[key] = cv
		}
	}
	return out
}

// ApplyOverrides sets each dotted path of overrides on a copy of tree,
// creating intermediate groups as needed. Paths are applied in sorted order.
// A path that crosses an existing leaf, or ends on a group, fails with
// UnknownThemeToken.
func ApplyOverrides(tree ast.Tree, overrides map[string]string) (ast.Tree, error) {
	out := tree.Clone()
	if out == nil {
		out = ast.Tree{}
	}
	paths := make([]string, 0, len(overrides))
	for p := range overrides {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := setPath(out, path, overrides[path]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func setPath(tree ast.Tree, path, value string) error {
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return errors.New(errors.UnknownThemeToken, "invalid override path '%s'", path)
		}
	}

	cur := tree
	for i, part := range parts[:len(parts)-1] {
		next, exists := cur[part]
		if !exists {
			group := ast.Tree{}
			cur[part] = group
			cur = group
			continue
		}
		group, ok := next.(ast.Tree)
		if !ok {
			return errors.New(errors.UnknownThemeToken, "override '%s' crosses value '%s'", path, strings.Join(parts[:i+1], "."))
		}
		cur = group
	}

	last := parts[len(parts)-1]
	if _, isGroup := cur[last].(ast.Tree); isGroup {
		return errors.New(errors.UnknownThemeToken, "override '%s' targets a property group", path)
	}
	cur[last] = value
	return nil
}

// Resolver flattens theme inheritance over a fully collected Spec.
type Resolver struct {
	logger *zap.Logger

	byName    map[string]*ast.Theme
	resolved  map[string]*ast.Theme
	resolving map[string]bool
}

// New creates a Resolver. A nil logger is replaced by a no-op logger.
func New(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Resolve replaces every theme of spec by its resolved form and computes
// spec.ActiveTheme from the app's `use theme` reference. Themes are rebuilt
// from snapshots, so no base tree is ever mutated.
func (r *Resolver) Resolve(spec *ast.Spec) error {
	r.byName = make(map[string]*ast.Theme, len(spec.Themes))
	r.resolved = make(map[string]*ast.Theme, len(spec.Themes))
	r.resolving = make(map[string]bool)
	for _, t := range spec.Themes {
		r.byName[t.Name] = t
	}

	themes := make([]*ast.Theme, 0, len(spec.Themes))
	for _, t := range spec.Themes {
		res, err := r.resolveTheme(t)
		if err != nil {
			return err
		}
		themes = append(themes, res)
	}
	spec.Themes = themes

	spec.ActiveTheme = nil
	if spec.App == nil || spec.App.Theme == "" {
		return nil
	}
	base, ok := r.resolved[spec.App.Theme]
	if !ok {
		pos := spec.App.Pos
		return errors.New(errors.UnknownTheme, "app '%s' uses unknown theme '%s'", spec.App.Name, spec.App.Theme).
			At(pos.File, pos.Line, pos.Column)
	}
	active := base.Clone()
	if len(spec.App.ThemeOverrides) > 0 {
		props, err := ApplyOverrides(active.Properties, spec.App.ThemeOverrides)
		if err != nil {
			return atTheme(err, spec.App.Pos)
		}
		active.Properties = props
	}
	spec.ActiveTheme = active
	r.logger.Debug("active theme resolved",
		zap.String("theme", active.Name),
		zap.Int("overrides", len(spec.App.ThemeOverrides)))
	return nil
}

func (r *Resolver) resolveTheme(t *ast.Theme) (*ast.Theme, error) {
	if res, ok := r.resolved[t.Name]; ok {
		return res, nil
	}
	if t.IsResolved() {
		res := t.Clone()
		if res.Properties == nil {
			res.Properties = ast.Tree{}
		}
		if len(res.Lineage) == 0 {
			res.Lineage = []string{t.Name}
		}
		r.resolved[t.Name] = res
		return res, nil
	}
	if err := r.checkChain(t); err != nil {
		return nil, err
	}

	r.resolving[t.Name] = true
	defer delete(r.resolving, t.Name)

	res := &ast.Theme{
		Name:       t.Name,
		Title:      t.Title,
		Properties: t.Properties.Clone(),
		Lineage:    []string{t.Name},
		Pos:        t.Pos,
	}
	if t.Extends != "" {
		base, err := r.resolveTheme(r.byName[t.Extends])
		if err != nil {
			return nil, err
		}
		res.Properties = Merge(base.Properties, t.Properties)
		res.Lineage = append(res.Lineage, base.Lineage...)
	}
	if len(t.Overrides) > 0 {
		props, err := ApplyOverrides(res.Properties, t.Overrides)
		if err != nil {
			return nil, atTheme(err, t.Pos)
		}
		res.Properties = props
	}
	if res.Properties == nil {
		res.Properties = ast.Tree{}
	}

	r.resolved[t.Name] = res
	r.logger.Debug("theme resolved",
		zap.String("theme", t.Name),
		zap.Strings("lineage", res.Lineage),
		zap.Strings("groups", res.Properties.Keys()))
	return res, nil
}

// checkChain walks the extension chain of t before any merge happens.
func (r *Resolver) checkChain(t *ast.Theme) error {
	visited := map[string]bool{t.Name: true}
	chain := []string{t.Name}
	cur := t
	for cur.Extends != "" {
		base, ok := r.byName[cur.Extends]
		if !ok {
			return errors.New(errors.UnknownBaseTheme, "base theme '%s' not found for theme '%s'", cur.Extends, cur.Name).
				At(cur.Pos.File, cur.Pos.Line, cur.Pos.Column)
		}
		chain = append(chain, base.Name)
		if visited[base.Name] || r.resolving[base.Name] {
			return errors.New(errors.CircularThemeExtension, "circular theme extension: %s", strings.Join(chain, " -> ")).
				At(t.Pos.File, t.Pos.Line, t.Pos.Column)
		}
		if _, done := r.resolved[base.Name]; done {
			return nil
		}
		visited[base.Name] = true
		cur = base
	}
	return nil
}

func atTheme(err error, pos ast.Pos) error {
	if pe, ok := errors.As(err); ok && !pe.HasContext() {
		return pe.At(pos.File, pos.Line, pos.Column)
	}
	return err
}
