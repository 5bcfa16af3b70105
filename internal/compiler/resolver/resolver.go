package resolver

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
	"github.com/btouchard/seed/internal/compiler/parser"
	"github.com/btouchard/seed/internal/stdlib"
)

// Options configures a Resolver.
type Options struct {
	Strict bool
	// StdlibPath replaces the embedded standard library with a directory.
	StdlibPath string
	Logger     *zap.Logger
}

// Resolver handles recursive import resolution for .seed files. A Resolver
// serves one top-level parse: its cache and import chain are never shared.
type Resolver struct {
	opts   Options
	logger *zap.Logger
	stdlib fs.FS

	parsed  map[string]*parser.File // cache: resolved path → parsed file
	loading map[string]bool         // files of the current import chain
	merged  map[string]bool         // files already merged into the spec
	sources errors.SourceSet
	index   *ast.Index // names merged so far
}

// New creates a new Resolver
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		opts:    opts,
		logger:  logger,
		stdlib:  stdlib.FS,
		parsed:  make(map[string]*parser.File),
		loading: make(map[string]bool),
		merged:  make(map[string]bool),
		sources: errors.SourceSet{},
	}
}

// Sources returns the source of every file read so far, keyed by path.
func (r *Resolver) Sources() errors.SourceSet {
	return r.sources
}

// Resolve merges entry and everything it imports, transitively, into a new
// Spec. Declarations are merged in source order, an import contributing at
// its own position. Only the entry file's app block is kept.
func (r *Resolver) Resolve(entry *parser.File) (*ast.Spec, error) {
	spec := ast.NewSpec()
	spec.App = entry.Spec.App
	spec.Imports = entry.Spec.Imports
	spec.Files = []string{}
	r.index = ast.NewIndex(spec)

	r.sources.Add(entry.Source)
	if entry.Path != "" {
		r.loading[entry.Path] = true
		defer delete(r.loading, entry.Path)
		r.merged[entry.Path] = true
	}

	if err := r.mergeFile(entry, spec); err != nil {
		return nil, err
	}

	// An imported model or screen may carry the app's name.
	if app := spec.App; app != nil && (r.index.Model(app.Name) != nil || r.index.Screen(app.Name) != nil) {
		err := errors.New(errors.DuplicateName, "Duplicate name: %s", app.Name)
		return nil, entry.Source.Attach(err, app.Pos.Line, app.Pos.Column)
	}
	return spec, nil
}

// mergeFile adds the declarations of file to spec, resolving its imports
// on the way.
func (r *Resolver) mergeFile(file *parser.File, spec *ast.Spec) error {
	if file.Path != "" {
		spec.Files = append(spec.Files, file.Path)
	}

	for _, decl := range file.Decls {
		var err error
		switch d := decl.(type) {
		case *ast.Import:
			err = r.resolveImport(d, file, spec)
		case *ast.Model:
			if r.index.Model(d.Name) != nil {
				err = file.Source.Attach(errors.New(errors.DuplicateName, "Duplicate name: model %s is already declared", d.Name), d.Pos.Line, d.Pos.Column)
				break
			}
			r.index.AddModel(d)
		case *ast.Screen:
			if r.index.Screen(d.Name) != nil {
				err = file.Source.Attach(errors.New(errors.DuplicateName, "Duplicate name: screen %s is already declared", d.Name), d.Pos.Line, d.Pos.Column)
				break
			}
			r.index.AddScreen(d)
		case *ast.Theme:
			// A later theme of the same name replaces the earlier one in place.
			if r.index.PutTheme(d) {
				r.logger.Debug("theme replaced", zap.String("theme", d.Name), zap.String("path", file.Path))
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveImport handles a single import (recursive)
func (r *Resolver) resolveImport(imp *ast.Import, from *parser.File, spec *ast.Spec) error {
	target, err := r.resolvePath(imp.Path, from.Path)
	if err != nil {
		return from.Source.Attach(err, imp.Pos.Line, imp.Pos.Column)
	}

	// Check for circular imports BEFORE loading
	if r.loading[target] {
		err := errors.New(errors.CircularImportDetected, "Circular import detected: %s", target)
		return from.Source.Attach(err, imp.Pos.Line, imp.Pos.Column)
	}
	if r.merged[target] {
		r.logger.Debug("import already merged", zap.String("path", target))
		return nil
	}

	r.loading[target] = true
	defer delete(r.loading, target)

	file, err := r.loadFile(target)
	if err != nil {
		return from.Source.Attach(err, imp.Pos.Line, imp.Pos.Column)
	}
	if file.Spec.App != nil {
		r.logger.Debug("app block of imported file ignored",
			zap.String("path", target),
			zap.String("app", file.Spec.App.Name))
	}

	r.merged[target] = true
	if err := r.mergeFile(file, spec); err != nil {
		return err
	}
	r.logger.Debug("import resolved",
		zap.String("import", imp.Path),
		zap.String("path", target),
		zap.String("from", from.Path))
	return nil
}

// resolvePath converts an import path to the key of the file it names:
// an absolute path, or a "std/" path inside the embedded library.
func (r *Resolver) resolvePath(importPath, fromPath string) (string, error) {
	if rest, ok := strings.CutPrefix(importPath, stdlib.Prefix); ok {
		if r.opts.StdlibPath == "" {
			return stdlib.Prefix + path.Clean(rest), nil
		}
		return absPath(filepath.Join(r.opts.StdlibPath, filepath.FromSlash(rest)))
	}

	// Relative imports from an embedded file stay inside the embedded library
	if rest, ok := strings.CutPrefix(fromPath, stdlib.Prefix); ok && r.opts.StdlibPath == "" && !filepath.IsAbs(importPath) {
		return stdlib.Prefix + path.Join(path.Dir(rest), importPath), nil
	}

	if filepath.IsAbs(importPath) {
		return filepath.Clean(importPath), nil
	}
	if fromPath == "" {
		return "", errors.New(errors.ImportFileNotFound, "Cannot resolve import %q: source has no base path", importPath)
	}
	return absPath(filepath.Join(filepath.Dir(fromPath), filepath.FromSlash(importPath)))
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(errors.ImportFileNotFound, err, "Failed to resolve path %s: %v", p, err)
	}
	return abs, nil
}

// loadFile reads and parses a .seed file (with caching)
func (r *Resolver) loadFile(key string) (*parser.File, error) {
	if cached, ok := r.parsed[key]; ok {
		return cached, nil
	}

	data, err := r.read(key)
	if err != nil {
		return nil, errors.Wrap(errors.ImportFileNotFound, err, "Import file not found: %s", key)
	}

	file, err := parser.ParseString(string(data), parser.Options{
		File:   key,
		Strict: r.opts.Strict,
		Logger: r.logger,
	})
	if err != nil {
		return nil, err
	}

	r.parsed[key] = file
	r.sources.Add(file.Source)
	return file, nil
}

func (r *Resolver) read(key string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(key, stdlib.Prefix); ok && r.opts.StdlibPath == "" {
		return fs.ReadFile(r.stdlib, rest)
	}
	return os.ReadFile(key)
}
