// Package workspace finds .seed files on disk and checks many entry files
// at once.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/btouchard/seed/internal/compiler"
	"github.com/btouchard/seed/internal/compiler/ast"
)

// Ext is the extension of Seed source files.
const Ext = ".seed"

// Discover expands each pattern into absolute paths of .seed files. A
// pattern is a file, a directory (walked recursively, hidden directories
// skipped) or a doublestar glob such as "specs/**/*.seed". The result is
// sorted and free of duplicates.
func Discover(ctx context.Context, patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
		return nil
	}

	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if hasMeta(pattern) {
			matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %s failed: %w", pattern, err)
			}
			for _, m := range matches {
				if err := add(m); err != nil {
					return nil, err
				}
			}
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(pattern); err != nil {
				return nil, err
			}
			continue
		}

		files, err := walk(ctx, pattern)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := add(f); err != nil {
				return nil, err
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// walk collects the .seed files below root. fastwalk calls back from
// several goroutines.
func walk(ctx context.Context, root string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return fastwalk.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) == Ext {
			mu.Lock()
			files = append(files, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s failed: %w", root, err)
	}
	return files, nil
}

// Result is the outcome of compiling one entry file.
type Result struct {
	Path string
	Spec *ast.Spec
	Err  error
}

// Check compiles every path independently, using up to workers goroutines
// (GOMAXPROCS when workers <= 0). Results come back in the order of paths.
func Check(ctx context.Context, paths []string, opts compiler.Options, workers int) []Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, len(paths)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				if err := ctx.Err(); err != nil {
					results[i] = Result{Path: path, Err: err}
					continue
				}
				spec, err := compiler.ParseFile(path, opts)
				results[i] = Result{Path: path, Spec: spec, Err: err}
				if err != nil {
					logger.Debug("check failed", zap.String("path", path), zap.Error(err))
				}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
