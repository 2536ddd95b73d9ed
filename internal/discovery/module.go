// Package discovery finds Terraform root modules under a directory
// tree. tf2tosca normally translates a single project given directly
// as its input directory, but this package backs the CLI's batch mode:
// when the batch command is given a parent directory holding several
// independent root modules (a monorepo of environments/services), it walks
// each of them and runs the translation engine once per module.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// RootModule is a directory containing at least one *.tf file.
type RootModule struct {
	// Path is the absolute filesystem path to the module directory.
	Path string
	// RelativePath is Path relative to the scan root, using "/"
	// separators regardless of platform.
	RelativePath string
}

// String returns the module's relative path, used as its stable ID.
func (m *RootModule) String() string {
	return m.RelativePath
}

// Scanner discovers Terraform root modules in a directory tree.
type Scanner struct {
	// RootDir is the root directory to scan.
	RootDir string
	// MaxDepth bounds how many path segments below RootDir are
	// considered; 0 means unbounded.
	MaxDepth int
}

// NewScanner creates a new Scanner with the given root directory.
func NewScanner(rootDir string) *Scanner {
	return &Scanner{RootDir: rootDir, MaxDepth: 6}
}

// skipDirNames are never descended into: they hold downloaded modules,
// cached provider plugins, or nested examples that are not independent
// root modules in their own right.
var skipDirNames = map[string]bool{
	".terraform": true,
	".git":       true,
	"examples":   true,
}

// Scan walks the directory tree and returns every directory containing
// *.tf files, in deterministic (lexical) order. A root module is not
// descended into further: Terraform projects don't nest root modules,
// only child modules referenced by source, and those are resolved by
// terraform init rather than by directory discovery.
func (s *Scanner) Scan() ([]*RootModule, error) {
	absRoot, err := filepath.Abs(s.RootDir)
	if err != nil {
		return nil, err
	}

	var modules []*RootModule

	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		if s.MaxDepth > 0 && depth > s.MaxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}

		if containsTerraformFiles(entries) {
			rel, err := filepath.Rel(absRoot, dir)
			if err != nil {
				return err
			}
			if rel == "." {
				rel = ""
			}
			modules = append(modules, &RootModule{
				Path:         dir,
				RelativePath: filepath.ToSlash(rel),
			})
			return nil
		}

		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") && e.Name() != "." {
				if !e.IsDir() {
					continue
				}
			}
			if !e.IsDir() {
				continue
			}
			if skipDirNames[e.Name()] {
				continue
			}
			if err := walk(filepath.Join(dir, e.Name()), depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(absRoot, 0); err != nil {
		return nil, err
	}

	sort.Slice(modules, func(i, j int) bool {
		return modules[i].RelativePath < modules[j].RelativePath
	})
	return modules, nil
}

// ValidateAll concurrently stats every module's directory, surfacing
// the first error encountered. It uses errgroup the way a batch
// translate run validates candidate root modules before spending time
// invoking terraform against any of them.
func ValidateAll(ctx context.Context, modules []*RootModule) error {
	g, _ := errgroup.WithContext(ctx)
	for _, m := range modules {
		m := m
		g.Go(func() error {
			info, err := os.Stat(m.Path)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return &NotADirectoryError{Path: m.Path}
			}
			return nil
		})
	}
	return g.Wait()
}

// NotADirectoryError signals a discovered module path stopped being a
// directory between Scan and ValidateAll (e.g. concurrent removal).
type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return e.Path + " is not a directory"
}

func containsTerraformFiles(entries []os.DirEntry) bool {
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tf") {
			return true
		}
	}
	return false
}

// ModuleIndex provides fast lookup of discovered root modules.
type ModuleIndex struct {
	modules []*RootModule
	byPath  map[string]*RootModule
}

// NewModuleIndex creates an index from a list of modules.
func NewModuleIndex(modules []*RootModule) *ModuleIndex {
	idx := &ModuleIndex{
		modules: modules,
		byPath:  make(map[string]*RootModule, len(modules)),
	}
	for _, m := range modules {
		idx.byPath[m.Path] = m
		idx.byPath[m.RelativePath] = m
	}
	return idx
}

// All returns all modules.
func (idx *ModuleIndex) All() []*RootModule {
	return idx.modules
}

// ByPath returns a module by its absolute or relative path.
func (idx *ModuleIndex) ByPath(path string) *RootModule {
	return idx.byPath[path]
}

// Filter returns modules matching the given predicate.
func (idx *ModuleIndex) Filter(fn func(*RootModule) bool) []*RootModule {
	var result []*RootModule
	for _, m := range idx.modules {
		if fn(m) {
			result = append(result, m)
		}
	}
	return result
}
