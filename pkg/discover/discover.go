// Package discover finds stack directories beneath a scan root.
//
// A directory is a stack when it contains a dependency manifest
// ("dependencies.json" by default) or, in the extended variant, a recognized
// marker file (".stack" by default) even without a manifest. The walk is
// bounded: directories deeper than MaxDepth below the root are not entered.
//
// Discovery is pure I/O around the graph core: it determines which stack
// names exist and which manifests to ingest, and performs the directory
// existence checks backing the graph's Exists flags. No manifest content is
// interpreted here.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/stackplan/pkg/errors"
	"github.com/example/stackplan/pkg/observability"
)

// DefaultMaxDepth bounds the directory walk, matching the depth at which
// stack trees are conventionally laid out (root/env/stack).
const DefaultMaxDepth = 2

// DefaultMarker is the marker filename that identifies a stack directory
// carrying no manifest.
const DefaultMarker = ".stack"

// Stack is one discovered stack directory.
type Stack struct {
	// Name is the stack identifier: the directory's path relative to the
	// scan root, prefixed with "./". The root itself is "./.".
	Name string

	// Dir is the absolute directory path.
	Dir string

	// ManifestPath is the absolute path of the stack's manifest, or empty
	// for marker-only stacks (which declare no dependencies).
	ManifestPath string
}

// Options configures a discovery walk.
type Options struct {
	// MaxDepth is the maximum directory depth below the root to scan.
	// Depth 0 is the root itself. Zero means DefaultMaxDepth.
	MaxDepth int

	// ManifestName is the manifest filename. Empty means "dependencies.json".
	ManifestName string

	// MarkerName is the marker filename for manifest-less stacks.
	// Empty disables the marker variant.
	MarkerName string
}

func (o *Options) setDefaults() {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.ManifestName == "" {
		o.ManifestName = "dependencies.json"
	}
}

// Discover walks root up to opts.MaxDepth and returns the stack directories
// found, in walk (lexical) order. Each discovered stack is mirrored to the
// registered [observability.DiscoveryHooks].
func Discover(root string, opts Options) ([]Stack, error) {
	opts.setDefaults()
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve root %s", root)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeNotFound, "scan root is not a directory: %s", root)
	}

	var stacks []Stack
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		depth, derr := dirDepth(absRoot, path)
		if derr != nil {
			return derr
		}
		if depth > opts.MaxDepth {
			return fs.SkipDir
		}

		manifestPath := filepath.Join(path, opts.ManifestName)
		if fileExists(manifestPath) {
			s := Stack{Name: nameFor(absRoot, path), Dir: path, ManifestPath: manifestPath}
			stacks = append(stacks, s)
			observability.Discovery().OnStackFound(s.Name, s.ManifestPath)
			return nil
		}

		if opts.MarkerName != "" && fileExists(filepath.Join(path, opts.MarkerName)) {
			s := Stack{Name: nameFor(absRoot, path), Dir: path}
			stacks = append(stacks, s)
			observability.Discovery().OnStackFound(s.Name, "")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "walk %s", root)
	}

	observability.Discovery().OnWalkComplete(absRoot, len(stacks), time.Since(start))
	return stacks, nil
}

// DirExists reports whether the stack name refers to a real directory under
// root. This backs the graph's construction-time existence validation.
func DirExists(root, name string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
	return err == nil && info.IsDir()
}

// nameFor converts an absolute stack directory into the stable identity key:
// the slash-separated path relative to root, prefixed with "./".
func nameFor(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}
	return "./" + filepath.ToSlash(rel)
}

func dirDepth(root, path string) (int, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0, err
	}
	if rel == "." {
		return 0, nil
	}
	return strings.Count(rel, string(filepath.Separator)) + 1, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
