// Package manifest reads and validates per-stack dependency manifests.
//
// A manifest is a JSON file (by default "dependencies.json") in a stack
// directory declaring which stacks must be deployed first:
//
//	{
//	  "dependencies": {
//	    "paths": ["./network", "./database"]
//	  }
//	}
//
// The "dependencies.paths" property is required and must be a list of
// strings. Anything else - malformed JSON, a missing property, a wrong type -
// is an INVALID_MANIFEST error that surfaces the underlying validation
// message. Manifest errors are fatal to a run; there is no partial-success
// mode.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/stackplan/pkg/errors"
)

// DefaultFilename is the manifest filename looked up in each stack directory.
const DefaultFilename = "dependencies.json"

// document mirrors the manifest shape with pointer fields so that a missing
// property is distinguishable from an empty one.
type document struct {
	Dependencies *struct {
		Paths *[]string `json:"paths"`
	} `json:"dependencies"`
}

// Parse validates raw manifest content and returns the declared dependency
// paths. An empty paths list is valid and returns an empty (non-nil) slice.
func Parse(data []byte) ([]string, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed validating manifest")
	}
	if doc.Dependencies == nil {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "required property missing: dependencies")
	}
	if doc.Dependencies.Paths == nil {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "required property missing: dependencies.paths")
	}

	paths := make([]string, 0, len(*doc.Dependencies.Paths))
	paths = append(paths, *doc.Dependencies.Paths...)
	return paths, nil
}

// Load reads the manifest at path and returns its declared dependency paths.
// Read failures and validation failures both identify the offending file.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}

	paths, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return paths, nil
}
