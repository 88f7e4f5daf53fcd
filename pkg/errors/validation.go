package errors

import (
	"strings"
	"unicode"
)

// ValidateStackName validates a stack identifier for safety and correctness.
// Stack names are relative paths prefixed with "./" (e.g., "./network/vpc").
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Must start with "./"
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - No backslashes
//   - Maximum length of 500 characters
func ValidateStackName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "stack name cannot be empty")
	}

	const maxNameLength = 500
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPath, "stack name too long (max %d characters)", maxNameLength)
	}

	if !strings.HasPrefix(name, "./") {
		return New(ErrCodeInvalidPath, "stack name must be a relative path starting with ./ (got %q)", name)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "stack name contains invalid characters")
		}
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "stack name cannot contain path traversal sequences (..)")
	}

	if strings.Contains(name[1:], "//") {
		return New(ErrCodeInvalidPath, "stack name cannot contain double slashes")
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidPath, "stack name cannot contain backslashes")
	}

	return nil
}

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	return nil
}
