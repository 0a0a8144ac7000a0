package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxPackageNameLength is the registry limit on package name length.
const maxPackageNameLength = 214

// packageNameRegex matches npm package names, optionally scoped.
// Names are URL-safe and a scope is "@scope/". The registry still serves
// legacy mixed-case names such as "JSONStream", so only scopes must be
// lowercase.
var packageNameRegex = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._~-]*/)?[A-Za-z0-9][A-Za-z0-9._~-]*$`)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal when the package is
// unpacked into the package store.
//
// The validation rules follow the npm registry:
//   - No empty names, maximum length of 214 characters
//   - No control characters or path traversal sequences
//   - URL-safe characters, optionally prefixed by a lowercase "@scope/"
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > maxPackageNameLength {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	if !packageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid package name: %q", name)
	}
	return nil
}
