package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// validateName rejects names that could be used for path traversal or
// injection when they end up as archive entry names or cache keys.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func validateName(code Code, kind, name string) error {
	if name == "" {
		return New(code, "%s cannot be empty", kind)
	}

	if len(name) > 256 {
		return New(code, "%s too long (max 256 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(code, "%s contains invalid control characters", kind)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(code, "%s contains invalid characters: %q", kind, pattern)
		}
	}

	return nil
}

// mavenPartRegex matches a single groupId or artifactId.
var mavenPartRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateCoordinate validates a Maven coordinate of the form
// groupId:artifactId[:...]. Only groupId and artifactId are checked;
// versions and classifiers are free-form.
func ValidateCoordinate(coord string) error {
	if err := validateName(ErrCodeInvalidCoordinate, "coordinate", coord); err != nil {
		return err
	}

	parts := strings.Split(coord, ":")
	if len(parts) < 2 {
		return New(ErrCodeInvalidCoordinate, "coordinate must be groupId:artifactId[:version]: %q", coord)
	}
	for _, p := range parts[:2] {
		if !mavenPartRegex.MatchString(p) {
			return New(ErrCodeInvalidCoordinate, "invalid coordinate segment %q in %q", p, coord)
		}
	}
	return nil
}

// moduleIDRegex matches module ids such as "com.acme.web" or "kafka-extension".
var moduleIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*$`)

// ValidateModuleID validates a module or extension id.
func ValidateModuleID(id string) error {
	if err := validateName(ErrCodeInvalidModuleID, "module id", id); err != nil {
		return err
	}
	if !moduleIDRegex.MatchString(id) {
		return New(ErrCodeInvalidModuleID, "invalid module id: %q", id)
	}
	return nil
}

// ValidatePath validates an archive-relative path such as a shared
// resource prefix ("META-INF/services/") or a classpath segment.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a repository URL string.
// It ensures the URL has a safe scheme (http, https or file).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use http, https or file scheme")
}
