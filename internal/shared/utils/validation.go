package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxDocumentSize = 256 * 1024 // selection documents are small maps
	MaxAssetSize    = 8 * 1024 * 1024
)

// String length limits
const (
	MaxIDLength  = 128
	MaxKeyLength = 128
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// KeyPattern allows SafeIDPattern plus dots, for document keys like "theme.selection"
	KeyPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// PackagePattern matches dotted overlay package names
	PackagePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)
)

// ValidateSize checks if the data size is within limits
func ValidateSize(data []byte, maxSize int) error {
	if len(data) > maxSize {
		return fmt.Errorf("payload size %d bytes exceeds maximum %d bytes", len(data), maxSize)
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateKey validates a document key. Keys become file names in the file
// backend, so path separators are rejected along with ".." segments.
func ValidateKey(key string) error {
	if err := ValidateString(key, "key", 1, MaxKeyLength, true); err != nil {
		return err
	}

	if !KeyPattern.MatchString(key) || strings.Contains(key, "..") || strings.HasPrefix(key, ".") {
		return fmt.Errorf("key %q contains invalid characters", key)
	}

	return nil
}

// ValidatePackage validates an overlay package name
func ValidatePackage(pkg string) error {
	if err := ValidateString(pkg, "package", 1, MaxIDLength*2, true); err != nil {
		return err
	}

	if !PackagePattern.MatchString(pkg) {
		return fmt.Errorf("package %q is not a dotted identifier", pkg)
	}

	return nil
}
