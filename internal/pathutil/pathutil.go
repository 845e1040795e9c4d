// Package pathutil converts between filesystem paths and vault-relative
// note references.
package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizePath accepts either separator style and returns a cleaned path for
// the current platform.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// VaultRelative returns target relative to vaultDir using forward slashes.
func VaultRelative(vaultDir, target string) (string, error) {
	rel, err := filepath.Rel(NormalizePath(vaultDir), NormalizePath(target))
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// InVault reports the vault-relative path of target when it lies strictly
// inside vaultDir.
func InVault(vaultDir, target string) (string, bool) {
	rel, err := VaultRelative(vaultDir, target)
	if err != nil || rel == "." || rel == "" {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// CleanRef normalizes a user or link supplied note reference: separators
// become "/", and a leading "./" and surrounding slashes are dropped. Case is
// preserved.
func CleanRef(ref string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(ref, "\\", "/"))
	for strings.HasPrefix(cleaned, "./") {
		cleaned = cleaned[2:]
	}
	return strings.Trim(cleaned, "/")
}
