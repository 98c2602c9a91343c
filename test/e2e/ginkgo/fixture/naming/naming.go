// Package naming predicts how Fleet treats GitRepo names.
package naming

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	// MaxBundleNameLength is the cap Fleet applies to names derived from a GitRepo (bundles, releases).
	MaxBundleNameLength = 53
	// trimmedHashSuffix is the "-xxxxx" suffix Fleet appends after trimming.
	trimmedHashSuffix = 6
)

// ValidateGitRepoName returns the RFC 1123 violations of name; empty means the dashboard accepts it.
func ValidateGitRepoName(name string) []string {
	return validation.IsDNS1123Subdomain(name)
}

// IsValidGitRepoName reports whether the dashboard accepts name.
func IsValidGitRepoName(name string) bool {
	return len(ValidateGitRepoName(name)) == 0
}

// BundlePrefix returns the part of a GitRepo name that survives in every bundle name derived from it.
// Bundle names longer than MaxBundleNameLength keep their first MaxBundleNameLength-6 characters.
func BundlePrefix(repoName string) string {
	keep := MaxBundleNameLength - trimmedHashSuffix
	if len(repoName) <= keep {
		return repoName
	}
	return strings.TrimRight(repoName[:keep], "-")
}

// IsTrimmedBundleName reports whether bundle is a plausible, capped name derived from repoName.
func IsTrimmedBundleName(bundle, repoName string) bool {
	bundle = strings.TrimSpace(bundle)
	return len(bundle) <= MaxBundleNameLength && strings.HasPrefix(bundle, BundlePrefix(repoName))
}
