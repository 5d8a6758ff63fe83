package services

import "strings"

// PathClass is the result of classifying a repository-relative path.
type PathClass string

const (
	PathAllowed   PathClass = "allowed"
	PathForbidden PathClass = "forbidden"
	PathUnlisted  PathClass = "unlisted"
)

// PolicyOptions are override flags for privileged callers (test harnesses).
// Both default to false.
type PolicyOptions struct {
	AllowForbidden      bool
	AllowNonWhitelisted bool
}

// PathPolicy classifies repository-relative paths with allow-list semantics:
// forbidden rules win over allow rules, and anything matching neither is
// rejected by default.
type PathPolicy struct {
	AllowedDirs    []string
	AllowedFiles   []string
	ForbiddenDirs  []string
	ForbiddenFiles []string
}

// DefaultPathPolicy returns the rule set used in production: governance and
// documentation trees are writable, package manifests, lockfiles and CI
// workflows are never writable.
func DefaultPathPolicy() *PathPolicy {
	return &PathPolicy{
		AllowedDirs:  []string{"docs", "src", "tests", ".repo"},
		AllowedFiles: []string{"README.md", "CHANGELOG.md", "CONTRIBUTING.md", "LICENSE"},
		ForbiddenDirs: []string{
			".git",
			".github/workflows",
			"node_modules",
		},
		ForbiddenFiles: []string{
			"package.json",
			"package-lock.json",
			"npm-shrinkwrap.json",
			"yarn.lock",
			"pnpm-lock.yaml",
			"go.sum",
			"Cargo.lock",
			"Gemfile.lock",
			"composer.lock",
			"poetry.lock",
		},
	}
}

// NormalizePath converts backslash separators to forward slashes and strips
// one leading and one trailing slash. It is idempotent.
func NormalizePath(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	return p
}

// Classify normalizes path and matches it against the rule sets. Forbidden
// rules take precedence over allow rules.
func (pp *PathPolicy) Classify(path string) PathClass {
	p := NormalizePath(path)
	if p == "" || p == "." {
		return PathUnlisted
	}
	if pp.isForbidden(p) {
		return PathForbidden
	}
	if pp.isAllowed(p) {
		return PathAllowed
	}
	return PathUnlisted
}

func (pp *PathPolicy) isForbidden(p string) bool {
	base := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		base = p[i+1:]
	}
	for _, f := range pp.ForbiddenFiles {
		if base == f {
			return true
		}
	}
	// Lockfile naming conventions, whatever the package manager.
	if strings.HasSuffix(base, ".lock") || strings.Contains(base, "-lock.") {
		return true
	}
	for _, d := range pp.ForbiddenDirs {
		if p == d || strings.HasPrefix(p, d+"/") {
			return true
		}
	}
	return false
}

func (pp *PathPolicy) isAllowed(p string) bool {
	for _, f := range pp.AllowedFiles {
		if p == f {
			return true
		}
	}
	for _, d := range pp.AllowedDirs {
		if p == d || strings.HasPrefix(p, d+"/") {
			return true
		}
	}
	return false
}

// Check returns a non-empty reason when path is rejected under opts. The
// empty string and a bare root path are rejected regardless of overrides.
func (pp *PathPolicy) Check(path string, opts PolicyOptions) string {
	p := NormalizePath(path)
	if p == "" || p == "." {
		return "empty or root path"
	}
	if pp.isForbidden(p) && !opts.AllowForbidden {
		return "path is forbidden"
	}
	if !pp.isAllowed(p) && !opts.AllowNonWhitelisted {
		return "path is not in the allowed list"
	}
	return ""
}

// ValidatePaths checks every path and aggregates all violations into a
// single PathPolicyError, so the caller sees the full batch at once.
func (pp *PathPolicy) ValidatePaths(paths []string, opts PolicyOptions) error {
	var violations []PathViolation
	for _, path := range paths {
		if reason := pp.Check(path, opts); reason != "" {
			violations = append(violations, PathViolation{Path: path, Reason: reason})
		}
	}
	if len(violations) > 0 {
		return &PathPolicyError{Violations: violations}
	}
	return nil
}
