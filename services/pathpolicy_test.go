package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"docs/file.md":    "docs/file.md",
		"/docs/file.md/":  "docs/file.md",
		"docs\\file.md":   "docs/file.md",
		"\\docs\\sub\\":   "docs/sub",
		"":                "",
		"/":               "",
	}
	for in, want := range cases {
		got := NormalizePath(in)
		assert.Equal(t, want, got, "normalize %q", in)
		assert.Equal(t, got, NormalizePath(got), "normalization must be idempotent for %q", in)
	}
}

func TestClassify_Defaults(t *testing.T) {
	pp := DefaultPathPolicy()

	allowed := []string{
		"docs/guide.md",
		".repo/config.json",
		"README.md",
		"/docs/file.md/",
		"docs\\file.md",
		"src/pkg/thing.go",
		"tests/fixtures/a.txt",
	}
	for _, p := range allowed {
		assert.Equal(t, PathAllowed, pp.Classify(p), "path %q", p)
	}

	forbidden := []string{
		"package.json",
		"yarn.lock",
		"docs/deps.lock",
		"src/npm-shrinkwrap.json",
		"something-lock.yaml",
		".github/workflows/ci.yml",
		"/.github/workflows/ci.yml",
		".github\\workflows\\ci.yml",
		".git/config",
		"node_modules/left-pad/index.js",
	}
	for _, p := range forbidden {
		assert.Equal(t, PathForbidden, pp.Classify(p), "path %q", p)
	}

	unlisted := []string{
		"random.txt",
		"lib/x.js",
		"Makefile",
		"",
		"/",
	}
	for _, p := range unlisted {
		assert.Equal(t, PathUnlisted, pp.Classify(p), "path %q", p)
	}
}

func TestCheck_ForbiddenWinsOverAllowed(t *testing.T) {
	pp := DefaultPathPolicy()

	// docs/ is allow-listed but the lockfile suffix is forbidden.
	assert.Equal(t, "path is forbidden", pp.Check("docs/deps.lock", PolicyOptions{}))

	// Bypassing the forbidden rule falls back to the allow list.
	assert.Empty(t, pp.Check("docs/deps.lock", PolicyOptions{AllowForbidden: true}))

	// package.json is not allow-listed, so bypassing the forbidden rule
	// alone is not enough.
	assert.Equal(t, "path is not in the allowed list",
		pp.Check("package.json", PolicyOptions{AllowForbidden: true}))
	assert.Empty(t, pp.Check("package.json", PolicyOptions{AllowForbidden: true, AllowNonWhitelisted: true}))
}

func TestCheck_EmptyAndRootAlwaysRejected(t *testing.T) {
	pp := DefaultPathPolicy()
	opts := PolicyOptions{AllowForbidden: true, AllowNonWhitelisted: true}

	for _, p := range []string{"", "/", "\\", "."} {
		assert.NotEmpty(t, pp.Check(p, opts), "path %q must be rejected even with overrides", p)
	}
}

func TestCheck_NonWhitelistedOverride(t *testing.T) {
	pp := DefaultPathPolicy()

	assert.Equal(t, "path is not in the allowed list", pp.Check("lib/x.js", PolicyOptions{}))
	assert.Empty(t, pp.Check("lib/x.js", PolicyOptions{AllowNonWhitelisted: true}))

	// AllowNonWhitelisted does not bypass the forbidden rules.
	assert.Equal(t, "path is forbidden", pp.Check("package.json", PolicyOptions{AllowNonWhitelisted: true}))
}

func TestValidatePaths_AggregatesAllViolations(t *testing.T) {
	pp := DefaultPathPolicy()

	err := pp.ValidatePaths([]string{
		"docs/ok.md",
		"package.json",
		"lib/x.js",
		"README.md",
	}, PolicyOptions{})
	require.Error(t, err)

	var pe *PathPolicyError
	require.ErrorAs(t, err, &pe)
	require.Len(t, pe.Violations, 2)
	assert.Equal(t, "package.json", pe.Violations[0].Path)
	assert.Equal(t, "lib/x.js", pe.Violations[1].Path)

	assert.NoError(t, pp.ValidatePaths([]string{"docs/ok.md", "README.md"}, PolicyOptions{}))
}
