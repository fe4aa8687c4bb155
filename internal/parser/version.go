package parser

import (
	"strings"

	"golang.org/x/mod/semver"
)

// SupportsGeneratedCode reports whether a module's go directive is new enough for
// the generated declarations. An unknown version is treated as supported.
func SupportsGeneratedCode(goVersion string) bool {
	v := canonicalGoVersion(goVersion)
	if v == "" {
		return true
	}
	return semver.Compare(v, "v"+MinimumGoVersion) >= 0
}

// canonicalGoVersion turns "1.21", "go1.22rc1" or "1.20.3" into a semver string
func canonicalGoVersion(goVersion string) string {
	v := strings.TrimPrefix(strings.TrimSpace(goVersion), "go")
	if i := strings.IndexFunc(v, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSuffix(v, ".")
	if v == "" || !semver.IsValid("v"+v) {
		return ""
	}
	return semver.Canonical("v" + v)
}
