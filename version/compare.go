// Package version provides unified mechanisms for application version tracking, update discovery, and compatibility validation.
package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// release is a parsed daemon or CLI version.
type release struct {
	core       [3]int
	prerelease []string
}

// parseRelease accepts "1.2.3", "v1.2", "1.2.3-rc.1" and "1.2.3+build.7".
// A missing minor or patch number reads as 0; build metadata is ignored.
func parseRelease(s string) (release, error) {
	var r release

	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	s, _, _ = strings.Cut(s, "+")
	s, pre, hasPre := strings.Cut(s, "-")
	if hasPre {
		if pre == "" {
			return r, fmt.Errorf("version %q: empty pre-release", s)
		}
		r.prerelease = strings.Split(pre, ".")
	}

	parts := strings.Split(s, ".")
	if len(parts) > len(r.core) {
		return r, fmt.Errorf("version %q: too many components", s)
	}

	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return r, fmt.Errorf("version %q: bad component %q", s, part)
		}
		r.core[i] = n
	}

	return r, nil
}

// comparePrerelease orders pre-release identifiers. Numeric identifiers compare
// numerically and sort before alphanumeric ones.
func comparePrerelease(a, b []string) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}

	for i := 0; i < min(len(a), len(b)); i++ {
		an, aErr := strconv.Atoi(a[i])
		bn, bErr := strconv.Atoi(b[i])

		switch {
		case aErr == nil && bErr == nil:
			if c := cmp.Compare(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}

	return cmp.Compare(len(a), len(b))
}

// Compare performs a semantic comparison between two version strings.
// Returns 1 if a > b, -1 if a < b, and 0 if equal.
// A pre-release sorts before the release it precedes.
func Compare(a, b string) (int, error) {
	av, err := parseRelease(a)
	if err != nil {
		return 0, err
	}

	bv, err := parseRelease(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range lo.Zip2(av.core[:], bv.core[:]) {
		if pair.A > pair.B {
			return 1, nil
		}

		if pair.A < pair.B {
			return -1, nil
		}
	}

	return comparePrerelease(av.prerelease, bv.prerelease), nil
}
