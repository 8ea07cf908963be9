// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"fmt"
	"regexp"
	"strings"
)

type (
	// constraint is a single comparison against a reference version.
	constraint struct {
		// op is the comparison operator (=, ^, ~, >, >=, <, <=).
		op string
		// version is the version to compare against.
		version Version
	}

	// Range is a predicate over semantic versions: the conjunction of one or
	// more constraints, e.g. ">=1.2.0 <2.0.0", "^1.2.0", "~1.2", "1.2.3".
	Range struct {
		constraints []constraint
		// Original is the expression the range was parsed from.
		Original string
	}
)

// constraintRegex matches a single version constraint.
var constraintRegex = regexp.MustCompile(`^([~^]|>=|<=|>|<|=)?\s*v?(\d+(?:\.\d+)?(?:\.\d+)?(?:-[0-9A-Za-z\-\.]+)?)$`)

// ParseRange parses a version-range expression. Multiple constraints may be
// separated by whitespace and/or commas and are ANDed together.
func ParseRange(s string) (Range, error) {
	expr := strings.TrimSpace(s)
	if expr == "" {
		return Range{}, fmt.Errorf("empty version range")
	}

	r := Range{Original: expr}
	for _, part := range strings.FieldsFunc(expr, func(c rune) bool {
		return c == ' ' || c == '\t' || c == ','
	}) {
		matches := constraintRegex.FindStringSubmatch(part)
		if matches == nil {
			return Range{}, fmt.Errorf("invalid version constraint: %s", part)
		}

		op := matches[1]
		if op == "" {
			op = "="
		}

		version, err := Parse(matches[2])
		if err != nil {
			return Range{}, fmt.Errorf("invalid version in constraint %q: %w", part, err)
		}

		r.constraints = append(r.constraints, constraint{op: op, version: version})
	}

	return r, nil
}

// MustParseRange parses a range expression and panics on failure.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the original range expression.
func (r Range) String() string {
	return r.Original
}

// Matches reports whether v satisfies every constraint in the range.
func (r Range) Matches(v Version) bool {
	for _, c := range r.constraints {
		if !c.matches(v) {
			return false
		}
	}
	return len(r.constraints) > 0
}

func (c constraint) matches(v Version) bool {
	switch c.op {
	case "=":
		return v.Compare(c.version) == 0

	case "^":
		// Caret: allows changes that do not modify the left-most non-zero digit.
		// ^1.2.3 := >=1.2.3 <2.0.0
		// ^0.2.3 := >=0.2.3 <0.3.0
		// ^0.0.3 := >=0.0.3 <0.0.4
		if v.Compare(c.version) < 0 {
			return false
		}
		if c.version.Major != 0 {
			return v.Major == c.version.Major
		}
		if c.version.Minor != 0 {
			return v.Major == 0 && v.Minor == c.version.Minor
		}
		return v.Major == 0 && v.Minor == 0 && v.Patch == c.version.Patch

	case "~":
		// Tilde: allows patch-level changes.
		// ~1.2.3 := >=1.2.3 <1.3.0
		if v.Compare(c.version) < 0 {
			return false
		}
		return v.Major == c.version.Major && v.Minor == c.version.Minor

	case ">":
		return v.Compare(c.version) > 0

	case ">=":
		return v.Compare(c.version) >= 0

	case "<":
		return v.Compare(c.version) < 0

	case "<=":
		return v.Compare(c.version) <= 0

	default:
		return false
	}
}

// IsValidRange reports whether s is a parseable version-range expression.
func IsValidRange(s string) bool {
	_, err := ParseRange(s)
	return err == nil
}
