// Package version provides the loose dotted version numbers used by IPS
// releases (e.g. "4.1.19.1").
//
// IPS versions are not semver: they carry four numeric segments and may end
// with a non-numeric qualifier ("4.2.0.beta2"). A Version is an ordered
// sequence of segments and compares element-wise, with a missing segment
// ranking below any present one.
package version

import (
	"errors"
	"strconv"
	"strings"
)

// ErrParse is returned by Parse when given an empty version string.
var ErrParse = errors.New("empty version string")

// segment is one dot-separated element of a version. Either num or tok is
// meaningful, never both.
type segment struct {
	num     int
	tok     string
	numeric bool
}

// Version is an immutable parsed version number.
//
// The zero value is an empty version, lower than any parsed version. Use
// Parse to construct one.
type Version struct {
	segs []segment
}

// Parse splits a dotted version string into a Version.
//
// Numeric segments are compared by value; non-numeric segments (trailing
// qualifiers like "beta2") are kept as string tokens. The only rejected
// input is the empty string.
//
// Example:
//
//	v, err := version.Parse("4.1.19.1")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(v) // "4.1.19.1"
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrParse
	}

	parts := strings.Split(s, ".")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			segs = append(segs, segment{num: n, numeric: true})
			continue
		}
		segs = append(segs, segment{tok: part})
	}

	return Version{segs: segs}, nil
}

// MustParse is Parse for static version strings; it panics on error.
// Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String reconstructs the dotted representation. Used for cache filenames
// and catalog keys.
func (v Version) String() string {
	parts := make([]string, len(v.segs))
	for i, seg := range v.segs {
		if seg.numeric {
			parts[i] = strconv.Itoa(seg.num)
		} else {
			parts[i] = seg.tok
		}
	}
	return strings.Join(parts, ".")
}

// IsZero reports whether v was never parsed from a version string.
func (v Version) IsZero() bool {
	return len(v.segs) == 0
}

// Compare orders two versions element-wise and returns -1, 0 or 1.
//
// A missing segment compares lower than any present segment, so
// "4.1" < "4.1.0". Numeric segments order by value, token segments
// lexically, and a numeric segment ranks below a token at the same
// position ("4.2.0" < "4.2.rc1" is not expected in practice; the rule
// exists so the order stays total).
func Compare(a, b Version) int {
	for i := 0; i < len(a.segs) || i < len(b.segs); i++ {
		if i >= len(a.segs) {
			return -1
		}
		if i >= len(b.segs) {
			return 1
		}
		if c := compareSegment(a.segs[i], b.segs[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b segment) int {
	switch {
	case a.numeric && b.numeric:
		return cmpInt(a.num, b.num)
	case !a.numeric && !b.numeric:
		return strings.Compare(a.tok, b.tok)
	case a.numeric:
		return -1
	default:
		return 1
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether v orders before other. Convenience for sorting.
func (v Version) Less(other Version) bool {
	return Compare(v, other) < 0
}

// Equal reports whether the two versions compare equal.
func (v Version) Equal(other Version) bool {
	return Compare(v, other) == 0
}

// Max returns the greatest version in vs, or the zero Version for an empty
// slice.
func Max(vs []Version) Version {
	var max Version
	for _, v := range vs {
		if max.Less(v) {
			max = v
		}
	}
	return max
}
