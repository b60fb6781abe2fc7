// Package versionrange turns concrete versions into OSGi version ranges.
//
// The "digits" parameter says how much of the version may float:
//
//	ToRange("1.2.3", Micro)     // [1.2.3,1.2.4)
//	ToRange("1.2.3", Minor)     // [1.2.3,1.3.0)
//	ToRange("1.2.3", Major)     // [1.2.3,2.0.0)
//	ToRange("1.2.3", Unbounded) // [1.2.3,)
//	ToRange("1.2.3", Exact)     // [1.2.3,1.2.3]
//
// Inputs that already are ranges are returned unchanged, so ToRange is
// idempotent.
package versionrange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Digits of flexibility accepted by [ToRange]. Any other value behaves like
// Exact.
const (
	Exact     = 0
	Micro     = 1
	Minor     = 2
	Major     = 3
	Unbounded = 4
)

// IsRange reports whether s already is a range expression.
func IsRange(s string) bool {
	return strings.ContainsAny(s, "[(")
}

// ToRange converts version to a range. The lower bound is always the
// original version string; the upper bound increments exactly one component
// of the parsed version. It never fails: unparseable components are 0.
func ToRange(version string, digits int) string {
	if IsRange(version) {
		return version
	}
	major, minor, micro := Parse(version)
	switch digits {
	case Micro:
		return fmt.Sprintf("[%s,%d.%d.%d)", version, major, minor, micro+1)
	case Minor:
		return fmt.Sprintf("[%s,%d.%d.0)", version, major, minor+1)
	case Major:
		return fmt.Sprintf("[%s,%d.0.0)", version, major+1)
	case Unbounded:
		return fmt.Sprintf("[%s,)", version)
	default:
		return fmt.Sprintf("[%s,%s]", version, version)
	}
}

// Parse returns the numeric (major, minor, micro) of a version. Semantic
// versions are read with Masterminds/semver; everything else (Maven
// qualifiers like "1.0.0.Final", four-part versions) falls back to the
// leading digits of each dot-separated part. Missing or non-numeric parts
// are 0.
func Parse(version string) (major, minor, micro int) {
	v := strings.TrimSpace(version)
	if sv, err := semver.NewVersion(v); err == nil && fitsInt(sv) {
		return int(sv.Major()), int(sv.Minor()), int(sv.Patch())
	}

	parts := strings.SplitN(v, ".", 4)
	nums := [3]int{}
	for i := 0; i < len(parts) && i < 3; i++ {
		nums[i] = leadingInt(parts[i])
		if !startsWithDigit(parts[i]) || hasNonDigitTail(parts[i]) {
			// a qualifier ends the numeric part
			break
		}
	}
	return nums[0], nums[1], nums[2]
}

func fitsInt(v *semver.Version) bool {
	const max = uint64(^uint32(0) >> 1)
	return v.Major() <= max && v.Minor() <= max && v.Patch() <= max
}

func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func hasNonDigitTail(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return true
		}
	}
	return false
}
