// Package conformance implements the conformance gate: a strictness level
// that decides whether missing governance metadata and failed prefix or
// namespace checks block an integration, are recorded as warnings, or are
// skipped.
package conformance

import (
	"strings"

	"github.com/c360studio/semspore/errs"
)

// Level is a conformance strictness setting.
type Level string

const (
	// Strict makes every missing descriptor and failed check fatal.
	Strict Level = "STRICT"
	// Moderate runs the checks but only records failures as warnings.
	Moderate Level = "MODERATE"
	// Relaxed skips the prefix and namespace checks.
	Relaxed Level = "RELAXED"
)

// Levels lists the accepted levels from strictest to loosest.
func Levels() []Level {
	return []Level{Strict, Moderate, Relaxed}
}

// IsValid reports whether l is one of the three named levels.
func (l Level) IsValid() bool {
	switch l {
	case Strict, Moderate, Relaxed:
		return true
	default:
		return false
	}
}

func (l Level) String() string {
	return string(l)
}

// ParseLevel converts s to a Level. Surrounding whitespace is ignored but
// the name must match exactly; anything else is a conformance error.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.TrimSpace(s))
	if !l.IsValid() {
		return "", errs.Conformancef("set_conformance_level", s,
			"unknown conformance level, expected one of STRICT, MODERATE, RELAXED")
	}
	return l, nil
}
