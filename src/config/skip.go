package config

import (
	"fmt"
	"regexp"
)

// SkipPatterns holds pre-compiled skip regexes.
// Avoids repeated regex compilation while walking release candidates.
type SkipPatterns struct {
	patterns []*regexp.Regexp
}

// CompileSkips compiles the skip pattern list.
// An empty list yields a matcher that never matches.
func CompileSkips(patterns []string) (*SkipPatterns, error) {
	sp := &SkipPatterns{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", p, err)
		}
		sp.patterns = append(sp.patterns, re)
	}
	return sp, nil
}

// Match reports whether the value hits any skip pattern.
// A nil matcher never matches.
func (sp *SkipPatterns) Match(value string) bool {
	if sp == nil {
		return false
	}
	for _, re := range sp.patterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
