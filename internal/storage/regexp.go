package storage

import (
	"fmt"
	"regexp"
	"sync"
)

// patternCacheLimit bounds the compiled-pattern cache. The cache is
// dropped wholesale when full; callers typically reuse a handful of
// patterns, so eviction order doesn't matter.
const patternCacheLimit = 256

var patterns = struct {
	sync.Mutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	patterns.Lock()
	defer patterns.Unlock()

	if re, ok := patterns.m[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(patterns.m) >= patternCacheLimit {
		patterns.m = make(map[string]*regexp.Regexp)
	}
	patterns.m[pattern] = re
	return re, nil
}

// regexpMatch backs the two-argument REGEXP operator. SQLite rewrites
// "candidate REGEXP pattern" to regexp(pattern, candidate).
//
// Semantics are unanchored, case-sensitive substring search: the match
// may occur anywhere in the candidate, and nothing is implicitly
// anchored at either end. Non-string candidates (numbers, NULL from a
// missing field) never match. A malformed pattern returns an error,
// which SQLite surfaces to the caller at row evaluation time.
func regexpMatch(pattern string, candidate any) (bool, error) {
	var s string
	switch v := candidate.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return false, nil
	}

	re, err := compilePattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}
