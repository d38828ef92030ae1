package validator

import (
	"regexp"
	"sync"
	"sync/atomic"
)

// maxPatternCacheSize bounds the number of compiled patterns kept per
// validator. When exceeded the cache is cleared.
const maxPatternCacheSize = 1000

// patternCache holds compiled "pattern" and "patternProperties" regular
// expressions. It is shared by concurrent Validate calls.
type patternCache struct {
	patterns sync.Map // map[string]*regexp.Regexp
	count    atomic.Int32
}

// compile returns the compiled form of pattern, compiling it on first use.
func (c *patternCache) compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := c.patterns.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	if c.count.Add(1) > maxPatternCacheSize {
		c.patterns.Range(func(key, _ any) bool {
			c.patterns.Delete(key)
			return true
		})
		c.count.Store(1)
	}
	c.patterns.Store(pattern, re)
	return re, nil
}
