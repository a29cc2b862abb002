package executor

import "regexp"

// matchLike evaluates a `like` comparison's regular expression against a
// string value. Patterns are compiled per call: comparisons in the same
// plan rarely repeat enough to make a cache worth the bookkeeping.
func matchLike(value, pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, compileError("like: invalid pattern " + pattern)
	}
	return re.MatchString(value), nil
}
