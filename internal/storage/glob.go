package storage

import "unicode/utf8"

// matchGlob implements the KEYS pattern grammar from spec.md §4.2: '*'
// matches any run (including empty), '?' matches exactly one byte, and
// '[set]' matches one of a set (']' as the first character of the set is
// literal, '-' denotes a range, '^' as the first character negates).
// Matching is byte-wise within the UTF-8 view of the key; non-UTF-8 keys
// never match anything.
//
// This is a from-scratch implementation — no repo in the retrieval pack
// ships a glob matcher, so it is grounded directly in spec.md's grammar
// rather than an example file. It follows the classic iterative
// backtracking shape (track the most recent '*' and retry from just past
// it on mismatch) common to libc fnmatch-style matchers.
func matchGlob(pattern, key string) bool {
	if !utf8.ValidString(key) {
		return false
	}
	return matchBytes([]byte(pattern), []byte(key))
}

func matchBytes(pattern, s []byte) bool {
	pIdx, sIdx := 0, 0
	starIdx, starMatch := -1, -1

	for sIdx < len(s) {
		if pIdx < len(pattern) {
			switch pattern[pIdx] {
			case '*':
				starIdx = pIdx
				starMatch = sIdx
				pIdx++
				continue
			case '?':
				pIdx++
				sIdx++
				continue
			case '[':
				if end, neg, ok := parseClass(pattern, pIdx); ok {
					if classMatches(pattern, pIdx, end, neg, s[sIdx]) {
						pIdx = end + 1
						sIdx++
						continue
					}
					// falls through to backtrack below
				} else if pattern[pIdx] == s[sIdx] {
					// malformed class: '[' is a literal
					pIdx++
					sIdx++
					continue
				}
			default:
				if pattern[pIdx] == s[sIdx] {
					pIdx++
					sIdx++
					continue
				}
			}
		}

		if starIdx == -1 {
			return false
		}
		starMatch++
		sIdx = starMatch
		pIdx = starIdx + 1
	}

	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}

// parseClass locates the closing ']' for a '[' at pattern[start], honoring
// the "]' as first char is literal" rule. Returns ok=false if the class is
// unterminated (treated as a literal '[' by the caller).
func parseClass(pattern []byte, start int) (end int, neg bool, ok bool) {
	i := start + 1
	if i < len(pattern) && pattern[i] == '^' {
		neg = true
		i++
	}
	first := true
	for i < len(pattern) {
		if pattern[i] == ']' && !first {
			return i, neg, true
		}
		first = false
		i++
	}
	return 0, false, false
}

// classMatches reports whether c is matched by the [...] class spanning
// pattern[start:end] (end is the index of the closing ']').
func classMatches(pattern []byte, start, end int, neg bool, c byte) bool {
	i := start + 1
	if i < end && pattern[i] == '^' {
		i++
	}
	matched := false
	for i < end {
		if i+2 < end && pattern[i+1] == '-' {
			lo, hi := pattern[i], pattern[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if pattern[i] == c {
			matched = true
		}
		i++
	}
	if neg {
		return !matched
	}
	return matched
}
