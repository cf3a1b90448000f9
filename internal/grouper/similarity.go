// Package grouper collapses a video's per-frame descriptions into maximal
// runs of consecutive, mutually similar frames.
package grouper

import (
	"sort"
	"strings"
	"unicode"
)

// Normalize prepares a description for comparison: lowercase, trimmed, with
// punctuation removed. The normalized form is never emitted.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
}

// Ratio computes the similarity of two strings as 2*M/(len(a)+len(b)),
// where M is the total length of all maximal matching blocks, found greedily
// longest-first. Identical strings score 1.0; two empty strings also score
// 1.0. The measure is symmetric and lives in [0, 1].
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1.0
	}
	matched := 0
	for _, m := range matchingBlocks(ra, rb) {
		matched += m.size
	}
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

type match struct {
	a, b, size int
}

// matchingBlocks finds non-overlapping matching blocks by repeatedly taking
// the longest common block of the remaining regions, recursing left and
// right of it.
func matchingBlocks(a, b []rune) []match {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type region struct {
		alo, ahi, blo, bhi int
	}
	queue := []region{{0, len(a), 0, len(b)}}
	var blocks []match
	for len(queue) > 0 {
		reg := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		m := longestMatch(a, b2j, reg.alo, reg.ahi, reg.blo, reg.bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if reg.alo < m.a && reg.blo < m.b {
			queue = append(queue, region{reg.alo, m.a, reg.blo, m.b})
		}
		if m.a+m.size < reg.ahi && m.b+m.size < reg.bhi {
			queue = append(queue, region{m.a + m.size, reg.ahi, m.b + m.size, reg.bhi})
		}
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].a != blocks[j].a {
			return blocks[i].a < blocks[j].a
		}
		return blocks[i].b < blocks[j].b
	})
	return blocks
}

// longestMatch returns the longest block such that
// a[m.a:m.a+m.size] == b[m.b:m.b+m.size] within the given bounds, preferring
// the earliest start in a, then in b, on ties.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) match {
	best := match{a: alo, b: blo}
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > best.size {
				best = match{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newj2len
	}
	return best
}
