// Package similarity provides character-sequence similarity scoring for
// fuzzy matching of product names and details.
package similarity

type span struct {
	alo, ahi int
	blo, bhi int
}

// Ratio returns a similarity score in [0, 1] for two strings: twice the
// number of characters in common (as longest matching blocks, found
// greedily) over the total number of characters. Identical strings score
// 1, strings with nothing in common score 0.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matched := 0
	stack := []span{{0, len(ra), 0, len(rb)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, size := longestMatch(ra, rb, s)
		if size == 0 {
			continue
		}
		matched += size
		stack = append(stack,
			span{s.alo, i, s.blo, j},
			span{i + size, s.ahi, j + size, s.bhi},
		)
	}

	return 2 * float64(matched) / float64(total)
}

// longestMatch finds the longest block of runes common to ra[alo:ahi] and
// rb[blo:bhi]. Among equally long blocks the earliest in ra, then the
// earliest in rb, wins, which keeps the overall score deterministic.
func longestMatch(ra, rb []rune, s span) (besti, bestj, bestsize int) {
	b2j := make(map[rune][]int, s.bhi-s.blo)
	for j := s.blo; j < s.bhi; j++ {
		b2j[rb[j]] = append(b2j[rb[j]], j)
	}

	besti, bestj = s.alo, s.blo
	j2len := make(map[int]int)
	for i := s.alo; i < s.ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[ra[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
