package deflate

const (
	windowSize  = 32768
	minMatchLen = 3
	maxMatchLen = 258
	maxChainLen = 128
	hashBits    = 15
	hashSize    = 1 << hashBits
)

// matcher finds back-references within a single block of data using a
// hash-chained dictionary, zlib style: head[h] holds the most recent
// position whose first three bytes hash to h, and prev[pos] chains back to
// the next-most-recent position with the same hash. Blocks are capped at
// windowSize bytes, so every offset within a block is automatically a legal
// DEFLATE distance and the chain never needs to reach outside it.
type matcher struct {
	data []byte
	head []int
	prev []int
}

func newMatcher(data []byte) *matcher {
	m := &matcher{
		data: data,
		head: make([]int, hashSize),
		prev: make([]int, len(data)),
	}
	for i := range m.head {
		m.head[i] = -1
	}
	return m
}

func hash3(b []byte) uint32 {
	return ((uint32(b[0]) << 10) ^ (uint32(b[1]) << 5) ^ uint32(b[2])) & (hashSize - 1)
}

func (m *matcher) insert(pos int) {
	if pos+minMatchLen > len(m.data) {
		return
	}
	h := hash3(m.data[pos : pos+3])
	m.prev[pos] = m.head[h]
	m.head[h] = pos
}

// findMatch returns the longest match starting at pos against earlier data
// in the block, searching at most maxChainLen candidates down the hash
// chain. Returns length 0 if no match of at least minMatchLen was found.
func (m *matcher) findMatch(pos int) (length, dist int) {
	if pos+minMatchLen > len(m.data) {
		return 0, 0
	}

	maxLen := len(m.data) - pos
	if maxLen > maxMatchLen {
		maxLen = maxMatchLen
	}

	h := hash3(m.data[pos : pos+3])
	cand := m.head[h]
	bestLen := 0
	bestDist := 0

	for chain := 0; cand >= 0 && chain < maxChainLen; chain++ {
		if cand < pos {
			l := matchLength(m.data, cand, pos, maxLen)
			if l > bestLen {
				bestLen = l
				bestDist = pos - cand
				if l >= maxLen {
					break
				}
			}
		}
		cand = m.prev[cand]
	}

	if bestLen >= minMatchLen {
		return bestLen, bestDist
	}
	return 0, 0
}

func matchLength(data []byte, a, b, maxLen int) int {
	n := 0
	for n < maxLen && data[a+n] == data[b+n] {
		n++
	}
	return n
}

type token struct {
	isMatch bool
	lit     byte
	length  int
	dist    int
}

// parseTokens runs greedy LZ77 with a one-position lazy-matching lookahead:
// when the match found one byte later is strictly longer, the current
// position is emitted as a literal and deferred to the next iteration,
// favoring the longer match.
func parseTokens(data []byte) []token {
	var tokens []token
	if len(data) == 0 {
		return tokens
	}

	m := newMatcher(data)
	pos := 0
	for pos < len(data) {
		length, dist := m.findMatch(pos)
		m.insert(pos)

		if length >= minMatchLen {
			lazy := false
			if pos+1 < len(data) {
				nextLength, _ := m.findMatch(pos + 1)
				if nextLength > length {
					lazy = true
				}
			}

			if lazy {
				tokens = append(tokens, token{lit: data[pos]})
				pos++
				continue
			}

			for i := pos + 1; i < pos+length && i < len(data); i++ {
				m.insert(i)
			}
			tokens = append(tokens, token{isMatch: true, length: length, dist: dist})
			pos += length
			continue
		}

		tokens = append(tokens, token{lit: data[pos]})
		pos++
	}

	return tokens
}
