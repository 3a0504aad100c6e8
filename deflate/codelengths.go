package deflate

// clToken is one symbol of the code-length alphabet used to transmit a
// dynamic block's literal/length and distance code lengths, RFC 1951
// §3.2.7: symbols 0..15 are literal lengths, 16 repeats the previous
// length 3-6 times, 17 repeats a zero length 3-10 times, and 18 repeats a
// zero length 11-138 times.
type clToken struct {
	symbol    int
	extra     int
	extraBits uint8
}

// encodeCodeLengths runs a greedy run-length encoding of a concatenated
// litlen+dist code length sequence. It is not guaranteed optimal, only
// valid: RFC 1951 places no requirement on RLE optimality.
func encodeCodeLengths(lengths []uint8) []clToken {
	var out []clToken
	n := len(lengths)
	i := 0
	for i < n {
		length := lengths[i]
		j := i + 1
		for j < n && lengths[j] == length {
			j++
		}
		run := j - i

		if length == 0 {
			for run > 0 {
				switch {
				case run < 3:
					out = append(out, clToken{symbol: 0})
					run--
				case run <= 10:
					out = append(out, clToken{symbol: 17, extra: run - 3, extraBits: 3})
					run = 0
				default:
					chunk := run
					if chunk > 138 {
						chunk = 138
					}
					out = append(out, clToken{symbol: 18, extra: chunk - 11, extraBits: 7})
					run -= chunk
				}
			}
		} else {
			out = append(out, clToken{symbol: int(length)})
			run--
			for run > 0 {
				if run < 3 {
					out = append(out, clToken{symbol: int(length)})
					run--
					continue
				}
				chunk := run
				if chunk > 6 {
					chunk = 6
				}
				out = append(out, clToken{symbol: 16, extra: chunk - 3, extraBits: 2})
				run -= chunk
			}
		}

		i = j
	}

	return out
}
