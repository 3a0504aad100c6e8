package fuzz

// nameAlphabet is the 84-character set generated filenames are drawn from:
// digits, both letter cases, and a curated punctuation set that excludes the
// characters forbidden in file names on common filesystems
// (/ \ : * ? " < > |) and control characters.
const nameAlphabet = "0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!#$%&'()+,-.;=@[]^_{}~"

const nameAlphabetSize = int64(len(nameAlphabet))

// dotSentinel and dotDotSentinel stand in for "." and ".." whenever the
// positional encoding below would otherwise produce one of those reserved
// names.
const (
	dotSentinel    = "_dot_"
	dotDotSentinel = "_dotdot_"
)

// encodeName maps a monotonically increasing index to a name via bijective
// base-84 positional encoding: the first nameAlphabetSize indices produce
// every 1-character name, the next nameAlphabetSize^2 produce every
// 2-character name, and so on, so every generated name is unique for a
// given run.
func encodeName(index int64) string {
	n := index
	length := int64(1)
	count := nameAlphabetSize

	for n >= count {
		n -= count
		length++
		count *= nameAlphabetSize
	}

	digits := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		digits[i] = nameAlphabet[n%nameAlphabetSize]
		n /= nameAlphabetSize
	}

	name := string(digits)
	switch name {
	case ".":
		return dotSentinel
	case "..":
		return dotDotSentinel
	default:
		return name
	}
}
