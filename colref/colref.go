// Package colref converts between Excel column letters and 1-based column
// indices, and builds cell references from column/row numbers.
//
// Column letters are base-26 with digits A..Z starting at 1: A=1, Z=26,
// AA=27, ZZ=702, AAA=703. This is the public column-letter helper the
// template pipeline treats as an external collaborator (it is pure
// arithmetic, so it carries no third-party dependency).
package colref

import "strconv"

// Index returns the 1-based column index for a column-letter string such
// as "A", "Z", "AA". An empty or non-letter input returns 0.
func Index(name string) uint {
	var idx uint
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			continue
		}
		idx = idx*26 + uint(ch-'A'+1)
	}
	return idx
}

// Name returns the column letters for the column `increment` places after
// the column named by base. Name("A", 0) == "A", Name("A", 1) == "B",
// Name("Z", 1) == "AA". A base that fails to parse is treated as "A" (index 1).
func Name(base string, increment uint) string {
	idx := Index(base)
	if idx == 0 {
		idx = 1
	}
	return IndexToName(idx + increment)
}

// IndexToName converts a 1-based column index directly to letters.
// IndexToName(0) returns "" since there is no column zero.
func IndexToName(idx uint) string {
	if idx == 0 {
		return ""
	}
	var buf []byte
	for idx > 0 {
		idx--
		buf = append([]byte{byte('A' + idx%26)}, buf...)
		idx /= 26
	}
	return string(buf)
}

// Coord builds a cell reference such as "C5" from a 1-based column index
// and a 1-based row number.
func Coord(col uint, row uint) string {
	return IndexToName(col) + strconv.FormatUint(uint64(row), 10)
}

// Split splits a cell reference such as "AA10" into its column-letter and
// row-number parts. ok is false if the reference does not start with a
// letter run followed by a digit run.
func Split(ref string) (letters string, row uint, ok bool) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(ref) {
		return "", 0, false
	}
	letters = ref[:i]
	n, err := strconv.ParseUint(ref[i:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return letters, uint(n), true
}
