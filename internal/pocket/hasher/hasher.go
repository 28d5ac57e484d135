// Package hasher implements the reproducible 32-bit rolling hash that stands in
// for digital signatures and DIDs throughout the pocket.
package hasher

import (
	"strconv"
	"unicode/utf16"
)

// Prefix is prepended to every hash output.
const Prefix = "sig_"

// Hash folds the UTF-16 code units of input into a wrapping 32-bit signed
// accumulator (h = h*31 + unit) and returns "sig_" followed by the lowercase
// hex of its absolute value. Characters outside the BMP contribute both
// surrogate halves.
func Hash(input string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(input)) {
		h = (h << 5) - h + int32(unit)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return Prefix + strconv.FormatInt(abs, 16)
}
