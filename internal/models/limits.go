package models

import "unicode/utf8"

// Column widths of the size-capped text columns, in characters.
const (
	MaxNameLength        = 100
	MaxEmailLength       = 100
	MaxTypeLength        = 50
	MaxLocationLength    = 255
	MaxContactInfoLength = 255
)

// Fits reports whether s fits a column of max characters.
func Fits(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}
