package barcode

import (
	"strings"
)

type Kind string

const (
	KindIsbn10 Kind = "isbn10"
	KindIsbn13 Kind = "isbn13"
	KindEan13  Kind = "ean13"
	KindCode   Kind = "code"
	KindEmpty  Kind = "empty"
)

type ISBN10 string
type EAN13 string

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (isbn ISBN10) IsValid() bool {
	s := strings.ToUpper(string(isbn))
	if len(s) != 10 || !isDigits(s[:9]) {
		return false
	}

	sum := 0
	for i, c := range s {
		multiplier := 10 - i

		if '0' <= c && c <= '9' {
			sum += multiplier * int(c-'0')
		} else if c == 'X' && i == len(s)-1 {
			// X is only permitted as the check digit
			sum += 10
		} else {
			return false
		}
	}

	return sum%11 == 0
}

func (ean EAN13) IsValid() bool {
	s := string(ean)
	if len(s) != 13 || !isDigits(s) {
		return false
	}

	var multiplier uint = 1
	var sum uint = 0

	for _, c := range s {
		sum += multiplier * uint(c-'0')
		multiplier ^= 1 ^ 3
	}

	return sum%10 == 0
}

// IsBookland reports whether the EAN-13 carries an ISBN (978/979 prefix).
func (ean EAN13) IsBookland() bool {
	return strings.HasPrefix(string(ean), "978") || strings.HasPrefix(string(ean), "979")
}

// Classify describes a scanned item code for record keeping. It never rejects input.
func Classify(code string) Kind {
	clean := strings.ReplaceAll(strings.TrimSpace(code), "-", "")
	if len(clean) == 0 {
		return KindEmpty
	}

	if ean := EAN13(clean); ean.IsValid() {
		if ean.IsBookland() {
			return KindIsbn13
		}
		return KindEan13
	}

	if ISBN10(clean).IsValid() {
		return KindIsbn10
	}

	return KindCode
}
