package util

import "strings"

// ByteLowercase returns a [byte-lowercase] version of str.
// Only ASCII letters are affected; header names are compared this way.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
func ByteLowercase(str string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + caseDelta
		}
		return r
	}, str)
}

// ByteUppercase returns a [byte-uppercase] version of str.
// Only ASCII letters are affected; method tokens are normalized this way.
//
// [byte-uppercase]: https://infra.spec.whatwg.org/#byte-uppercase
func ByteUppercase(str string) string {
	return strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - caseDelta
		}
		return r
	}, str)
}

const caseDelta = 'a' - 'A'
