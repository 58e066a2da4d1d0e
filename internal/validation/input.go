package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxMessageLength caps a single ingested message body.
	DefaultMaxMessageLength = 8192
)

// ErrInputTooLong indicates the input string exceeds the maximum allowed length.
var ErrInputTooLong = errors.New("input exceeds maximum length")

// ErrInvalidEncoding indicates the input is not valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// IsValidMessage checks an ingested message body: length-capped, valid
// UTF-8. Content is not otherwise restricted; non-printable runes are
// removed by SanitizeMessage instead of rejected here.
func IsValidMessage(msg string, maxLength int) error {
	if len(msg) > maxLength {
		return fmt.Errorf("%w: got %d, max %d", ErrInputTooLong, len(msg), maxLength)
	}
	if !utf8.ValidString(msg) {
		return ErrInvalidEncoding
	}
	return nil
}

// SanitizeMessage trims surrounding whitespace and removes non-printable
// runes (keeping space and tab) so a message cannot inject control bytes or
// fake newline-delimited records into the destination.
func SanitizeMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || (unicode.IsPrint(r) && r != '\uFFFD') {
			return r
		}
		return -1
	}, msg)
}
