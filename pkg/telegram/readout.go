package telegram

import (
	"bytes"
	"errors"
)

// RawTelegram is an unvalidated telegram byte span as captured by the
// framer: the '/' start marker through the fourth checksum hex digit,
// inclusive. It must pass Validate before its contents can be trusted.
type RawTelegram []byte

// ErrFormat is returned when a telegram does not have the minimal
// '/XXX5...\r\n\r\n...!CCCC' structure.
var ErrFormat = errors.New("malformed telegram")

var headerSep = []byte("\r\n\r\n")

// headerEnd returns the index of the CR LF CR LF separating the
// identification header from the data lines.
func (r RawTelegram) headerEnd() (int, error) {
	// Minimal telegram: "/XXX5\r\n\r\n!CCCC".
	if len(r) < 14 || r[0] != '/' {
		return 0, ErrFormat
	}
	i := bytes.Index(r, headerSep)
	if i < 0 {
		return 0, ErrFormat
	}
	return i, nil
}

// Prefix returns the three-letter manufacturer prefix from the header.
func (r RawTelegram) Prefix() (string, error) {
	i, err := r.headerEnd()
	if err != nil {
		return "", err
	}
	if i < 4 {
		return "", ErrFormat
	}
	return string(r[1:4]), nil
}

// Identification returns the meter identification string: everything in
// the header line after the prefix and baud rate indicator.
func (r RawTelegram) Identification() (string, error) {
	i, err := r.headerEnd()
	if err != nil {
		return "", err
	}
	if i < 5 {
		return "", ErrFormat
	}
	return string(r[5:i]), nil
}
