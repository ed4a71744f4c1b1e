package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NotCoffee418/p1decoder/pkg/crc"
)

// ChecksumError reports a telegram whose trailer checksum does not match
// the checksum recomputed over its contents. The telegram must be
// discarded; the stream itself remains usable.
type ChecksumError struct {
	Given    uint16 // value parsed from the trailer
	Computed uint16 // value recomputed over '/'..'!'
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: telegram says %04X, computed %04X", e.Given, e.Computed)
}

// Telegram is a checksum-verified telegram. It is only constructed by
// Validate; downstream parsing does not re-check integrity.
type Telegram struct {
	raw RawTelegram
}

// Validate parses the 4 trailing hex digits of raw as the expected
// checksum, recomputes CRC16/ARC over every byte from '/' through '!'
// inclusive, and returns the validated telegram on a match. A mismatch
// yields a *ChecksumError carrying both values.
func Validate(raw RawTelegram) (Telegram, error) {
	if len(raw) < 14 || raw[0] != '/' || raw[len(raw)-5] != '!' {
		return Telegram{}, ErrFormat
	}
	trailer := string(raw[len(raw)-4:])
	given, err := strconv.ParseUint(trailer, 16, 16)
	if err != nil {
		return Telegram{}, fmt.Errorf("bad checksum trailer %q: %w", trailer, ErrFormat)
	}
	computed := crc.Checksum(raw[:len(raw)-4])
	if uint16(given) != computed {
		return Telegram{}, &ChecksumError{Given: uint16(given), Computed: computed}
	}
	return Telegram{raw: raw}, nil
}

// Prefix returns the three-letter manufacturer prefix.
func (t Telegram) Prefix() string {
	p, _ := t.raw.Prefix()
	return p
}

// Identification returns the meter identification string.
func (t Telegram) Identification() string {
	id, _ := t.raw.Identification()
	return id
}

// Bytes returns the underlying telegram bytes.
func (t Telegram) Bytes() []byte {
	return t.raw
}

// Lines returns the data lines of the telegram body: everything between
// the identification header and the checksum trailer, one entry per
// non-empty line.
func (t Telegram) Lines() []string {
	i, err := t.raw.headerEnd()
	if err != nil {
		return nil
	}
	body := string(t.raw[i+len(headerSep) : len(t.raw)-5])
	var lines []string
	for _, line := range strings.Split(body, "\r\n") {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
