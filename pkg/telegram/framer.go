// Package telegram frames and validates raw P1 telegrams from a byte stream.
package telegram

import "errors"

// DefaultCapacity is the default upper bound on a single telegram.
// DSMR 5.0.2 telegrams fit comfortably; anything larger is line noise.
const DefaultCapacity = 2048

// ErrOverflow is reported when a candidate telegram exceeds the buffer
// capacity before an end marker was seen. The framer resynchronizes and
// keeps searching, so the error is safe to log and ignore.
var ErrOverflow = errors.New("telegram exceeds buffer capacity")

type framerState int

const (
	stateSearching framerState = iota
	stateCollecting
	stateTrailer
)

// Framer assembles raw telegrams from a byte-at-a-time stream. It owns a
// fixed-capacity scratch buffer and never blocks; the caller drives it by
// pushing bytes. One Framer per byte stream, instances share nothing.
type Framer struct {
	buf     []byte
	state   framerState
	hexSeen int
}

// NewFramer returns a framer with DefaultCapacity.
func NewFramer() *Framer {
	return NewFramerCapacity(DefaultCapacity)
}

// NewFramerCapacity returns a framer whose telegrams may be at most
// capacity bytes long. Capacities below the minimal telegram size are
// raised to it.
func NewFramerCapacity(capacity int) *Framer {
	if capacity < 16 {
		capacity = 16
	}
	return &Framer{buf: make([]byte, 0, capacity)}
}

// Push feeds one byte into the framer. It returns at most one of:
// (nil, nil) when no complete telegram is available yet, (nil, ErrOverflow)
// when the candidate outgrew the buffer, or a completed RawTelegram running
// from the '/' start marker through the last checksum hex digit. The
// returned telegram is a copy; the scratch buffer is never aliased out.
func (f *Framer) Push(b byte) (RawTelegram, error) {
	switch f.state {
	case stateSearching:
		if b == '/' {
			f.buf = f.buf[:0]
			f.buf = append(f.buf, b)
			f.state = stateCollecting
		}

	case stateCollecting:
		if err := f.store(b); err != nil {
			return nil, err
		}
		if b == '!' {
			f.state = stateTrailer
			f.hexSeen = 0
		}

	case stateTrailer:
		switch {
		case f.hexSeen < 4 && isHexDigit(b):
			if err := f.store(b); err != nil {
				return nil, err
			}
			f.hexSeen++
		case f.hexSeen == 4 && (b == '\r' || b == '\n'):
			raw := make(RawTelegram, len(f.buf))
			copy(raw, f.buf)
			f.buf = f.buf[:0]
			f.state = stateSearching
			return raw, nil
		default:
			// Not a checksum trailer after all; the '!' was body data.
			// Fall back to collecting and let the checksum sort it out.
			f.state = stateCollecting
			if err := f.store(b); err != nil {
				return nil, err
			}
			if b == '!' {
				f.state = stateTrailer
				f.hexSeen = 0
			}
		}
	}
	return nil, nil
}

// store appends b to the scratch buffer, resetting to search mode with
// ErrOverflow when the buffer is full.
func (f *Framer) store(b byte) error {
	if len(f.buf) == cap(f.buf) {
		f.buf = f.buf[:0]
		f.state = stateSearching
		return ErrOverflow
	}
	f.buf = append(f.buf, b)
	return nil
}

func isHexDigit(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'A' && b <= 'F':
		return true
	case b >= 'a' && b <= 'f':
		return true
	}
	return false
}
