// Package decoder ties the framer, validator, line parser and state
// builder into a lazy sequence of telegram outcomes over a byte stream.
package decoder

import (
	"errors"
	"io"

	"github.com/NotCoffee418/p1decoder/pkg/obis"
	"github.com/NotCoffee418/p1decoder/pkg/state"
	"github.com/NotCoffee418/p1decoder/pkg/telegram"
)

// Options configures a Decoder. The zero value selects the defaults.
type Options struct {
	// Capacity bounds the size of a single telegram; 0 means
	// telegram.DefaultCapacity.
	Capacity int
	// Policy selects how malformed data lines are treated.
	Policy obis.Policy
}

// Result is the outcome of one successfully decoded telegram.
type Result struct {
	Prefix         string
	Identification string
	State          *state.State

	// SkippedLines lists malformed body lines under obis.PolicySkip.
	SkippedLines []obis.LineError
	// FieldErrors lists recognized addresses whose values did not match
	// the expected shape; the corresponding fields are absent.
	FieldErrors []state.FieldError
}

// Decoder reads raw bytes from an io.Reader and produces one outcome per
// completed telegram frame. It is single-threaded and pull-based: the
// caller drives it by calling Next. Use one Decoder per byte stream.
type Decoder struct {
	r       io.Reader
	framer  *telegram.Framer
	policy  obis.Policy
	buf     []byte
	pending []byte
	readErr error
}

// New returns a Decoder with default options.
func New(r io.Reader) *Decoder {
	return NewWithOptions(r, Options{})
}

// NewWithOptions returns a Decoder with the given options.
func NewWithOptions(r io.Reader, opts Options) *Decoder {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = telegram.DefaultCapacity
	}
	return &Decoder{
		r:      r,
		framer: telegram.NewFramerCapacity(capacity),
		policy: opts.Policy,
		buf:    make([]byte, 256),
	}
}

// Next blocks on the byte source until one telegram outcome is
// available. It returns a Result for a fully decoded telegram, io.EOF
// when the byte source is exhausted (clean stream end), or one of the
// per-telegram error kinds: telegram.ErrOverflow, *telegram.ChecksumError
// or obis.LineError (the latter only under obis.PolicyAbort). All
// per-telegram errors are recoverable: a bad telegram never prevents
// decoding the next one, so callers may log and call Next again.
func (d *Decoder) Next() (*Result, error) {
	for {
		b, err := d.nextByte()
		if err != nil {
			return nil, err
		}
		raw, err := d.framer.Push(b)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		return d.decode(raw)
	}
}

func (d *Decoder) decode(raw telegram.RawTelegram) (*Result, error) {
	t, err := telegram.Validate(raw)
	if err != nil {
		return nil, err
	}
	objects, skipped, err := obis.Parse(t, d.policy)
	if err != nil {
		return nil, err
	}
	st, fieldErrs := state.Build(objects)
	return &Result{
		Prefix:         t.Prefix(),
		Identification: t.Identification(),
		State:          st,
		SkippedLines:   skipped,
		FieldErrors:    fieldErrs,
	}, nil
}

func (d *Decoder) nextByte() (byte, error) {
	for len(d.pending) == 0 {
		if d.readErr != nil {
			return 0, d.readErr
		}
		n, err := d.r.Read(d.buf)
		if err != nil {
			// Serve the bytes that came with the error first.
			d.readErr = err
		}
		d.pending = d.buf[:n]
	}
	b := d.pending[0]
	d.pending = d.pending[1:]
	return b, nil
}

// Recoverable reports whether err from Next is a per-telegram failure
// after which the stream remains usable.
func Recoverable(err error) bool {
	var checksumErr *telegram.ChecksumError
	var lineErr obis.LineError
	switch {
	case errors.Is(err, telegram.ErrOverflow):
		return true
	case errors.As(err, &checksumErr):
		return true
	case errors.As(err, &lineErr):
		return true
	case errors.Is(err, telegram.ErrFormat):
		return true
	}
	return false
}
