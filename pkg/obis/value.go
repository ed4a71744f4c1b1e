package obis

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Kind tags the three value shapes that occur inside parenthesized
// groups on the P1 port.
type Kind int

const (
	// KindNumeric is a decimal value with an optional unit, e.g.
	// 000123.456*kWh or a bare count like 1.
	KindNumeric Kind = iota
	// KindTimestamp is a YYMMDDhhmmss datestamp with a DST flag.
	KindTimestamp
	// KindText is anything else: equipment identifiers, message bodies
	// and other octet strings, passed through undecoded.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Value shape grammars. Decided once at parse time, never re-interpreted.
var (
	numericPattern   = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:\*([A-Za-z][A-Za-z0-9]*))?$`)
	timestampPattern = regexp.MustCompile(`^\d{12}[SW]$`)
)

// Timestamp is a meter datestamp: two-digit date/time components plus a
// daylight saving flag ('S' daylight, 'W' standard time).
type Timestamp struct {
	Year   int  `json:"year"`
	Month  int  `json:"month"`
	Day    int  `json:"day"`
	Hour   int  `json:"hour"`
	Minute int  `json:"minute"`
	Second int  `json:"second"`
	DST    bool `json:"dst"`
}

// ErrTimestamp is returned for malformed datestamps.
var ErrTimestamp = errors.New("invalid timestamp")

// ParseTimestamp parses the YYMMDDhhmmss[SW] wire form.
func ParseTimestamp(s string) (Timestamp, error) {
	if !timestampPattern.MatchString(s) {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrTimestamp, s)
	}
	two := func(i int) int {
		n, _ := strconv.Atoi(s[i : i+2])
		return n
	}
	return Timestamp{
		Year:   two(0),
		Month:  two(2),
		Day:    two(4),
		Hour:   two(6),
		Minute: two(8),
		Second: two(10),
		DST:    s[12] == 'S',
	}, nil
}

// String renders the wire form.
func (t Timestamp) String() string {
	flag := byte('W')
	if t.DST {
		flag = 'S'
	}
	return fmt.Sprintf("%02d%02d%02d%02d%02d%02d%c",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, flag)
}

// Time interprets the timestamp in loc. Years are 2000-based.
func (t Timestamp) Time(loc *time.Location) time.Time {
	return time.Date(2000+t.Year, time.Month(t.Month), t.Day,
		t.Hour, t.Minute, t.Second, 0, loc)
}

// Value is one parenthesized group from a data line: a tagged union of
// numeric, timestamp and text shapes.
type Value struct {
	Kind Kind `json:"kind"`

	// Raw is the numeric mantissa exactly as printed (leading zeros
	// included), or the verbatim payload for text values.
	Raw string `json:"raw,omitempty"`

	// Float is the parsed numeric value. Valid for KindNumeric only.
	Float float64 `json:"float,omitempty"`

	// Unit is the unit suffix exactly as printed; may be empty for
	// dimensionless counts. Valid for KindNumeric only.
	Unit string `json:"unit,omitempty"`

	// Time is the parsed datestamp. Valid for KindTimestamp only.
	Time Timestamp `json:"time,omitzero"`
}

// ParseValue decodes the content of one parenthesized group. It cannot
// fail: content matching neither the numeric nor the timestamp grammar
// is a text value.
func ParseValue(s string) Value {
	if m := numericPattern.FindStringSubmatch(s); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return Value{Kind: KindNumeric, Raw: m[1], Float: f, Unit: m[2]}
		}
	}
	if ts, err := ParseTimestamp(s); err == nil {
		return Value{Kind: KindTimestamp, Time: ts}
	}
	return Value{Kind: KindText, Raw: s}
}

// Render reproduces the wire form of the value, without parentheses.
func (v Value) Render() string {
	switch v.Kind {
	case KindNumeric:
		if v.Unit == "" {
			return v.Raw
		}
		return v.Raw + "*" + v.Unit
	case KindTimestamp:
		return v.Time.String()
	default:
		return v.Raw
	}
}

// DecodeOctets decodes a hex-encoded text value, as used for equipment
// identifiers and message bodies. The caller decides whether a given
// text field is octet-encoded; the parser never does.
func DecodeOctets(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("decode octet string: %w", err)
	}
	return string(b), nil
}
