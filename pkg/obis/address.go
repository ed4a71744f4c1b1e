// Package obis decodes telegram data lines into typed data objects keyed
// by OBIS reduced identifiers.
package obis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxGroups is the largest number of value groups in an OBIS reduced
// identifier as it appears on the P1 port.
const MaxGroups = 6

// ErrAddress is returned for identifiers that do not follow the
// digit-group grammar.
var ErrAddress = errors.New("invalid OBIS address")

// Address is an OBIS reduced identifier: up to six small integer groups,
// e.g. 1-0:1.8.1. It is a comparable value type and can be used as a map
// key; equality is structural across all groups.
type Address struct {
	groups [MaxGroups]uint8
	n      uint8
}

// ParseAddress parses the textual form of an identifier, splitting on the
// '-', ':' and '.' delimiters. At least one group must be present and
// every group must be a decimal integer in 0..255.
func ParseAddress(s string) (Address, error) {
	var a Address
	if s == "" {
		return a, fmt.Errorf("%w: empty address", ErrAddress)
	}
	for _, part := range strings.FieldsFunc(s, isAddressSep) {
		if a.n == MaxGroups {
			return Address{}, fmt.Errorf("%w: more than %d groups in %q", ErrAddress, MaxGroups, s)
		}
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return Address{}, fmt.Errorf("%w: group %q in %q", ErrAddress, part, s)
		}
		a.groups[a.n] = uint8(v)
		a.n++
	}
	if a.n == 0 || countGroups(s) != int(a.n) {
		// FieldsFunc swallows empty groups, e.g. "1-:1.8.1".
		return Address{}, fmt.Errorf("%w: %q", ErrAddress, s)
	}
	return a, nil
}

// MustAddress is ParseAddress for static tables; it panics on error.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func isAddressSep(r rune) bool {
	return r == '-' || r == ':' || r == '.'
}

func countGroups(s string) int {
	n := 1
	for _, r := range s {
		if isAddressSep(r) {
			n++
		}
	}
	return n
}

// Len returns the number of groups.
func (a Address) Len() int {
	return int(a.n)
}

// Group returns group i, or -1 when absent.
func (a Address) Group(i int) int {
	if i < 0 || i >= int(a.n) {
		return -1
	}
	return int(a.groups[i])
}

// Channel returns the slave channel index (the second group), or 0 for
// addresses without one. Channel 0 is the metering equipment itself.
func (a Address) Channel() int {
	if a.n < 2 {
		return 0
	}
	return int(a.groups[1])
}

// WithChannel returns a copy of a with the channel group replaced. Used
// to normalize slave addresses onto their base family.
func (a Address) WithChannel(c int) Address {
	if a.n < 2 || c < 0 || c > 255 {
		return a
	}
	a.groups[1] = uint8(c)
	return a
}

// String renders the canonical A-B:C.D.E[.F] textual form.
func (a Address) String() string {
	var sb strings.Builder
	for i := 0; i < int(a.n); i++ {
		if i > 0 {
			sb.WriteByte(separatorFor(i))
		}
		sb.WriteString(strconv.Itoa(int(a.groups[i])))
	}
	return sb.String()
}

func separatorFor(i int) byte {
	switch i {
	case 1:
		return '-'
	case 2:
		return ':'
	default:
		return '.'
	}
}

// MarshalText renders the canonical textual form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the textual form.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
