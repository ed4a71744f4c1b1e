package obis

import (
	"fmt"
	"strings"
)

// DataObject is one decoded data line: an address plus zero or more
// values. A line without values is a valid presence-only marker.
type DataObject struct {
	Address Address `json:"address"`
	Values  []Value `json:"values,omitempty"`
}

// ParseLine decodes one data line of the form Address(Value)(Value)...
// with no separators between the groups.
func ParseLine(line string) (DataObject, error) {
	var obj DataObject

	addrEnd := strings.IndexByte(line, '(')
	addrStr := line
	rest := ""
	if addrEnd >= 0 {
		addrStr = line[:addrEnd]
		rest = line[addrEnd:]
	}

	addr, err := ParseAddress(addrStr)
	if err != nil {
		return DataObject{}, err
	}
	obj.Address = addr

	for rest != "" {
		if rest[0] != '(' {
			return DataObject{}, fmt.Errorf("unexpected %q after value group in %q", rest[0], line)
		}
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return DataObject{}, fmt.Errorf("unterminated value group in %q", line)
		}
		obj.Values = append(obj.Values, ParseValue(rest[1:end]))
		rest = rest[end+1:]
	}
	return obj, nil
}

// Render reproduces the textual data line.
func (o DataObject) Render() string {
	var sb strings.Builder
	sb.WriteString(o.Address.String())
	for _, v := range o.Values {
		sb.WriteByte('(')
		sb.WriteString(v.Render())
		sb.WriteByte(')')
	}
	return sb.String()
}
