package obis

import (
	"fmt"

	"github.com/NotCoffee418/p1decoder/pkg/telegram"
)

// Policy selects how Parse treats data lines that violate the grammar.
type Policy int

const (
	// PolicySkip (the default) skips malformed lines, keeps parsing,
	// and reports the skipped lines alongside the parsed objects.
	PolicySkip Policy = iota
	// PolicyAbort fails the whole telegram on the first malformed line.
	PolicyAbort
)

// LineError describes one data line that failed the grammar.
type LineError struct {
	Line int // zero-based index within the telegram body
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// Parse decodes the body of a validated telegram into data objects, in
// line order. Lines with addresses unknown to later stages are parsed
// and surfaced; recognition is the state builder's concern. Under
// PolicySkip the returned slice of LineErrors lists every skipped line;
// under PolicyAbort the first bad line is returned as the error and no
// objects are returned.
func Parse(t telegram.Telegram, policy Policy) ([]DataObject, []LineError, error) {
	lines := t.Lines()
	objects := make([]DataObject, 0, len(lines))
	var skipped []LineError

	for i, line := range lines {
		obj, err := ParseLine(line)
		if err != nil {
			if policy == PolicyAbort {
				return nil, nil, LineError{Line: i, Err: err}
			}
			skipped = append(skipped, LineError{Line: i, Err: err})
			continue
		}
		objects = append(objects, obj)
	}
	return objects, skipped, nil
}
