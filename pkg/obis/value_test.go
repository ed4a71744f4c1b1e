package obis

import (
	"testing"
	"time"
)

func TestParseValueNumeric(t *testing.T) {
	cases := []struct {
		in    string
		float float64
		unit  string
	}{
		{"000123.456*kWh", 123.456, "kWh"},
		{"00.423*kW", 0.423, "kW"},
		{"0001", 1, ""},
		{"230.1*V", 230.1, "V"},
		{"00123*s", 123, "s"},
	}
	for _, c := range cases {
		v := ParseValue(c.in)
		if v.Kind != KindNumeric {
			t.Errorf("ParseValue(%q).Kind = %s, want numeric", c.in, v.Kind)
			continue
		}
		if v.Float != c.float || v.Unit != c.unit {
			t.Errorf("ParseValue(%q) = %v/%q, want %v/%q", c.in, v.Float, v.Unit, c.float, c.unit)
		}
	}
}

func TestParseValueKeepsMantissa(t *testing.T) {
	v := ParseValue("000123.456*kWh")
	if v.Raw != "000123.456" {
		t.Errorf("Raw = %q, leading zeros must survive", v.Raw)
	}
	if got := v.Render(); got != "000123.456*kWh" {
		t.Errorf("Render = %q", got)
	}
}

func TestParseValueTimestamp(t *testing.T) {
	v := ParseValue("250714203045S")
	if v.Kind != KindTimestamp {
		t.Fatalf("Kind = %s, want timestamp", v.Kind)
	}
	want := Timestamp{Year: 25, Month: 7, Day: 14, Hour: 20, Minute: 30, Second: 45, DST: true}
	if v.Time != want {
		t.Errorf("Time = %+v, want %+v", v.Time, want)
	}
	if got := v.Render(); got != "250714203045S" {
		t.Errorf("Render = %q", got)
	}
}

func TestTimestampNotMistakenForNumeric(t *testing.T) {
	// Twelve digits plus a flag must decode as a timestamp, never as a
	// bare count.
	v := ParseValue("220101120000W")
	if v.Kind != KindTimestamp {
		t.Errorf("Kind = %s, want timestamp", v.Kind)
	}
	// Twelve bare digits without a flag are a plain number.
	v = ParseValue("220101120000")
	if v.Kind != KindNumeric {
		t.Errorf("Kind = %s, want numeric", v.Kind)
	}
}

func TestParseValueText(t *testing.T) {
	cases := []string{
		"4B384547303034303436333935353037", // hex equipment id
		"",                                 // empty group
		"1.2.3*",                           // broken unit
		"-12.3",                            // negative never occurs, treated as text
	}
	for _, c := range cases {
		v := ParseValue(c)
		if v.Kind != KindText {
			t.Errorf("ParseValue(%q).Kind = %s, want text", c, v.Kind)
		}
		if v.Raw != c {
			t.Errorf("ParseValue(%q).Raw = %q", c, v.Raw)
		}
	}
}

func TestTimestampTime(t *testing.T) {
	ts, err := ParseTimestamp("250714203045W")
	if err != nil {
		t.Fatal(err)
	}
	got := ts.Time(time.UTC)
	want := time.Date(2025, time.July, 14, 20, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Time = %v, want %v", got, want)
	}
}

func TestParseTimestampRejects(t *testing.T) {
	cases := []string{"", "250714203045", "250714203045X", "25071420304S", "2507142030455S"}
	for _, c := range cases {
		if _, err := ParseTimestamp(c); err == nil {
			t.Errorf("ParseTimestamp(%q) accepted", c)
		}
	}
}

func TestDecodeOctets(t *testing.T) {
	got, err := DecodeOctets("4B38")
	if err != nil {
		t.Fatal(err)
	}
	if got != "K8" {
		t.Errorf("DecodeOctets = %q, want K8", got)
	}
	if _, err := DecodeOctets("ZZ"); err == nil {
		t.Error("DecodeOctets accepted non-hex input")
	}
}
