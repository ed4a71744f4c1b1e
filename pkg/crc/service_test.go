package crc

import "testing"

func TestChecksumKnownVector(t *testing.T) {
	// Standard CRC16/ARC check value.
	got := Checksum([]byte("123456789"))
	if got != 0xBB3D {
		t.Errorf("Checksum(123456789) = %04X, want BB3D", got)
	}
}

func TestChecksumEmpty(t *testing.T) {
	if got := Checksum(nil); got != 0 {
		t.Errorf("Checksum(nil) = %04X, want 0000", got)
	}
}

func TestChecksumDeterministic(t *testing.T) {
	data := []byte("/FLU5\\253770234_A\r\n\r\n0-0:96.1.4(50217)\r\n!")
	first := Checksum(data)
	for i := 0; i < 10; i++ {
		if got := Checksum(data); got != first {
			t.Fatalf("Checksum not deterministic: %04X vs %04X", got, first)
		}
	}
}

func TestChecksumDetectsBitFlips(t *testing.T) {
	data := []byte("/FLU5\\253770234_A\r\n\r\n1-0:1.8.1(000123.456*kWh)\r\n!")
	want := Checksum(data)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := make([]byte, len(data))
			copy(flipped, data)
			flipped[i] ^= 1 << bit
			if got := Checksum(flipped); got == want {
				t.Errorf("flip byte %d bit %d: checksum unchanged (%04X)", i, bit, got)
			}
		}
	}
}
