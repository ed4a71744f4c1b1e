// Package crc computes the telegram checksum used on the P1 port.
package crc

import "github.com/sigurn/crc16"

// CRC16/ARC as required by DSMR 5.0.2 and the Belgian e-MUCS addendum:
// polynomial 0xA001 (reflected 0x8005), initial value 0x0000.
var table = crc16.MakeTable(crc16.CRC16_ARC)

// Checksum returns the CRC16/ARC checksum over data.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, table)
}
