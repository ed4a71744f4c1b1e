// Package state folds decoded data objects into a per-telegram snapshot.
package state

import (
	"fmt"

	"github.com/NotCoffee418/p1decoder/pkg/obis"
)

// MeterReading is the cumulative energy registered for one tariff.
type MeterReading struct {
	Delivered *float64 `json:"delivered,omitempty"` // to the client, kWh
	Received  *float64 `json:"received,omitempty"`  // by the client, kWh
}

// Line is one of up to three phases connected to the meter.
type Line struct {
	VoltageSags     *uint64  `json:"voltage_sags,omitempty"`
	VoltageSwells   *uint64  `json:"voltage_swells,omitempty"`
	Voltage         *float64 `json:"voltage,omitempty"`
	Current         *float64 `json:"current,omitempty"`
	ActivePowerPlus *float64 `json:"active_power_plus,omitempty"`
	ActivePowerNeg  *float64 `json:"active_power_neg,omitempty"`
}

// Measurement is a timestamped value with its unit as printed.
type Measurement struct {
	Time  obis.Timestamp `json:"time"`
	Value float64        `json:"value"`
	Unit  string         `json:"unit,omitempty"`
}

// Slave is one of up to four sub-meter channels multiplexed onto the
// telegram: gas, water, heat or thermal.
type Slave struct {
	Channel             int          `json:"channel,omitempty"`
	DeviceType          *uint64      `json:"device_type,omitempty"`
	EquipmentID         *string      `json:"equipment_id,omitempty"`
	Reading             *Measurement `json:"reading,omitempty"`
	NonCorrectedReading *Measurement `json:"non_corrected_reading,omitempty"`
	ValveState          *uint64      `json:"valve_state,omitempty"`
}

// FailureEvent is one entry of the long power failure event log.
type FailureEvent struct {
	End             obis.Timestamp `json:"end"`
	DurationSeconds uint64         `json:"duration_seconds"`
}

// State is the snapshot decoded from exactly one telegram. Every field
// is independently optional: absence means the meter did not report it,
// never an error. Fields are never merged across telegrams.
type State struct {
	DateTime        *obis.Timestamp `json:"datetime,omitempty"`
	Version         *string         `json:"version,omitempty"`
	EquipmentID     *string         `json:"equipment_id,omitempty"`
	TariffIndicator *string         `json:"tariff_indicator,omitempty"`

	// Cumulative energy without tariff split, as emitted by meters that
	// report 1-0:1.8.0 / 1-0:2.8.0 instead of per-tariff registers.
	EnergyDelivered *float64 `json:"energy_delivered,omitempty"`
	EnergyReceived  *float64 `json:"energy_received,omitempty"`

	// Cumulative energy per tariff (index 0 = tariff 1).
	Readings [2]MeterReading `json:"readings"`

	PowerDelivered *float64 `json:"power_delivered,omitempty"`
	PowerReceived  *float64 `json:"power_received,omitempty"`

	PowerFailures     *uint64        `json:"power_failures,omitempty"`
	LongPowerFailures *uint64        `json:"long_power_failures,omitempty"`
	FailureLog        []FailureEvent `json:"failure_log,omitempty"`

	TextMessage *string `json:"text_message,omitempty"`
	MessageCode *string `json:"message_code,omitempty"`

	// Belgian e-MUCS extensions.
	BreakerState             *uint64      `json:"breaker_state,omitempty"`
	LimiterThreshold         *float64     `json:"limiter_threshold,omitempty"`
	FuseSupervisionThreshold *uint64      `json:"fuse_supervision_threshold,omitempty"`
	AverageDemand            *float64     `json:"average_demand,omitempty"`
	MaximumDemand            *Measurement `json:"maximum_demand,omitempty"`

	Lines  [3]Line  `json:"lines"`
	Slaves [4]Slave `json:"slaves"`
}

// FieldError reports a recognized address whose value did not match the
// expected shape. The field is left absent and building continues.
type FieldError struct {
	Address obis.Address
	Err     error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Address, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}
