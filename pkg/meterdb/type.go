package meterdb

type MeterDbPowerReadingType uint8

const (
	PowerConsumptionDay   MeterDbPowerReadingType = 0
	PowerConsumptionNight MeterDbPowerReadingType = 1
	PowerProductionDay    MeterDbPowerReadingType = 2
	PowerProductionNight  MeterDbPowerReadingType = 3
)

type MeterDbLivePowerReading struct {
	Timestamp   int64                   `db:"timestamp"`
	Watt        uint32                  `db:"watt"`
	ReadingType MeterDbPowerReadingType `db:"reading_type"`
}

type MeterDbTotalPowerReading struct {
	Timestamp               int64  `db:"timestamp"`
	TotalConsumptionDayWh   uint32 `db:"consumption_day_wh"`
	TotalProductionDayWh    uint32 `db:"production_day_wh"`
	TotalConsumptionNightWh uint32 `db:"consumption_night_wh"`
	TotalProductionNightWh  uint32 `db:"production_night_wh"`
}

// Standing for one slave channel, typically the gas meter.
type MeterDbSlaveReading struct {
	Timestamp           int64  `db:"timestamp"`
	Channel             uint8  `db:"channel"`
	DeviceType          uint32 `db:"device_type"`
	TotalConsumptionDM3 uint32 `db:"consumption_dm3"`
}

// Hourly rollup of the live power samples
type AggregateLivePowerHourly struct {
	HourStart          int64  `db:"hour_start"`
	ConsumptionDayWh   uint32 `db:"consumption_day_wh"`
	ConsumptionNightWh uint32 `db:"consumption_night_wh"`
	ProductionDayWh    uint32 `db:"production_day_wh"`
	ProductionNightWh  uint32 `db:"production_night_wh"`
	SampleCount        uint32 `db:"sample_count"`
}
