// Responsible for storing the data collected from the smart meter
// Depends on the interpreter API being online.
package main

import (
	"log"
	"time"

	"github.com/NotCoffee418/p1decoder/pkg/aggregator"
	"github.com/NotCoffee418/p1decoder/pkg/config"
	"github.com/NotCoffee418/p1decoder/pkg/interpreter"
	"github.com/NotCoffee418/p1decoder/pkg/meterdb"
	"github.com/NotCoffee418/p1decoder/pkg/meterutils"
)

func main() {
	// Load config
	if err := config.LoadMeterCollectorConfig(); err != nil {
		log.Fatalf("Failed to load meter collector config: %v", err)
	}

	// Initialize database
	meterdb.InitializeDatabase()

	// Hourly aggregation and cleanup of raw samples
	go func() {
		for range time.Tick(time.Hour) {
			if err := aggregator.AggregateAndCleanup(); err != nil {
				log.Printf("Aggregation failed: %v", err)
			}
		}
	}()

	// Subscribe to websocket with revive
	interpreter.StartListener(
		config.ActiveMeterCollectorConfig.InterpreterAPIHost,
		config.ActiveMeterCollectorConfig.TLSEnabled,
		handleMeterReading,
	)
}

// Persist one decoded telegram snapshot.
func handleMeterReading(reading *interpreter.Reading) {
	if reading.State == nil {
		return
	}
	s := reading.State
	now := time.Now().UTC().Unix()

	// Live power, filed under the active tariff (1 = day, 2 = night).
	isNight := s.TariffIndicator != nil && *s.TariffIndicator == "0002"
	if s.PowerDelivered != nil {
		readingType := meterdb.PowerConsumptionDay
		if isNight {
			readingType = meterdb.PowerConsumptionNight
		}
		storeLivePower(now, *s.PowerDelivered, readingType)
	}
	if s.PowerReceived != nil {
		readingType := meterdb.PowerProductionDay
		if isNight {
			readingType = meterdb.PowerProductionNight
		}
		storeLivePower(now, *s.PowerReceived, readingType)
	}

	// Cumulative register standings. Only meters with per-tariff
	// registers land here; single-register meters report totals only.
	if s.Readings[0].Delivered != nil || s.Readings[1].Delivered != nil {
		total := &meterdb.MeterDbTotalPowerReading{
			Timestamp:               now,
			TotalConsumptionDayWh:   kwhOrZero(s.Readings[0].Delivered),
			TotalProductionDayWh:    kwhOrZero(s.Readings[0].Received),
			TotalConsumptionNightWh: kwhOrZero(s.Readings[1].Delivered),
			TotalProductionNightWh:  kwhOrZero(s.Readings[1].Received),
		}
		if err := meterdb.InsertTotalPowerReading(total); err != nil {
			log.Printf("Failed to store total power reading: %v", err)
		}
	}

	// Slave channel standings (gas and friends).
	for _, slave := range s.Slaves {
		if slave.Channel == 0 || slave.Reading == nil {
			continue
		}
		var deviceType uint32
		if slave.DeviceType != nil {
			deviceType = uint32(*slave.DeviceType)
		}
		slaveReading := &meterdb.MeterDbSlaveReading{
			Timestamp:           now,
			Channel:             uint8(slave.Channel),
			DeviceType:          deviceType,
			TotalConsumptionDM3: meterutils.M3ToDM3(slave.Reading.Value),
		}
		if err := meterdb.InsertSlaveReading(slaveReading); err != nil {
			log.Printf("Failed to store slave reading: %v", err)
		}
	}
}

func storeLivePower(timestamp int64, kw float64, readingType meterdb.MeterDbPowerReadingType) {
	live := &meterdb.MeterDbLivePowerReading{
		Timestamp:   timestamp,
		Watt:        meterutils.KwToW(kw),
		ReadingType: readingType,
	}
	if err := meterdb.InsertLivePowerReading(live); err != nil {
		log.Printf("Failed to store live power reading: %v", err)
	}
}

// kwhOrZero converts an optional kWh standing to Wh for storage.
func kwhOrZero(kwh *float64) uint32 {
	if kwh == nil {
		return 0
	}
	return meterutils.KwToW(*kwh)
}
