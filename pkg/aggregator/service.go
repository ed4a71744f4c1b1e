package aggregator

import (
	"database/sql"
	"log"
	"time"

	"github.com/NotCoffee418/p1decoder/pkg/meterdb"
)

// roundToHourStart returns the Unix timestamp of the start of the hour for the given time
func roundToHourStart(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC).Unix()
}

// getHourEnd returns the Unix timestamp of the last second of the hour (next hour start - 1)
func getHourEnd(hourStart int64) int64 {
	return time.Unix(hourStart, 0).Add(time.Hour).Unix() - 1
}

// aggregateLivePowerHourly aggregates live power readings for a specific hour
func aggregateLivePowerHourly(hourStart int64) error {
	db := meterdb.GetDB()
	hourEnd := getHourEnd(hourStart)

	// Query to calculate averages grouped by reading_type
	query := `
		SELECT
			reading_type,
			AVG(watt) as avg_watt,
			COUNT(*) as count
		FROM live_power_readings
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY reading_type
	`

	rows, err := db.Query(query, hourStart, hourEnd)
	if err != nil {
		return err
	}
	defer rows.Close()

	// Collect data for each reading type
	aggregateData := make(map[meterdb.MeterDbPowerReadingType]float64)
	var totalSampleCount uint32 = 0

	for rows.Next() {
		var readingType meterdb.MeterDbPowerReadingType
		var avgWatt float64
		var count uint32

		if err := rows.Scan(&readingType, &avgWatt, &count); err != nil {
			return err
		}

		aggregateData[readingType] = avgWatt
		totalSampleCount += count
	}

	if err := rows.Err(); err != nil {
		return err
	}

	// Only insert if we have data
	if totalSampleCount == 0 {
		return nil
	}

	// Convert watts to watthours (average watt for 1 hour = watthours)
	consumptionDayWh := uint32(aggregateData[meterdb.PowerConsumptionDay])
	consumptionNightWh := uint32(aggregateData[meterdb.PowerConsumptionNight])
	productionDayWh := uint32(aggregateData[meterdb.PowerProductionDay])
	productionNightWh := uint32(aggregateData[meterdb.PowerProductionNight])

	// Insert or replace the aggregate
	insertQuery := `
		INSERT OR REPLACE INTO aggregate_live_power_hourly
		(hour_start, consumption_day_wh, consumption_night_wh, production_day_wh, production_night_wh, sample_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(insertQuery, hourStart, consumptionDayWh, consumptionNightWh, productionDayWh, productionNightWh, totalSampleCount)
	return err
}

// cleanupOldData removes raw data older than 3 months if we have aggregated it
func cleanupOldData() error {
	db := meterdb.GetDB()

	// Calculate the cutoff timestamp (3 months ago)
	threeMonthsAgo := time.Now().UTC().AddDate(0, -3, 0)
	cutoffTimestamp := threeMonthsAgo.Unix()

	// Check if we have aggregated data up to the cutoff point
	// We check the last hourly aggregate to see if we've aggregated recent enough data
	var lastAggregateHour sql.NullInt64
	err := db.QueryRow("SELECT MAX(hour_start) FROM aggregate_live_power_hourly").Scan(&lastAggregateHour)
	if err != nil {
		return err
	}
	if !lastAggregateHour.Valid {
		// No aggregates yet, don't clean up
		return nil
	}

	// Only clean up if we have aggregated data up to the cutoff point
	if lastAggregateHour.Int64 < cutoffTimestamp {
		// We haven't aggregated enough data yet, don't clean up
		return nil
	}

	// Delete old live power readings
	_, err = db.Exec("DELETE FROM live_power_readings WHERE timestamp < ?", cutoffTimestamp)
	if err != nil {
		return err
	}

	// Delete old total power readings
	_, err = db.Exec("DELETE FROM total_power_readings WHERE timestamp < ?", cutoffTimestamp)
	if err != nil {
		return err
	}

	// Delete old slave channel readings
	_, err = db.Exec("DELETE FROM slave_readings WHERE timestamp < ?", cutoffTimestamp)
	if err != nil {
		return err
	}

	log.Printf("Cleaned up data older than %s", threeMonthsAgo.Format(time.RFC3339))
	return nil
}

// AggregateAndCleanup performs all aggregation and cleanup tasks
// This is the main function to call for data aggregation
func AggregateAndCleanup() error {
	now := time.Now().UTC()

	// Aggregate the previous hour (current hour is still ongoing)
	previousHour := now.Add(-time.Hour)
	hourStart := roundToHourStart(previousHour)

	log.Printf("Aggregating data for hour starting at %s", time.Unix(hourStart, 0).Format(time.RFC3339))

	if err := aggregateLivePowerHourly(hourStart); err != nil {
		log.Printf("Error aggregating hourly live power: %v", err)
		return err
	}

	// Run cleanup
	if err := cleanupOldData(); err != nil {
		log.Printf("Error cleaning up old data: %v", err)
		return err
	}

	log.Println("Aggregation and cleanup completed successfully")
	return nil
}
