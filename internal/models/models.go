package models

import (
	"database/sql"
	"time"
)

// Station is a searchable weather station or city.
type Station struct {
	StationID string
	ICAO      string // airport identifier for METAR lookups, may be empty
	Name      string
	State     string
	Country   string
	Latitude  float64
	Longitude float64
	Elevation float64
	Active    bool
}

// Observation is one cached hourly record for a station. Fields the upstream
// source may omit are nullable.
type Observation struct {
	ID          int64
	StationID   string
	ObservedAt  time.Time
	Temp        sql.NullFloat64 // °F
	Dewpoint    sql.NullFloat64
	Humidity    sql.NullInt64
	SkyCode     sql.NullString  // CLR, SKC, FEW, SCT, BKN, OVC
	WeatherCode sql.NullString  // METAR present-weather token
	Precip      sql.NullFloat64 // inches
	WindAvg     sql.NullFloat64 // mph
	WindGust    sql.NullFloat64
	Pressure    sql.NullFloat64
	CreatedAt   time.Time
}

// DailyRecord is one cached day of station history.
type DailyRecord struct {
	ID        int64
	StationID string
	Date      time.Time
	TempMax   sql.NullFloat64
	TempMin   sql.NullFloat64
	TempAvg   sql.NullFloat64
	Precip    sql.NullFloat64
	Snowfall  sql.NullFloat64
	SnowDepth sql.NullFloat64
	WindAvg   sql.NullFloat64
	Sunrise   sql.NullString // "H:MM AM/PM"
	Sunset    sql.NullString
}

// Normals is the climate-normal baseline for one station and calendar month.
type Normals struct {
	StationID string
	Month     int // 1-12
	TempMax   sql.NullFloat64
	TempMin   sql.NullFloat64
	Precip    sql.NullFloat64
	Snowfall  sql.NullFloat64
}

// FetchLog records one upstream fetch so cached days are not re-fetched.
type FetchLog struct {
	ID        int64
	StationID string
	Kind      string // "hourly" or "daily"
	Date      time.Time
	FetchedAt time.Time
	Success   bool
	Error     sql.NullString
}
