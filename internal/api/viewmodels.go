package api

import (
	"database/sql"
	"time"

	"github.com/bfarley42/wxlens/internal/conditions"
	"github.com/bfarley42/wxlens/internal/gradient"
	"github.com/bfarley42/wxlens/internal/models"
)

type StationView struct {
	StationID string  `json:"station_id"`
	ICAO      string  `json:"icao,omitempty"`
	Name      string  `json:"name"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

type ObservationView struct {
	ObservedAt  time.Time `json:"observed_at"`
	TempF       *float64  `json:"temp_f,omitempty"`
	TempColor   string    `json:"temp_color,omitempty"`
	DewpointF   *float64  `json:"dewpoint_f,omitempty"`
	Humidity    *int64    `json:"humidity,omitempty"`
	SkyCode     *string   `json:"sky_code,omitempty"`
	WeatherCode *string   `json:"weather_code,omitempty"`
	PrecipIn    *float64  `json:"precip_in,omitempty"`
	WindMph     *float64  `json:"wind_mph,omitempty"`
	WindGustMph *float64  `json:"wind_gust_mph,omitempty"`
	PressureIn  *float64  `json:"pressure_in,omitempty"`
}

type DailyView struct {
	Date      string   `json:"date"`
	TempMaxF  *float64 `json:"temp_max_f,omitempty"`
	TempMinF  *float64 `json:"temp_min_f,omitempty"`
	TempAvgF  *float64 `json:"temp_avg_f,omitempty"`
	PrecipIn  *float64 `json:"precip_in,omitempty"`
	SnowIn    *float64 `json:"snow_in,omitempty"`
	WindMph   *float64 `json:"wind_mph,omitempty"`
	Sunrise   *string  `json:"sunrise,omitempty"`
	Sunset    *string  `json:"sunset,omitempty"`
	MaxColor  string   `json:"max_color,omitempty"`
	MinColor  string   `json:"min_color,omitempty"`
}

// HourView is one classified hour in a conditions report.
type HourView struct {
	Timestamp   time.Time `json:"timestamp"`
	Label       string    `json:"label"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	SunshinePct float64   `json:"sunshine_pct"`
	Daylight    bool      `json:"daylight"`
	TempF       *float64  `json:"temp_f,omitempty"`
	TempColor   string    `json:"temp_color,omitempty"`
}

// ConditionsReport is the full derived view of one station-day.
type ConditionsReport struct {
	StationID string                         `json:"station_id"`
	Date      string                         `json:"date"`
	Hours     []HourView                     `json:"hours"`
	Durations []conditions.ConditionDuration `json:"durations"`
	Narrative string                         `json:"narrative"`
	Sunrise   *string                        `json:"sunrise,omitempty"`
	Sunset    *string                        `json:"sunset,omitempty"`
}

// SummaryView aggregates a range of daily records for one station.
type SummaryView struct {
	StationID     string   `json:"station_id"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Days          int      `json:"days"`
	TempMaxF      *float64 `json:"temp_max_f,omitempty"`
	TempMinF      *float64 `json:"temp_min_f,omitempty"`
	TotalPrecipIn float64  `json:"total_precip_in"`
	TotalSnowIn   float64  `json:"total_snow_in"`
	MaxWindMph    *float64 `json:"max_wind_mph,omitempty"`
}

type CurrentView struct {
	StationID    string    `json:"station_id"`
	ICAO         string    `json:"icao"`
	ObservedAt   time.Time `json:"observed_at"`
	Label        string    `json:"label"`
	Icon         string    `json:"icon"`
	Color        string    `json:"color"`
	TempF        *float64  `json:"temp_f,omitempty"`
	TempColor    string    `json:"temp_color,omitempty"`
	DewpointF    *float64  `json:"dewpoint_f,omitempty"`
	WindMph      *float64  `json:"wind_mph,omitempty"`
	WindGustMph  *float64  `json:"wind_gust_mph,omitempty"`
	VisibilityMi *float64  `json:"visibility_mi,omitempty"`
	RawReport    string    `json:"raw_report"`
}

type NormalsView struct {
	Month    int      `json:"month"`
	TempMaxF *float64 `json:"temp_max_f,omitempty"`
	TempMinF *float64 `json:"temp_min_f,omitempty"`
	PrecipIn *float64 `json:"precip_in,omitempty"`
	SnowIn   *float64 `json:"snow_in,omitempty"`
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func stationView(st models.Station) StationView {
	return StationView{
		StationID: st.StationID,
		ICAO:      st.ICAO,
		Name:      st.Name,
		State:     st.State,
		Country:   st.Country,
		Latitude:  st.Latitude,
		Longitude: st.Longitude,
		Elevation: st.Elevation,
	}
}

func observationView(obs models.Observation) ObservationView {
	v := ObservationView{
		ObservedAt:  obs.ObservedAt,
		TempF:       nullFloat(obs.Temp),
		DewpointF:   nullFloat(obs.Dewpoint),
		Humidity:    nullInt(obs.Humidity),
		SkyCode:     nullString(obs.SkyCode),
		WeatherCode: nullString(obs.WeatherCode),
		PrecipIn:    nullFloat(obs.Precip),
		WindMph:     nullFloat(obs.WindAvg),
		WindGustMph: nullFloat(obs.WindGust),
		PressureIn:  nullFloat(obs.Pressure),
	}
	if v.TempF != nil {
		v.TempColor = gradient.TempColor(*v.TempF)
	}
	return v
}

func dailyView(rec models.DailyRecord) DailyView {
	v := DailyView{
		Date:     rec.Date.Format("2006-01-02"),
		TempMaxF: nullFloat(rec.TempMax),
		TempMinF: nullFloat(rec.TempMin),
		TempAvgF: nullFloat(rec.TempAvg),
		PrecipIn: nullFloat(rec.Precip),
		SnowIn:   nullFloat(rec.Snowfall),
		WindMph:  nullFloat(rec.WindAvg),
		Sunrise:  nullString(rec.Sunrise),
		Sunset:   nullString(rec.Sunset),
	}
	if v.TempMaxF != nil {
		v.MaxColor = gradient.TempColor(*v.TempMaxF)
	}
	if v.TempMinF != nil {
		v.MinColor = gradient.TempColor(*v.TempMinF)
	}
	return v
}

// hourlyInput converts a stored observation into the derivation engine's
// input form, shifting the timestamp into the server's display location so
// hour-of-day math matches the station's local day.
func hourlyInput(obs models.Observation, loc *time.Location) conditions.HourlyObservation {
	return conditions.HourlyObservation{
		Timestamp:   obs.ObservedAt.In(loc),
		TempF:       nullFloat(obs.Temp),
		SkyCode:     nullString(obs.SkyCode),
		WeatherCode: nullString(obs.WeatherCode),
		PrecipIn:    nullFloat(obs.Precip),
		WindAvgMph:  nullFloat(obs.WindAvg),
		WindGustMph: nullFloat(obs.WindGust),
	}
}

func summaryView(stationID string, start, end time.Time, records []models.DailyRecord) SummaryView {
	v := SummaryView{
		StationID: stationID,
		Start:     start.Format("2006-01-02"),
		End:       end.Format("2006-01-02"),
		Days:      len(records),
	}
	for _, rec := range records {
		if rec.TempMax.Valid && (v.TempMaxF == nil || rec.TempMax.Float64 > *v.TempMaxF) {
			max := rec.TempMax.Float64
			v.TempMaxF = &max
		}
		if rec.TempMin.Valid && (v.TempMinF == nil || rec.TempMin.Float64 < *v.TempMinF) {
			min := rec.TempMin.Float64
			v.TempMinF = &min
		}
		if rec.Precip.Valid {
			v.TotalPrecipIn += rec.Precip.Float64
		}
		if rec.Snowfall.Valid {
			v.TotalSnowIn += rec.Snowfall.Float64
		}
		if rec.WindAvg.Valid && (v.MaxWindMph == nil || rec.WindAvg.Float64 > *v.MaxWindMph) {
			wind := rec.WindAvg.Float64
			v.MaxWindMph = &wind
		}
	}
	return v
}
