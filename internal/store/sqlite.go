package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/bfarley42/wxlens/internal/models"
)

// Store is the SQLite-backed cache of upstream weather data. It is handed
// explicitly to whoever needs it; there is no package-level instance.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) UpsertStation(st models.Station) error {
	_, err := s.db.Exec(`
		INSERT INTO stations (station_id, icao, name, state, country, latitude, longitude, elevation, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id) DO UPDATE SET
			icao = excluded.icao,
			name = excluded.name,
			state = excluded.state,
			country = excluded.country,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			elevation = excluded.elevation,
			active = excluded.active
	`, st.StationID, st.ICAO, st.Name, st.State, st.Country, st.Latitude, st.Longitude, st.Elevation, st.Active)
	return err
}

func (s *Store) GetStation(stationID string) (*models.Station, error) {
	row := s.db.QueryRow(`
		SELECT station_id, icao, name, state, country, latitude, longitude, elevation, active
		FROM stations WHERE station_id = ?
	`, stationID)

	var st models.Station
	err := row.Scan(&st.StationID, &st.ICAO, &st.Name, &st.State, &st.Country, &st.Latitude, &st.Longitude, &st.Elevation, &st.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SearchStations matches the query against station name, id and ICAO code,
// case-insensitively, returning at most limit active stations.
func (s *Store) SearchStations(query string, limit int) ([]models.Station, error) {
	pattern := "%" + strings.ToUpper(strings.TrimSpace(query)) + "%"
	rows, err := s.db.Query(`
		SELECT station_id, icao, name, state, country, latitude, longitude, elevation, active
		FROM stations
		WHERE active = TRUE
		  AND (UPPER(name) LIKE ? OR UPPER(station_id) LIKE ? OR UPPER(icao) LIKE ?)
		ORDER BY name ASC
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.StationID, &st.ICAO, &st.Name, &st.State, &st.Country, &st.Latitude, &st.Longitude, &st.Elevation, &st.Active); err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

func (s *Store) InsertObservation(obs models.Observation) error {
	_, err := s.db.Exec(`
		INSERT INTO observations (station_id, observed_at, temp, dewpoint, humidity, sky_code, weather_code, precip, wind_avg, wind_gust, pressure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, observed_at) DO NOTHING
	`, obs.StationID, obs.ObservedAt, obs.Temp, obs.Dewpoint, obs.Humidity, obs.SkyCode, obs.WeatherCode, obs.Precip, obs.WindAvg, obs.WindGust, obs.Pressure)
	return err
}

// GetObservations returns cached hourly records in [start, end], ascending.
func (s *Store) GetObservations(stationID string, start, end time.Time) ([]models.Observation, error) {
	rows, err := s.db.Query(`
		SELECT id, station_id, observed_at, temp, dewpoint, humidity, sky_code, weather_code, precip, wind_avg, wind_gust, pressure, created_at
		FROM observations
		WHERE station_id = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`, stationID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var obs models.Observation
		if err := rows.Scan(&obs.ID, &obs.StationID, &obs.ObservedAt, &obs.Temp, &obs.Dewpoint, &obs.Humidity, &obs.SkyCode, &obs.WeatherCode, &obs.Precip, &obs.WindAvg, &obs.WindGust, &obs.Pressure, &obs.CreatedAt); err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

func (s *Store) InsertDailyRecord(rec models.DailyRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_records (station_id, date, temp_max, temp_min, temp_avg, precip, snowfall, snow_depth, wind_avg, sunrise, sunset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, date) DO UPDATE SET
			temp_max = excluded.temp_max,
			temp_min = excluded.temp_min,
			temp_avg = excluded.temp_avg,
			precip = excluded.precip,
			snowfall = excluded.snowfall,
			snow_depth = excluded.snow_depth,
			wind_avg = excluded.wind_avg,
			sunrise = excluded.sunrise,
			sunset = excluded.sunset
	`, rec.StationID, rec.Date, rec.TempMax, rec.TempMin, rec.TempAvg, rec.Precip, rec.Snowfall, rec.SnowDepth, rec.WindAvg, rec.Sunrise, rec.Sunset)
	return err
}

func (s *Store) GetDailyRecords(stationID string, start, end time.Time) ([]models.DailyRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, station_id, date, temp_max, temp_min, temp_avg, precip, snowfall, snow_depth, wind_avg, sunrise, sunset
		FROM daily_records
		WHERE station_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, stationID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		var rec models.DailyRecord
		if err := rows.Scan(&rec.ID, &rec.StationID, &rec.Date, &rec.TempMax, &rec.TempMin, &rec.TempAvg, &rec.Precip, &rec.Snowfall, &rec.SnowDepth, &rec.WindAvg, &rec.Sunrise, &rec.Sunset); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) GetDailyRecord(stationID string, date time.Time) (*models.DailyRecord, error) {
	records, err := s.GetDailyRecords(stationID, date, date)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *Store) UpsertNormals(n models.Normals) error {
	_, err := s.db.Exec(`
		INSERT INTO normals (station_id, month, temp_max, temp_min, precip, snowfall)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, month) DO UPDATE SET
			temp_max = excluded.temp_max,
			temp_min = excluded.temp_min,
			precip = excluded.precip,
			snowfall = excluded.snowfall
	`, n.StationID, n.Month, n.TempMax, n.TempMin, n.Precip, n.Snowfall)
	return err
}

func (s *Store) GetNormals(stationID string) ([]models.Normals, error) {
	rows, err := s.db.Query(`
		SELECT station_id, month, temp_max, temp_min, precip, snowfall
		FROM normals
		WHERE station_id = ?
		ORDER BY month ASC
	`, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var normals []models.Normals
	for rows.Next() {
		var n models.Normals
		if err := rows.Scan(&n.StationID, &n.Month, &n.TempMax, &n.TempMin, &n.Precip, &n.Snowfall); err != nil {
			return nil, err
		}
		normals = append(normals, n)
	}
	return normals, rows.Err()
}

// MarkFetched records a successful (or failed) upstream fetch for a
// station-day, so HasFetched can short-circuit repeat fetches.
func (s *Store) MarkFetched(stationID, kind string, date time.Time, success bool, fetchErr error) error {
	var errText sql.NullString
	if fetchErr != nil {
		errText = sql.NullString{String: fetchErr.Error(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO fetch_log (station_id, kind, date, fetched_at, success, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, kind, date) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			success = excluded.success,
			error = excluded.error
	`, stationID, kind, dateOnly(date), time.Now().UTC(), success, errText)
	return err
}

// HasFetched reports whether a successful fetch for the station-day is
// already on record.
func (s *Store) HasFetched(stationID, kind string, date time.Time) (bool, error) {
	var success bool
	err := s.db.QueryRow(`
		SELECT success FROM fetch_log
		WHERE station_id = ? AND kind = ? AND date = ?
	`, stationID, kind, dateOnly(date)).Scan(&success)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return success, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
