package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bfarley42/wxlens/internal/models"
	"github.com/bfarley42/wxlens/internal/store"
	"github.com/bfarley42/wxlens/internal/upstream"
)

// fakeSource is an in-memory stand-in for the upstream API. Call counters
// let tests assert the cache actually short-circuits fetches.
type fakeSource struct {
	stations     []models.Station
	hourly       map[string][]models.Observation
	daily        map[string][]models.DailyRecord
	current      *upstream.CurrentConditions
	hourlyCalls  int
	dailyCalls   int
	searchCalls  int
	currentCalls int
	err          error
}

func (f *fakeSource) SearchStations(query string) ([]models.Station, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stations, nil
}

func (f *fakeSource) FetchHourly(stationID string, date time.Time) ([]models.Observation, error) {
	f.hourlyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.hourly[stationID], nil
}

func (f *fakeSource) FetchDaily(stationID string, start, end time.Time) ([]models.DailyRecord, error) {
	f.dailyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.daily[stationID], nil
}

func (f *fakeSource) FetchCurrentMETAR(icao string) (*upstream.CurrentConditions, error) {
	f.currentCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.current, nil
}

type fakeNormals struct {
	normals []models.Normals
	calls   int
}

func (f *fakeNormals) FetchNormals(stationID string) ([]models.Normals, error) {
	f.calls++
	return f.normals, nil
}

func setupTestServer(t *testing.T, source *fakeSource, normals *fakeNormals) *Server {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db, time.UTC)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewServer(st, source, normals, ":0", time.UTC)
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func nf(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
func ns(v string) sql.NullString   { return sql.NullString{String: v, Valid: true} }

// testDay builds 24 hourly observations: rain all morning, clear after noon.
func testDay(stationID string, date time.Time) []models.Observation {
	observations := make([]models.Observation, 0, 24)
	for h := 0; h < 24; h++ {
		obs := models.Observation{
			StationID:  stationID,
			ObservedAt: date.Add(time.Duration(h) * time.Hour),
			Temp:       nf(40 + float64(h)),
		}
		if h < 12 {
			obs.SkyCode = ns("OVC")
			obs.WeatherCode = ns("RA")
			obs.Precip = nf(0.02)
		} else {
			obs.SkyCode = ns("CLR")
		}
		observations = append(observations, obs)
	}
	return observations
}

func TestHandleStationSearch_FallsThroughToUpstream(t *testing.T) {
	source := &fakeSource{stations: []models.Station{
		{StationID: "KBOS", ICAO: "KBOS", Name: "Boston Logan Intl", Country: "US", Active: true},
	}}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/stations/search?q=boston")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Stations []StationView `json:"stations"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Stations) != 1 || resp.Stations[0].StationID != "KBOS" {
		t.Fatalf("stations = %+v", resp.Stations)
	}
	if source.searchCalls != 1 {
		t.Errorf("searchCalls = %d, want 1", source.searchCalls)
	}

	// Second search hits the local store.
	rec = doRequest(t, s, "/api/stations/search?q=boston")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if source.searchCalls != 1 {
		t.Errorf("searchCalls after cached search = %d, want 1", source.searchCalls)
	}
}

func TestHandleStationSearch_MissingQuery(t *testing.T) {
	s := setupTestServer(t, &fakeSource{}, &fakeNormals{})
	if rec := doRequest(t, s, "/api/stations/search"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHistory_HourlyCachesFetch(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{hourly: map[string][]models.Observation{
		"KBOS": testDay("KBOS", date),
	}}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/history?station=KBOS&date=2025-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Observations []ObservationView `json:"observations"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Observations) != 24 {
		t.Fatalf("observations = %d, want 24", len(resp.Observations))
	}
	if resp.Observations[0].TempColor == "" {
		t.Error("expected a temp color on observations with temperature")
	}

	doRequest(t, s, "/api/history?station=KBOS&date=2025-01-15")
	if source.hourlyCalls != 1 {
		t.Errorf("hourlyCalls = %d, want 1 (second request should be cached)", source.hourlyCalls)
	}
}

func TestHandleHistory_DailyRange(t *testing.T) {
	source := &fakeSource{daily: map[string][]models.DailyRecord{
		"KBOS": {
			{StationID: "KBOS", Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), TempMax: nf(38), TempMin: nf(24), Precip: nf(0.21)},
			{StationID: "KBOS", Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), TempMax: nf(41), TempMin: nf(28)},
		},
	}}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/history?station=KBOS&start=2025-01-15&end=2025-01-16")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Days []DailyView `json:"days"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(resp.Days))
	}
	if resp.Days[0].Date != "2025-01-15" {
		t.Errorf("first day = %s", resp.Days[0].Date)
	}

	doRequest(t, s, "/api/history?station=KBOS&start=2025-01-15&end=2025-01-16")
	if source.dailyCalls != 1 {
		t.Errorf("dailyCalls = %d, want 1", source.dailyCalls)
	}
}

func TestHandleHistory_BadInput(t *testing.T) {
	s := setupTestServer(t, &fakeSource{}, &fakeNormals{})
	cases := []string{
		"/api/history",
		"/api/history?station=KBOS",
		"/api/history?station=KBOS&date=15-01-2025",
		"/api/history?station=KBOS&start=2025-01-16&end=2025-01-15",
	}
	for _, path := range cases {
		if rec := doRequest(t, s, path); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestHandleHistory_UpstreamErrorIsBadGateway(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("remote down")}
	s := setupTestServer(t, source, &fakeNormals{})
	rec := doRequest(t, s, "/api/history?station=KBOS&date=2025-01-15")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHandleSummary(t *testing.T) {
	source := &fakeSource{daily: map[string][]models.DailyRecord{
		"KBOS": {
			{StationID: "KBOS", Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), TempMax: nf(38), TempMin: nf(24), Precip: nf(0.21), Snowfall: nf(1.5), WindAvg: nf(12)},
			{StationID: "KBOS", Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), TempMax: nf(41), TempMin: nf(19), Precip: nf(0.04), WindAvg: nf(18)},
		},
	}}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/summary?station=KBOS&start=2025-01-15&end=2025-01-16")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp SummaryView
	decodeBody(t, rec, &resp)
	if resp.Days != 2 {
		t.Errorf("Days = %d, want 2", resp.Days)
	}
	if resp.TempMaxF == nil || *resp.TempMaxF != 41 {
		t.Errorf("TempMaxF = %v, want 41", resp.TempMaxF)
	}
	if resp.TempMinF == nil || *resp.TempMinF != 19 {
		t.Errorf("TempMinF = %v, want 19", resp.TempMinF)
	}
	if resp.TotalPrecipIn != 0.25 {
		t.Errorf("TotalPrecipIn = %v, want 0.25", resp.TotalPrecipIn)
	}
	if resp.TotalSnowIn != 1.5 {
		t.Errorf("TotalSnowIn = %v, want 1.5", resp.TotalSnowIn)
	}
	if resp.MaxWindMph == nil || *resp.MaxWindMph != 18 {
		t.Errorf("MaxWindMph = %v, want 18", resp.MaxWindMph)
	}
}

func TestHandleConditions(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{
		hourly: map[string][]models.Observation{"KBOS": testDay("KBOS", date)},
		daily: map[string][]models.DailyRecord{"KBOS": {
			{StationID: "KBOS", Date: date, Sunrise: ns("6:00 AM"), Sunset: ns("6:00 PM")},
		}},
	}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/conditions?station=KBOS&date=2025-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var report ConditionsReport
	decodeBody(t, rec, &report)

	if len(report.Hours) != 24 {
		t.Fatalf("hours = %d, want 24", len(report.Hours))
	}
	if report.Hours[0].Label != "Rain" {
		t.Errorf("hour 0 label = %q, want Rain", report.Hours[0].Label)
	}
	if report.Hours[23].Label != "Clear" {
		t.Errorf("hour 23 label = %q, want Clear", report.Hours[23].Label)
	}
	if report.Hours[0].Icon == "" || report.Hours[0].Color == "" {
		t.Error("expected icon metadata on every hour")
	}

	// Night hours report no sunshine, rainy daylight hours are dimmed, clear
	// daylight hours are full sun.
	if got := report.Hours[3].SunshinePct; got != 0 {
		t.Errorf("hour 3 sunshine = %v, want 0", got)
	}
	if got := report.Hours[8].SunshinePct; got != 0.5 {
		t.Errorf("hour 8 sunshine = %v, want 0.5", got)
	}
	if got := report.Hours[14].SunshinePct; got != 100 {
		t.Errorf("hour 14 sunshine = %v, want 100", got)
	}

	if len(report.Durations) != 2 {
		t.Fatalf("durations = %+v, want Rain and Clear", report.Durations)
	}
	if report.Durations[0].Hours != 12 || report.Durations[0].Percent != 50 {
		t.Errorf("duration[0] = %+v", report.Durations[0])
	}

	if report.Narrative == "" {
		t.Error("expected a narrative")
	}
	if !strings.Contains(report.Narrative, "Precipitation ended") {
		t.Errorf("narrative = %q, want rain-ended sentence", report.Narrative)
	}
	if !strings.Contains(report.Narrative, "0.24 inches") {
		t.Errorf("narrative = %q, want precip total 0.24", report.Narrative)
	}
}

func TestHandleConditions_NoSunTimesStillReports(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{
		hourly: map[string][]models.Observation{"KBOS": testDay("KBOS", date)},
		daily: map[string][]models.DailyRecord{"KBOS": {
			{StationID: "KBOS", Date: date},
		}},
	}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/conditions?station=KBOS&date=2025-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var report ConditionsReport
	decodeBody(t, rec, &report)
	for _, h := range report.Hours {
		if h.Daylight || h.SunshinePct != 0 {
			t.Fatalf("hour %v should be night without sun times, got %+v", h.Timestamp, h)
		}
	}
}

func TestHandleConditions_BadSunTimesFail(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{
		hourly: map[string][]models.Observation{"KBOS": testDay("KBOS", date)},
		daily: map[string][]models.DailyRecord{"KBOS": {
			{StationID: "KBOS", Date: date, Sunrise: ns("6 o'clock"), Sunset: ns("6:00 PM")},
		}},
	}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/conditions?station=KBOS&date=2025-01-15")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 for malformed sun times", rec.Code)
	}
}

func TestHandleCompare(t *testing.T) {
	source := &fakeSource{daily: map[string][]models.DailyRecord{
		"KBOS": {{StationID: "KBOS", Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), TempMax: nf(38)}},
		"KJFK": {{StationID: "KJFK", Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), TempMax: nf(43)}},
	}}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/compare?stations=KBOS,KJFK&start=2025-01-15&end=2025-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Stations []SummaryView `json:"stations"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Stations) != 2 {
		t.Fatalf("stations = %d, want 2", len(resp.Stations))
	}
	if resp.Stations[1].StationID != "KJFK" || *resp.Stations[1].TempMaxF != 43 {
		t.Errorf("second summary = %+v", resp.Stations[1])
	}
}

func TestHandleCompare_TooManyStations(t *testing.T) {
	s := setupTestServer(t, &fakeSource{}, &fakeNormals{})
	rec := doRequest(t, s, "/api/compare?stations=A,B,C,D,E,F&start=2025-01-15&end=2025-01-15")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCurrent(t *testing.T) {
	sky := "BKN"
	temp := 33.8
	source := &fakeSource{current: &upstream.CurrentConditions{
		ICAO:       "KBOS",
		ObservedAt: time.Date(2025, 1, 15, 14, 54, 0, 0, time.UTC),
		TempF:      &temp,
		SkyCode:    &sky,
		RawReport:  "KBOS 151454Z ...",
	}}
	s := setupTestServer(t, source, &fakeNormals{})

	rec := doRequest(t, s, "/api/current?station=KBOS")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var view CurrentView
	decodeBody(t, rec, &view)
	if view.Label != "Mostly Cloudy" {
		t.Errorf("Label = %q, want Mostly Cloudy", view.Label)
	}
	if view.Icon == "" || view.Color == "" {
		t.Error("expected icon metadata")
	}
	if view.TempColor == "" {
		t.Error("expected temp color")
	}
}

func TestHandleNormals_CachesFetch(t *testing.T) {
	normals := &fakeNormals{}
	for m := 1; m <= 12; m++ {
		normals.normals = append(normals.normals, models.Normals{
			StationID: "USW00014739", Month: m, TempMax: nf(50 + float64(m)),
		})
	}
	s := setupTestServer(t, &fakeSource{}, normals)

	rec := doRequest(t, s, "/api/normals?station=USW00014739")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Months []NormalsView `json:"months"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Months) != 12 {
		t.Fatalf("months = %d, want 12", len(resp.Months))
	}

	doRequest(t, s, "/api/normals?station=USW00014739")
	if normals.calls != 1 {
		t.Errorf("normals calls = %d, want 1", normals.calls)
	}
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t, &fakeSource{}, &fakeNormals{})
	rec := doRequest(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}
