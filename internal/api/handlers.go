package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bfarley42/wxlens/internal/conditions"
	"github.com/bfarley42/wxlens/internal/gradient"
	"github.com/bfarley42/wxlens/internal/metrics"
	"github.com/bfarley42/wxlens/internal/models"
)

const maxCompareStations = 5

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

// parseDate reads a YYYY-MM-DD query parameter.
func parseDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing %q parameter", name)
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %q date: %s", name, raw)
	}
	return date, nil
}

func (s *Server) handleStationSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "missing \"q\" parameter", http.StatusBadRequest)
		return
	}

	stations, err := s.store.SearchStations(query, 10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(stations) > 0 {
		metrics.CacheHits.WithLabelValues("stations").Inc()
	} else {
		metrics.CacheMisses.WithLabelValues("stations").Inc()
		stations, err = s.source.SearchStations(query)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		for _, st := range stations {
			if err := s.store.UpsertStation(st); err != nil {
				log.Printf("api: upsert station %s: %v", st.StationID, err)
			}
		}
	}

	views := make([]StationView, 0, len(stations))
	for _, st := range stations {
		views = append(views, stationView(st))
	}
	s.writeJSON(w, map[string][]StationView{"stations": views})
}

// handleHistory serves hourly observations for one day (?date=) or daily
// records for a range (?start=&end=).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "missing \"station\" parameter", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("date") != "" {
		date, err := parseDate(r, "date")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		observations, err := s.hourlyForDay(stationID, date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		views := make([]ObservationView, 0, len(observations))
		for _, obs := range observations {
			views = append(views, observationView(obs))
		}
		s.writeJSON(w, map[string]interface{}{"station_id": stationID, "observations": views})
		return
	}

	start, err := parseDate(r, "start")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseDate(r, "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end before start", http.StatusBadRequest)
		return
	}

	records, err := s.dailyForRange(stationID, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	views := make([]DailyView, 0, len(records))
	for _, rec := range records {
		views = append(views, dailyView(rec))
	}
	s.writeJSON(w, map[string]interface{}{"station_id": stationID, "days": views})
}

func (s *Server) hourlyForDay(stationID string, date time.Time) ([]models.Observation, error) {
	if err := s.ensureHourly(stationID, date); err != nil {
		return nil, err
	}
	return s.store.GetObservations(stationID, date, date.AddDate(0, 0, 1).Add(-time.Second))
}

func (s *Server) dailyForRange(stationID string, start, end time.Time) ([]models.DailyRecord, error) {
	if err := s.ensureDaily(stationID, start, end); err != nil {
		return nil, err
	}
	return s.store.GetDailyRecords(stationID, start, end)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "missing \"station\" parameter", http.StatusBadRequest)
		return
	}
	start, err := parseDate(r, "start")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseDate(r, "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end before start", http.StatusBadRequest)
		return
	}

	records, err := s.dailyForRange(stationID, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, summaryView(stationID, start, end, records))
}

func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "missing \"station\" parameter", http.StatusBadRequest)
		return
	}
	date, err := parseDate(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.buildConditionsReport(stationID, date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, report)
}

// buildConditionsReport runs the derivation engine over one cached
// station-day: classify each hour, estimate sunshine against the day's
// daylight window, aggregate durations, and generate the narrative.
func (s *Server) buildConditionsReport(stationID string, date time.Time) (*ConditionsReport, error) {
	observations, err := s.hourlyForDay(stationID, date)
	if err != nil {
		return nil, err
	}

	// The daily record carries sunrise and sunset. A day without one still
	// gets a report; every hour is just treated as night.
	var window conditions.DaylightWindow
	report := &ConditionsReport{
		StationID: stationID,
		Date:      date.Format("2006-01-02"),
	}
	if err := s.ensureDaily(stationID, date, date); err != nil {
		log.Printf("api: daily record for %s %s: %v", stationID, report.Date, err)
	} else if rec, err := s.store.GetDailyRecord(stationID, date); err == nil && rec != nil {
		if rec.Sunrise.Valid && rec.Sunset.Valid {
			window, err = conditions.NewDaylightWindow(rec.Sunrise.String, rec.Sunset.String)
			if err != nil {
				return nil, fmt.Errorf("daylight window: %w", err)
			}
			report.Sunrise = &rec.Sunrise.String
			report.Sunset = &rec.Sunset.String
		}
	}

	hourly := make([]conditions.HourlyObservation, 0, len(observations))
	for _, obs := range observations {
		hourly = append(hourly, hourlyInput(obs, s.loc))
	}

	classified := conditions.ClassifySequence(hourly, window)
	metrics.ConditionsDerived.Inc()

	report.Hours = make([]HourView, 0, len(classified))
	for i, c := range classified {
		hv := HourView{
			Timestamp:   c.Timestamp,
			Label:       c.Label,
			SunshinePct: c.SunshinePct,
			Daylight:    c.Daylight,
			TempF:       hourly[i].TempF,
		}
		meta := conditions.Lookup(c.Label)
		hv.Icon = meta.Icon
		hv.Color = meta.Color
		if hv.TempF != nil {
			hv.TempColor = gradient.TempColor(*hv.TempF)
		}
		report.Hours = append(report.Hours, hv)
	}
	report.Durations = conditions.SummarizeDurations(classified)
	report.Narrative = conditions.GenerateNarrative(hourly)
	return report, nil
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("stations")
	if raw == "" {
		http.Error(w, "missing \"stations\" parameter", http.StatusBadRequest)
		return
	}
	stationIDs := strings.Split(raw, ",")
	if len(stationIDs) > maxCompareStations {
		http.Error(w, fmt.Sprintf("at most %d stations", maxCompareStations), http.StatusBadRequest)
		return
	}
	start, err := parseDate(r, "start")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseDate(r, "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end before start", http.StatusBadRequest)
		return
	}

	summaries := make([]SummaryView, 0, len(stationIDs))
	for _, stationID := range stationIDs {
		stationID = strings.TrimSpace(stationID)
		if stationID == "" {
			continue
		}
		records, err := s.dailyForRange(stationID, start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		summaries = append(summaries, summaryView(stationID, start, end, records))
	}
	s.writeJSON(w, map[string][]SummaryView{"stations": summaries})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "missing \"station\" parameter", http.StatusBadRequest)
		return
	}

	station, err := s.store.GetStation(stationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	icao := stationID
	if station != nil && station.ICAO != "" {
		icao = station.ICAO
	}

	cc, err := s.source.FetchCurrentMETAR(icao)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	label := conditions.Classify(cc.SkyCode, cc.WeatherCode)
	meta := conditions.Lookup(label)
	view := CurrentView{
		StationID:    stationID,
		ICAO:         cc.ICAO,
		ObservedAt:   cc.ObservedAt,
		Label:        label,
		Icon:         meta.Icon,
		Color:        meta.Color,
		TempF:        cc.TempF,
		DewpointF:    cc.DewpointF,
		WindMph:      cc.WindMph,
		WindGustMph:  cc.WindGustMph,
		VisibilityMi: cc.VisibilityMi,
		RawReport:    cc.RawReport,
	}
	if view.TempF != nil {
		view.TempColor = gradient.TempColor(*view.TempF)
	}
	s.writeJSON(w, view)
}

func (s *Server) handleNormals(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		http.Error(w, "missing \"station\" parameter", http.StatusBadRequest)
		return
	}

	normals, err := s.ensureNormals(stationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	views := make([]NormalsView, 0, len(normals))
	for _, n := range normals {
		views = append(views, NormalsView{
			Month:    n.Month,
			TempMaxF: nullFloat(n.TempMax),
			TempMinF: nullFloat(n.TempMin),
			PrecipIn: nullFloat(n.Precip),
			SnowIn:   nullFloat(n.Snowfall),
		})
	}
	s.writeJSON(w, map[string]interface{}{"station_id": stationID, "months": views})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}
	s.writeJSON(w, map[string]string{"status": "ok"})
}
