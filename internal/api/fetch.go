package api

import (
	"fmt"
	"log"
	"time"

	"github.com/bfarley42/wxlens/internal/metrics"
	"github.com/bfarley42/wxlens/internal/models"
)

const (
	fetchKindHourly = "hourly"
	fetchKindDaily  = "daily"
)

// ensureHourly makes sure one station-day of hourly observations is in the
// store, fetching from upstream on a cache miss. Days already marked fetched
// are never refetched, even if the upstream returned no observations.
func (s *Server) ensureHourly(stationID string, date time.Time) error {
	fetched, err := s.store.HasFetched(stationID, fetchKindHourly, date)
	if err != nil {
		return fmt.Errorf("check fetch log: %w", err)
	}
	if fetched {
		metrics.CacheHits.WithLabelValues(fetchKindHourly).Inc()
		return nil
	}
	metrics.CacheMisses.WithLabelValues(fetchKindHourly).Inc()

	observations, err := s.source.FetchHourly(stationID, date)
	if err != nil {
		if logErr := s.store.MarkFetched(stationID, fetchKindHourly, date, false, err); logErr != nil {
			log.Printf("api: mark fetch failed %s: %v", stationID, logErr)
		}
		return fmt.Errorf("fetch hourly %s %s: %w", stationID, date.Format("2006-01-02"), err)
	}

	for _, obs := range observations {
		if err := s.store.InsertObservation(obs); err != nil {
			return fmt.Errorf("store observation: %w", err)
		}
	}
	return s.store.MarkFetched(stationID, fetchKindHourly, date, true, nil)
}

// ensureDaily makes sure every day in [start, end] has a daily record
// cached. Missing days are fetched in one upstream call covering the whole
// gap rather than one call per day.
func (s *Server) ensureDaily(stationID string, start, end time.Time) error {
	var missingStart, missingEnd time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		fetched, err := s.store.HasFetched(stationID, fetchKindDaily, d)
		if err != nil {
			return fmt.Errorf("check fetch log: %w", err)
		}
		if fetched {
			metrics.CacheHits.WithLabelValues(fetchKindDaily).Inc()
			continue
		}
		metrics.CacheMisses.WithLabelValues(fetchKindDaily).Inc()
		if missingStart.IsZero() {
			missingStart = d
		}
		missingEnd = d
	}
	if missingStart.IsZero() {
		return nil
	}

	records, err := s.source.FetchDaily(stationID, missingStart, missingEnd)
	if err != nil {
		return fmt.Errorf("fetch daily %s: %w", stationID, err)
	}

	for _, rec := range records {
		if err := s.store.InsertDailyRecord(rec); err != nil {
			return fmt.Errorf("store daily record: %w", err)
		}
	}
	for d := missingStart; !d.After(missingEnd); d = d.AddDate(0, 0, 1) {
		if err := s.store.MarkFetched(stationID, fetchKindDaily, d, true, nil); err != nil {
			return fmt.Errorf("mark fetched: %w", err)
		}
	}
	return nil
}

// ensureNormals serves normals from the store, pulling the NCEI CSV only
// when the station has none cached. Normals are static for a 30-year cycle
// so there is no expiry.
func (s *Server) ensureNormals(stationID string) ([]models.Normals, error) {
	normals, err := s.store.GetNormals(stationID)
	if err != nil {
		return nil, fmt.Errorf("get normals: %w", err)
	}
	if len(normals) > 0 {
		metrics.CacheHits.WithLabelValues("normals").Inc()
		return normals, nil
	}
	metrics.CacheMisses.WithLabelValues("normals").Inc()

	fetched, err := s.normals.FetchNormals(stationID)
	if err != nil {
		return nil, fmt.Errorf("fetch normals %s: %w", stationID, err)
	}
	for _, n := range fetched {
		if err := s.store.UpsertNormals(n); err != nil {
			return nil, fmt.Errorf("store normals: %w", err)
		}
	}
	return fetched, nil
}
