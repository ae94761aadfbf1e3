// Package api serves the JSON API. Handlers read through the SQLite cache:
// a station-day already fetched is served locally, anything else is pulled
// from upstream, stored, then served.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bfarley42/wxlens/internal/models"
	"github.com/bfarley42/wxlens/internal/store"
	"github.com/bfarley42/wxlens/internal/upstream"
)

// WeatherSource is the slice of the upstream client the handlers use.
type WeatherSource interface {
	SearchStations(query string) ([]models.Station, error)
	FetchHourly(stationID string, date time.Time) ([]models.Observation, error)
	FetchDaily(stationID string, start, end time.Time) ([]models.DailyRecord, error)
	FetchCurrentMETAR(icao string) (*upstream.CurrentConditions, error)
}

// NormalsSource fetches monthly climate normals for a station.
type NormalsSource interface {
	FetchNormals(stationID string) ([]models.Normals, error)
}

type Server struct {
	store   *store.Store
	source  WeatherSource
	normals NormalsSource
	addr    string
	loc     *time.Location
}

func NewServer(store *store.Store, source WeatherSource, normals NormalsSource, addr string, loc *time.Location) *Server {
	return &Server{
		store:   store,
		source:  source,
		normals: normals,
		addr:    addr,
		loc:     loc,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stations/search", s.handleStationSearch)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/conditions", s.handleConditions)
	mux.HandleFunc("/api/compare", s.handleCompare)
	mux.HandleFunc("/api/current", s.handleCurrent)
	mux.HandleFunc("/api/normals", s.handleNormals)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
