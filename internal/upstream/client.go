// Package upstream fetches station metadata and observation history from the
// remote weather-data API. It handles retries and circuit breaking; callers
// are responsible for caching.
package upstream

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/bfarley42/wxlens/internal/httputil"
	"github.com/bfarley42/wxlens/internal/metrics"
	"github.com/bfarley42/wxlens/internal/models"
)

type Client struct {
	baseURL  string
	metarURL string
	apiKey   string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:  baseURL,
		metarURL: metarBaseURL,
		apiKey:   apiKey,
		client:   httputil.NewClient(),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "upstream",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// get fetches a URL with exponential-backoff retries inside a circuit
// breaker. Rate limiting and server errors are retried; anything else is
// permanent.
func (c *Client) get(endpoint, rawURL string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var body []byte
		operation := func() error {
			start := time.Now()
			resp, err := c.client.Get(rawURL)
			metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
				return fmt.Errorf("fetch %s: %w", endpoint, err)
			}
			defer resp.Body.Close()

			metrics.UpstreamCallsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, string(b)))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("read body: %w", err))
			}
			return nil
		}

		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 30 * time.Second
		if err := backoff.Retry(operation, bo); err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

type stationResult struct {
	StationID string  `json:"stationId"`
	ICAO      string  `json:"icao"`
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

type searchResponse struct {
	Stations []stationResult `json:"stations"`
}

// SearchStations queries the upstream station directory.
func (c *Client) SearchStations(query string) ([]models.Station, error) {
	u := fmt.Sprintf("%s/v1/stations/search?query=%s&apiKey=%s",
		c.baseURL, url.QueryEscape(query), c.apiKey)

	body, err := c.get("stations/search", u)
	if err != nil {
		return nil, err
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	stations := make([]models.Station, 0, len(data.Stations))
	for _, st := range data.Stations {
		stations = append(stations, models.Station{
			StationID: st.StationID,
			ICAO:      st.ICAO,
			Name:      st.Name,
			State:     st.State,
			Country:   st.Country,
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			Elevation: st.Elevation,
			Active:    true,
		})
	}
	return stations, nil
}

type hourlyResponse struct {
	Observations []hourlyObservation `json:"observations"`
}

type hourlyObservation struct {
	ObsTimeUtc  string   `json:"obsTimeUtc"`
	Temp        *float64 `json:"temp"`
	Dewpoint    *float64 `json:"dewpt"`
	Humidity    *int     `json:"humidity"`
	SkyCode     *string  `json:"skyCode"`
	WeatherCode *string  `json:"wxCode"`
	Precip      *float64 `json:"precipTotal"`
	WindAvg     *float64 `json:"windSpeed"`
	WindGust    *float64 `json:"windGust"`
	Pressure    *float64 `json:"pressure"`
}

// FetchHourly retrieves one day of hourly observations for a station.
func (c *Client) FetchHourly(stationID string, date time.Time) ([]models.Observation, error) {
	u := fmt.Sprintf("%s/v1/history/hourly?stationId=%s&date=%s&apiKey=%s",
		c.baseURL, url.QueryEscape(stationID), date.Format("20060102"), c.apiKey)

	body, err := c.get("history/hourly", u)
	if err != nil {
		return nil, err
	}

	var data hourlyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	observations := make([]models.Observation, 0, len(data.Observations))
	for _, h := range data.Observations {
		observedAt, err := time.Parse(time.RFC3339, h.ObsTimeUtc)
		if err != nil {
			return nil, fmt.Errorf("parse time %q: %w", h.ObsTimeUtc, err)
		}
		obs := models.Observation{
			StationID:  stationID,
			ObservedAt: observedAt,
		}
		if h.Temp != nil {
			obs.Temp = sql.NullFloat64{Float64: *h.Temp, Valid: true}
		}
		if h.Dewpoint != nil {
			obs.Dewpoint = sql.NullFloat64{Float64: *h.Dewpoint, Valid: true}
		}
		if h.Humidity != nil {
			obs.Humidity = sql.NullInt64{Int64: int64(*h.Humidity), Valid: true}
		}
		if h.SkyCode != nil {
			obs.SkyCode = sql.NullString{String: *h.SkyCode, Valid: true}
		}
		if h.WeatherCode != nil {
			obs.WeatherCode = sql.NullString{String: *h.WeatherCode, Valid: true}
		}
		if h.Precip != nil {
			obs.Precip = sql.NullFloat64{Float64: *h.Precip, Valid: true}
		}
		if h.WindAvg != nil {
			obs.WindAvg = sql.NullFloat64{Float64: *h.WindAvg, Valid: true}
		}
		if h.WindGust != nil {
			obs.WindGust = sql.NullFloat64{Float64: *h.WindGust, Valid: true}
		}
		if h.Pressure != nil {
			obs.Pressure = sql.NullFloat64{Float64: *h.Pressure, Valid: true}
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

type dailyResponse struct {
	Days []dailyDay `json:"days"`
}

type dailyDay struct {
	Date      string   `json:"date"`
	TempMax   *float64 `json:"tempMax"`
	TempMin   *float64 `json:"tempMin"`
	TempAvg   *float64 `json:"tempAvg"`
	Precip    *float64 `json:"precip"`
	Snowfall  *float64 `json:"snowfall"`
	SnowDepth *float64 `json:"snowDepth"`
	WindAvg   *float64 `json:"windAvg"`
	Sunrise   *string  `json:"sunrise"`
	Sunset    *string  `json:"sunset"`
}

// FetchDaily retrieves a range of daily summary records for a station.
func (c *Client) FetchDaily(stationID string, start, end time.Time) ([]models.DailyRecord, error) {
	u := fmt.Sprintf("%s/v1/history/daily?stationId=%s&startDate=%s&endDate=%s&apiKey=%s",
		c.baseURL, url.QueryEscape(stationID), start.Format("20060102"), end.Format("20060102"), c.apiKey)

	body, err := c.get("history/daily", u)
	if err != nil {
		return nil, err
	}

	var data dailyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	records := make([]models.DailyRecord, 0, len(data.Days))
	for _, d := range data.Days {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", d.Date, err)
		}
		rec := models.DailyRecord{
			StationID: stationID,
			Date:      date,
		}
		if d.TempMax != nil {
			rec.TempMax = sql.NullFloat64{Float64: *d.TempMax, Valid: true}
		}
		if d.TempMin != nil {
			rec.TempMin = sql.NullFloat64{Float64: *d.TempMin, Valid: true}
		}
		if d.TempAvg != nil {
			rec.TempAvg = sql.NullFloat64{Float64: *d.TempAvg, Valid: true}
		}
		if d.Precip != nil {
			rec.Precip = sql.NullFloat64{Float64: *d.Precip, Valid: true}
		}
		if d.Snowfall != nil {
			rec.Snowfall = sql.NullFloat64{Float64: *d.Snowfall, Valid: true}
		}
		if d.SnowDepth != nil {
			rec.SnowDepth = sql.NullFloat64{Float64: *d.SnowDepth, Valid: true}
		}
		if d.WindAvg != nil {
			rec.WindAvg = sql.NullFloat64{Float64: *d.WindAvg, Valid: true}
		}
		if d.Sunrise != nil {
			rec.Sunrise = sql.NullString{String: *d.Sunrise, Valid: true}
		}
		if d.Sunset != nil {
			rec.Sunset = sql.NullString{String: *d.Sunset, Valid: true}
		}
		records = append(records, rec)
	}
	return records, nil
}
