package upstream

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

const metarBaseURL = "https://aviationweather.gov/api/data/metar"

// CurrentConditions is the decoded METAR report for a station. Sky and
// weather codes are passed through raw for the conditions package to
// classify.
type CurrentConditions struct {
	ICAO         string    `json:"icao"`
	ObservedAt   time.Time `json:"observed_at"`
	TempF        *float64  `json:"temp_f,omitempty"`
	DewpointF    *float64  `json:"dewpoint_f,omitempty"`
	WindMph      *float64  `json:"wind_mph,omitempty"`
	WindGustMph  *float64  `json:"wind_gust_mph,omitempty"`
	VisibilityMi *float64  `json:"visibility_mi,omitempty"`
	SkyCode      *string   `json:"sky_code,omitempty"`
	WeatherCode  *string   `json:"weather_code,omitempty"`
	RawReport    string    `json:"raw_report"`
}

// skyCoverRank orders cloud layers least to most covered, so the densest
// reported layer wins.
var skyCoverRank = map[string]int{
	"CLR": 0, "SKC": 0, "FEW": 1, "SCT": 2, "BKN": 3, "OVC": 4,
}

// FetchCurrentMETAR fetches and decodes the latest METAR for an ICAO
// identifier. The aviationweather.gov payload is loosely typed (visibility
// may be "10+" or a number), so it is picked apart with gjson rather than
// a rigid struct.
func (c *Client) FetchCurrentMETAR(icao string) (*CurrentConditions, error) {
	u := fmt.Sprintf("%s?ids=%s&format=json", c.metarURL, icao)

	body, err := c.get("metar", u)
	if err != nil {
		return nil, err
	}

	reports := gjson.ParseBytes(body)
	if !reports.IsArray() || len(reports.Array()) == 0 {
		return nil, fmt.Errorf("no METAR report for %s", icao)
	}
	report := reports.Array()[0]

	observedAt, err := time.Parse("2006-01-02T15:04:05Z", report.Get("reportTime").String())
	if err != nil {
		// Some reports carry fractional seconds.
		observedAt, err = time.Parse(time.RFC3339, report.Get("reportTime").String())
		if err != nil {
			return nil, fmt.Errorf("parse report time: %w", err)
		}
	}

	cc := &CurrentConditions{
		ICAO:       report.Get("icaoId").String(),
		ObservedAt: observedAt,
		RawReport:  report.Get("rawOb").String(),
	}

	if v := report.Get("temp"); v.Exists() && v.Type == gjson.Number {
		f := celsiusToFahrenheit(v.Float())
		cc.TempF = &f
	}
	if v := report.Get("dewp"); v.Exists() && v.Type == gjson.Number {
		f := celsiusToFahrenheit(v.Float())
		cc.DewpointF = &f
	}
	if v := report.Get("wspd"); v.Exists() && v.Type == gjson.Number {
		mph := knotsToMph(v.Float())
		cc.WindMph = &mph
	}
	if v := report.Get("wgst"); v.Exists() && v.Type == gjson.Number {
		mph := knotsToMph(v.Float())
		cc.WindGustMph = &mph
	}
	// Visibility is "10+" for unlimited, otherwise a number in miles.
	if v := report.Get("visib"); v.Exists() {
		if v.Type == gjson.Number {
			mi := v.Float()
			cc.VisibilityMi = &mi
		} else if v.String() == "10+" {
			mi := 10.0
			cc.VisibilityMi = &mi
		}
	}
	if v := report.Get("wxString"); v.Exists() && v.String() != "" {
		wx := v.String()
		cc.WeatherCode = &wx
	}

	// Pick the densest cloud layer as the sky code.
	best := -1
	report.Get("clouds").ForEach(func(_, layer gjson.Result) bool {
		cover := layer.Get("cover").String()
		if rank, ok := skyCoverRank[cover]; ok && rank > best {
			best = rank
			cc.SkyCode = &cover
		}
		return true
	})

	return cc, nil
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func knotsToMph(kt float64) float64 {
	return kt * 1.15078
}
