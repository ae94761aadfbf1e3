package conditions

import "time"

// HourlyObservation is a single hour of raw station data as reported by the
// upstream source. Fields that the source may omit are pointers; absent is
// distinct from zero.
type HourlyObservation struct {
	Timestamp   time.Time
	TempF       *float64
	SkyCode     *string // CLR, SKC, FEW, SCT, BKN, OVC
	WeatherCode *string // METAR present-weather token, e.g. "RA", "+SN", "TS"
	PrecipIn    *float64
	WindAvgMph  *float64
	WindGustMph *float64
}

// ClassifiedObservation is the derived view of one hour: a condition label
// plus the estimated sunshine for that hour.
type ClassifiedObservation struct {
	Timestamp   time.Time `json:"timestamp"`
	Label       string    `json:"label"`
	SunshinePct float64   `json:"sunshine_pct"`
	Daylight    bool      `json:"daylight"`
}

// ClassifySequence derives one ClassifiedObservation per input hour using the
// given daylight window. The input is not mutated.
func ClassifySequence(observations []HourlyObservation, window DaylightWindow) []ClassifiedObservation {
	classified := make([]ClassifiedObservation, 0, len(observations))
	for _, obs := range observations {
		hour := obs.Timestamp.Hour()
		classified = append(classified, ClassifiedObservation{
			Timestamp:   obs.Timestamp,
			Label:       Classify(obs.SkyCode, obs.WeatherCode),
			SunshinePct: SunshinePercent(obs.SkyCode, obs.WeatherCode, hour, window),
			Daylight:    window.Contains(hour),
		})
	}
	return classified
}
