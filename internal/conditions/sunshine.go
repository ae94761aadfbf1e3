package conditions

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// skyFactors is the base sunshine fraction for each sky cover code.
var skyFactors = map[string]float64{
	"CLR": 1.0,
	"SKC": 1.0,
	"FEW": 0.90,
	"SCT": 0.55,
	"BKN": 0.25,
	"OVC": 0.05,
}

// defaultSkyFactor applies when the sky code is absent or unrecognized.
const defaultSkyFactor = 0.5

// SkyFactor returns the base sunshine fraction [0,1] for a sky cover code.
// Monotonically non-increasing from CLR through OVC.
func SkyFactor(skyCode *string) float64 {
	if skyCode == nil {
		return defaultSkyFactor
	}
	if f, ok := skyFactors[strings.ToUpper(strings.TrimSpace(*skyCode))]; ok {
		return f
	}
	return defaultSkyFactor
}

// attenuationRule pairs a present-weather substring with the fraction of
// sunshine that survives it.
type attenuationRule struct {
	token  string
	factor float64
}

// attenuationRules is evaluated in order, first match wins. Intensity
// prefixes and FZ are checked before the bare RA token so that every factor
// is reachable ("-RA" would otherwise match "RA" first).
var attenuationRules = []attenuationRule{
	{"TS", 0.0},
	{"+RA", 0.05},
	{"-RA", 0.15},
	{"FZ", 0.05},
	{"SN", 0.05},
	{"RA", 0.10},
	{"DZ", 0.20},
	{"FG", 0.15},
	{"BR", 0.70},
	{"HZ", 0.75},
}

// Attenuation returns the sunshine fraction [0,1] that survives the given
// weather phenomenon. Absent or unmatched codes attenuate nothing.
func Attenuation(weatherCode *string) float64 {
	if weatherCode == nil {
		return 1.0
	}
	wx := strings.ToUpper(strings.TrimSpace(*weatherCode))
	if wx == "" {
		return 1.0
	}
	for _, rule := range attenuationRules {
		if strings.Contains(wx, rule.token) {
			return rule.factor
		}
	}
	return 1.0
}

// DaylightWindow is the half-open hour interval [Start, End) during which an
// observation counts as daylight.
type DaylightWindow struct {
	Start int // floor of the fractional sunrise hour
	End   int // ceiling of the fractional sunset hour
}

// NewDaylightWindow builds a window from sunrise and sunset strings in
// "H:MM AM/PM" form. Unparseable input is an error rather than a silent
// hour-0 default, which would classify every hour as night.
func NewDaylightWindow(sunrise, sunset string) (DaylightWindow, error) {
	rise, err := ParseClockTime(sunrise)
	if err != nil {
		return DaylightWindow{}, fmt.Errorf("sunrise: %w", err)
	}
	set, err := ParseClockTime(sunset)
	if err != nil {
		return DaylightWindow{}, fmt.Errorf("sunset: %w", err)
	}
	return DaylightWindow{Start: int(math.Floor(rise)), End: int(math.Ceil(set))}, nil
}

// Contains reports whether the given hour of day falls within the window.
func (w DaylightWindow) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// ParseClockTime converts a 12-hour "H:MM AM/PM" string to a fractional
// 24-hour value, e.g. "6:45 PM" -> 18.75.
func ParseClockTime(s string) (float64, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(s)))
	if len(fields) != 2 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	meridiem := fields[1]
	if meridiem != "AM" && meridiem != "PM" {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	hm := strings.SplitN(fields[0], ":", 2)
	if len(hm) != 2 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	if hour == 12 {
		hour = 0
	}
	if meridiem == "PM" {
		hour += 12
	}
	return float64(hour) + float64(minute)/60, nil
}

// SunshinePercent estimates effective sunshine [0,100] for one hour. Outside
// the daylight window it is always 0 regardless of codes.
func SunshinePercent(skyCode, weatherCode *string, hour int, window DaylightWindow) float64 {
	if !window.Contains(hour) {
		return 0
	}
	return SkyFactor(skyCode) * Attenuation(weatherCode) * 100
}
