package conditions

import "strings"

// LabelUnknown is returned when neither the sky code nor the weather code is
// recognized. Classification never fails; bad input degrades to this.
const LabelUnknown = "Unknown"

// weatherRule pairs a present-weather substring with its condition label.
type weatherRule struct {
	token string
	label string
}

// weatherRules is evaluated in order, first match wins. The order is
// significant: intensity-prefixed tokens must be checked before their bare
// forms ("+RA" before "RA"), and thunderstorms outrank everything.
var weatherRules = []weatherRule{
	{"TS", "Thunderstorm"},
	{"+RA", "Heavy Rain"},
	{"-RA", "Light Rain"},
	{"RA", "Rain"},
	{"FZRA", "Freezing Rain"},
	{"+SN", "Heavy Snow"},
	{"-SN", "Light Snow"},
	{"SN", "Snow"},
	{"DZ", "Drizzle"},
	{"FG", "Fog"},
	{"BR", "Mist"},
	{"HZ", "Haze"},
	{"GR", "Hail"},
	{"GS", "Hail"},
	{"PL", "Ice Pellets"},
	{"SG", "Snow Grains"},
}

// skyLabels maps okta-based sky cover codes to display labels. Matched
// exactly, unlike weather tokens.
var skyLabels = map[string]string{
	"CLR": "Clear",
	"SKC": "Clear",
	"FEW": "Mostly Clear",
	"SCT": "Partly Cloudy",
	"BKN": "Mostly Cloudy",
	"OVC": "Overcast",
}

// Classify maps a sky-cover code and a present-weather code to a condition
// label. An active weather phenomenon always outranks sky cover: if the
// weather code matches any known token the sky code is ignored. Unrecognized
// or absent codes fall through, ending at LabelUnknown.
func Classify(skyCode, weatherCode *string) string {
	if weatherCode != nil {
		wx := strings.ToUpper(strings.TrimSpace(*weatherCode))
		if wx != "" {
			for _, rule := range weatherRules {
				if strings.Contains(wx, rule.token) {
					return rule.label
				}
			}
		}
	}
	if skyCode != nil {
		if label, ok := skyLabels[strings.ToUpper(strings.TrimSpace(*skyCode))]; ok {
			return label
		}
	}
	return LabelUnknown
}
