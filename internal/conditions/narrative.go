package conditions

import (
	"fmt"
	"math"
	"strings"
)

// maxTransitionSentences caps how many condition changes the narrative
// mentions. Strictly the first three chronologically, not the most notable.
const maxTransitionSentences = 3

// precipLabels are the condition labels that count as active precipitation
// for narrative purposes.
var precipLabels = map[string]bool{
	"Thunderstorm":  true,
	"Heavy Rain":    true,
	"Light Rain":    true,
	"Rain":          true,
	"Freezing Rain": true,
	"Heavy Snow":    true,
	"Light Snow":    true,
	"Snow":          true,
	"Drizzle":       true,
	"Hail":          true,
	"Ice Pellets":   true,
	"Snow Grains":   true,
}

var cloudyLabels = map[string]bool{
	"Partly Cloudy": true,
	"Mostly Cloudy": true,
	"Overcast":      true,
}

// IsPrecipitation reports whether a condition label describes falling
// precipitation.
func IsPrecipitation(label string) bool {
	return precipLabels[label]
}

type transition struct {
	hour int
	from string
	to   string
}

// GenerateNarrative walks a day's observations chronologically and emits a
// short plain-English paragraph: how the morning started, up to three
// condition changes, precipitation total, wind, and temperature spread.
// Sentences are space-joined; an empty input produces an empty string.
func GenerateNarrative(observations []HourlyObservation) string {
	if len(observations) == 0 {
		return ""
	}

	labels := make([]string, len(observations))
	for i, obs := range observations {
		labels[i] = Classify(obs.SkyCode, obs.WeatherCode)
	}

	var sentences []string

	if s, ok := morningSentence(observations, labels); ok {
		sentences = append(sentences, s)
	}

	transitions := detectTransitions(observations, labels)
	if len(transitions) > maxTransitionSentences {
		transitions = transitions[:maxTransitionSentences]
	}
	for _, tr := range transitions {
		if s, ok := transitionSentence(tr); ok {
			sentences = append(sentences, s)
		}
	}

	if s, ok := precipSentence(observations); ok {
		sentences = append(sentences, s)
	}
	if s, ok := windSentence(observations); ok {
		sentences = append(sentences, s)
	}
	if s, ok := spreadSentence(observations); ok {
		sentences = append(sentences, s)
	}

	return strings.Join(sentences, " ")
}

// morningSentence anchors the narrative on the first observation between
// 6am and 8am, if it has a temperature.
func morningSentence(observations []HourlyObservation, labels []string) (string, bool) {
	for i, obs := range observations {
		hour := obs.Timestamp.Hour()
		if hour < 6 || hour > 8 {
			continue
		}
		if obs.TempF == nil {
			return "", false
		}
		temp := *obs.TempF
		return fmt.Sprintf("The day started %s and %s at %d°F.",
			strings.ToLower(labels[i]), tempDescriptor(temp), int(math.Round(temp))), true
	}
	return "", false
}

func detectTransitions(observations []HourlyObservation, labels []string) []transition {
	var transitions []transition
	for i := 1; i < len(labels); i++ {
		if labels[i] == labels[i-1] {
			continue
		}
		transitions = append(transitions, transition{
			hour: observations[i].Timestamp.Hour(),
			from: labels[i-1],
			to:   labels[i],
		})
	}
	return transitions
}

// transitionSentence renders one condition change. Changes that fit none of
// the four templates produce no sentence.
func transitionSentence(tr transition) (string, bool) {
	when := timeLabel(tr.hour)
	switch {
	case IsPrecipitation(tr.to):
		return fmt.Sprintf("%s began around %s.", tr.to, when), true
	case IsPrecipitation(tr.from):
		return fmt.Sprintf("Precipitation ended around %s, becoming %s.", when, strings.ToLower(tr.to)), true
	case tr.to == "Clear" || tr.to == "Mostly Clear":
		return fmt.Sprintf("Skies cleared around %s.", when), true
	case cloudyLabels[tr.to] && !cloudyLabels[tr.from]:
		return fmt.Sprintf("Clouds moved in around %s.", when), true
	}
	return "", false
}

func precipSentence(observations []HourlyObservation) (string, bool) {
	var total float64
	for _, obs := range observations {
		if obs.PrecipIn != nil {
			total += *obs.PrecipIn
		}
	}
	if total < 0.01 {
		return "", false
	}
	return fmt.Sprintf("A total of %.2f inches of precipitation fell.", total), true
}

// windSentence reports gusts if any reached 25 mph; otherwise a breezy day
// if winds averaged 15 mph. The gust check suppresses the breezy sentence.
func windSentence(observations []HourlyObservation) (string, bool) {
	var maxGust float64
	var avgSum float64
	var avgCount int
	for _, obs := range observations {
		if obs.WindGustMph != nil && *obs.WindGustMph > maxGust {
			maxGust = *obs.WindGustMph
		}
		if obs.WindAvgMph != nil {
			avgSum += *obs.WindAvgMph
			avgCount++
		}
	}
	if maxGust >= 25 {
		return fmt.Sprintf("Winds gusted as high as %d mph.", int(math.Round(maxGust))), true
	}
	if avgCount > 0 {
		mean := avgSum / float64(avgCount)
		if mean >= 15 {
			return fmt.Sprintf("It was breezy, with winds averaging %d mph.", int(math.Round(mean))), true
		}
	}
	return "", false
}

func spreadSentence(observations []HourlyObservation) (string, bool) {
	var lo, hi float64
	var seen bool
	for _, obs := range observations {
		if obs.TempF == nil {
			continue
		}
		t := *obs.TempF
		if !seen {
			lo, hi = t, t
			seen = true
			continue
		}
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	if !seen || hi-lo < 15 {
		return "", false
	}
	return fmt.Sprintf("Temperatures ranged from %d°F to %d°F.",
		int(math.Round(lo)), int(math.Round(hi))), true
}

func tempDescriptor(tempF float64) string {
	switch {
	case tempF <= 20:
		return "frigid"
	case tempF <= 32:
		return "cold"
	case tempF <= 45:
		return "chilly"
	case tempF <= 55:
		return "cool"
	case tempF <= 68:
		return "mild"
	case tempF <= 78:
		return "warm"
	case tempF <= 88:
		return "hot"
	default:
		return "very hot"
	}
}

// timeLabel formats an hour of day for prose: midnight, noon, 9am, 4pm.
func timeLabel(hour int) string {
	switch {
	case hour == 0:
		return "midnight"
	case hour == 12:
		return "noon"
	case hour < 12:
		return fmt.Sprintf("%dam", hour)
	default:
		return fmt.Sprintf("%dpm", hour-12)
	}
}
