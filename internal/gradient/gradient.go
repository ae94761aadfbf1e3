// Package gradient maps temperatures to display colors for the client's
// chart gradient band.
package gradient

import (
	"fmt"
	"math"
)

type stop struct {
	tempF   float64
	r, g, b int
}

// stops anchor the ramp from frigid blue through mild green to very hot red.
// Between stops the channels are interpolated linearly.
var stops = []stop{
	{-20, 0x31, 0x1b, 0x92},
	{0, 0x3f, 0x51, 0xb5},
	{20, 0x21, 0x96, 0xf3},
	{32, 0x4d, 0xd0, 0xe1},
	{45, 0x26, 0xa6, 0x9a},
	{55, 0x66, 0xbb, 0x6a},
	{68, 0xd4, 0xe1, 0x57},
	{78, 0xff, 0xb7, 0x4d},
	{88, 0xff, 0x70, 0x43},
	{100, 0xe5, 0x39, 0x35},
	{115, 0xb7, 0x1c, 0x1c},
}

// TempColor returns the hex color for a temperature in Fahrenheit. Values
// beyond the ramp clamp to the end colors.
func TempColor(tempF float64) string {
	if tempF <= stops[0].tempF {
		return hex(stops[0])
	}
	last := stops[len(stops)-1]
	if tempF >= last.tempF {
		return hex(last)
	}
	for i := 1; i < len(stops); i++ {
		if tempF > stops[i].tempF {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		frac := (tempF - lo.tempF) / (hi.tempF - lo.tempF)
		return fmt.Sprintf("#%02x%02x%02x",
			lerp(lo.r, hi.r, frac), lerp(lo.g, hi.g, frac), lerp(lo.b, hi.b, frac))
	}
	return hex(last)
}

func hex(s stop) string {
	return fmt.Sprintf("#%02x%02x%02x", s.r, s.g, s.b)
}

func lerp(a, b int, frac float64) int {
	return int(math.Round(float64(a) + (float64(b)-float64(a))*frac))
}
