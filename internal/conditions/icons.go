package conditions

// Metadata carries the presentation hints for a condition label: an icon
// category for the client's icon set and a display color for chart markers.
type Metadata struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var labelMeta = map[string]Metadata{
	"Thunderstorm":  {Icon: "storm", Color: "#7e57c2"},
	"Heavy Rain":    {Icon: "rain", Color: "#1565c0"},
	"Rain":          {Icon: "rain", Color: "#1e88e5"},
	"Light Rain":    {Icon: "rain", Color: "#64b5f6"},
	"Freezing Rain": {Icon: "sleet", Color: "#4dd0e1"},
	"Drizzle":       {Icon: "rain", Color: "#90caf9"},
	"Heavy Snow":    {Icon: "snow", Color: "#b3e5fc"},
	"Snow":          {Icon: "snow", Color: "#cfe8fc"},
	"Light Snow":    {Icon: "snow", Color: "#e1f5fe"},
	"Snow Grains":   {Icon: "snow", Color: "#e1f5fe"},
	"Ice Pellets":   {Icon: "sleet", Color: "#80deea"},
	"Hail":          {Icon: "hail", Color: "#4fc3f7"},
	"Fog":           {Icon: "fog", Color: "#9e9e9e"},
	"Mist":          {Icon: "fog", Color: "#b0bec5"},
	"Haze":          {Icon: "fog", Color: "#bcaaa4"},
	"Clear":         {Icon: "clear", Color: "#fbc02d"},
	"Mostly Clear":  {Icon: "clear", Color: "#fdd835"},
	"Partly Cloudy": {Icon: "partly-cloudy", Color: "#90a4ae"},
	"Mostly Cloudy": {Icon: "cloudy", Color: "#78909c"},
	"Overcast":      {Icon: "cloudy", Color: "#607d8b"},
}

var unknownMeta = Metadata{Icon: "unknown", Color: "#757575"}

// Lookup returns the presentation metadata for a condition label, falling
// back to a neutral entry for labels it does not know.
func Lookup(label string) Metadata {
	if m, ok := labelMeta[label]; ok {
		return m
	}
	return unknownMeta
}
