// Package weather classifies the morning's weather and decides what the
// strip should display for it.
package weather

import "strings"

// Condition is the simplified weather classification used to pick a display.
// Unknown is a first-class value: a failed or missing lookup maps to it
// explicitly rather than falling through a dictionary default.
type Condition int

const (
	Unknown Condition = iota
	Clear
	Rain
	Snow
	Thunderstorm
	Drizzle
	Clouds
)

var conditionNames = map[Condition]string{
	Unknown:      "Unknown",
	Clear:        "Clear",
	Rain:         "Rain",
	Snow:         "Snow",
	Thunderstorm: "Thunderstorm",
	Drizzle:      "Drizzle",
	Clouds:       "Clouds",
}

func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return "Unknown"
}

// ParseCondition maps a weather-API status string to a Condition. Matching is
// case-insensitive; anything unrecognized is Unknown.
func ParseCondition(s string) Condition {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clear":
		return Clear
	case "rain":
		return Rain
	case "snow":
		return Snow
	case "thunderstorm":
		return Thunderstorm
	case "drizzle":
		return Drizzle
	case "clouds":
		return Clouds
	default:
		return Unknown
	}
}

// Plan describes what to display for a condition. Image is a file name under
// the configured image directory; an empty Image selects the procedural
// sunrise, which needs no source photo.
type Plan struct {
	Image string
}

// Sunrise reports whether the plan is the procedural sunrise.
func (p Plan) Sunrise() bool { return p.Image == "" }

// PlanFor maps a condition to its display plan. Pure function; Unknown (and
// any future condition without a photo) falls back to the procedural sunrise.
func PlanFor(c Condition) Plan {
	switch c {
	case Clear:
		return Plan{Image: "sunrise.jpg"}
	case Rain:
		return Plan{Image: "rain.jpg"}
	case Snow:
		return Plan{Image: "snow.jpg"}
	case Thunderstorm:
		return Plan{Image: "thunderstorm.jpg"}
	case Drizzle:
		return Plan{Image: "drizzle.jpeg"}
	case Clouds:
		return Plan{Image: "clouds.jpeg"}
	default:
		return Plan{}
	}
}
