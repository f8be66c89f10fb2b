package tz

import "time"

// fallbacks covers hosts without tzdata for the zones the bot ships with.
var fallbacks = map[string]*time.Location{
	"Asia/Tokyo": time.FixedZone("JST", 9*60*60),
	"UTC":        time.UTC,
}

// Load returns the named location. When the zone database is unavailable it
// falls back to a fixed offset for known zones, then to UTC.
func Load(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	if fb, ok := fallbacks[name]; ok {
		return fb
	}
	return time.UTC
}
