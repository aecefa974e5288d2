package geo

import (
	"math"
	"strconv"
	"strings"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InRange reports whether the pair lies inside ±90 latitude and ±180 longitude.
func (c Coordinate) InRange() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// strategy recovers a coordinate from one map-link shape.
type strategy struct {
	name string
	find func(link string) (string, string, bool)
}

// strategies run in priority order; the first success wins.
var strategies = []strategy{
	{name: "q", find: paramPair("q=")},
	{name: "at", find: atPair},
	{name: "ll", find: paramPair("ll=")},
}

// ExtractCoordinates recovers a coordinate pair embedded in a map link.
// It reports false when no supported shape is present.
func ExtractCoordinates(link string) (Coordinate, bool) {
	c, _, ok := extract(link)
	return c, ok
}

func extract(link string) (Coordinate, string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return Coordinate{}, "", false
	}
	for _, s := range strategies {
		latRaw, lngRaw, ok := s.find(link)
		if !ok {
			continue
		}
		lat, ok := parseFinite(latRaw)
		if !ok {
			continue
		}
		lng, ok := parseFinite(lngRaw)
		if !ok {
			continue
		}
		return Coordinate{Lat: lat, Lng: lng}, s.name, true
	}
	return Coordinate{}, "", false
}

// paramPair matches the first "?key" or "&key" occurrence followed by "<num>,<num>".
func paramPair(key string) func(string) (string, string, bool) {
	return func(link string) (string, string, bool) {
		for i := 0; i < len(link); i++ {
			if link[i] != '?' && link[i] != '&' {
				continue
			}
			rest := link[i+1:]
			if !strings.HasPrefix(rest, key) {
				continue
			}
			if lat, lng, ok := numberPair(rest[len(key):]); ok {
				return lat, lng, true
			}
		}
		return "", "", false
	}
}

// atPair matches the first "@<num>,<num>" occurrence.
func atPair(link string) (string, string, bool) {
	for i := 0; i < len(link); i++ {
		if link[i] != '@' {
			continue
		}
		if lat, lng, ok := numberPair(link[i+1:]); ok {
			return lat, lng, true
		}
	}
	return "", "", false
}

// numberPair reads "<num>,<num>" from the start of s.
func numberPair(s string) (string, string, bool) {
	n := scanNumber(s)
	if n == 0 || n >= len(s) || s[n] != ',' {
		return "", "", false
	}
	m := scanNumber(s[n+1:])
	if m == 0 {
		return "", "", false
	}
	return s[:n], s[n+1 : n+1+m], true
}

// scanNumber returns the length of the leading -?\d+\.?\d* run, or 0.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func parseFinite(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
