package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const earthRadius = 6371000 // meters

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Validator decides whether a punch location is acceptable.
type Validator interface {
	Allows(p Point) bool
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(p Point) bool

func (f ValidatorFunc) Allows(p Point) bool {
	return f(p)
}

// AllowAll accepts every well-formed coordinate.
type AllowAll struct{}

func (AllowAll) Allows(p Point) bool {
	return p.Valid()
}

type Site struct {
	Center       Point
	RadiusMeters float64
}

// RadiusValidator accepts a point that falls inside any of its sites.
type RadiusValidator struct {
	Sites []Site
}

func (v RadiusValidator) Allows(p Point) bool {
	if !p.Valid() {
		return false
	}
	for _, site := range v.Sites {
		if Distance(site.Center, p) <= site.RadiusMeters {
			return true
		}
	}
	return false
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180.0)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180.0)

	lat1Rad := a.Latitude * (math.Pi / 180.0)
	lat2Rad := b.Latitude * (math.Pi / 180.0)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// ParseSites parses "lat,lon,radius;lat,lon,radius" into sites.
func ParseSites(raw string) ([]Site, error) {
	var sites []Site
	for _, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		parts := strings.Split(chunk, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid site %q: want lat,lon,radius", chunk)
		}
		var vals [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid site %q: %w", chunk, err)
			}
			vals[i] = v
		}
		site := Site{Center: Point{Latitude: vals[0], Longitude: vals[1]}, RadiusMeters: vals[2]}
		if !site.Center.Valid() || site.RadiusMeters <= 0 {
			return nil, fmt.Errorf("invalid site %q: coordinates out of range or non-positive radius", chunk)
		}
		sites = append(sites, site)
	}
	return sites, nil
}
