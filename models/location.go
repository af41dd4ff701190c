package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LocationKind tags which variant a Location holds
type LocationKind string

// Location kinds
const (
	LocationPlace       LocationKind = "place"
	LocationCoordinates LocationKind = "coordinates"
)

// Location is either a named place (a geocoded description or free text) or a
// latitude/longitude pair. On the wire it is the string the client sends.
type Location struct {
	Kind LocationKind `json:"-" bson:"kind"`
	Name string       `json:"-" bson:"name,omitempty"`
	Lat  float64      `json:"-" bson:"lat,omitempty"`
	Lng  float64      `json:"-" bson:"lng,omitempty"`
}

var coordinatesPattern = regexp.MustCompile(`(?i)^\s*lat:\s*(-?\d+(?:\.\d+)?)\s*,\s*lng:\s*(-?\d+(?:\.\d+)?)\s*$`)

// NamedPlace builds a place location
func NamedPlace(name string) Location {
	return Location{Kind: LocationPlace, Name: strings.TrimSpace(name)}
}

// Coordinates builds a coordinate location
func Coordinates(lat, lng float64) Location {
	return Location{Kind: LocationCoordinates, Lat: lat, Lng: lng}
}

// ParseLocation reads the client's free-text form. "Lat: x, Lng: y" with both
// values in range becomes Coordinates, anything else a NamedPlace.
// Coordinates are not kept verbatim: String renders them in shortest form, so
// "Lat: 12.50, Lng: 077.0" comes back as "Lat: 12.5, Lng: 77".
func ParseLocation(s string) Location {
	if m := coordinatesPattern.FindStringSubmatch(s); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		if errLat == nil && errLng == nil && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 {
			return Coordinates(lat, lng)
		}
	}
	return NamedPlace(s)
}

// IsZero reports whether no location was given
func (l Location) IsZero() bool {
	return l.Kind != LocationCoordinates && l.Name == ""
}

func (l Location) String() string {
	if l.Kind == LocationCoordinates {
		return fmt.Sprintf("Lat: %s, Lng: %s", strconv.FormatFloat(l.Lat, 'f', -1, 64), strconv.FormatFloat(l.Lng, 'f', -1, 64))
	}
	return l.Name
}

// MarshalJSON writes the location as its string form
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON parses the string form
func (l *Location) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = ParseLocation(s)
	return nil
}
