package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/relief-api/models"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want models.Location
	}{
		{"coordinates", "Lat: 12.97, Lng: 77.59", models.Coordinates(12.97, 77.59)},
		{"negative coordinates", "lat:-33.8688,lng:151.2093", models.Coordinates(-33.8688, 151.2093)},
		{"integer coordinates", "Lat: 0, Lng: -180", models.Coordinates(0, -180)},
		{"latitude out of range", "Lat: 91, Lng: 10", models.NamedPlace("Lat: 91, Lng: 10")},
		{"place", "  MG Road, Bengaluru ", models.NamedPlace("MG Road, Bengaluru")},
		{"empty", "", models.NamedPlace("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ParseLocation(tt.in))
		})
	}
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "Lat: 12.97, Lng: 77.59", models.Coordinates(12.97, 77.59).String())
	assert.Equal(t, "Chennai", models.NamedPlace("Chennai").String())
	assert.True(t, models.NamedPlace("  ").IsZero())
	assert.False(t, models.Coordinates(0, 0).IsZero())
}

func TestLocationStringNormalizesCoordinates(t *testing.T) {
	assert.Equal(t, "Lat: 12.5, Lng: 77", models.ParseLocation("lat:12.50 ,  LNG: 077.0").String())
}

func TestLocationJSON(t *testing.T) {
	b, err := json.Marshal(models.Coordinates(-1.5, 36.8))
	assert.NoError(t, err)
	assert.Equal(t, `"Lat: -1.5, Lng: 36.8"`, string(b))

	var l models.Location
	assert.NoError(t, json.Unmarshal(b, &l))
	assert.Equal(t, models.Coordinates(-1.5, 36.8), l)

	assert.Error(t, json.Unmarshal([]byte(`{"lat":1}`), &l))
}
