package domain

import (
	"fmt"
	"strings"
)

// City es el código interno de una ciudad soportada.
type City string

const (
	Chicago      City = "CHI"
	NewYork      City = "NYC"
	Miami        City = "MIA"
	LosAngeles   City = "LAX"
	Austin       City = "AUS"
	Denver       City = "DEN"
	Philadelphia City = "PHIL"
)

// CityInfo describe la estación NWS y las series de Kalshi de una ciudad.
type CityInfo struct {
	City     City
	Name     string
	Station  string  // estación NWS con la que liquida Kalshi
	Lat      float64 // para resolver /points en NWS
	Lon      float64
	Timezone string // zona IANA del día climatológico de la estación
	TickerID string // token de ciudad en los tickers (PHIL cotiza como PHI)
}

// HighSeries devuelve el series ticker de los contratos de máxima.
func (ci CityInfo) HighSeries() string { return "KXHIGH" + ci.TickerID }

// LowSeries devuelve el series ticker de los contratos de mínima.
func (ci CityInfo) LowSeries() string { return "KXLOWT" + ci.TickerID }

// Series devuelve el series ticker según el tipo de temperatura.
func (ci CityInfo) Series(kind TemperatureKind) string {
	if kind == KindLow {
		return ci.LowSeries()
	}
	return ci.HighSeries()
}

var cities = []CityInfo{
	{City: Chicago, Name: "Chicago Midway", Station: "KMDW", Lat: 41.78412, Lon: -87.75514, Timezone: "America/Chicago", TickerID: "CHI"},
	{City: NewYork, Name: "New York (Central Park)", Station: "KNYC", Lat: 40.77898, Lon: -73.96925, Timezone: "America/New_York", TickerID: "NYC"},
	{City: Miami, Name: "Miami", Station: "KMIA", Lat: 25.78805, Lon: -80.31694, Timezone: "America/New_York", TickerID: "MIA"},
	{City: LosAngeles, Name: "Los Angeles", Station: "KLAX", Lat: 33.93816, Lon: -118.38660, Timezone: "America/Los_Angeles", TickerID: "LAX"},
	{City: Austin, Name: "Austin", Station: "KAUS", Lat: 30.18311, Lon: -97.67989, Timezone: "America/Chicago", TickerID: "AUS"},
	{City: Denver, Name: "Denver", Station: "KDEN", Lat: 39.84657, Lon: -104.65623, Timezone: "America/Denver", TickerID: "DEN"},
	{City: Philadelphia, Name: "Philadelphia", Station: "KPHL", Lat: 39.87326, Lon: -75.22681, Timezone: "America/New_York", TickerID: "PHI"},
}

// Cities devuelve las ciudades soportadas en orden canónico.
func Cities() []CityInfo {
	out := make([]CityInfo, len(cities))
	copy(out, cities)
	return out
}

// LookupCity devuelve los metadatos de una ciudad.
func LookupCity(c City) (CityInfo, bool) {
	for _, ci := range cities {
		if ci.City == c {
			return ci, true
		}
	}
	return CityInfo{}, false
}

// ParseCity acepta el código sin distinguir mayúsculas ("chi", "PHIL").
func ParseCity(s string) (City, error) {
	c := City(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := LookupCity(c); !ok {
		return "", fmt.Errorf("unknown city code %q", s)
	}
	return c, nil
}

// cityFromTickerID traduce el token del ticker a City.
func cityFromTickerID(id string) (City, bool) {
	for _, ci := range cities {
		if ci.TickerID == id {
			return ci.City, true
		}
	}
	return "", false
}
