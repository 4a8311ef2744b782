// Package services – WeatherService
//
// The weather demo generates random forecasts for a fixed set of cities, each
// with its own plausible temperature range. City lookup is case-insensitive;
// input is canonicalized to title case before matching.
package services

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Forecast is one generated weather data point for a city.
type Forecast struct {
	Date         time.Time
	TemperatureC int
	TemperatureF int
	Summary      string
	City         string
}

// tempRange bounds a city's generated temperatures in Celsius.
type tempRange struct {
	min, max int
}

var forecastSummaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

// cityTemperatureRanges keys are canonical (title-cased) city names.
var cityTemperatureRanges = map[string]tempRange{
	"New York":    {-10, 35},
	"Los Angeles": {10, 40},
	"Chicago":     {-15, 35},
	"Miami":       {15, 38},
	"Seattle":     {0, 30},
	"Denver":      {-10, 35},
	"Phoenix":     {5, 48},
	"London":      {-5, 30},
	"Tokyo":       {-2, 36},
	"Sydney":      {8, 42},
}

// WeatherService serves the demo forecast feature.
type WeatherService struct {
	caser cases.Caser
}

// NewWeatherService constructs a WeatherService with an English title caser
// for canonicalizing city names.
func NewWeatherService() *WeatherService {
	return &WeatherService{caser: cases.Title(language.English)}
}

// ListForecasts returns one generated forecast per known city.
func (s *WeatherService) ListForecasts(ctx context.Context) ([]Forecast, error) {
	out := make([]Forecast, 0, len(cityTemperatureRanges))
	for city, r := range cityTemperatureRanges {
		out = append(out, generateForecast(city, r))
	}
	return out, nil
}

// ForecastForCity returns a generated forecast for city, matching
// case-insensitively. Unknown cities yield ErrCityNotFound.
func (s *WeatherService) ForecastForCity(ctx context.Context, city string) (*Forecast, error) {
	canonical := s.caser.String(strings.ToLower(strings.TrimSpace(city)))
	r, ok := cityTemperatureRanges[canonical]
	if !ok {
		return nil, ErrCityNotFound
	}
	f := generateForecast(canonical, r)
	return &f, nil
}

func generateForecast(city string, r tempRange) Forecast {
	tempC := r.min + rand.IntN(r.max-r.min)
	return Forecast{
		Date:         time.Now().AddDate(0, 0, 1+rand.IntN(6)),
		TemperatureC: tempC,
		TemperatureF: 32 + int(float64(tempC)*9.0/5.0),
		Summary:      forecastSummaries[rand.IntN(len(forecastSummaries))],
		City:         city,
	}
}
