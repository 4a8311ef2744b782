package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-apptemplate-backend/internal/services"
)

func TestListForecasts_MapsDTO(t *testing.T) {
	weather := &fakeWeather{forecasts: []services.Forecast{
		{
			Date:         time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC),
			TemperatureC: 21,
			TemperatureF: 69,
			Summary:      "Mild",
			City:         "London",
		},
	}}
	r := newTestRouter(&fakeChat{}, &fakeKeys{}, weather)

	w := doJSON(t, r, http.MethodGet, "/api/weather", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got []WeatherForecast
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 forecast, got %d", len(got))
	}
	f := got[0]
	if f.Date != "2025-01-03" || f.TemperatureC != 21 || f.TemperatureF != 69 || f.Summary != "Mild" || f.City != "London" {
		t.Fatalf("unexpected forecast: %+v", f)
	}
}

func TestForecastForCity_UnknownIs404(t *testing.T) {
	weather := &fakeWeather{cityErr: services.ErrCityNotFound}
	r := newTestRouter(&fakeChat{}, &fakeKeys{}, weather)

	w := doJSON(t, r, http.MethodGet, "/api/weather/Atlantis", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != ErrCodeNotFound {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestForecastForCity_Success(t *testing.T) {
	weather := &fakeWeather{forecasts: []services.Forecast{
		{Date: time.Now(), TemperatureC: 30, TemperatureF: 86, Summary: "Hot", City: "Phoenix"},
	}}
	r := newTestRouter(&fakeChat{}, &fakeKeys{}, weather)

	w := doJSON(t, r, http.MethodGet, "/api/weather/phoenix", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got WeatherForecast
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.City != "Phoenix" || got.Summary != "Hot" {
		t.Fatalf("unexpected forecast: %+v", got)
	}
}
