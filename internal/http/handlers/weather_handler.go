// Package handlers – weather endpoints
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-apptemplate-backend/internal/services"
)

// WeatherForecast is one generated forecast as returned to clients.
type WeatherForecast struct {
	Date         string `json:"date" example:"2025-01-03"`
	TemperatureC int    `json:"temperatureC" example:"21"`
	TemperatureF int    `json:"temperatureF" example:"69"`
	Summary      string `json:"summary" example:"Mild"`
	City         string `json:"city" example:"London"`
}

// ListForecasts handles GET /weather.
//
// @Summary      List weather forecasts
// @Description  Returns one generated forecast per known city.
// @Tags         weather
// @Produce      json
// @Success      200  {array}   WeatherForecast
// @Failure      500  {object}  ErrorResponse
// @Router       /weather [get]
func (h *Handlers) ListForecasts(c *gin.Context) {
	forecasts, err := h.Weather.ListForecasts(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to generate forecasts")
		return
	}

	out := make([]WeatherForecast, 0, len(forecasts))
	for _, f := range forecasts {
		out = append(out, toWeatherDTO(f))
	}
	ok(c, http.StatusOK, out)
}

// ForecastForCity handles GET /weather/:city.
//
// @Summary      Get a city forecast
// @Description  Returns a generated forecast for the named city (case-insensitive).
// @Tags         weather
// @Produce      json
// @Param        city  path      string  true  "City name"
// @Success      200   {object}  WeatherForecast
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /weather/{city} [get]
func (h *Handlers) ForecastForCity(c *gin.Context) {
	f, err := h.Weather.ForecastForCity(c.Request.Context(), c.Param("city"))
	if err != nil {
		if errors.Is(err, services.ErrCityNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrCityNotFound.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to generate forecast")
		return
	}
	ok(c, http.StatusOK, toWeatherDTO(*f))
}

func toWeatherDTO(f services.Forecast) WeatherForecast {
	return WeatherForecast{
		Date:         f.Date.Format("2006-01-02"),
		TemperatureC: f.TemperatureC,
		TemperatureF: f.TemperatureF,
		Summary:      f.Summary,
		City:         f.City,
	}
}
