// Package weather adapts OpenWeatherMap: current conditions, the 5-day
// forecast, and air quality. Responses are plucked with gjson into flat
// summaries instead of mirroring the upstream schema.
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.openweathermap.org"

const (
	maxForecastDays     = 5
	periodsPerDay       = 8 // the forecast endpoint slices days into 3-hour periods
	defaultForecastDays = 3
)

type Client struct {
	baseURL string
	apiKey  string
	units   string
	http    *http.Client
}

func NewClient(apiKey, units string) *Client {
	if units == "" {
		units = "metric"
	}
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		units:   units,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	query.Set("appid", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("openweathermap request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// The API wraps errors as {"cod": ..., "message": ...}.
		if msg := gjson.GetBytes(data, "message").String(); msg != "" {
			return gjson.Result{}, fmt.Errorf("openweathermap: %s (%s)", msg, resp.Status)
		}
		return gjson.Result{}, fmt.Errorf("openweathermap returned %s", resp.Status)
	}
	return gjson.ParseBytes(data), nil
}

type Current struct {
	City        string  `json:"city"`
	Country     string  `json:"country,omitempty"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
	Clouds      int     `json:"clouds"`
	Units       string  `json:"units"`
}

func (c *Client) CurrentWeather(ctx context.Context, city string) (*Current, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("units", c.units)

	doc, err := c.get(ctx, "/data/2.5/weather", query)
	if err != nil {
		return nil, err
	}
	return &Current{
		City:        doc.Get("name").String(),
		Country:     doc.Get("sys.country").String(),
		Description: doc.Get("weather.0.description").String(),
		Temp:        doc.Get("main.temp").Float(),
		FeelsLike:   doc.Get("main.feels_like").Float(),
		Humidity:    int(doc.Get("main.humidity").Int()),
		Pressure:    int(doc.Get("main.pressure").Int()),
		WindSpeed:   doc.Get("wind.speed").Float(),
		Clouds:      int(doc.Get("clouds.all").Int()),
		Units:       c.units,
	}, nil
}

type ForecastPeriod struct {
	Time        string  `json:"time"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Rain        float64 `json:"rain_mm,omitempty"`
}

type Forecast struct {
	City    string           `json:"city"`
	Country string           `json:"country,omitempty"`
	Days    int              `json:"days"`
	Units   string           `json:"units"`
	Periods []ForecastPeriod `json:"periods"`
}

func (c *Client) Forecast(ctx context.Context, city string, days int) (*Forecast, error) {
	if days <= 0 {
		days = defaultForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("units", c.units)
	query.Set("cnt", fmt.Sprint(days*periodsPerDay))

	doc, err := c.get(ctx, "/data/2.5/forecast", query)
	if err != nil {
		return nil, err
	}

	forecast := &Forecast{
		City:    doc.Get("city.name").String(),
		Country: doc.Get("city.country").String(),
		Days:    days,
		Units:   c.units,
		Periods: []ForecastPeriod{},
	}
	for _, item := range doc.Get("list").Array() {
		forecast.Periods = append(forecast.Periods, ForecastPeriod{
			Time:        item.Get("dt_txt").String(),
			Description: item.Get("weather.0.description").String(),
			Temp:        item.Get("main.temp").Float(),
			Humidity:    int(item.Get("main.humidity").Int()),
			WindSpeed:   item.Get("wind.speed").Float(),
			Rain:        item.Get("rain.3h").Float(),
		})
	}
	return forecast, nil
}

type AirQuality struct {
	Lat        float64            `json:"lat"`
	Lon        float64            `json:"lon"`
	AQI        int                `json:"aqi"`
	Level      string             `json:"level"`
	Components map[string]float64 `json:"components"`
}

func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (*AirQuality, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprint(lat))
	query.Set("lon", fmt.Sprint(lon))

	doc, err := c.get(ctx, "/data/2.5/air_pollution", query)
	if err != nil {
		return nil, err
	}

	entry := doc.Get("list.0")
	aqi := int(entry.Get("main.aqi").Int())
	out := &AirQuality{
		Lat:        lat,
		Lon:        lon,
		AQI:        aqi,
		Level:      aqiLevel(aqi),
		Components: map[string]float64{},
	}
	entry.Get("components").ForEach(func(key, value gjson.Result) bool {
		out.Components[key.String()] = value.Float()
		return true
	})
	return out, nil
}

// aqiLevel translates the 1..5 index the API uses.
func aqiLevel(aqi int) string {
	switch aqi {
	case 1:
		return "good"
	case 2:
		return "fair"
	case 3:
		return "moderate"
	case 4:
		return "poor"
	case 5:
		return "very poor"
	default:
		return "unknown"
	}
}

// cityFromURI normalizes resource URIs like weather://current/Oslo.
func cityFromURI(uri string) (string, error) {
	city := strings.TrimPrefix(uri, "weather://current/")
	city, err := url.PathUnescape(city)
	if err != nil || city == "" || strings.Contains(city, "/") {
		return "", fmt.Errorf("invalid weather resource URI %s", uri)
	}
	return city, nil
}
