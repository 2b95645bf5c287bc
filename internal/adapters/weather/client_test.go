package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client := NewClient("test-key", "metric")
	client.baseURL = ts.URL
	return client
}

func TestCurrentWeather(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Oslo" || q.Get("units") != "metric" || q.Get("appid") != "test-key" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{
			"name": "Oslo", "sys": {"country": "NO"},
			"weather": [{"description": "light snow"}],
			"main": {"temp": -3.2, "feels_like": -7.1, "humidity": 86, "pressure": 1021},
			"wind": {"speed": 4.5}, "clouds": {"all": 90}
		}`))
	})

	current, err := client.CurrentWeather(context.Background(), "Oslo")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.City != "Oslo" || current.Country != "NO" {
		t.Errorf("location = %s,%s", current.City, current.Country)
	}
	if current.Description != "light snow" || current.Temp != -3.2 {
		t.Errorf("conditions = %+v", current)
	}
	if current.Humidity != 86 || current.WindSpeed != 4.5 {
		t.Errorf("details = %+v", current)
	}
}

func TestForecastClampsDays(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if cnt := r.URL.Query().Get("cnt"); cnt != "40" {
			t.Errorf("cnt = %q, want 40 for a clamped 5-day request", cnt)
		}
		w.Write([]byte(`{
			"city": {"name": "Bergen", "country": "NO"},
			"list": [
				{"dt_txt": "2025-06-02 12:00:00", "main": {"temp": 14.0, "humidity": 70},
				 "weather": [{"description": "rain"}], "wind": {"speed": 6.1}, "rain": {"3h": 2.4}},
				{"dt_txt": "2025-06-02 15:00:00", "main": {"temp": 13.1, "humidity": 75},
				 "weather": [{"description": "rain"}], "wind": {"speed": 5.8}}
			]
		}`))
	})

	forecast, err := client.Forecast(context.Background(), "Bergen", 9)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if forecast.Days != 5 {
		t.Errorf("days = %d, want clamped 5", forecast.Days)
	}
	if forecast.City != "Bergen" || len(forecast.Periods) != 2 {
		t.Fatalf("forecast = %+v", forecast)
	}
	if forecast.Periods[0].Rain != 2.4 {
		t.Errorf("rain = %v", forecast.Periods[0].Rain)
	}
	if forecast.Periods[1].Rain != 0 {
		t.Errorf("missing rain should pluck zero, got %v", forecast.Periods[1].Rain)
	}
}

func TestAirQuality(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/air_pollution" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"list": [{"main": {"aqi": 2},
			"components": {"co": 201.9, "no2": 12.3, "pm2_5": 4.8}}]}`))
	})

	quality, err := client.AirQuality(context.Background(), 59.91, 10.75)
	if err != nil {
		t.Fatalf("air quality: %v", err)
	}
	if quality.AQI != 2 || quality.Level != "fair" {
		t.Errorf("aqi = %d (%s)", quality.AQI, quality.Level)
	}
	if quality.Components["pm2_5"] != 4.8 {
		t.Errorf("components = %v", quality.Components)
	}
}

func TestAPIErrorMessageSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
	})

	_, err := client.CurrentWeather(context.Background(), "Atlantis")
	if err == nil {
		t.Fatal("expected error for unknown city")
	}
	if !strings.Contains(err.Error(), "city not found") {
		t.Fatalf("error should carry the API message: %v", err)
	}
}

func TestAQILevel(t *testing.T) {
	cases := map[int]string{
		0: "unknown", 1: "good", 2: "fair", 3: "moderate", 4: "poor", 5: "very poor", 6: "unknown",
	}
	for aqi, want := range cases {
		if got := aqiLevel(aqi); got != want {
			t.Errorf("aqiLevel(%d) = %q, want %q", aqi, got, want)
		}
	}
}

func TestCityFromURI(t *testing.T) {
	city, err := cityFromURI("weather://current/Oslo")
	if err != nil || city != "Oslo" {
		t.Fatalf("cityFromURI = %q, %v", city, err)
	}
	city, err = cityFromURI("weather://current/New%20York")
	if err != nil || city != "New York" {
		t.Fatalf("escaped cityFromURI = %q, %v", city, err)
	}
	if _, err := cityFromURI("weather://current/"); err == nil {
		t.Fatal("empty city should be rejected")
	}
	if _, err := cityFromURI("weather://current/a/b"); err == nil {
		t.Fatal("nested path should be rejected")
	}
}
