package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

type Service struct {
	mu     sync.Mutex
	client *Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("weather")}
}

func (s *Service) getClient() (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	apiKey := config.WeatherAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is not set")
	}
	s.client = NewClient(apiKey, config.WeatherUnits())
	return s.client, nil
}

func (s *Service) handleCurrentWeather(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, err := req.RequireString("city")
	if err != nil {
		return adapter.Errorf("city parameter is required"), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	current, err := client.CurrentWeather(ctx, city)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(current), nil
}

func (s *Service) handleForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, err := req.RequireString("city")
	if err != nil {
		return adapter.Errorf("city parameter is required"), nil
	}
	days := adapter.IntArg(req, "days", defaultForecastDays)

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	forecast, err := client.Forecast(ctx, city, days)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(forecast), nil
}

func (s *Service) handleAirQuality(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	lat, ok := args["lat"].(float64)
	if !ok {
		return adapter.Errorf("lat parameter is required"), nil
	}
	lon, ok := args["lon"].(float64)
	if !ok {
		return adapter.Errorf("lon parameter is required"), nil
	}

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	quality, err := client.AirQuality(ctx, lat, lon)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(quality), nil
}

func (s *Service) handleCurrentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	city, err := cityFromURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	current, err := client.CurrentWeather(ctx, city)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// New builds the weather adapter.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "weather",
		Version:     "1.0.0",
		Description: "Weather conditions from OpenWeatherMap: current weather, 5-day forecast, and air quality.",
		Resources:   true,
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("current_weather",
		mcp.WithDescription("Current conditions for a city."),
		mcp.WithString("city", mcp.Required(), mcp.Description("City name, optionally with country code, e.g. Oslo,NO")),
	), adapter.RequireEnv(svc.handleCurrentWeather, config.KeyOpenWeatherAPIKey))

	srv.Handle(mcp.NewTool("forecast",
		mcp.WithDescription("Forecast in 3-hour periods for up to 5 days."),
		mcp.WithString("city", mcp.Required(), mcp.Description("City name, optionally with country code")),
		mcp.WithNumber("days", mcp.Description("Days to cover, 1 to 5 (default: 3)")),
	), adapter.RequireEnv(svc.handleForecast, config.KeyOpenWeatherAPIKey))

	srv.Handle(mcp.NewTool("air_quality",
		mcp.WithDescription("Air quality index and pollutant concentrations for coordinates."),
		mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude")),
		mcp.WithNumber("lon", mcp.Required(), mcp.Description("Longitude")),
	), adapter.RequireEnv(svc.handleAirQuality, config.KeyOpenWeatherAPIKey))

	srv.HandleResourceTemplate(mcp.NewResourceTemplate(
		"weather://current/{city}",
		"Current weather",
		mcp.WithTemplateDescription("Current conditions for the named city"),
		mcp.WithTemplateMIMEType("application/json"),
	), svc.handleCurrentResource)

	return srv
}
