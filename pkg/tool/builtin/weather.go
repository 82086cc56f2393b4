package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/baoman007/ai-weather-agent/pkg/tool"
)

const (
	defaultForecastDays = 3
	maxForecastDays     = 7
)

// WeatherArgs is the argument shape of get_weather.
type WeatherArgs struct {
	City string `json:"city" jsonschema:"required,description=City name such as Beijing or London"`
	Days int    `json:"days,omitempty" jsonschema:"minimum=1,maximum=7,default=3,description=Number of forecast days (1-7)"`
}

// DayForecast is one day of weather data.
type DayForecast struct {
	Date        string  `json:"date"`
	Temperature int     `json:"temperature"`
	High        int     `json:"high"`
	Low         int     `json:"low"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
}

// WeatherReport is the tool's result shape.
type WeatherReport struct {
	City     string        `json:"city"`
	Country  string        `json:"country,omitempty"`
	Forecast []DayForecast `json:"forecast"`
	Current  DayForecast   `json:"current"`
}

type weatherBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewWeather builds the get_weather tool. Without an OpenWeatherMap key it
// serves generated mock data; with one it queries the live API and falls back
// to mock data when the backend misbehaves.
func NewWeather(cfg Config) tool.Tool {
	b := &weatherBackend{
		apiKey:  cfg.WeatherAPIKey,
		baseURL: cfg.WeatherBaseURL,
		client:  cfg.httpClient(),
		now:     time.Now,
	}
	return tool.NewTyped("get_weather",
		"Get the current weather and a multi-day forecast for a city: temperature, humidity, wind speed and conditions.",
		b.run)
}

func (b *weatherBackend) run(ctx context.Context, args WeatherArgs) (any, error) {
	days := args.Days
	if days <= 0 {
		days = defaultForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	if b.apiKey == "" {
		slog.Debug("serving mock weather, no api key configured", "city", args.City)
		return b.mockReport(args.City, days), nil
	}

	report, err := b.fetchReport(ctx, args.City, days)
	if err != nil {
		slog.Warn("live weather fetch failed, falling back to mock data", "city", args.City, "error", err)
		return b.mockReport(args.City, days), nil
	}
	return report, nil
}

// baseline climate for the mock generator
var mockCities = map[string]struct {
	temp      int
	condition string
}{
	"Beijing":   {15, "sunny"},
	"Shanghai":  {20, "cloudy"},
	"Guangzhou": {25, "partly cloudy"},
	"Shenzhen":  {24, "sunny"},
	"Hangzhou":  {18, "overcast"},
	"Chengdu":   {19, "cloudy"},
	"Chongqing": {21, "foggy"},
	"Wuhan":     {18, "overcast"},
	"New York":  {14, "sunny"},
	"London":    {11, "drizzle"},
}

var mockConditions = []string{"sunny", "cloudy", "overcast", "light rain", "clear"}

func (b *weatherBackend) mockReport(city string, days int) WeatherReport {
	base, ok := mockCities[city]
	if !ok {
		base.temp = 20
		base.condition = "sunny"
	}

	forecast := make([]DayForecast, 0, days)
	today := b.now()
	for i := 0; i < days; i++ {
		temp := base.temp + rand.Intn(6) - 3
		condition := base.condition
		if i > 0 {
			condition = mockConditions[rand.Intn(len(mockConditions))]
		}
		day := DayForecast{
			Date:        today.AddDate(0, 0, i).Format("Monday, January 2"),
			Temperature: temp,
			High:        temp + 5,
			Low:         temp - 4,
			Humidity:    50 + rand.Intn(30),
			WindSpeed:   float64(2 + rand.Intn(5)),
			Condition:   condition,
		}
		day.Description = fmt.Sprintf("%s, %d°C to %d°C, humidity %d%%, wind %.0f m/s",
			day.Condition, day.Low, day.High, day.Humidity, day.WindSpeed)
		forecast = append(forecast, day)
	}

	return WeatherReport{City: city, Forecast: forecast, Current: forecast[0]}
}

type owmWeather struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMax  float64 `json:"temp_max"`
		TempMin  float64 `json:"temp_min"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			TempMax  float64 `json:"temp_max"`
			TempMin  float64 `json:"temp_min"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

func (b *weatherBackend) fetchReport(ctx context.Context, city string, days int) (WeatherReport, error) {
	var current owmWeather
	currentURL := fmt.Sprintf("%s/data/2.5/weather?q=%s&appid=%s&units=metric",
		b.baseURL, url.QueryEscape(city), url.QueryEscape(b.apiKey))
	if err := b.getJSON(ctx, currentURL, &current); err != nil {
		return WeatherReport{}, fmt.Errorf("current weather: %w", err)
	}

	var forecast owmForecast
	forecastURL := fmt.Sprintf("%s/data/2.5/forecast?q=%s&appid=%s&units=metric&cnt=%d",
		b.baseURL, url.QueryEscape(city), url.QueryEscape(b.apiKey), days*8)
	if err := b.getJSON(ctx, forecastURL, &forecast); err != nil {
		return WeatherReport{}, fmt.Errorf("forecast: %w", err)
	}

	// One data point per calendar day.
	daily := make([]DayForecast, 0, days)
	seen := make(map[string]bool)
	for _, item := range forecast.List {
		ts := time.Unix(item.Dt, 0)
		key := ts.Format("2006-01-02")
		if seen[key] || len(daily) >= days {
			continue
		}
		seen[key] = true

		condition := ""
		if len(item.Weather) > 0 {
			condition = item.Weather[0].Description
		}
		daily = append(daily, DayForecast{
			Date:        ts.Format("Monday, January 2"),
			Temperature: int(item.Main.Temp + 0.5),
			High:        int(item.Main.TempMax + 0.5),
			Low:         int(item.Main.TempMin + 0.5),
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			Condition:   condition,
			Description: fmt.Sprintf("%s, %.0f°C to %.0f°C", condition, item.Main.TempMin, item.Main.TempMax),
		})
	}

	condition := ""
	if len(current.Weather) > 0 {
		condition = current.Weather[0].Description
	}
	return WeatherReport{
		City:     current.Name,
		Country:  current.Sys.Country,
		Forecast: daily,
		Current: DayForecast{
			Date:        b.now().Format("Monday, January 2"),
			Temperature: int(current.Main.Temp + 0.5),
			High:        int(current.Main.TempMax + 0.5),
			Low:         int(current.Main.TempMin + 0.5),
			Humidity:    current.Main.Humidity,
			WindSpeed:   current.Wind.Speed,
			Condition:   condition,
			Description: fmt.Sprintf("%s, %.0f°C to %.0f°C", condition, current.Main.TempMin, current.Main.TempMax),
		},
	}, nil
}

func (b *weatherBackend) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
