package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeather_MockReport(t *testing.T) {
	w := NewWeather(Config{})
	require.Equal(t, "get_weather", w.Name())

	out, err := w.Execute(context.Background(), map[string]any{"city": "Beijing", "days": 3})
	require.NoError(t, err)

	report, ok := out.(WeatherReport)
	require.True(t, ok)
	require.Equal(t, "Beijing", report.City)
	require.Len(t, report.Forecast, 3)
	require.Equal(t, report.Forecast[0], report.Current)
	for _, day := range report.Forecast {
		require.NotEmpty(t, day.Date)
		require.NotEmpty(t, day.Condition)
		require.Greater(t, day.High, day.Low)
		require.GreaterOrEqual(t, day.Humidity, 50)
	}
}

func TestWeather_DaysDefaultAndClamp(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{name: "Default", args: map[string]any{"city": "Shanghai"}, want: 3},
		{name: "Clamped", args: map[string]any{"city": "Shanghai", "days": 99}, want: 7},
		{name: "Single Day", args: map[string]any{"city": "Shanghai", "days": 1}, want: 1},
	}

	w := NewWeather(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := w.Execute(context.Background(), tt.args)
			require.NoError(t, err)
			require.Len(t, out.(WeatherReport).Forecast, tt.want)
		})
	}
}

func TestWeather_LiveFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/data/2.5/weather":
			require.Equal(t, "London", r.URL.Query().Get("q"))
			require.Equal(t, "test-key", r.URL.Query().Get("appid"))
			w.Write([]byte(`{"name":"London","sys":{"country":"GB"},"main":{"temp":11.2,"temp_max":13.1,"temp_min":9.4,"humidity":81},"wind":{"speed":4.1},"weather":[{"description":"light rain"}]}`))
		case "/data/2.5/forecast":
			w.Write([]byte(`{"list":[
				{"dt":1714521600,"main":{"temp":11,"temp_max":13,"temp_min":9,"humidity":80},"wind":{"speed":4},"weather":[{"description":"light rain"}]},
				{"dt":1714608000,"main":{"temp":12,"temp_max":14,"temp_min":10,"humidity":70},"wind":{"speed":3},"weather":[{"description":"cloudy"}]}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	w := NewWeather(Config{WeatherAPIKey: "test-key", WeatherBaseURL: srv.URL})
	out, err := w.Execute(context.Background(), map[string]any{"city": "London", "days": 2})
	require.NoError(t, err)

	report := out.(WeatherReport)
	require.Equal(t, "London", report.City)
	require.Equal(t, "GB", report.Country)
	require.Equal(t, "light rain", report.Current.Condition)
	require.Len(t, report.Forecast, 2)
	require.Equal(t, "cloudy", report.Forecast[1].Condition)
}

func TestWeather_LiveFetchFallsBackToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWeather(Config{WeatherAPIKey: "test-key", WeatherBaseURL: srv.URL})
	out, err := w.Execute(context.Background(), map[string]any{"city": "Beijing"})
	require.NoError(t, err, "backend failure falls back to mock data")
	require.Equal(t, "Beijing", out.(WeatherReport).City)
}
