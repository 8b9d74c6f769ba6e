package actions

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
)

func jsonFetcher(body string) *fakeFetcher {
	return &fakeFetcher{fn: func(_ int, out any) error {
		return json.Unmarshal([]byte(body), out)
	}}
}

func TestWeather_PlaceholderKeyMakesNoCalls(t *testing.T) {
	for _, key := range []string{"", config.PlaceholderWeatherKey} {
		cfg := testConfig()
		cfg.Weather.APIKey = key
		fetcher := jsonFetcher(`{}`)
		svc, _ := newTestService(t, cfg, Deps{Weather: fetcher})

		res := svc.Weather(context.Background(), "Nairobi")

		assert.False(t, res.OK)
		assert.Equal(t, domain.KindConfig, res.Kind)
		assert.Equal(t, MsgWeatherKeyMissing, res.Message)
		assert.Zero(t, fetcher.Calls())
	}
}

func TestWeather_Formats(t *testing.T) {
	fetcher := jsonFetcher(`{"cod":200,"main":{"temp":21.5,"humidity":60},
		"weather":[{"description":"scattered CLOUDS"}],"wind":{"speed":3.1}}`)
	svc, _ := newTestService(t, testConfig(), Deps{Weather: fetcher})

	res := svc.Weather(context.Background(), "Nairobi")

	require.True(t, res.OK, res.Message)
	assert.Equal(t, "**21.5°C**, Scattered clouds. Humidity: 60%, Wind: 3.1 m/s.", res.Message)
	assert.Equal(t, "Nairobi", fetcher.last.Get("q"))
	assert.Equal(t, "weather-key", fetcher.last.Get("appid"))
	assert.Equal(t, "metric", fetcher.last.Get("units"))
}

func TestWeather_DefaultCity(t *testing.T) {
	fetcher := jsonFetcher(`{"cod":200,"main":{"temp":1,"humidity":2},"weather":[{"description":"x"}],"wind":{"speed":3}}`)
	svc, _ := newTestService(t, testConfig(), Deps{Weather: fetcher})

	res := svc.Weather(context.Background(), "  ")

	require.True(t, res.OK)
	assert.Equal(t, "Nairobi", fetcher.last.Get("q"))
}

func TestWeather_ApplicationError(t *testing.T) {
	fetcher := jsonFetcher(`{"cod":"404","message":"city not found"}`)
	svc, sleeps := newTestService(t, testConfig(), Deps{Weather: fetcher})

	res := svc.Weather(context.Background(), "Atlantis")

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindApplication, res.Kind)
	assert.Equal(t, "Weather API error: city not found", res.Message)
	assert.Equal(t, 3, fetcher.Calls())
	assert.Len(t, sleeps.delays, 2)
}

func TestWeather_MissingFields(t *testing.T) {
	fetcher := jsonFetcher(`{"cod":200,"main":{"temp":1}}`)
	svc, _ := newTestService(t, testConfig(), Deps{Weather: fetcher})

	res := svc.Weather(context.Background(), "Nairobi")

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindParse, res.Kind)
	assert.Contains(t, res.Message, "Error parsing weather data")
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Light rain", capitalize("light RAIN"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Éclair", capitalize("éCLAIR"))
}
