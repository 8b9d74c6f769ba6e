package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/retry"
)

// MsgWeatherKeyMissing is returned without any network call when the key is unset.
const MsgWeatherKeyMissing = "Please set your OpenWeatherMap API key (weather.api_key or OPENWEATHERMAP_API_KEY)."

type weatherResponse struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
	Main    *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// Weather reports current conditions for city.
func (s *Service) Weather(ctx context.Context, city string) domain.Result {
	wc := s.cfg.Weather
	if config.IsUnset(wc.APIKey, config.PlaceholderWeatherKey) || s.deps.Weather == nil {
		return domain.Failure(domain.ActionWeather, domain.KindConfig, MsgWeatherKeyMissing)
	}

	city = strings.TrimSpace(city)
	if city == "" {
		city = wc.DefaultCity
	}
	query := url.Values{"q": {city}, "appid": {wc.APIKey}, "units": {wc.Units}}

	report, err := retry.Do(ctx, s.policy(), func(ctx context.Context) (string, error) {
		var resp weatherResponse
		if err := s.deps.Weather.GetJSON(ctx, wc.URL, query, &resp); err != nil {
			return "", err
		}
		return formatWeather(resp)
	}, s.retryOpts("weather")...)
	if err != nil {
		return domain.FailureFromError(domain.ActionWeather, weatherError(err))
	}

	return domain.Success(domain.ActionWeather, report)
}

func formatWeather(resp weatherResponse) (string, error) {
	if cod := string(bytes.Trim(resp.Cod, `"`)); cod != "200" {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return "", domain.Errorf(domain.KindApplication, "openweathermap", "Weather API error: %s", msg)
	}

	if resp.Main == nil || resp.Main.Temp == nil || resp.Main.Humidity == nil ||
		len(resp.Weather) == 0 || resp.Wind == nil || resp.Wind.Speed == nil {
		return "", domain.NewError(domain.KindParse, "openweathermap", "missing main, weather or wind fields", nil)
	}

	return fmt.Sprintf("**%s°C**, %s. Humidity: %s%%, Wind: %s m/s.",
		num(*resp.Main.Temp),
		capitalize(resp.Weather[0].Description),
		num(*resp.Main.Humidity),
		num(*resp.Wind.Speed),
	), nil
}

func weatherError(err error) error {
	switch domain.KindOf(err) {
	case domain.KindApplication:
		return err
	case domain.KindParse:
		return domain.NewError(domain.KindParse, "weather", "Error parsing weather data", err)
	default:
		return domain.NewError(domain.KindNetwork, "weather", "Network error fetching weather", err)
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
