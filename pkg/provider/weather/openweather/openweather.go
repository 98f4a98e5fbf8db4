// Package openweather provides a weather client backed by the OpenWeatherMap
// API. It implements the weather.Client interface.
//
// Current conditions come from the /data/2.5/weather endpoint. Tomorrow's
// forecast aggregates the /data/2.5/forecast 3-hourly entries that fall on
// tomorrow's date: the most frequent condition wins and the temperature is
// the mean over the day, rounded to two decimals.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aidekit/aide/pkg/provider/weather"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Units accepted by the OpenWeatherMap API.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithUnits sets the temperature units ("metric" or "imperial").
// Default: metric.
func WithUnits(units string) Option {
	return func(c *Client) {
		c.units = units
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithNow overrides the clock used to decide which forecast entries belong to
// tomorrow. Used in tests.
func WithNow(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// Client implements weather.Client against the OpenWeatherMap REST API.
type Client struct {
	apiKey  string
	baseURL string
	units   string
	http    *http.Client
	now     func() time.Time
}

var _ weather.Client = (*Client)(nil)

// New creates a new OpenWeatherMap client. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openweather: apiKey must not be empty")
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		units:   UnitsMetric,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// currentResponse is the JSON shape of /data/2.5/weather.
type currentResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// forecastResponse is the JSON shape of /data/2.5/forecast.
type forecastResponse struct {
	List []struct {
		DtTxt   string `json:"dt_txt"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	} `json:"list"`
}

// Current implements weather.Client.
func (c *Client) Current(ctx context.Context, location string) (weather.Report, error) {
	var resp currentResponse
	if err := c.get(ctx, "/data/2.5/weather", location, &resp); err != nil {
		return weather.Report{}, err
	}
	if len(resp.Weather) == 0 {
		return weather.Report{}, fmt.Errorf("openweather: response carries no condition for %q", location)
	}

	return weather.Report{
		Location:  titleCase(location),
		Condition: resp.Weather[0].Description,
		Temp:      resp.Main.Temp,
		Units:     c.unitSymbol(),
	}, nil
}

// Tomorrow implements weather.Client.
func (c *Client) Tomorrow(ctx context.Context, location string) (weather.Report, error) {
	var resp forecastResponse
	if err := c.get(ctx, "/data/2.5/forecast", location, &resp); err != nil {
		return weather.Report{}, err
	}

	tomorrow := c.now().AddDate(0, 0, 1).Format("2006-01-02")

	conditionCounts := make(map[string]int)
	var (
		tempSum float64
		n       int
	)
	for _, entry := range resp.List {
		if !strings.HasPrefix(entry.DtTxt, tomorrow) || len(entry.Weather) == 0 {
			continue
		}
		conditionCounts[entry.Weather[0].Description]++
		tempSum += entry.Main.Temp
		n++
	}
	if n == 0 {
		return weather.Report{}, fmt.Errorf("openweather: forecast carries no entries for %s at %q", tomorrow, location)
	}

	condition := ""
	for cond, count := range conditionCounts {
		if condition == "" || count > conditionCounts[condition] ||
			(count == conditionCounts[condition] && cond < condition) {
			condition = cond
		}
	}

	return weather.Report{
		Location:  titleCase(location),
		Condition: condition,
		Temp:      math.Round(tempSum/float64(n)*100) / 100,
		Units:     c.unitSymbol(),
	}, nil
}

// get performs one API call and decodes the payload, mapping the documented
// error statuses to the weather sentinel errors.
func (c *Client) get(ctx context.Context, path, location string, out any) error {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("openweather: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openweather: request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("openweather: %w", weather.ErrInvalidKey)
	case http.StatusNotFound:
		return fmt.Errorf("openweather: %q: %w", location, weather.ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("openweather: %w", weather.ErrRateLimited)
	default:
		return fmt.Errorf("openweather: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openweather: decode response: %w", err)
	}
	return nil
}

// unitSymbol maps the API units parameter to the display symbol.
func (c *Client) unitSymbol() string {
	if c.units == UnitsImperial {
		return "F"
	}
	return "C"
}

// titleCase upper-cases the first letter of every word in the location.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
