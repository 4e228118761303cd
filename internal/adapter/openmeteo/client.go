package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/couchcryptid/activity-weather-insights/internal/observability"
)

const dailyVariables = "temperature_2m_mean,temperature_2m_min,temperature_2m_max," +
	"precipitation_sum,snowfall_sum,wind_direction_10m_dominant,wind_gusts_10m_max,sunshine_duration"

// Daily pressure and wind speed are not archived; they are averaged from hourly values.
const hourlyVariables = "pressure_msl,wind_speed_10m"

// Client implements domain.WeatherFetcher using the Open-Meteo historical archive API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo archive client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchDaily returns one record per day from start to end inclusive, in the
// location's local calendar. Units: °C, mm, km/h, hPa, hours of sunshine.
func (c *Client) FetchDaily(ctx context.Context, at domain.Coordinates, start, end time.Time) ([]domain.WeatherRecord, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(at.Lat, 'f', 4, 64)},
		"longitude":  {strconv.FormatFloat(at.Lon, 'f', 4, 64)},
		"start_date": {start.Format(time.DateOnly)},
		"end_date":   {end.Format(time.DateOnly)},
		"daily":      {dailyVariables},
		"hourly":     {hourlyVariables},
		"timezone":   {"auto"},
	}

	reqStart := time.Now()
	body, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.Observe(time.Since(reqStart).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	records, err := body.records()
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(records) == 0 {
		c.metrics.WeatherRequests.WithLabelValues("empty").Inc()
		return nil, nil
	}

	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	c.logger.Debug("weather chunk fetched",
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"days", len(records),
	)
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// Open-Meteo API response types. Missing observations come back as null.

type response struct {
	Daily  daily  `json:"daily"`
	Hourly hourly `json:"hourly"`
}

type daily struct {
	Time          []string   `json:"time"`
	TempMean      []*float64 `json:"temperature_2m_mean"`
	TempMin       []*float64 `json:"temperature_2m_min"`
	TempMax       []*float64 `json:"temperature_2m_max"`
	Precipitation []*float64 `json:"precipitation_sum"`
	Snowfall      []*float64 `json:"snowfall_sum"` // cm
	WindDirection []*float64 `json:"wind_direction_10m_dominant"`
	WindGust      []*float64 `json:"wind_gusts_10m_max"`
	Sunshine      []*float64 `json:"sunshine_duration"` // seconds
}

type hourly struct {
	Time      []string   `json:"time"` // YYYY-MM-DDTHH:MM
	Pressure  []*float64 `json:"pressure_msl"`
	WindSpeed []*float64 `json:"wind_speed_10m"`
}

func (r *response) records() ([]domain.WeatherRecord, error) {
	pressure := r.Hourly.dailyMean(r.Hourly.Pressure)
	wind := r.Hourly.dailyMean(r.Hourly.WindSpeed)

	out := make([]domain.WeatherRecord, 0, len(r.Daily.Time))
	for i, day := range r.Daily.Time {
		date, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("decode response: invalid date %q", day)
		}
		out = append(out, domain.WeatherRecord{
			Date:          date,
			TempMean:      at(r.Daily.TempMean, i),
			TempMin:       at(r.Daily.TempMin, i),
			TempMax:       at(r.Daily.TempMax, i),
			Precipitation: at(r.Daily.Precipitation, i),
			Snow:          scaled(at(r.Daily.Snowfall, i), 10),
			WindDirection: at(r.Daily.WindDirection, i),
			WindSpeed:     wind[day],
			WindGust:      at(r.Daily.WindGust, i),
			Pressure:      pressure[day],
			SunshineHours: scaled(at(r.Daily.Sunshine, i), 1.0/3600),
		})
	}
	return out, nil
}

// dailyMean averages the non-null hourly values of each calendar day.
func (h hourly) dailyMean(values []*float64) map[string]*float64 {
	type acc struct {
		sum float64
		n   int
	}
	accs := make(map[string]*acc)
	for i, ts := range h.Time {
		v := at(values, i)
		if v == nil || len(ts) < len(time.DateOnly) {
			continue
		}
		day := ts[:len(time.DateOnly)]
		a, ok := accs[day]
		if !ok {
			a = &acc{}
			accs[day] = a
		}
		a.sum += *v
		a.n++
	}
	out := make(map[string]*float64, len(accs))
	for day, a := range accs {
		out[day] = domain.Float(a.sum / float64(a.n))
	}
	return out
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	return domain.Float(*values[i])
}

func scaled(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v * factor)
}
