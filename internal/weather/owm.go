package weather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/glowline/wakelight/internal/httputil"
)

// DefaultBaseURL is the OpenWeatherMap current-conditions endpoint root.
const DefaultBaseURL = "https://api.openweathermap.org"

// Client fetches current conditions from OpenWeatherMap. A lookup failure is
// never fatal to a wake run: callers log the error and proceed with Unknown.
type Client struct {
	APIKey  string
	BaseURL string              // defaults to DefaultBaseURL
	HTTP    httputil.HTTPClient // defaults to a 10s-timeout standard client
}

// observation is the subset of the OWM response we read.
type observation struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// Current returns the condition at location (an OWM location string such as
// "Oxford,GB"). On any failure it returns Unknown alongside the error.
func (c *Client) Current(location string) (Condition, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(&http.Client{Timeout: 10 * time.Second})
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", c.APIKey)
	resp, err := httpClient.Get(base + "/data/2.5/weather?" + q.Encode())
	if err != nil {
		return Unknown, fmt.Errorf("weather lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Unknown, fmt.Errorf("weather lookup: status %d", resp.StatusCode)
	}

	var obs observation
	if err := json.NewDecoder(resp.Body).Decode(&obs); err != nil {
		return Unknown, fmt.Errorf("weather lookup: decode: %w", err)
	}
	if len(obs.Weather) == 0 {
		return Unknown, fmt.Errorf("weather lookup: empty observation")
	}
	return ParseCondition(obs.Weather[0].Main), nil
}
