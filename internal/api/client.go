// Package api is a small client for the Al Adhan prayer times API
// (https://aladhan.com/prayer-times-api). salat computes every time locally;
// the API is only consulted by "salat verify" to cross-check the engine.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/salat/internal/geo"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// customMethodID asks the API to use the angles given in methodSettings.
const customMethodID = 99

// Client communicates with the Al Adhan API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a client with a 10 second timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// Query returns the API parameters equivalent to computing with m at coord.
func Query(coord geo.Coordinate, m prayer.Method) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coord.Latitude, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(coord.Longitude, 'f', 6, 64))
	params.Set("school", strconv.Itoa(int(m.Asr)))

	if m.ID >= 0 {
		params.Set("method", strconv.Itoa(m.ID))
	} else {
		params.Set("method", strconv.Itoa(customMethodID))
		params.Set("methodSettings", methodSettings(m))
	}

	switch m.HighLatitude {
	case prayer.MiddleOfNight:
		params.Set("latitudeAdjustmentMethod", "1")
	case prayer.SeventhOfNight:
		params.Set("latitudeAdjustmentMethod", "2")
	case prayer.TwilightAngle:
		params.Set("latitudeAdjustmentMethod", "3")
	}
	if m.Midnight == prayer.MidnightJafari {
		params.Set("midnightMode", "1")
	}
	return params
}

// methodSettings encodes "fajr,maghrib,isha" with "null" for unused angles
// and "N min" for interval-based Isha.
func methodSettings(m prayer.Method) string {
	maghrib := "null"
	if m.MaghribAngle > 0 {
		maghrib = strconv.FormatFloat(m.MaghribAngle, 'f', -1, 64)
	}
	isha := strconv.FormatFloat(m.IshaAngle, 'f', -1, 64)
	if m.IshaAngle == 0 {
		isha = fmt.Sprintf("%d min", int(m.IshaInterval.Minutes()))
	}
	return strconv.FormatFloat(m.FajrAngle, 'f', -1, 64) + "," + maghrib + "," + isha
}

// FetchByCoordinates fetches the API's timings for date at coord using the
// parameters of method m.
func (c *Client) FetchByCoordinates(ctx context.Context, date time.Time, coord geo.Coordinate, m prayer.Method) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))
	return c.doRequest(ctx, endpoint, Query(coord, m))
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	if apiResp.Code != 200 {
		return nil, fmt.Errorf("API error: code=%d status=%s", apiResp.Code, apiResp.Status)
	}

	return &apiResp, nil
}
