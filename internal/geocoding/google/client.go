package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/model"
)

var _ model.Geocoder = (*Client)(nil)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location model.Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Client resolves addresses with the Google Geocoding JSON API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, apiKey, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL, apiKey string, client *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

func (c *Client) Coordinates(ctx context.Context, address string) (model.Location, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return model.Location{}, apierror.NewErrGeocodingProvider(fmt.Errorf("failed to build geocode request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.Location{}, apierror.NewErrGeocodingProvider(fmt.Errorf("failed to call geocoding api: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Location{}, apierror.NewErrGeocodingProvider(fmt.Errorf("geocoding api returned http %d", resp.StatusCode))
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Location{}, apierror.NewErrGeocodingProvider(fmt.Errorf("failed to decode geocode response: %w", err))
	}

	switch body.Status {
	case statusOK:
		if len(body.Results) == 0 {
			return model.Location{}, apierror.NewErrAddressNotFound()
		}
		return body.Results[0].Geometry.Location, nil
	case statusZeroResults:
		return model.Location{}, apierror.NewErrAddressNotFound()
	default:
		return model.Location{}, apierror.NewErrGeocodingProvider(fmt.Errorf("geocoding api status %s: %s", body.Status, body.ErrorMessage))
	}
}
