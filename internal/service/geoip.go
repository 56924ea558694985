package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GeoIPClient resolves an IP address to a country name via an
// ipapi.co-compatible endpoint.  Lookups are bounded by a 5 second timeout
// so a slow upstream can never stall request handling; the visitor
// middleware swallows every error it returns.
type GeoIPClient struct {
	http *resty.Client
	log  *zap.Logger
}

func NewGeoIPClient(baseURL string, log *zap.Logger) *GeoIPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetHeader("Accept", "application/json")
	return &GeoIPClient{http: client, log: log}
}

type geoResponse struct {
	CountryName string `json:"country_name"`
}

// Country returns the country name for the IP, or "Unknown" when the
// upstream answers without one.
func (c *GeoIPClient) Country(ctx context.Context, ip string) (string, error) {
	var out geoResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/" + ip + "/json/")
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("geoip lookup for %s: status %d", ip, resp.StatusCode())
	}
	if out.CountryName == "" {
		return "Unknown", nil
	}
	return out.CountryName, nil
}
