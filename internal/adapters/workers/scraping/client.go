// Package scraping es el cliente del worker que busca avistamientos en redes.
package scraping

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"findmypet-search/internal/platform/httpclient"
	"findmypet-search/internal/ports/workers"
)

const (
	startPath = "/api/scraping/start"
	stopPath  = "/api/scraping/stop/"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	Transport http.RoundTripper
}

type Client struct {
	http *httpclient.Client
}

var _ workers.ScrapingController = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return &Client{}, nil
	}
	opts := []httpclient.Option{httpclient.WithHeader("X-Worker-Key", cfg.APIKey)}
	if cfg.Transport != nil {
		opts = append(opts, httpclient.WithTransport(cfg.Transport))
	}
	hc, err := httpclient.New(cfg.BaseURL, cfg.Timeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

func (c *Client) IsConfigured() bool { return c != nil && c.http != nil }

func (c *Client) StartScraping(ctx context.Context, req workers.ScrapingStartRequest) error {
	if !c.IsConfigured() {
		return workers.ErrNotConfigured
	}
	return c.http.DoJSON(ctx, http.MethodPost, startPath, req, nil)
}

func (c *Client) StopScraping(ctx context.Context, petID string) error {
	if !c.IsConfigured() {
		return workers.ErrNotConfigured
	}
	return c.http.DoJSON(ctx, http.MethodPost, stopPath+url.PathEscape(petID), nil, nil)
}
