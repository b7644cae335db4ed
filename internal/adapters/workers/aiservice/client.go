// Package aiservice es el cliente del servicio de extracción de features de imágenes.
package aiservice

import (
	"context"
	"net/http"
	"strings"
	"time"

	"findmypet-search/internal/platform/httpclient"
	"findmypet-search/internal/ports/workers"
)

const extractPath = "/api/ai/extract-features"

type Config struct {
	BaseURL string
	APIKey  string // viaja como X-Worker-Key
	Timeout time.Duration

	// Transport opcional (tests).
	Transport http.RoundTripper
}

type Client struct {
	http *httpclient.Client
}

var _ workers.FeatureExtractor = (*Client)(nil)

// New con BaseURL vacío devuelve un cliente válido que siempre responde ErrNotConfigured.
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

// ExtractFeatures pide al servicio de AI que procese las imágenes de la búsqueda.
// La respuesta solo importa como éxito/fallo.
func (c *Client) ExtractFeatures(ctx context.Context, req workers.FeatureExtractionRequest) error {
	if !c.IsConfigured() {
		return workers.ErrNotConfigured
	}
	return c.http.DoJSON(ctx, http.MethodPost, extractPath, req, nil)
}
