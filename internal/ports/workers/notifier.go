// Package workers define los puertos hacia los workers externos (AI y scraping).
package workers

import (
	"context"
	"errors"
)

// ErrNotConfigured: el cliente no tiene URL; la notificación se saltea.
var ErrNotConfigured = errors.New("worker client not configured")

// Notifier es best-effort: los métodos no devuelven error.
// Quien implementa se encarga de timeout, log y descarte.
type Notifier interface {
	NotifyFeatureExtraction(petID string, images []string)
	NotifyScrapingStart(petID, species, location string, sources []string)
	NotifyScrapingStop(petID string)
}

type FeatureExtractionRequest struct {
	PetID  string   `json:"petId"`
	Images []string `json:"images"`
}

type ScrapingStartRequest struct {
	PetID    string   `json:"petId"`
	Species  string   `json:"species"`
	Location string   `json:"location"`
	Sources  []string `json:"sources"`
}

// FeatureExtractor es el cliente del servicio de AI.
type FeatureExtractor interface {
	ExtractFeatures(ctx context.Context, req FeatureExtractionRequest) error
}

// ScrapingController es el cliente del servicio de scraping.
type ScrapingController interface {
	StartScraping(ctx context.Context, req ScrapingStartRequest) error
	StopScraping(ctx context.Context, petID string) error
}

// Nop descarta todas las notificaciones.
type Nop struct{}

func (Nop) NotifyFeatureExtraction(string, []string)             {}
func (Nop) NotifyScrapingStart(string, string, string, []string) {}
func (Nop) NotifyScrapingStop(string)                            {}
