// Package wiley holt Artikel-Daten über die Wiley TDM-API.
package wiley

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
)

var (
	// ErrKeyMissing zeigt an, dass kein Wiley-API-Key konfiguriert ist.
	ErrKeyMissing = errors.New("wiley api key ist nicht konfiguriert")
	// ErrNotFound zeigt an, dass der Artikel nicht im Wiley-Bestand ist.
	ErrNotFound = errors.New("artikel nicht im wiley-bestand")
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Client kapselt die Logik für die Wiley TDM-API.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Wiley-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// FetchArticle holt die Artikel-Daten einer DOI. Ohne API-Key kommt
// ErrKeyMissing, bei einem 404 der API ErrNotFound zurück.
func (c *Client) FetchArticle(doi string) ([]byte, error) {
	if c.Config.WileyAPIKey == "" {
		return nil, ErrKeyMissing
	}

	reqURL := fmt.Sprintf("%s/%s", c.Config.WileyBaseURL, doi)
	log := c.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe Wiley TDM-API auf", zap.String("url", reqURL))

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.Config.WileyAPIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiley request failed with status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
