// Package springer holt Artikel-Metadaten über die Springer
// Metadata-API, die auch BioMed Central abdeckt.
package springer

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
)

var (
	// ErrKeyMissing zeigt an, dass kein Springer-API-Key konfiguriert ist.
	ErrKeyMissing = errors.New("springer api key ist nicht konfiguriert")
	// ErrNotFound zeigt an, dass der Artikel nicht im Springer-Bestand ist.
	ErrNotFound = errors.New("artikel nicht im springer-bestand")
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// Client kapselt die Logik für die Springer Metadata-API.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Springer-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// FetchArticleXML holt die Artikel-Metadaten als XML. Ohne API-Key
// kommt ErrKeyMissing, bei einem 404 der API ErrNotFound zurück.
func (c *Client) FetchArticleXML(doi string) ([]byte, error) {
	if c.Config.SpringerAPIKey == "" {
		return nil, ErrKeyMissing
	}

	reqURL := fmt.Sprintf("%s?q=%s&api_key=%s", c.Config.SpringerBaseURL, url.QueryEscape("doi:"+doi), c.Config.SpringerAPIKey)
	log := c.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe Springer Metadata-API auf.")

	resp, err := httpClient.Get(reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("springer request failed with status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
