// Package elsevier holt Artikel-Volltexte über die Elsevier
// Article-API.
package elsevier

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
)

// ErrNotFound zeigt an, dass der Artikel nicht im Elsevier-Bestand ist.
var ErrNotFound = errors.New("artikel nicht im elsevier-bestand")

var httpClient = &http.Client{Timeout: 20 * time.Second}

// Client kapselt die Logik für die Elsevier Article-API.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Elsevier-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// FetchArticleXML holt den Volltext eines Artikels als XML. Ein 404
// der API bedeutet ErrNotFound; der Artikel liegt dann bei einem
// anderen Verlag.
func (c *Client) FetchArticleXML(doi string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s", c.Config.ElsevierBaseURL, doi)
	log := c.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe Elsevier Article-API auf", zap.String("url", reqURL))

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-ELS-APIKey", c.Config.ElsevierAPIKey)
	req.Header.Set("Accept", "application/xml")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elsevier request failed with status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
