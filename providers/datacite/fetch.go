// Package datacite fragt die DataCite-API nach Datei-Informationen
// zu einem Dataset-DOI.
package datacite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/fair"
)

const userAgent = "Mozilla/5.0 (FAIR Assessment Bot/1.0)"

var httpClient = &http.Client{Timeout: 20 * time.Second}

// Response ist die JSON:API-Antwort von DataCite.
type Response struct {
	Data struct {
		Attributes struct {
			ContentURL []string `json:"contentUrl"`
		} `json:"attributes"`
	} `json:"data"`
}

// Fetcher kapselt die Logik für DataCite.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen DataCite-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Filename sucht in den contentUrl-Einträgen eines Dataset-DOIs die
// erste URL mit bekannter Datenendung und liefert deren Dateinamen.
func (f *Fetcher) Filename(doi string) (string, error) {
	reqURL := fmt.Sprintf("%s/%s", f.Config.DataCiteBaseURL, doi)
	log := f.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe DataCite API auf", zap.String("url", reqURL))

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("datacite request failed with status: %d", resp.StatusCode)
	}

	var dr Response
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return "", err
	}

	for _, contentURL := range dr.Data.Attributes.ContentURL {
		if name := fair.FilenameFromURL(contentURL); name != "" {
			return name, nil
		}
	}
	return "", nil
}
