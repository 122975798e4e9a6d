// Package mendeley listet die Dateien eines Mendeley-Data-Datasets
// über die öffentliche API, statt sie aus dem HTML zu kratzen.
package mendeley

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/fair"
)

const userAgent = "Mozilla/5.0 (FAIR Assessment Bot/1.0)"

var httpClient = &http.Client{Timeout: 20 * time.Second}

// Mendeley-IDs sind kleingeschriebene Hashes; Großbuchstaben in der
// URL sind keine Dataset-ID.
var datasetIDPattern = regexp.MustCompile(`/datasets/([a-z0-9]+)`)

// File ist ein Eintrag der Datei-Liste eines Datasets.
type File struct {
	Filename string `json:"filename"`
}

// Fetcher kapselt die Logik für Mendeley Data.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Mendeley-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// DatasetID zieht die Dataset-ID aus einer Mendeley-Data-URL.
func DatasetID(url string) string {
	if m := datasetIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// DatasetFiles listet die Daten-Dateinamen eines Datasets. URLs ohne
// Dataset-ID liefern eine leere Liste; Begleitdateien wie LICENSE und
// README werden herausgefiltert.
func (f *Fetcher) DatasetFiles(url string) ([]string, error) {
	id := DatasetID(url)
	if id == "" {
		return nil, nil
	}

	filesURL := fmt.Sprintf("%s/%s/files", f.Config.MendeleyBaseURL, id)
	log := f.Logger.With(zap.String("dataset_id", id))
	log.Debug("Rufe Mendeley API auf", zap.String("url", filesURL))

	req, err := http.NewRequest(http.MethodGet, filesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mendeley request failed with status: %d", resp.StatusCode)
	}

	var files []File
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, err
	}

	var names []string
	for _, file := range files {
		if file.Filename != "" && !fair.IsMetadataFile(file.Filename) {
			names = append(names, file.Filename)
		}
	}
	return names, nil
}
