package crossref

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/das"
	"fair-audit/models"
	"fair-audit/normalize"
)

var httpClient = &http.Client{Timeout: 20 * time.Second}

// publisherClient hat ein kürzeres Timeout, weil die Verlagsermittlung
// pro DOI zweimal anfragen kann (JSON und XML-Fallback).
var publisherClient = &http.Client{Timeout: 15 * time.Second}

// Fetcher implementiert die MetadataSource für Crossref.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Crossref-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen der Quelle zurück.
func (f *Fetcher) Name() string {
	return "crossref"
}

// FetchMetadata holt die Werk-Metadaten einer DOI von Crossref.
func (f *Fetcher) FetchMetadata(doi string) (*models.PaperMeta, error) {
	log := f.Logger.With(zap.String("doi", doi))

	reqURL := fmt.Sprintf("%s/%s", f.Config.CrossrefBaseURL, doi)
	log.Debug("Rufe Crossref API auf", zap.String("url", reqURL))

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crossref request failed with status: %d", resp.StatusCode)
	}

	var wr WorksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, err
	}

	meta := &models.PaperMeta{
		Title:   normalize.Text(strings.Join(wr.Message.Title, " ")),
		Journal: normalize.Text(strings.Join(wr.Message.ContainerTitle, " ")),
	}
	var authors []string
	for _, a := range wr.Message.Author {
		if name := strings.TrimSpace(a.Given + " " + a.Family); name != "" {
			authors = append(authors, name)
		}
	}
	meta.Authors = strings.Join(authors, ", ")
	return meta, nil
}

// FetchPublisher ermittelt den Verlag einer DOI, primär über die
// JSON-Antwort, bei Fehlern über die XML-Variante derselben Route.
// Ohne verwertbare Antwort kommt "Unknown" zurück.
func (f *Fetcher) FetchPublisher(doi string) string {
	log := f.Logger.With(zap.String("doi", doi))
	reqURL := fmt.Sprintf("%s/%s", f.Config.CrossrefBaseURL, doi)

	publisher, err := f.publisherFromJSON(reqURL)
	if err == nil {
		return publisher
	}
	log.Debug("Crossref JSON fehlgeschlagen, versuche XML-Fallback.", zap.Error(err))

	if publisher := f.publisherFromXML(reqURL); publisher != "" {
		return publisher
	}
	return "Unknown"
}

func (f *Fetcher) publisherFromJSON(reqURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := publisherClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("crossref request failed with status: %d", resp.StatusCode)
	}

	var wr WorksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", err
	}

	if wr.Message.Publisher == "" {
		return "Unknown", nil
	}
	return wr.Message.Publisher, nil
}

func (f *Fetcher) publisherFromXML(reqURL string) string {
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := publisherClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return das.ElementText(data, "publisher")
}
