package europepmc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/models"
	"fair-audit/normalize"
)

var httpClient = &http.Client{Timeout: 20 * time.Second}

// Fetcher implementiert die MetadataSource für Europe PMC.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Europe PMC Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen der Quelle zurück.
func (f *Fetcher) Name() string {
	return "europepmc"
}

// FetchMetadata sucht die DOI auf Europe PMC und mappt den ersten
// Treffer auf unser PaperMeta-Modell. Kein Treffer ist kein Fehler,
// sondern liefert ein leeres Modell.
func (f *Fetcher) FetchMetadata(doi string) (*models.PaperMeta, error) {
	log := f.Logger.With(zap.String("doi", doi))

	searchURL := fmt.Sprintf("%s?query=%s&resultType=core&format=json", f.Config.EuropePMCBaseURL, url.QueryEscape("DOI:"+doi))
	log.Debug("Rufe Europe PMC API auf", zap.String("url", searchURL))

	resp, err := httpClient.Get(searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("europepmc request failed with status: %d", resp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}

	if len(searchResponse.ResultList.Result) == 0 {
		log.Debug("Kein Treffer auf Europe PMC.")
		return &models.PaperMeta{}, nil
	}

	return mapArticleToMeta(&searchResponse.ResultList.Result[0]), nil
}

// mapArticleToMeta konvertiert ein Europe PMC Article-Objekt in unser internes PaperMeta-Modell.
func mapArticleToMeta(article *Article) *models.PaperMeta {
	return &models.PaperMeta{
		Title:         normalize.Text(article.Title),
		Authors:       normalize.Text(article.AuthorString),
		Journal:       normalize.Text(article.JournalTitle),
		IsOpenAccess:  parseFlag(article.IsOpenAccess),
		HasData:       parseFlag(article.HasData),
		PublishedDate: parseEuroDate(article.FirstPublicationDate),
	}
}
