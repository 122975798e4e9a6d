package unpaywall

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/models"
	"fair-audit/normalize"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// Response repräsentiert die JSON-Antwort der Unpaywall-API.
type Response struct {
	DOI            string `json:"doi"`
	Title          string `json:"title"`
	JournalName    string `json:"journal_name"`
	PublishedDate  string `json:"published_date"`
	OAStatus       string `json:"oa_status"`
	BestOALocation struct {
		URL               string `json:"url"`
		URLForPDF         string `json:"url_for_pdf"`
		URLForLandingPage string `json:"url_for_landing_page"`
	} `json:"best_oa_location"`
}

// Record mappt die API-Antwort auf unser OARecord-Modell. HTML-Reste
// in Titel und Journal werden entfernt.
func (r *Response) Record() models.OARecord {
	return models.OARecord{
		DOI:           r.DOI,
		Title:         normalize.HTML(r.Title),
		Journal:       normalize.HTML(r.JournalName),
		PublishedDate: r.PublishedDate,
		OAStatus:      r.OAStatus,
		BestOAURL:     r.BestOALocation.URL,
		PDFURL:        r.BestOALocation.URLForPDF,
		XMLURL:        r.BestOALocation.URLForLandingPage,
	}
}

// Fetcher kapselt die Logik für Unpaywall.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Unpaywall-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Lookup holt den Open-Access-Datensatz einer DOI via Unpaywall.
func (f *Fetcher) Lookup(doi string) (*Response, error) {
	if f.Config.UnpaywallEmail == "" {
		return nil, fmt.Errorf("unpaywall email ist nicht konfiguriert")
	}

	url := fmt.Sprintf("%s/%s?email=%s", f.Config.UnpaywallBaseURL, doi, f.Config.UnpaywallEmail)
	log := f.Logger.With(zap.String("doi", doi), zap.String("url", url))
	log.Debug("Rufe Unpaywall API auf.")

	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unpaywall request failed with status: %d", resp.StatusCode)
	}

	var ur Response
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, err
	}
	return &ur, nil
}
