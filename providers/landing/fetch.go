// Package landing liest Publikations-Metadaten und
// Data-Availability-Statements direkt von der Landing-Page, die
// doi.org für eine DOI auflöst.
package landing

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/das"
	"fair-audit/models"
	"fair-audit/normalize"
)

const userAgent = "Mozilla/5.0 (FAIR/1.0)"

var httpClient = &http.Client{Timeout: 25 * time.Second}

// Fetcher implementiert die MetadataSource über die Landing-Page.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Landing-Page-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen der Quelle zurück.
func (f *Fetcher) Name() string {
	return "landing"
}

func (f *Fetcher) fetchDocument(doi string) (*goquery.Document, error) {
	reqURL := fmt.Sprintf("%s/%s", f.Config.DOIBaseURL, doi)

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Der HTTP-Status wird nicht geprüft; auch Fehlerseiten tragen
	// bei vielen Verlagen die citation-Meta-Tags.
	return goquery.NewDocumentFromReader(resp.Body)
}

// FetchMetadata liest Titel, Autoren und Journal aus den
// citation-Meta-Tags der Landing-Page.
func (f *Fetcher) FetchMetadata(doi string) (*models.PaperMeta, error) {
	log := f.Logger.With(zap.String("doi", doi))
	log.Debug("Lese Meta-Tags der Landing-Page.")

	doc, err := f.fetchDocument(doi)
	if err != nil {
		return nil, err
	}

	meta := &models.PaperMeta{
		Title:   normalize.Text(das.MetaContent(doc, "citation_title")),
		Journal: normalize.Text(das.MetaContent(doc, "citation_journal_title")),
	}
	var authors []string
	for _, a := range das.MetaContents(doc, "citation_author") {
		authors = append(authors, normalize.Text(a))
	}
	meta.Authors = strings.Join(authors, ", ")
	return meta, nil
}

// FetchStatement sucht das Data-Availability-Statement auf der
// Landing-Page. section ist nur bei einem Überschriften-Treffer belegt.
func (f *Fetcher) FetchStatement(doi string) (section, statement string, err error) {
	log := f.Logger.With(zap.String("doi", doi))
	log.Debug("Suche Data-Availability-Statement auf der Landing-Page.")

	doc, err := f.fetchDocument(doi)
	if err != nil {
		return "", "", err
	}
	section, statement = das.Locate(doc)
	return section, statement, nil
}
