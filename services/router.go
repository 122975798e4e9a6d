package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fair-audit/config"
	"fair-audit/das"
	"fair-audit/input"
	"fair-audit/models"
	"fair-audit/providers/crossref"
	"fair-audit/providers/elsevier"
	"fair-audit/providers/springer"
	"fair-audit/providers/wiley"
	"fair-audit/report"
	"fair-audit/storage"
)

// RouterService ermittelt zu jeder DOI den Verlag, holt das
// Volltext-XML vom zuständigen Client und extrahiert Statement,
// Datenlinks und Artikel-Metadaten.
type RouterService struct {
	Config   *config.Config
	Logger   *zap.Logger
	S3Client *s3.Client
	Crossref *crossref.Fetcher
	Elsevier *elsevier.Client
	Springer *springer.Client
	Wiley    *wiley.Client
	throttle *rate.Limiter
}

// NewRouterService erstellt eine neue Instanz des RouterService.
// s3Client darf nil sein; dann bleiben die XML-Dateien nur lokal.
func NewRouterService(cfg *config.Config, s3Client *s3.Client, logger *zap.Logger) *RouterService {
	return &RouterService{
		Config:   cfg,
		Logger:   logger,
		S3Client: s3Client,
		Crossref: crossref.NewFetcher(cfg, logger),
		Elsevier: elsevier.NewClient(cfg, logger),
		Springer: springer.NewClient(cfg, logger),
		Wiley:    wiley.NewClient(cfg, logger),
		throttle: newThrottle(cfg),
	}
}

func isElsevierPublisher(publisher string) bool {
	return strings.Contains(publisher, "elsevier") ||
		strings.Contains(publisher, "cell press") ||
		strings.Contains(publisher, "lancet")
}

func isSpringerPublisher(publisher string) bool {
	return strings.Contains(publisher, "springer") || strings.Contains(publisher, "biomed central")
}

// RouteXML verarbeitet eine DOI für den Datei-Workflow: Verlag
// ermitteln, XML holen und speichern, Statement und Metadaten parsen.
// Jedes fehlende Feld wird im Lauf-Log vermerkt. Ein Fehler bricht
// nur diese DOI ab.
func (s *RouterService) RouteXML(doi, outputDir string, runLog *report.RunLog) (models.RouteRecord, error) {
	log := s.Logger.With(zap.String("doi", doi))

	publisher := s.Crossref.FetchPublisher(doi)
	record := models.RouteRecord{
		DOI:       doi,
		Publisher: publisher,
		Status:    models.RouteStatusUnsupportedPublisher,
	}
	publisherL := strings.ToLower(publisher)
	log.Debug("Verlag ermittelt", zap.String("publisher", publisher))

	var xmlData []byte
	switch {
	case isElsevierPublisher(publisherL):
		data, err := s.Elsevier.FetchArticleXML(doi)
		switch {
		case errors.Is(err, elsevier.ErrNotFound):
			record.Status = models.RouteStatusNotElsevier
		case err != nil:
			return record, err
		default:
			xmlData = data
			record.Status = models.RouteStatusElsevier
		}

	case isSpringerPublisher(publisherL):
		data, err := s.Springer.FetchArticleXML(doi)
		switch {
		case errors.Is(err, springer.ErrKeyMissing):
			runLog.Append(fmt.Sprintf("%s: Springer API key missing; cannot fetch.", doi))
			record.Status = models.RouteStatusSpringerKeyMissing
		case errors.Is(err, springer.ErrNotFound):
			record.Status = models.RouteStatusNotFoundSpringer
		case err != nil:
			return record, err
		default:
			xmlData = data
			record.Status = models.RouteStatusSpringer
		}

	case strings.Contains(publisherL, "wiley"):
		// Die TDM-API liefert kein Volltext-XML, nur Metadaten; für
		// diesen Workflow wird Wiley deshalb übersprungen.
		runLog.Append(fmt.Sprintf("%s: Wiley publisher detected; no XML client implemented, skipping.", doi))
		record.Status = models.RouteStatusWileyUnsupported
	}

	if len(xmlData) == 0 {
		return record, nil
	}

	safe := strings.ReplaceAll(doi, "/", "_")
	xmlPath := filepath.Join(outputDir, safe+".xml")
	if err := os.WriteFile(xmlPath, xmlData, 0o644); err != nil {
		return record, fmt.Errorf("XML speichern: %w", err)
	}
	record.XMLPath = xmlPath

	statement, links, err := das.LocateXML(xmlData)
	if err != nil {
		return record, fmt.Errorf("XML parsen: %w", err)
	}
	record.Statement = statement
	record.DataLinks = links

	meta, err := das.ArticleMetaFromXML(xmlData)
	if err != nil {
		return record, fmt.Errorf("XML parsen: %w", err)
	}
	record.Meta = meta

	s.logMissingFields(runLog, doi, &record)

	if s.S3Client != nil && s.Config.ArchiveEnabled() {
		key := fmt.Sprintf("els_router/%s/%s.xml", report.MonthFolder(time.Now()), safe)
		s3link, err := storage.UploadFile(s.S3Client, s.Config.ArchiveS3Bucket, key, xmlData, s.Config)
		if err != nil {
			log.Error("S3-Upload fehlgeschlagen", zap.Error(err))
		} else {
			record.S3Link = s3link
			log.Info("XML ins Archiv hochgeladen", zap.String("s3_link", s3link))
		}
	}

	return record, nil
}

func (s *RouterService) logMissingFields(runLog *report.RunLog, doi string, record *models.RouteRecord) {
	if record.Statement == "" {
		runLog.Append(doi + ": No DAS section found.")
	}
	if record.Meta.Authors == "" {
		runLog.Append(doi + ": No authors found.")
	}
	if record.Meta.Journal == "" {
		runLog.Append(doi + ": No journal name found.")
	}
	if record.Meta.CorrespondingAuthor == "" {
		runLog.Append(doi + ": No corresponding author found.")
	}
	if record.Meta.CorrespondingEmail == "" {
		runLog.Append(doi + ": No corresponding author email found.")
	}
	if record.Meta.OpenAccessArticle == "" {
		runLog.Append(doi + ": No openaccessArticle status found.")
	}
	if record.Meta.OpenAccessType == "" {
		runLog.Append(doi + ": No openaccessType found.")
	}
	if record.Meta.OpenAccessUserLicense == "" {
		runLog.Append(doi + ": No openaccessUserLicense found.")
	}
	if len(record.DataLinks) == 0 {
		runLog.Append(doi + ": No data links found.")
	}
}

// RouteResult bündelt die Artefakte eines Routing-Laufs.
type RouteResult struct {
	OutputCSV string
	LogFile   string
	Records   []models.RouteRecord
}

// RunFile liest Titel und DOIs aus einem Dokument, routet jede DOI
// und schreibt CSV, Lauf-Log und XML-Dateien in den Monatsordner.
// Fehler einzelner DOIs werden protokolliert und überspringen nur
// deren Zeile.
func (s *RouterService) RunFile(ctx context.Context, inputPath string) (*RouteResult, error) {
	paras, err := input.ReadParagraphs(inputPath)
	if err != nil {
		s.Logger.Error("Eingabedokument konnte nicht gelesen werden", zap.Error(err))
		return nil, err
	}
	papers := input.PapersFromParagraphs(paras)
	s.Logger.Info("Papers gefunden", zap.Int("count", len(papers)))

	now := time.Now()
	outputDir := filepath.Join(s.Config.OutputDir, "els_router", report.MonthFolder(now))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("Ausgabe-Verzeichnis anlegen: %w", err)
	}

	runLog := report.NewRunLog(filepath.Join(outputDir, report.Timestamp(now)+"_processing.log"))
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputCSV := filepath.Join(outputDir, stem+"_data.csv")

	var records []models.RouteRecord
	for _, paper := range papers {
		log := s.Logger.With(zap.String("doi", paper.DOI))
		log.Info("Verarbeite DOI.")

		record, err := s.RouteXML(paper.DOI, outputDir, runLog)
		if err != nil {
			log.Error("DOI konnte nicht verarbeitet werden", zap.Error(err))
			runLog.Append(fmt.Sprintf("%s: ERROR: %v", paper.DOI, err))
		} else {
			record.Title = paper.Title
			records = append(records, record)
		}

		if err := s.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if err := report.WriteRouteCSV(outputCSV, records); err != nil {
		s.Logger.Error("Ergebnis-CSV konnte nicht geschrieben werden", zap.Error(err))
		return nil, err
	}
	s.Logger.Info("Ergebnisse gespeichert", zap.String("output", outputCSV), zap.String("log", runLog.Path()))

	return &RouteResult{
		OutputCSV: outputCSV,
		LogFile:   runLog.Path(),
		Records:   records,
	}, nil
}

// RouteReply ist die JSON-Antwort des Routing-Endpunkts.
type RouteReply struct {
	DOI       string `json:"doi"`
	Publisher string `json:"publisher"`
	Status    string `json:"status"`
	Data      string `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RouteJSON ist die schlanke Routing-Variante für die API: Verlag
// ermitteln und die Artikel-Daten des zuständigen Clients direkt
// zurückgeben, ohne Artefakte auf die Platte zu schreiben. Anders als
// der Datei-Workflow fragt sie auch die Wiley TDM-API an.
func (s *RouterService) RouteJSON(doi string) RouteReply {
	publisher := s.Crossref.FetchPublisher(doi)
	publisherL := strings.ToLower(publisher)
	reply := RouteReply{
		DOI:       doi,
		Publisher: publisher,
		Status:    models.RouteStatusUnsupportedPublisher,
	}

	switch {
	case isElsevierPublisher(publisherL):
		data, err := s.Elsevier.FetchArticleXML(doi)
		switch {
		case errors.Is(err, elsevier.ErrNotFound):
			reply.Status = models.RouteStatusNotElsevier
		case err != nil:
			reply.Status = models.RouteStatusElsevier
			reply.Error = err.Error()
		default:
			reply.Status = models.RouteStatusElsevier
			reply.Data = string(data)
		}

	case isSpringerPublisher(publisherL):
		data, err := s.Springer.FetchArticleXML(doi)
		switch {
		case errors.Is(err, springer.ErrKeyMissing):
			reply.Status = models.RouteStatusSpringerKeyMissing
		case errors.Is(err, springer.ErrNotFound):
			reply.Status = models.RouteStatusNotFoundSpringer
		case err != nil:
			reply.Status = models.RouteStatusSpringer
			reply.Error = err.Error()
		default:
			reply.Status = models.RouteStatusSpringer
			reply.Data = string(data)
		}

	case strings.Contains(publisherL, "wiley"):
		data, err := s.Wiley.FetchArticle(doi)
		switch {
		case errors.Is(err, wiley.ErrKeyMissing):
			reply.Status = models.RouteStatusWileyKeyMissing
		case errors.Is(err, wiley.ErrNotFound):
			reply.Status = models.RouteStatusNotFoundWiley
		case err != nil:
			reply.Status = models.RouteStatusWiley
			reply.Error = err.Error()
		default:
			reply.Status = models.RouteStatusWiley
			reply.Data = string(data)
		}
	}

	return reply
}
