package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fair-audit/config"
	"fair-audit/input"
	"fair-audit/models"
	"fair-audit/providers/unpaywall"
	"fair-audit/report"
)

// GetDataService holt Open-Access-Metadaten über Unpaywall und lädt
// die frei verfügbaren PDF- und XML-Volltexte herunter.
type GetDataService struct {
	Config    *config.Config
	Logger    *zap.Logger
	Unpaywall *unpaywall.Fetcher
	throttle  *rate.Limiter
}

// NewGetDataService erstellt eine neue Instanz des GetDataService.
func NewGetDataService(cfg *config.Config, logger *zap.Logger) *GetDataService {
	return &GetDataService{
		Config:    cfg,
		Logger:    logger,
		Unpaywall: unpaywall.NewFetcher(cfg, logger),
		throttle:  newThrottle(cfg),
	}
}

// GetDataResult bündelt die Artefakte eines Download-Laufs.
type GetDataResult struct {
	OutputCSV string
	Records   []models.OARecord
}

// RunFile liest die DOIs eines Dokuments in Auftrittsreihenfolge ein,
// holt zu jeder den Unpaywall-Datensatz und lädt PDF und XML der
// besten Open-Access-Version herunter. DOIs ohne Metadaten werden
// übersprungen; ohne Datensätze entsteht keine CSV.
func (s *GetDataService) RunFile(ctx context.Context, inputPath string) (*GetDataResult, error) {
	paras, err := input.ReadParagraphs(inputPath)
	if err != nil {
		s.Logger.Error("Eingabedokument konnte nicht gelesen werden", zap.Error(err))
		return nil, err
	}
	dois := input.DOIsFromParagraphs(paras)
	s.Logger.Info("DOIs gefunden", zap.Int("count", len(dois)))

	outputDir := filepath.Join(s.Config.OutputDir, "get_data")
	pdfDir := filepath.Join(outputDir, "pdfs")
	xmlDir := filepath.Join(outputDir, "xml")
	for _, dir := range []string{pdfDir, xmlDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Ausgabe-Verzeichnis anlegen: %w", err)
		}
	}

	downloadLog, err := report.OpenDownloadLog(filepath.Join(outputDir, "download_log.csv"))
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputCSV := filepath.Join(outputDir, stem+"_data.csv")

	var records []models.OARecord
	for _, doi := range dois {
		log := s.Logger.With(zap.String("doi", doi))

		resp, err := s.Unpaywall.Lookup(doi)
		if err != nil {
			log.Error("Keine Metadaten gefunden", zap.Error(err))
			if err := s.throttle.Wait(ctx); err != nil {
				return nil, err
			}
			continue
		}
		record := resp.Record()
		if record.DOI == "" {
			record.DOI = doi
		}

		safe := strings.ReplaceAll(record.DOI, "/", "_")
		if record.PDFURL != "" {
			if !s.download(downloadLog, record.PDFURL, "PDF", filepath.Join(pdfDir, safe+".pdf")) {
				log.Warn("PDF-Download fehlgeschlagen", zap.String("url", record.PDFURL))
			}
		} else {
			log.Warn("Kein PDF-Link vorhanden.")
		}
		if record.XMLURL != "" {
			if !s.download(downloadLog, record.XMLURL, "XML", filepath.Join(xmlDir, safe+".xml")) {
				log.Warn("XML-Download fehlgeschlagen", zap.String("url", record.XMLURL))
			}
		} else {
			log.Warn("Kein XML-Link vorhanden.")
		}

		records = append(records, record)

		if err := s.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if len(records) == 0 {
		s.Logger.Warn("Keine Daten für die CSV.")
		return &GetDataResult{}, nil
	}

	if err := report.WriteOARecordsCSV(outputCSV, records); err != nil {
		s.Logger.Error("Ergebnis-CSV konnte nicht geschrieben werden", zap.Error(err))
		return nil, err
	}
	s.Logger.Info("Ergebnisse gespeichert", zap.String("output", outputCSV))

	return &GetDataResult{OutputCSV: outputCSV, Records: records}, nil
}

// download holt eine Datei und schreibt sie nur bei passendem
// Content-Type auf die Platte. Jeder Versuch landet im Download-Log.
func (s *GetDataService) download(downloadLog *report.DownloadLog, url, fileType, outPath string) bool {
	resp, err := downloadClient.Get(url)
	if err != nil {
		downloadLog.Record(url, fileType, 0, "", false)
		s.Logger.Error("Download fehlgeschlagen", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	success := resp.StatusCode == http.StatusOK && contentTypeMatches(fileType, contentType)
	downloadLog.Record(url, fileType, resp.StatusCode, contentType, success)
	if !success {
		return false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		s.Logger.Error("Download konnte nicht gelesen werden", zap.String("url", url), zap.Error(err))
		return false
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		s.Logger.Error("Datei konnte nicht gespeichert werden", zap.String("path", outPath), zap.Error(err))
		return false
	}
	return true
}

func contentTypeMatches(fileType, contentType string) bool {
	ct := strings.ToLower(contentType)
	if fileType == "PDF" {
		return strings.HasPrefix(ct, "application/pdf")
	}
	return strings.Contains(ct, "xml")
}
