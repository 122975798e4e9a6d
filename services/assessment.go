package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"fair-audit/config"
	"fair-audit/das"
	"fair-audit/fair"
	"fair-audit/input"
	"fair-audit/models"
	"fair-audit/normalize"
	"fair-audit/providers/datacite"
	"fair-audit/providers/mendeley"
	"fair-audit/report"
)

// Anzeige-Obergrenzen für Datei- und Formatlisten in der Ergebnis-CSV.
const (
	MaxFilesToDisplay   = 10
	MaxFormatsToDisplay = 10
)

// AssessmentService bewertet die Datenlinks von Papers gegen die vier
// FAIR-Signale und schreibt die Ergebnisse als CSV, Log und optional
// in die Datenbank.
type AssessmentService struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Mendeley *mendeley.Fetcher
	DataCite *datacite.Fetcher
	throttle *rate.Limiter
}

// NewAssessmentService erstellt eine neue Instanz des
// AssessmentService. db darf nil sein, dann entstehen nur die
// CSV-Artefakte.
func NewAssessmentService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *AssessmentService {
	return &AssessmentService{
		Config:   cfg,
		DB:       db,
		Logger:   logger,
		Mendeley: mendeley.NewFetcher(cfg, logger),
		DataCite: datacite.NewFetcher(cfg, logger),
		throttle: newThrottle(cfg),
	}
}

// AssessLink ruft einen Datenlink ab und extrahiert die
// FAIR-relevanten Informationen. Schlägt der Abruf fehl, ist in der
// Zeile nur der Accessibility-Status belegt und der Score bleibt 0.
func (s *AssessmentService) AssessLink(link, paperDOI string) models.Assessment {
	log := s.Logger.With(zap.String("url", link))
	row := models.Assessment{
		PaperDOI:      paperDOI,
		DataLink:      link,
		Accessibility: models.AccessibilityUnknown,
	}

	resp, err := pageClient.Get(link)
	if err != nil {
		row.Accessibility = accessibilityForError(err)
		log.Warn("Abruf des Datenlinks fehlgeschlagen", zap.Error(err))
		return row
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		row.Accessibility = "Error: " + normalize.Truncate(resp.Status, 100)
		log.Warn("Datenlink liefert Fehlerstatus", zap.String("status", resp.Status))
		return row
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		row.Accessibility = accessibilityForError(err)
		log.Warn("Abruf des Datenlinks fehlgeschlagen", zap.Error(err))
		return row
	}
	html := string(body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		row.Accessibility = parseErrorStatus(err)
		log.Error("Seite konnte nicht geparst werden", zap.Error(err))
		return row
	}
	pageText := das.PageText(doc)

	// 1. Repository anhand der URL bestimmen
	row.Repository = fair.IdentifyRepository(link)

	// 2. Dateinamen: erst über die Repository-API, dann aus dem HTML
	var filenames []string
	if row.Repository == "Mendeley Data" {
		names, err := s.Mendeley.DatasetFiles(link)
		if err != nil {
			log.Debug("Mendeley API nicht erreichbar", zap.Error(err))
		}
		filenames = fair.SortedUnique(names)
	}
	if len(filenames) == 0 {
		filenames = fair.FilenamesFromHTML(html)
	}
	if len(filenames) > 0 {
		row.FileName = fair.JoinLimited(filenames, MaxFilesToDisplay)
	}

	// 3. Dataset-DOI aus dem Seitentext; kennt die Seite selbst keine
	// Dateinamen, hilft manchmal DataCite weiter
	row.DatasetDOI = fair.ExtractDatasetDOI(pageText, paperDOI)
	if row.DatasetDOI != "" && row.FileName == "" {
		name, err := s.DataCite.Filename(row.DatasetDOI)
		if err != nil {
			log.Debug("DataCite API nicht erreichbar", zap.Error(err))
		} else if name != "" {
			row.FileName = name
		}
	}

	// 4. Formate aus HTML, Meta-Tags und den gefundenen Dateinamen
	formats := fair.FormatsFromHTML(html, doc)
	if row.FileName != "" {
		formats = append(formats, fair.FormatsFromFilenames(strings.Split(row.FileName, ", "))...)
		formats = fair.SortedUnique(formats)
	}
	if len(formats) > 0 {
		row.FileFormats = fair.JoinLimited(formats, MaxFormatsToDisplay)
	}

	// 5. Lizenz aus dem Seitentext
	row.License = fair.ExtractLicense(pageText)

	row.Accessibility = models.AccessibilityAccessible
	row.FairScore = fair.Score(fair.Signals{
		Repository:  row.Repository,
		DatasetDOI:  row.DatasetDOI,
		FileFormats: row.FileFormats,
		License:     row.License,
	})
	return row
}

// RunResult bündelt die Artefakte eines Bewertungslaufs.
type RunResult struct {
	OutputCSV string
	LogFile   string
	Results   []models.Assessment
	Summary   report.Summary
}

// RunFile verarbeitet eine Eingabe-CSV Link für Link. Zwischen zwei
// Links wartet der Service die konfigurierte Pause; Fehler einzelner
// Links landen als Status in der Ergebniszeile und brechen den Lauf
// nicht ab. runID stempelt die Ergebnisse für die Datenbank, 0 lässt
// sie ungestempelt.
func (s *AssessmentService) RunFile(ctx context.Context, inputCSV string, runID uint) (*RunResult, error) {
	now := time.Now()
	outputDir := filepath.Join(s.Config.OutputDir, "data_fair_assessment")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("Ausgabe-Verzeichnis anlegen: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(inputCSV), filepath.Ext(inputCSV))
	prefix := fmt.Sprintf("%s_%s_fair_assessment", report.Timestamp(now), stem)
	outputCSV := filepath.Join(outputDir, prefix+".csv")
	runLog := report.NewRunLog(filepath.Join(outputDir, prefix+".log"))

	rows, err := input.ReadAssessmentRows(inputCSV)
	if err != nil {
		s.Logger.Error("Eingabe-CSV konnte nicht gelesen werden", zap.Error(err))
		return nil, err
	}

	s.Logger.Info("Verarbeite Eingabedatei", zap.String("input", inputCSV), zap.Int("papers", len(rows)))
	runLog.Info(fmt.Sprintf("Processing input file: %s", inputCSV))
	runLog.Info(fmt.Sprintf("Found %d papers with data links", len(rows)))

	var results []models.Assessment
	for i, row := range rows {
		s.Logger.Info("Verarbeite Paper",
			zap.Int("index", i+1), zap.Int("total", len(rows)),
			zap.String("doi", row.DOI), zap.String("title", normalize.Truncate(row.Title, 60)))
		runLog.Info(fmt.Sprintf("[%d/%d] Processing: %s", i+1, len(rows), normalize.Truncate(row.Title, 60)))

		for _, link := range row.Links {
			runLog.Info("  Assessing: " + link)
			assessment := s.AssessLink(link, row.DOI)
			assessment.PaperTitle = row.Title
			assessment.RunID = runID
			results = append(results, assessment)

			if err := s.throttle.Wait(ctx); err != nil {
				return nil, err
			}
		}
	}

	if err := report.WriteAssessmentCSV(outputCSV, results); err != nil {
		s.Logger.Error("Ergebnis-CSV konnte nicht geschrieben werden", zap.Error(err))
		runLog.Error(fmt.Sprintf("Error writing output CSV: %v", err))
		return nil, err
	}
	s.Logger.Info("Ergebnisse gespeichert", zap.String("output", outputCSV))
	runLog.Info("Results saved to: " + outputCSV)

	summary := report.Summarize(results)
	if summary.Total > 0 {
		s.Logger.Info("FAIR Assessment Summary",
			zap.Int("total_datasets", summary.Total),
			zap.Float64("average_score", summary.AverageScore),
			zap.Int("best_score", summary.Best.FairScore),
			zap.String("best_repository", summary.Best.Repository))
		runLog.Info(fmt.Sprintf("Total datasets assessed: %d", summary.Total))
		runLog.Info(fmt.Sprintf("Average FAIR score: %.2f/4", summary.AverageScore))
		runLog.Info(fmt.Sprintf("Highest scoring dataset (%d/4): %s", summary.Best.FairScore, summary.Best.DataLink))
	} else {
		s.Logger.Warn("Keine Datensätze bewertet.")
		runLog.Warn("No datasets were assessed")
	}

	if s.DB != nil && len(results) > 0 {
		if err := s.DB.Create(&results).Error; err != nil {
			s.Logger.Error("Ergebnisse konnten nicht in der DB gespeichert werden", zap.Error(err))
		}
	}

	return &RunResult{
		OutputCSV: outputCSV,
		LogFile:   runLog.Path(),
		Results:   results,
		Summary:   summary,
	}, nil
}
