package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fair-audit/config"
	"fair-audit/fair"
	"fair-audit/input"
	"fair-audit/models"
	"fair-audit/providers"
	"fair-audit/providers/crossref"
	"fair-audit/providers/europepmc"
	"fair-audit/providers/landing"
	"fair-audit/reconcile"
	"fair-audit/report"
)

// ChampionService gleicht Paper-Metadaten aus mehreren Quellen ab,
// sucht das Data-Availability-Statement und kürt das Paper mit dem
// höchsten FAIR-Score.
type ChampionService struct {
	Config    *config.Config
	Logger    *zap.Logger
	EuropePMC *europepmc.Fetcher
	Crossref  *crossref.Fetcher
	Landing   *landing.Fetcher
	throttle  *rate.Limiter
}

// NewChampionService erstellt eine neue Instanz des ChampionService.
func NewChampionService(cfg *config.Config, logger *zap.Logger) *ChampionService {
	return &ChampionService{
		Config:    cfg,
		Logger:    logger,
		EuropePMC: europepmc.NewFetcher(cfg, logger),
		Crossref:  crossref.NewFetcher(cfg, logger),
		Landing:   landing.NewFetcher(cfg, logger),
		throttle:  newThrottle(cfg),
	}
}

// AssessDOI holt die Metadaten einer DOI aus allen Quellen, gleicht
// sie feldweise ab und bewertet das gefundene
// Data-Availability-Statement. Ausgefallene Quellen kosten nur die
// Felder, die keine andere Quelle liefert.
func (s *ChampionService) AssessDOI(doi string) models.ChampionRecord {
	log := s.Logger.With(zap.String("doi", doi))

	// Reihenfolge ist Rangfolge: Europe PMC vor Crossref vor Meta-Tags.
	var sources []*models.PaperMeta
	for _, source := range []providers.MetadataSource{s.EuropePMC, s.Crossref, s.Landing} {
		meta, err := source.FetchMetadata(doi)
		if err != nil {
			log.Warn("Quelle lieferte keine Metadaten", zap.String("source", source.Name()), zap.Error(err))
			sources = append(sources, nil)
			continue
		}
		sources = append(sources, meta)
	}
	merged := reconcile.Merge(sources...)

	section, statement, err := s.Landing.FetchStatement(doi)
	if err != nil {
		log.Warn("Landing-Page nicht erreichbar", zap.Error(err))
	}

	return models.ChampionRecord{
		DOI:       doi,
		Meta:      merged,
		Section:   section,
		Statement: statement,
		Score:     fair.Score(fair.StatementSignals(statement, doi)),
	}
}

// ChampionResult bündelt die Artefakte eines Champion-Laufs.
type ChampionResult struct {
	OutputCSV string
	Records   []models.ChampionRecord
	Champion  *models.ChampionRecord
}

// RunFile liest die DOIs eines Dokuments sortiert und dedupliziert
// ein, bewertet jede und schreibt die Champion-CSV. Zwischen zwei
// DOIs wartet der Service die konfigurierte Pause.
func (s *ChampionService) RunFile(ctx context.Context, inputPath string) (*ChampionResult, error) {
	paras, err := input.ReadParagraphs(inputPath)
	if err != nil {
		s.Logger.Error("Eingabedokument konnte nicht gelesen werden", zap.Error(err))
		return nil, err
	}
	dois := input.SortedDOIsFromParagraphs(paras)
	s.Logger.Info("DOIs gefunden", zap.Int("count", len(dois)))

	if err := os.MkdirAll(s.Config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("Ausgabe-Verzeichnis anlegen: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputCSV := filepath.Join(s.Config.OutputDir, fmt.Sprintf("%s_%s.csv", report.Timestamp(time.Now()), stem))

	var records []models.ChampionRecord
	for _, doi := range dois {
		s.Logger.Info("Bewerte Paper", zap.String("doi", doi))
		records = append(records, s.AssessDOI(doi))

		if err := s.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if err := report.WriteChampionCSV(outputCSV, records); err != nil {
		s.Logger.Error("Ergebnis-CSV konnte nicht geschrieben werden", zap.Error(err))
		return nil, err
	}
	s.Logger.Info("Ergebnisse gespeichert", zap.String("output", outputCSV))

	return &ChampionResult{
		OutputCSV: outputCSV,
		Records:   records,
		Champion:  Champion(records),
	}, nil
}

// Champion liefert den Datensatz mit dem höchsten FAIR-Score. Bei
// Gleichstand gewinnt der erste; leere Eingaben liefern nil.
func Champion(records []models.ChampionRecord) *models.ChampionRecord {
	if len(records) == 0 {
		return nil
	}
	best := 0
	for i := range records {
		if records[i].Score > records[best].Score {
			best = i
		}
	}
	return &records[best]
}
