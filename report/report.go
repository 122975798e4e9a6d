// Package report schreibt die Ergebnis-CSVs und Lauf-Logs der
// Auswertungen.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"fair-audit/models"
)

// Timestamp formatiert einen Zeitpunkt für Dateinamen.
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// MonthFolder formatiert einen Zeitpunkt als Monatsordner (2025_11).
func MonthFolder(t time.Time) string {
	return t.Format("2006_01")
}

// FlagString stellt ein optionales Flag als "True", "False" oder
// leeren String dar, so wie es in den CSVs erwartet wird.
func FlagString(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "True"
	}
	return "False"
}

// RunLog ist das Klartext-Protokoll eines Laufs. Jeder Eintrag wird
// einzeln angehängt, damit das Log auch bei einem Abbruch vollständig
// bis zum letzten Datensatz ist.
type RunLog struct {
	path string
	mu   sync.Mutex
}

func NewRunLog(path string) *RunLog {
	return &RunLog{path: path}
}

func (l *RunLog) Path() string { return l.path }

// Append hängt eine Zeile unverändert an das Log an.
func (l *RunLog) Append(message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("Log öffnen: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strings.TrimRight(message, "\n") + "\n"); err != nil {
		return fmt.Errorf("Log schreiben: %w", err)
	}
	return nil
}

// Info, Warn und Error hängen eine Zeile mit Zeitstempel und Level an.
func (l *RunLog) Info(message string) error  { return l.stamped("INFO", message) }
func (l *RunLog) Warn(message string) error  { return l.stamped("WARNING", message) }
func (l *RunLog) Error(message string) error { return l.stamped("ERROR", message) }

func (l *RunLog) stamped(level, message string) error {
	return l.Append(fmt.Sprintf("%s - %s - %s", time.Now().Format("2006-01-02 15:04:05"), level, message))
}

func writeCSV(path string, header []string, records [][]string, withBOM bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("CSV anlegen: %w", err)
	}
	defer f.Close()

	if withBOM {
		if _, err := f.WriteString("\ufeff"); err != nil {
			return fmt.Errorf("BOM schreiben: %w", err)
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("CSV-Header schreiben: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("CSV-Zeile schreiben: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("CSV schreiben: %w", err)
	}
	return nil
}

// WriteAssessmentCSV schreibt die Link-Bewertungen in eine CSV mit
// einer Zeile pro bewertetem Datenlink.
func WriteAssessmentCSV(path string, rows []models.Assessment) error {
	header := []string{
		"paper_doi", "paper_title", "data_link", "dataset_doi", "file_name",
		"repository", "file_formats", "license", "accessibility", "fair_score",
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.PaperDOI, r.PaperTitle, r.DataLink, r.DatasetDOI, r.FileName,
			r.Repository, r.FileFormats, r.License, r.Accessibility, strconv.Itoa(r.FairScore),
		})
	}
	return writeCSV(path, header, records, false)
}

// WriteChampionCSV schreibt die Champion-Auswertung. Die Datei beginnt
// mit einem UTF-8 BOM, damit Excel die Kodierung erkennt.
func WriteChampionCSV(path string, records []models.ChampionRecord) error {
	header := []string{
		"Paper_DOI", "Title", "Authors", "Journal", "IsOpenAccess", "HasData",
		"Data_Availability_Section", "Data_Availability_Statement", "FAIR_Score",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.DOI, r.Meta.Title, r.Meta.Authors, r.Meta.Journal,
			FlagString(r.Meta.IsOpenAccess), FlagString(r.Meta.HasData),
			r.Section, r.Statement, strconv.Itoa(r.Score),
		})
	}
	return writeCSV(path, header, rows, true)
}

// WriteRouteCSV schreibt die Ergebnisse des Verlags-Routings.
func WriteRouteCSV(path string, records []models.RouteRecord) error {
	header := []string{
		"title", "doi", "authors", "journal",
		"corresponding_author", "corresponding_email",
		"openaccessArticle", "openaccessType", "openaccessUserLicense",
		"data_availability_statement", "data_links", "xml_path", "status", "publisher",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		meta := r.Meta
		if meta == nil {
			meta = &models.ArticleMeta{}
		}
		rows = append(rows, []string{
			r.Title, r.DOI, meta.Authors, meta.Journal,
			meta.CorrespondingAuthor, meta.CorrespondingEmail,
			meta.OpenAccessArticle, meta.OpenAccessType, meta.OpenAccessUserLicense,
			r.Statement, strings.Join(r.DataLinks, "; "), r.XMLPath, r.Status, r.Publisher,
		})
	}
	return writeCSV(path, header, rows, false)
}

// WriteOARecordsCSV schreibt die Unpaywall-Metadaten der Papers.
func WriteOARecordsCSV(path string, records []models.OARecord) error {
	header := []string{
		"doi", "title", "journal", "published_date", "oa_status",
		"best_oa_location_url", "pdf_url", "xml_url",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.DOI, r.Title, r.Journal, r.PublishedDate, r.OAStatus,
			r.BestOAURL, r.PDFURL, r.XMLURL,
		})
	}
	return writeCSV(path, header, rows, false)
}

// DownloadLog protokolliert jeden Download-Versuch als CSV-Zeile.
// Das Log wird über Läufe hinweg fortgeschrieben; der Header entsteht
// nur beim ersten Anlegen.
type DownloadLog struct {
	path string
	mu   sync.Mutex
}

func OpenDownloadLog(path string) (*DownloadLog, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("Log-Verzeichnis anlegen: %w", err)
		}
		header := []string{"url", "type", "status_code", "content_type", "success"}
		if err := writeCSV(path, header, nil, false); err != nil {
			return nil, err
		}
	}
	return &DownloadLog{path: path}, nil
}

func (l *DownloadLog) Path() string { return l.path }

// Record hängt einen Download-Versuch an das Log an.
func (l *DownloadLog) Record(url, fileType string, statusCode int, contentType string, success bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("Download-Log öffnen: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	flag := "False"
	if success {
		flag = "True"
	}
	if err := w.Write([]string{url, fileType, strconv.Itoa(statusCode), contentType, flag}); err != nil {
		return fmt.Errorf("Download-Log schreiben: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("Download-Log schreiben: %w", err)
	}
	return nil
}

// Summary fasst einen Bewertungslauf zusammen.
type Summary struct {
	Total        int
	AverageScore float64
	Best         *models.Assessment
}

// Summarize berechnet Gesamtzahl, Durchschnitts-Score und den besten
// Datensatz eines Laufs. Bei Gleichstand gewinnt der erste.
func Summarize(rows []models.Assessment) Summary {
	s := Summary{Total: len(rows)}
	if len(rows) == 0 {
		return s
	}
	sum := 0
	best := 0
	for i, r := range rows {
		sum += r.FairScore
		if r.FairScore > rows[best].FairScore {
			best = i
		}
	}
	s.AverageScore = float64(sum) / float64(len(rows))
	s.Best = &rows[best]
	return s
}
