// Package input liest die Eingabedokumente der Auswertungen: CSV mit
// Datenlinks sowie DOCX- oder Textdateien mit DOI-Absätzen.
package input

import (
	"archive/zip"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fair-audit/fair"
	"fair-audit/models"
)

// AssessmentRow ist eine Eingabezeile der Link-Bewertung: ein Paper
// mit seinen bereits aufgetrennten Datenlinks.
type AssessmentRow struct {
	DOI   string
	Title string
	Links []string
}

// ReadAssessmentRows liest die Eingabe-CSV über ihre Header-Spalten
// doi, title und data_links. Zeilen ohne Datenlinks werden
// übersprungen; fehlt die Titelspalte ganz, steht "Unknown" im Titel.
func ReadAssessmentRows(path string) ([]AssessmentRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Eingabedatei öffnen: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("CSV-Header lesen: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	_, hasTitle := col["title"]

	var rows []AssessmentRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV-Zeile lesen: %w", err)
		}
		links := SplitLinks(field(record, "data_links"))
		if len(links) == 0 {
			continue
		}
		title := "Unknown"
		if hasTitle {
			title = field(record, "title")
		}
		rows = append(rows, AssessmentRow{
			DOI:   field(record, "doi"),
			Title: title,
			Links: links,
		})
	}
	return rows, nil
}

// SplitLinks trennt ein data_links-Feld an Semikolons und wirft leere
// Einträge weg.
func SplitLinks(raw string) []string {
	var links []string
	for _, part := range strings.Split(raw, ";") {
		if link := strings.TrimSpace(part); link != "" {
			links = append(links, link)
		}
	}
	return links
}

// ReadParagraphs liefert die nicht-leeren Absätze eines Dokuments.
// DOCX-Dateien werden entpackt, alle anderen Dateien zeilenweise
// gelesen.
func ReadParagraphs(path string) ([]string, error) {
	var raw []string
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		var err error
		raw, err = docxParagraphs(path)
		if err != nil {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Eingabedatei lesen: %w", err)
		}
		raw = strings.Split(string(data), "\n")
	}

	paras := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return paras, nil
}

// docxParagraphs zieht den Text der w:p-Absätze aus word/document.xml.
func docxParagraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("DOCX öffnen: %w", err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, errors.New("word/document.xml fehlt im DOCX")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("document.xml öffnen: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		paras       []string
		current     strings.Builder
		inParagraph bool
		inText      bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document.xml parsen: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					paras = append(paras, current.String())
					inParagraph = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write([]byte(t))
			}
		}
	}
	return paras, nil
}

// PapersFromParagraphs extrahiert Titel und DOIs aus Absätzen. Der
// Titel ist der Absatztext ohne die DOIs; Absätze ohne DOI werden
// übersprungen, mehrere DOIs teilen sich den Titel.
func PapersFromParagraphs(paras []string) []models.PaperRef {
	var papers []models.PaperRef
	for _, text := range paras {
		dois := fair.FindDOIs(text)
		if len(dois) == 0 {
			continue
		}
		title := strings.TrimSpace(fair.StripDOIs(text))
		for _, doi := range dois {
			papers = append(papers, models.PaperRef{Title: title, DOI: doi})
		}
	}
	return papers
}

// SortedDOIsFromParagraphs sammelt alle DOIs eines Dokuments
// dedupliziert in sortierter Reihenfolge.
func SortedDOIsFromParagraphs(paras []string) []string {
	return fair.SortedUniqueDOIs(strings.Join(paras, "\n"))
}

// DOIsFromParagraphs sammelt alle DOIs eines Dokuments dedupliziert
// in Auftrittsreihenfolge.
func DOIsFromParagraphs(paras []string) []string {
	return fair.UniqueDOIs(strings.Join(paras, "\n"))
}
