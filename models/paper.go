package models

import (
	"time"
)

// PaperRef ist ein Eintrag aus dem Eingabedokument: Titel plus DOI.
type PaperRef struct {
	Title string `json:"title"`
	DOI   string `json:"doi"`
}

// PaperMeta bündelt die bibliografischen Felder, die wir aus den
// Metadaten-Quellen (Europe PMC, Crossref, Landing-Page) abgleichen.
// Die Flags liefert nur Europe PMC; nil bedeutet "Quelle hatte keine Angabe".
type PaperMeta struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Journal string `json:"journal"`

	IsOpenAccess *bool `json:"is_open_access,omitempty"`
	HasData      *bool `json:"has_data,omitempty"`

	PublishedDate *time.Time `json:"published_date,omitempty"`
}

// Empty meldet, ob keines der drei Kernfelder belegt ist.
func (m *PaperMeta) Empty() bool {
	return m == nil || (m.Title == "" && m.Authors == "" && m.Journal == "")
}
