package models

import (
	"time"
)

// Zugänglichkeits-Status, die eine Bewertung annehmen kann. Fehlerfälle
// werden als "Error: ..." bzw. "Parse Error: ..." Strings abgelegt.
const (
	AccessibilityUnknown    = "Unknown"
	AccessibilityAccessible = "Accessible"
)

// Assessment ist die FAIR-Bewertung eines einzelnen Daten-Links.
// Ein Paper kann mehrere Links und damit mehrere Assessments haben.
type Assessment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	RunID uint `json:"run_id,omitempty" gorm:"index"`

	PaperDOI   string `json:"paper_doi" gorm:"column:paper_doi;index"`
	PaperTitle string `json:"paper_title"`
	DataLink   string `json:"data_link"`

	DatasetDOI  string `json:"dataset_doi,omitempty" gorm:"column:dataset_doi"`
	FileName    string `json:"file_name,omitempty"`
	Repository  string `json:"repository,omitempty" gorm:"index"`
	FileFormats string `json:"file_formats,omitempty"`
	License     string `json:"license,omitempty"`

	Accessibility string `json:"accessibility"`
	FairScore     int    `json:"fair_score" gorm:"index"`
}
