package models

import (
	"time"
)

// Status eines Bewertungslaufs im Server-Modus.
const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run protokolliert einen kompletten Bewertungslauf über eine Eingabedatei.
type Run struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InputPath string `json:"input_path"`
	Status    string `json:"status" gorm:"index"`
	OutputCSV string `json:"output_csv,omitempty"`
	LogFile   string `json:"log_file,omitempty"`

	TotalLinks   int     `json:"total_links"`
	AverageScore float64 `json:"average_score"`
	Error        string  `json:"error,omitempty" gorm:"type:text"`
}
