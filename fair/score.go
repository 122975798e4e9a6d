package fair

import "strings"

// Signals bündelt die vier Befunde, aus denen sich der FAIR-Score
// eines Datenlinks ergibt.
type Signals struct {
	Repository  string
	DatasetDOI  string
	FileFormats string
	License     string
}

// Score zählt die belegten Signale. Das Ergebnis liegt immer
// zwischen 0 und 4; jedes Signal zählt genau einmal, unabhängig
// davon wie viele Dateien oder Formate gefunden wurden.
func Score(s Signals) int {
	score := 0
	for _, v := range []string{s.Repository, s.DatasetDOI, s.FileFormats, s.License} {
		if strings.TrimSpace(v) != "" {
			score++
		}
	}
	return score
}
