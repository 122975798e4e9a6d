// Package reconcile vereinigt Paper-Metadaten aus mehreren Quellen.
package reconcile

import "fair-audit/models"

// Merge füllt jedes Feld aus der ersten Quelle, die es belegt hat.
// Die Argumentreihenfolge ist die Rangfolge der Quellen; nil-Quellen
// werden übersprungen. Eine einzelne Quelle kommt unverändert zurück.
func Merge(sources ...*models.PaperMeta) models.PaperMeta {
	var merged models.PaperMeta
	for _, src := range sources {
		if src == nil {
			continue
		}
		if merged.Title == "" {
			merged.Title = src.Title
		}
		if merged.Authors == "" {
			merged.Authors = src.Authors
		}
		if merged.Journal == "" {
			merged.Journal = src.Journal
		}
		if merged.IsOpenAccess == nil {
			merged.IsOpenAccess = src.IsOpenAccess
		}
		if merged.HasData == nil {
			merged.HasData = src.HasData
		}
		if merged.PublishedDate == nil {
			merged.PublishedDate = src.PublishedDate
		}
	}
	return merged
}
