package providers

import "fair-audit/models"

// MetadataSource ist das Interface, das jede Metadaten-Quelle (z.B. Europe PMC, Crossref) implementieren muss.
type MetadataSource interface {
	// FetchMetadata holt die bibliografischen Metadaten zu einer DOI als standardisiertes Modell.
	FetchMetadata(doi string) (*models.PaperMeta, error)

	// Name gibt den eindeutigen Namen der Quelle zurück (z.B. "europepmc").
	Name() string
}
