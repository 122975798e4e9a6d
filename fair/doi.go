package fair

import (
	"regexp"
	"sort"
	"strings"
)

// doiPattern entspricht der DOI-Syntax 10.<Registrant>/<Suffix>.
var doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:a-z0-9]+`)

// trimDOI entfernt Satzzeichen, die der Pattern-Match am Ende mitnimmt,
// wenn eine DOI in Klammern oder am Satzende steht.
func trimDOI(doi string) string {
	return strings.TrimRight(doi, ").,;:")
}

// FindDOIs liefert alle DOIs im Text in Fundreihenfolge, inklusive Duplikate.
func FindDOIs(text string) []string {
	matches := doiPattern.FindAllString(text, -1)
	dois := make([]string, 0, len(matches))
	for _, m := range matches {
		if d := trimDOI(m); d != "" {
			dois = append(dois, d)
		}
	}
	return dois
}

// UniqueDOIs liefert alle DOIs im Text, dedupliziert unter Beibehaltung
// der Fundreihenfolge.
func UniqueDOIs(text string) []string {
	seen := make(map[string]bool)
	var dois []string
	for _, d := range FindDOIs(text) {
		if !seen[d] {
			seen[d] = true
			dois = append(dois, d)
		}
	}
	return dois
}

// SortedUniqueDOIs liefert alle DOIs im Text dedupliziert und sortiert.
func SortedUniqueDOIs(text string) []string {
	dois := UniqueDOIs(text)
	sort.Strings(dois)
	return dois
}

// StripDOIs entfernt alle DOI-Vorkommen aus dem Text.
func StripDOIs(text string) string {
	return doiPattern.ReplaceAllString(text, "")
}

// ExtractDatasetDOI sucht im Text die erste DOI, die nicht die DOI des
// Papers selbst ist. Der Vergleich ignoriert Groß-/Kleinschreibung, damit
// ein Paper niemals als sein eigener Datensatz zählt.
func ExtractDatasetDOI(text, paperDOI string) string {
	lowerPaper := strings.ToLower(trimDOI(paperDOI))
	for _, d := range FindDOIs(text) {
		if strings.ToLower(d) != lowerPaper {
			return d
		}
	}
	return ""
}
