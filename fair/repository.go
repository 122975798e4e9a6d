package fair

import "regexp"

// repositoryPattern bindet ein Repository-Label an sein Hostnamen-Muster.
type repositoryPattern struct {
	label   string
	pattern *regexp.Regexp
}

// repositoryPatterns ist die geordnete Tabelle bekannter Daten-Repositories.
// Der erste Treffer gewinnt; die Muster sind untereinander disjunkt.
var repositoryPatterns = []repositoryPattern{
	{"Mendeley Data", regexp.MustCompile(`(?i)mendeley\.com|data\.mendeley`)},
	{"Zenodo", regexp.MustCompile(`(?i)zenodo\.org`)},
	{"Figshare", regexp.MustCompile(`(?i)figshare\.com`)},
	{"Dryad", regexp.MustCompile(`(?i)datadryad\.org`)},
	{"GitHub", regexp.MustCompile(`(?i)github\.com`)},
	{"ENA", regexp.MustCompile(`(?i)ebi\.ac\.uk/ena|www\.ebi\.ac\.uk/ena`)},
	{"GenBank", regexp.MustCompile(`(?i)ncbi\.nlm\.nih\.gov/genbank`)},
	{"GEO", regexp.MustCompile(`(?i)ncbi\.nlm\.nih\.gov/geo`)},
	{"ArrayExpress", regexp.MustCompile(`(?i)ebi\.ac\.uk/arrayexpress`)},
	{"PRIDE", regexp.MustCompile(`(?i)ebi\.ac\.uk/pride`)},
	{"OSF", regexp.MustCompile(`(?i)osf\.io`)},
}

// IdentifyRepository ordnet einer URL das erste passende Repository-Label
// zu. Reiner String-Match ohne Netzwerkzugriff; unbekannte Hosts ergeben
// einen leeren String.
func IdentifyRepository(url string) string {
	for _, rp := range repositoryPatterns {
		if rp.pattern.MatchString(url) {
			return rp.label
		}
	}
	return ""
}
