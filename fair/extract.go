package fair

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fair-audit/normalize"
)

// FileExtensions sind die Dateiendungen, die wir als Forschungsdaten
// werten. Die Reihenfolge ist relevant: längere Varianten (xlsx) müssen
// vor ihren Präfixen (xls) stehen, weil der erste Treffer gewinnt.
var FileExtensions = []string{
	"csv", "tsv", "txt", "json", "xml", "fasta", "fastq",
	"bam", "vcf", "hdf5", "xlsx", "xls", "pdf", "zip",
	"tar.gz", "tgz",
}

var extAlternation = strings.Join(FileExtensions, "|")

// filenamePatterns erkennen Dateinamen im rohen HTML: einmal frei im
// Text, einmal als filename=... Attribut oder Header-Fragment.
var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([a-zA-Z0-9_\-]+\.(?:` + extAlternation + `))`),
	regexp.MustCompile(`(?i)filename["']?\s*[:=]\s*["']?([^"'>\s]+\.(?:` + extAlternation + `))["']?`),
}

// formatPatterns erkennen Dateiformate im Kontext von Download-Links
// und Datei-Beschreibungen. Gefangen wird jeweils nur die Endung.
var formatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:file|download|dataset|data)\s+[^<>]{0,50}\.(` + extAlternation + `)\b`),
	regexp.MustCompile(`(?i)\.(` + extAlternation + `)\s+(?:file|download|format)`),
	regexp.MustCompile(`(?i)href=["'][^"']*\.(` + extAlternation + `)["']`),
	regexp.MustCompile(`(?i)data-[^=]*=["'][^"']*\.(` + extAlternation + `)["']`),
}

// licensePatterns ist die geordnete Liste bekannter Lizenz-Phrasen.
// Der erste Treffer gewinnt, deshalb stehen die spezifischen
// CC-Varianten vor dem generischen "Creative Commons".
var licensePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)CC[- ]?BY[- ]?(?:NC)?[- ]?(?:SA)?[- ]?(?:\d\.\d)?`),
	regexp.MustCompile(`(?i)Creative Commons`),
	regexp.MustCompile(`(?i)CC0`),
	regexp.MustCompile(`(?i)MIT License`),
	regexp.MustCompile(`(?i)GPL`),
	regexp.MustCompile(`(?i)Apache License`),
	regexp.MustCompile(`(?i)Public Domain`),
	regexp.MustCompile(`(?i)Open Database License`),
}

var (
	metadataFilePattern = regexp.MustCompile(`(?i)^(license|readme|citation)`)
	extSuffixPattern    = regexp.MustCompile(`(?i)\.([a-z0-9]+)$`)
	contentURLPattern   = regexp.MustCompile(`(?i)/([^/]+\.(?:` + extAlternation + `))$`)
)

// Erwähnungs-Muster für die Bewertung reiner Availability-Statements,
// in denen Repositories und Formate nur namentlich genannt werden.
var (
	repositoryMentionPattern = regexp.MustCompile(`(?i)ENA|European Nucleotide Archive|GEO|Gene Expression Omnibus|Figshare|Zenodo|Dryad|ArrayExpress|EBI|GenBank|PRIDE|PDB|OSF|Dataverse|Mendeley Data|MG-RAST`)
	formatMentionPattern     = regexp.MustCompile(`(?i)FASTA|CSV|JSON|TSV|TXT|HDF5|BAM|VCF|XML|NetCDF|raw data|supplementary data`)
	licenseMentionPattern    = regexp.MustCompile(`(?i)CC[- ]?(?:BY|0)|Creative Commons|open license|MIT license|public domain|available under`)
)

// IsMetadataFile meldet, ob ein Dateiname eine Begleitdatei (LICENSE,
// README, CITATION) bezeichnet, die nicht als Forschungsdatei zählt.
func IsMetadataFile(name string) bool {
	return metadataFilePattern.MatchString(name)
}

// FilenamesFromHTML zieht Daten-Dateinamen aus rohem HTML und liefert
// sie dedupliziert und sortiert zurück.
func FilenamesFromHTML(html string) []string {
	set := make(map[string]bool)
	for _, p := range filenamePatterns {
		for _, m := range p.FindAllStringSubmatch(html, -1) {
			name := m[1]
			if name != "" && !IsMetadataFile(name) {
				set[name] = true
			}
		}
	}
	return sortedKeys(set)
}

// FormatsFromHTML sammelt Dateiformate aus dem HTML-Quelltext und den
// Meta-Tags der Seite. Formate werden in Großschreibung normalisiert.
func FormatsFromHTML(html string, doc *goquery.Document) []string {
	set := make(map[string]bool)
	for _, p := range formatPatterns {
		for _, m := range p.FindAllStringSubmatch(html, -1) {
			if m[1] != "" {
				set[strings.ToUpper(m[1])] = true
			}
		}
	}

	if doc != nil {
		doc.Find("meta").Each(func(_ int, meta *goquery.Selection) {
			content, _ := meta.Attr("content")
			if content == "" {
				return
			}
			lower := strings.ToLower(content)
			for _, ext := range FileExtensions {
				if strings.Contains(lower, "."+ext) {
					set[strings.ToUpper(ext)] = true
				}
			}
		})
	}

	return sortedKeys(set)
}

// FormatsFromFilenames leitet Formate aus den Endungen bereits
// gefundener Dateinamen ab.
func FormatsFromFilenames(names []string) []string {
	set := make(map[string]bool)
	for _, name := range names {
		if m := extSuffixPattern.FindStringSubmatch(name); m != nil {
			set[strings.ToUpper(m[1])] = true
		}
	}
	return sortedKeys(set)
}

// ExtractLicense sucht die erste bekannte Lizenz-Phrase im Text und
// liefert den Treffer mit bereinigtem Whitespace.
func ExtractLicense(text string) string {
	for _, p := range licensePatterns {
		if m := p.FindString(text); m != "" {
			return normalize.Whitespace(m)
		}
	}
	return ""
}

// FilenameFromURL zieht den Dateinamen aus einer Content-URL, sofern
// sie auf eine bekannte Datenendung zeigt.
func FilenameFromURL(url string) string {
	if m := contentURLPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// StatementSignals bewertet ein Availability-Statement ohne die
// verlinkten Seiten zu besuchen: alle vier Signale werden rein
// textuell erkannt. Die DOI des Papers selbst zählt nie als Treffer.
func StatementSignals(statement, paperDOI string) Signals {
	if strings.TrimSpace(statement) == "" {
		return Signals{}
	}

	stmt := statement
	if paperDOI != "" {
		stmt = strings.ReplaceAll(stmt, paperDOI, "")
	}

	var s Signals
	s.DatasetDOI = ExtractDatasetDOI(stmt, paperDOI)

	// Erst Hostnamen-Tabelle (kanonisches Label), dann namentliche Erwähnung.
	if repo := IdentifyRepository(stmt); repo != "" {
		s.Repository = repo
	} else if m := repositoryMentionPattern.FindString(stmt); m != "" {
		s.Repository = m
	}

	formatSet := make(map[string]bool)
	for _, m := range formatMentionPattern.FindAllString(stmt, -1) {
		formatSet[strings.ToUpper(m)] = true
	}
	s.FileFormats = strings.Join(sortedKeys(formatSet), ", ")

	if lic := ExtractLicense(stmt); lic != "" {
		s.License = lic
	} else if m := licenseMentionPattern.FindString(stmt); m != "" {
		s.License = normalize.Whitespace(m)
	}

	return s
}

// SortedUnique dedupliziert eine Liste und sortiert sie; leere
// Einträge fallen weg.
func SortedUnique(items []string) []string {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = true
		}
	}
	return sortedKeys(set)
}

// JoinLimited verbindet höchstens max Einträge mit ", ".
func JoinLimited(items []string, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	return strings.Join(items, ", ")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
