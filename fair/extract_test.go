package fair

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenamesFromHTML(t *testing.T) {
	html := `<html><body>
		<a href="/download/expression_matrix.csv">expression_matrix.csv</a>
		<a href="/download/annotations.json">annotations.json</a>
		<span filename="counts.tsv"></span>
		<a href="/download/README.txt">README.txt</a>
	</body></html>`

	names := FilenamesFromHTML(html)

	assert.Equal(t, []string{"annotations.json", "counts.tsv", "expression_matrix.csv"}, names)
}

func TestFilenamesFromHTMLFiltersMetadataFiles(t *testing.T) {
	html := `LICENSE.txt readme_v2.csv CITATION.txt data_final.csv`

	names := FilenamesFromHTML(html)

	assert.Equal(t, []string{"data_final.csv"}, names)
}

func TestIsMetadataFile(t *testing.T) {
	assert.True(t, IsMetadataFile("README.md"))
	assert.True(t, IsMetadataFile("license.txt"))
	assert.True(t, IsMetadataFile("CITATION.cff"))
	assert.False(t, IsMetadataFile("results.csv"))
}

func TestFormatsFromHTML(t *testing.T) {
	html := `<html><head>
		<meta name="citation_pdf_url" content="https://example.org/article.pdf">
	</head><body>
		<a href="/files/data.csv">Download</a>
		<p>supplementary .json format</p>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	formats := FormatsFromHTML(html, doc)

	assert.Equal(t, []string{"CSV", "JSON", "PDF"}, formats)
}

func TestFormatsFromHTMLWithoutDocument(t *testing.T) {
	formats := FormatsFromHTML(`<a href="/f/x.vcf">x</a>`, nil)

	assert.Equal(t, []string{"VCF"}, formats)
}

func TestFormatsFromFilenames(t *testing.T) {
	formats := FormatsFromFilenames([]string{"a.csv", "b.CSV", "archive.tar.gz"})

	// Nur der letzte Namensteil zählt als Endung.
	assert.Equal(t, []string{"CSV", "GZ"}, formats)
}

func TestExtractLicense(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Data are available under a CC BY 4.0 license.", "CC BY 4.0"},
		{"Released under Creative Commons terms.", "Creative Commons"},
		{"Code is MIT License, data is public.", "MIT License"},
		{"no license statement", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ExtractLicense(c.text), c.text)
	}
}

func TestExtractLicensePatternOrder(t *testing.T) {
	// Die Musterliste bestimmt den Gewinner, nicht die Textposition:
	// CC0 steht hinter "Creative Commons".
	got := ExtractLicense("CC0 dedication, see Creative Commons for details")

	assert.Equal(t, "Creative Commons", got)
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "matrix.csv", FilenameFromURL("https://store.example.org/files/matrix.csv"))
	assert.Empty(t, FilenameFromURL("https://example.org/landing.html"))
	assert.Empty(t, FilenameFromURL("https://example.org/files/"))
}

func TestStatementSignalsAllFour(t *testing.T) {
	statement := "Sequencing data were deposited at the European Nucleotide Archive " +
		"(https://www.ebi.ac.uk/ena/browser/view/PRJEB12345). Processed CSV and FASTA " +
		"files are released under CC BY 4.0 at 10.5281/zenodo.1234567."

	s := StatementSignals(statement, "10.1016/j.cell.2020.01.001")

	assert.Equal(t, "ENA", s.Repository)
	assert.Equal(t, "10.5281/zenodo.1234567", s.DatasetDOI)
	assert.Equal(t, "CSV, FASTA", s.FileFormats)
	assert.Equal(t, "CC BY 4.0", s.License)
	assert.Equal(t, 4, Score(s))
}

func TestStatementSignalsMentionFallbacks(t *testing.T) {
	statement := "Raw data were deposited in GEO under accession GSE12345 " +
		"and are available under an open license."

	s := StatementSignals(statement, "10.1/x")

	// Kein Hostname im Text, also greift die namentliche Erwähnung.
	assert.Equal(t, "GEO", s.Repository)
	assert.Empty(t, s.DatasetDOI)
	assert.Equal(t, "RAW DATA", s.FileFormats)
	assert.Equal(t, "available under", s.License)
	assert.Equal(t, 3, Score(s))
}

func TestStatementSignalsIgnoresPaperDOI(t *testing.T) {
	s := StatementSignals("Data for 10.1016/j.cell.2020.01.001 upon request.", "10.1016/j.cell.2020.01.001")

	assert.Empty(t, s.DatasetDOI)
	assert.Equal(t, 0, Score(s))
}

func TestStatementSignalsEmptyStatement(t *testing.T) {
	assert.Equal(t, Signals{}, StatementSignals("   ", "10.1/x"))
}

func TestScoreCountsNonEmptySignals(t *testing.T) {
	assert.Equal(t, 0, Score(Signals{}))
	assert.Equal(t, 0, Score(Signals{License: "  "}))
	assert.Equal(t, 2, Score(Signals{Repository: "Zenodo", DatasetDOI: "10.5281/zenodo.1"}))
	assert.Equal(t, 4, Score(Signals{
		Repository:  "Zenodo",
		DatasetDOI:  "10.5281/zenodo.1",
		FileFormats: "CSV",
		License:     "CC BY",
	}))
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"CSV", "XML"}, SortedUnique([]string{"XML", "CSV", "XML", ""}))
	assert.Empty(t, SortedUnique(nil))
}

func TestJoinLimited(t *testing.T) {
	assert.Equal(t, "a, b", JoinLimited([]string{"a", "b", "c"}, 2))
	assert.Equal(t, "a", JoinLimited([]string{"a"}, 10))
	assert.Empty(t, JoinLimited(nil, 3))
}
