package fair

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyRepository(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://data.mendeley.com/datasets/abc123", "Mendeley Data"},
		{"https://zenodo.org/record/1234567", "Zenodo"},
		{"https://figshare.com/articles/dataset/x/123", "Figshare"},
		{"https://datadryad.org/stash/dataset/doi:10.5061/dryad.abc", "Dryad"},
		{"https://github.com/lab/analysis-code", "GitHub"},
		{"https://www.ebi.ac.uk/ena/browser/view/PRJEB12345", "ENA"},
		{"https://www.ncbi.nlm.nih.gov/geo/query/acc.cgi?acc=GSE1", "GEO"},
		{"https://osf.io/abcde/", "OSF"},
		{"https://example.org/data", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, IdentifyRepository(c.url), c.url)
	}
}

func TestIdentifyRepositoryFirstMatchWins(t *testing.T) {
	// Mendeley steht vor Zenodo in der Tabelle.
	got := IdentifyRepository("https://data.mendeley.com/?mirror=zenodo.org")

	assert.Equal(t, "Mendeley Data", got)
}
