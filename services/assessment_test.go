package services

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fair-audit/config"
	"fair-audit/models"
)

// datasetPage ist eine typische Repository-Seite: Dataset-DOI und
// Lizenz im Fliesstext, Datei-Links mit bekannten Endungen.
const datasetPage = `<html><head><title>Example dataset</title></head><body>
<h1>Example dataset</h1>
<p>Processed data for the study are archived as record 10.5281/zenodo.1234567
and released under a CC BY 4.0 license. README.txt describes the columns.</p>
<ul>
<li><a href="/files/counts.tsv">counts.tsv</a></li>
<li><a href="/files/expression_matrix.csv">expression_matrix.csv</a></li>
</ul>
</body></html>`

func newDatasetServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "FAIR Assessment Bot")
		switch r.URL.Path {
		case "/zenodo.org/record/1234":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(datasetPage))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newAssessmentService(t *testing.T) *AssessmentService {
	t.Helper()
	cfg := &config.Config{OutputDir: t.TempDir(), RateLimitDelaySeconds: 0}
	return NewAssessmentService(cfg, nil, zap.NewNop())
}

func TestAssessLink(t *testing.T) {
	srv := newDatasetServer(t)
	defer srv.Close()

	s := newAssessmentService(t)
	row := s.AssessLink(srv.URL+"/zenodo.org/record/1234", "10.1234/paper.1")

	assert.Equal(t, "10.1234/paper.1", row.PaperDOI)
	assert.Equal(t, "Zenodo", row.Repository)
	assert.Equal(t, "10.5281/zenodo.1234567", row.DatasetDOI)
	assert.Equal(t, "counts.tsv, expression_matrix.csv", row.FileName)
	assert.Equal(t, "CSV, TSV", row.FileFormats)
	assert.Equal(t, "CC BY 4.0", row.License)
	assert.Equal(t, models.AccessibilityAccessible, row.Accessibility)
	assert.Equal(t, 4, row.FairScore)
}

func TestAssessLinkErrorStatus(t *testing.T) {
	srv := newDatasetServer(t)
	defer srv.Close()

	s := newAssessmentService(t)
	row := s.AssessLink(srv.URL+"/weg", "10.1234/paper.1")

	assert.Equal(t, "Error: 404 Not Found", row.Accessibility)
	assert.Empty(t, row.Repository)
	assert.Empty(t, row.DatasetDOI)
	assert.Zero(t, row.FairScore)
}

func TestAssessLinkConnectionError(t *testing.T) {
	srv := newDatasetServer(t)
	link := srv.URL + "/zenodo.org/record/1234"
	srv.Close()

	s := newAssessmentService(t)
	row := s.AssessLink(link, "10.1234/paper.1")

	assert.True(t, strings.HasPrefix(row.Accessibility, "Error: "))
	assert.Zero(t, row.FairScore)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return false }

func TestAccessibilityForError(t *testing.T) {
	assert.Equal(t, "Error: Request timeout", accessibilityForError(timeoutError{}))
	assert.Equal(t, "Error: Request timeout", accessibilityForError(context.DeadlineExceeded))
	assert.Equal(t, "Error: kaputt", accessibilityForError(errors.New("kaputt")))

	long := accessibilityForError(errors.New(strings.Repeat("x", 150)))
	assert.Len(t, long, len("Error: ")+100)
}

func TestParseErrorStatus(t *testing.T) {
	assert.Equal(t, "Parse Error: kaputt", parseErrorStatus(errors.New("kaputt")))
}

func TestRunFile(t *testing.T) {
	srv := newDatasetServer(t)
	defer srv.Close()

	inputCSV := filepath.Join(t.TempDir(), "papers.csv")
	content := "doi,title,data_links\n" +
		"10.1234/paper.1,Example Paper," + srv.URL + "/zenodo.org/record/1234\n" +
		"10.1234/paper.2,Broken Paper," + srv.URL + "/weg\n"
	require.NoError(t, os.WriteFile(inputCSV, []byte(content), 0o644))

	s := newAssessmentService(t)
	res, err := s.RunFile(context.Background(), inputCSV, 7)
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Equal(t, uint(7), res.Results[0].RunID)
	assert.Equal(t, "Example Paper", res.Results[0].PaperTitle)
	assert.Equal(t, 4, res.Results[0].FairScore)
	assert.Equal(t, "Error: 404 Not Found", res.Results[1].Accessibility)

	assert.Equal(t, 2, res.Summary.Total)
	assert.InDelta(t, 2.0, res.Summary.AverageScore, 1e-9)
	require.NotNil(t, res.Summary.Best)
	assert.Equal(t, 4, res.Summary.Best.FairScore)

	data, err := os.ReadFile(res.OutputCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "4", records[1][9])
	assert.Equal(t, "Error: 404 Not Found", records[2][8])

	logData, err := os.ReadFile(res.LogFile)
	require.NoError(t, err)
	logText := string(logData)
	assert.Contains(t, logText, "Processing input file: "+inputCSV)
	assert.Contains(t, logText, "Found 2 papers with data links")
	assert.Contains(t, logText, "[1/2] Processing: Example Paper")
	assert.Contains(t, logText, "Results saved to: "+res.OutputCSV)
	assert.Contains(t, logText, "Total datasets assessed: 2")
	assert.Contains(t, logText, "Average FAIR score: 2.00/4")
	assert.Contains(t, logText, "Highest scoring dataset (4/4): ")
}

func TestRunFileMissingInput(t *testing.T) {
	s := newAssessmentService(t)

	_, err := s.RunFile(context.Background(), filepath.Join(t.TempDir(), "fehlt.csv"), 0)
	assert.Error(t, err)
}
