package services

import (
	"context"
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

// newChampionBackends simuliert Europe PMC, Crossref und die
// Landing-Pages hinter einem einzigen Testserver.
func newChampionBackends(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/epmc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultList":{"result":[{
			"title":"EPMC Title",
			"authorString":"",
			"journalTitle":"",
			"isOpenAccess":"Y",
			"hasData":"N",
			"firstPublicationDate":"2023-05-01"
		}]}}`))
	})

	mux.HandleFunc("/crossref/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":{
			"title":["Crossref Title"],
			"container-title":[],
			"author":[{"given":"Jane","family":"Doe"}]
		}}`))
	})

	mux.HandleFunc("/landing/", func(w http.ResponseWriter, r *http.Request) {
		statement := "All sequencing data are available from Zenodo at 10.5281/zenodo.7654321 as FASTA files under CC BY 4.0."
		if strings.HasSuffix(r.URL.Path, "/10.1000/a") {
			statement = "Data are available from Zenodo upon request."
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
			<meta name="citation_journal_title" content="Landing Journal">
		</head><body>
		<h2>Data Availability</h2>
		<p>` + statement + `</p>
		<h2>References</h2>
		</body></html>`))
	})

	return httptest.NewServer(mux)
}

func newChampionService(t *testing.T, srv *httptest.Server) *ChampionService {
	t.Helper()
	cfg := &config.Config{
		OutputDir:             t.TempDir(),
		RateLimitDelaySeconds: 0,
		EuropePMCBaseURL:      srv.URL + "/epmc",
		CrossrefBaseURL:       srv.URL + "/crossref",
		DOIBaseURL:            srv.URL + "/landing",
	}
	return NewChampionService(cfg, zap.NewNop())
}

func TestAssessDOI(t *testing.T) {
	srv := newChampionBackends(t)
	defer srv.Close()

	s := newChampionService(t, srv)
	rec := s.AssessDOI("10.2000/b")

	// Jede Quelle steuert die Felder bei, die vor ihr keine belegt hat.
	assert.Equal(t, "EPMC Title", rec.Meta.Title)
	assert.Equal(t, "Jane Doe", rec.Meta.Authors)
	assert.Equal(t, "Landing Journal", rec.Meta.Journal)
	require.NotNil(t, rec.Meta.IsOpenAccess)
	assert.True(t, *rec.Meta.IsOpenAccess)
	require.NotNil(t, rec.Meta.HasData)
	assert.False(t, *rec.Meta.HasData)

	assert.Equal(t, "Data Availability", rec.Section)
	assert.Equal(t, "All sequencing data are available from Zenodo at 10.5281/zenodo.7654321 as FASTA files under CC BY 4.0.", rec.Statement)
	assert.Equal(t, 4, rec.Score)
}

func TestAssessDOISourcesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newChampionService(t, srv)
	rec := s.AssessDOI("10.1234/one")

	assert.True(t, rec.Meta.Empty())
	assert.Empty(t, rec.Statement)
	assert.Zero(t, rec.Score)
}

func TestChampionRunFile(t *testing.T) {
	srv := newChampionBackends(t)
	defer srv.Close()

	inputPath := filepath.Join(t.TempDir(), "publication_list.txt")
	content := "Second paper 10.2000/b\nFirst paper 10.1000/a\nSecond paper nochmal 10.2000/b\n"
	require.NoError(t, os.WriteFile(inputPath, []byte(content), 0o644))

	s := newChampionService(t, srv)
	res, err := s.RunFile(context.Background(), inputPath)
	require.NoError(t, err)

	// Sortiert und dedupliziert: a vor b, b nur einmal.
	require.Len(t, res.Records, 2)
	assert.Equal(t, "10.1000/a", res.Records[0].DOI)
	assert.Equal(t, "10.2000/b", res.Records[1].DOI)
	assert.Equal(t, 1, res.Records[0].Score)
	assert.Equal(t, 4, res.Records[1].Score)

	require.NotNil(t, res.Champion)
	assert.Equal(t, "10.2000/b", res.Champion.DOI)

	data, err := os.ReadFile(res.OutputCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\uFEFF"))
	assert.Contains(t, string(data), "10.5281/zenodo.7654321")
}

func TestChampionRunFileMissingInput(t *testing.T) {
	srv := newChampionBackends(t)
	defer srv.Close()

	s := newChampionService(t, srv)
	_, err := s.RunFile(context.Background(), filepath.Join(t.TempDir(), "fehlt.txt"))
	assert.Error(t, err)
}

func TestChampionSelection(t *testing.T) {
	records := []models.ChampionRecord{
		{DOI: "10.1000/a", Score: 3},
		{DOI: "10.2000/b", Score: 3},
		{DOI: "10.3000/c", Score: 1},
	}

	// Bei Gleichstand gewinnt der erste Datensatz.
	got := Champion(records)
	require.NotNil(t, got)
	assert.Equal(t, "10.1000/a", got.DOI)

	assert.Nil(t, Champion(nil))
}
