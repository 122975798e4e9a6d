package services

import (
	"context"
	"encoding/csv"
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
	"fair-audit/report"
)

const routerArticleXML = `<full-text-retrieval-response xmlns:ce="http://www.elsevier.com/xml/common/dtd" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/">
  <coredata>
    <prism:publicationName>Journal of Applied Testing</prism:publicationName>
    <openaccessArticle>true</openaccessArticle>
    <openaccessType>Full</openaccessType>
    <openaccessUserLicense>http://creativecommons.org/licenses/by/4.0/</openaccessUserLicense>
  </coredata>
  <authors>
    <ce:author>
      <ce:given-name>Jane</ce:given-name>
      <ce:surname>Doe</ce:surname>
      <ce:cross-ref refid="cor1"/>
      <ce:e-address>jane.doe@example.org</ce:e-address>
    </ce:author>
    <ce:author>
      <ce:given-name>John</ce:given-name>
      <ce:surname>Smith</ce:surname>
    </ce:author>
  </authors>
  <originalText>
    <ce:data-availability>
      <ce:section-title>Data availability</ce:section-title>
      <ce:para>Data are deposited at <ce:inter-ref xlink:href="https://data.mendeley.com/datasets/abc123">Mendeley Data</ce:inter-ref>.</ce:para>
      <ce:para>Code at <ce:inter-ref xlink:href="https://github.com/lab/code">GitHub</ce:inter-ref>.</ce:para>
    </ce:data-availability>
  </originalText>
</full-text-retrieval-response>`

// newRouterBackends simuliert Crossref und die Verlags-APIs. Der
// Verlag ergibt sich aus dem DOI-Präfix der Anfrage.
func newRouterBackends(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/crossref/", func(w http.ResponseWriter, r *http.Request) {
		publisher := "University Press"
		switch {
		case strings.Contains(r.URL.Path, "10.1016/"):
			publisher = "Elsevier BV"
		case strings.Contains(r.URL.Path, "10.1186/"):
			publisher = "Springer Science and Business Media LLC"
		case strings.Contains(r.URL.Path, "10.1002/"):
			publisher = "Wiley"
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":{"publisher":"` + publisher + `"}}`))
	})

	mux.HandleFunc("/elsevier/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "gone") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(routerArticleXML))
	})

	mux.HandleFunc("/wiley/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wiley-artikel"))
	})

	return httptest.NewServer(mux)
}

func newRouterService(t *testing.T, srv *httptest.Server) *RouterService {
	t.Helper()
	cfg := &config.Config{
		OutputDir:             t.TempDir(),
		RateLimitDelaySeconds: 0,
		CrossrefBaseURL:       srv.URL + "/crossref",
		ElsevierBaseURL:       srv.URL + "/elsevier",
		WileyBaseURL:          srv.URL + "/wiley",
		ElsevierAPIKey:        "testkey",
		WileyAPIKey:           "testkey",
	}
	return NewRouterService(cfg, nil, zap.NewNop())
}

func TestRouteJSONElsevier(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	reply := newRouterService(t, srv).RouteJSON("10.1016/j.test.2023.01.001")

	assert.Equal(t, "Elsevier BV", reply.Publisher)
	assert.Equal(t, models.RouteStatusElsevier, reply.Status)
	assert.Contains(t, reply.Data, "<full-text-retrieval-response")
	assert.Empty(t, reply.Error)
}

func TestRouteJSONNotElsevier(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	reply := newRouterService(t, srv).RouteJSON("10.1016/j.gone.2023.99.999")

	assert.Equal(t, models.RouteStatusNotElsevier, reply.Status)
	assert.Empty(t, reply.Data)
}

func TestRouteJSONSpringerKeyMissing(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	reply := newRouterService(t, srv).RouteJSON("10.1186/s12345-023-00001-2")

	assert.Equal(t, models.RouteStatusSpringerKeyMissing, reply.Status)
}

func TestRouteJSONWiley(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	reply := newRouterService(t, srv).RouteJSON("10.1002/test.123")

	assert.Equal(t, models.RouteStatusWiley, reply.Status)
	assert.Equal(t, "wiley-artikel", reply.Data)
}

func TestRouteJSONUnsupportedPublisher(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	reply := newRouterService(t, srv).RouteJSON("10.9999/other")

	assert.Equal(t, "University Press", reply.Publisher)
	assert.Equal(t, models.RouteStatusUnsupportedPublisher, reply.Status)
}

func TestRouteXML(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	s := newRouterService(t, srv)
	outputDir := t.TempDir()
	runLog := report.NewRunLog(filepath.Join(outputDir, "run.log"))

	rec, err := s.RouteXML("10.1016/j.test.2023.01.001", outputDir, runLog)
	require.NoError(t, err)

	assert.Equal(t, models.RouteStatusElsevier, rec.Status)
	assert.Equal(t, "Elsevier BV", rec.Publisher)
	assert.Equal(t, "Data are deposited at Mendeley Data. Code at GitHub.", rec.Statement)
	assert.Equal(t, []string{
		"https://data.mendeley.com/datasets/abc123",
		"https://github.com/lab/code",
	}, rec.DataLinks)

	require.NotNil(t, rec.Meta)
	assert.Equal(t, "Journal of Applied Testing", rec.Meta.Journal)
	assert.Equal(t, "Jane Doe, John Smith", rec.Meta.Authors)
	assert.Equal(t, "jane.doe@example.org", rec.Meta.CorrespondingEmail)

	assert.Equal(t, filepath.Join(outputDir, "10.1016_j.test.2023.01.001.xml"), rec.XMLPath)
	data, err := os.ReadFile(rec.XMLPath)
	require.NoError(t, err)
	assert.Equal(t, routerArticleXML, string(data))

	// Alle Felder belegt: das Lauf-Log bleibt leer und wird gar nicht
	// erst angelegt.
	_, err = os.Stat(runLog.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRouteXMLUnsupportedPublisher(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	s := newRouterService(t, srv)
	outputDir := t.TempDir()

	rec, err := s.RouteXML("10.9999/other", outputDir, report.NewRunLog(filepath.Join(outputDir, "run.log")))
	require.NoError(t, err)

	assert.Equal(t, models.RouteStatusUnsupportedPublisher, rec.Status)
	assert.Empty(t, rec.XMLPath)
	assert.Nil(t, rec.Meta)
}

func TestRouterRunFile(t *testing.T) {
	srv := newRouterBackends(t)
	defer srv.Close()

	inputPath := filepath.Join(t.TempDir(), "papers.txt")
	content := "Great elsevier paper 10.1016/j.test.2023.01.001\nObscure paper 10.9999/other\n"
	require.NoError(t, os.WriteFile(inputPath, []byte(content), 0o644))

	s := newRouterService(t, srv)
	res, err := s.RunFile(context.Background(), inputPath)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "Great elsevier paper", res.Records[0].Title)
	assert.Equal(t, models.RouteStatusElsevier, res.Records[0].Status)
	assert.Equal(t, "Obscure paper", res.Records[1].Title)
	assert.Equal(t, models.RouteStatusUnsupportedPublisher, res.Records[1].Status)

	_, err = os.Stat(res.Records[0].XMLPath)
	require.NoError(t, err)

	data, err := os.ReadFile(res.OutputCSV)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Great elsevier paper", rows[1][0])
	assert.Equal(t, "elsevier", rows[1][12])
	assert.Equal(t, "unsupported_publisher", rows[2][12])
}
