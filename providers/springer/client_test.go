package springer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fair-audit/config"
)

func TestFetchArticleXMLKeyMissing(t *testing.T) {
	c := NewClient(&config.Config{}, zap.NewNop())

	_, err := c.FetchArticleXML("10.1186/s12345-023-00001-2")
	assert.ErrorIs(t, err, ErrKeyMissing)
}

func TestFetchArticleXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "doi:10.1186/s12345-023-00001-2", q.Get("q"))
		assert.Equal(t, "testkey", q.Get("api_key"))
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<response><records><article/></records></response>`))
	}))
	defer srv.Close()

	c := NewClient(&config.Config{SpringerAPIKey: "testkey", SpringerBaseURL: srv.URL}, zap.NewNop())

	data, err := c.FetchArticleXML("10.1186/s12345-023-00001-2")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<records>")
}

func TestFetchArticleXMLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(&config.Config{SpringerAPIKey: "testkey", SpringerBaseURL: srv.URL}, zap.NewNop())

	_, err := c.FetchArticleXML("10.1186/unbekannt")
	assert.ErrorIs(t, err, ErrNotFound)
}
