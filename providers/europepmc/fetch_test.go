package europepmc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fair-audit/config"
)

func newFetcher(baseURL string) *Fetcher {
	return NewFetcher(&config.Config{EuropePMCBaseURL: baseURL}, zap.NewNop())
}

func TestFetchMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "DOI:10.1234/one", q.Get("query"))
		assert.Equal(t, "core", q.Get("resultType"))
		assert.Equal(t, "json", q.Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultList":{"result":[{
			"id":"37012345",
			"source":"MED",
			"doi":"10.1234/one",
			"title":"A  Study of Things.",
			"authorString":"Doe J, Smith J.",
			"journalTitle":"Test Journal",
			"firstPublicationDate":"2023-05-01",
			"isOpenAccess":"Y",
			"hasData":"N"
		}]}}`))
	}))
	defer srv.Close()

	meta, err := newFetcher(srv.URL).FetchMetadata("10.1234/one")
	require.NoError(t, err)

	assert.Equal(t, "A Study of Things.", meta.Title)
	assert.Equal(t, "Doe J, Smith J.", meta.Authors)
	assert.Equal(t, "Test Journal", meta.Journal)
	require.NotNil(t, meta.IsOpenAccess)
	assert.True(t, *meta.IsOpenAccess)
	require.NotNil(t, meta.HasData)
	assert.False(t, *meta.HasData)
	require.NotNil(t, meta.PublishedDate)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), *meta.PublishedDate)
}

func TestFetchMetadataNoHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultList":{"result":[]}}`))
	}))
	defer srv.Close()

	meta, err := newFetcher(srv.URL).FetchMetadata("10.1234/unknown")
	require.NoError(t, err)

	assert.True(t, meta.Empty())
	assert.Nil(t, meta.IsOpenAccess)
	assert.Nil(t, meta.HasData)
}

func TestFetchMetadataServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newFetcher(srv.URL).FetchMetadata("10.1234/one")
	assert.ErrorContains(t, err, "status: 502")
}

func TestParseEuroDate(t *testing.T) {
	full := parseEuroDate("2023-05-01")
	require.NotNil(t, full)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), *full)

	monthOnly := parseEuroDate("2023-05")
	require.NotNil(t, monthOnly)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), *monthOnly)

	yearOnly := parseEuroDate("2023")
	require.NotNil(t, yearOnly)
	assert.Equal(t, 2023, yearOnly.Year())

	assert.Nil(t, parseEuroDate("gestern"))
	assert.Nil(t, parseEuroDate(""))
}

func TestParseFlag(t *testing.T) {
	assert.Nil(t, parseFlag(""))

	yes := parseFlag("Y")
	require.NotNil(t, yes)
	assert.True(t, *yes)

	lower := parseFlag("y")
	require.NotNil(t, lower)
	assert.True(t, *lower)

	no := parseFlag("N")
	require.NotNil(t, no)
	assert.False(t, *no)
}
