package tmdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amaumene/cinematheque/internal/config"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cacheTTL time.Duration, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewClient(&config.Config{
		MetadataURL:      server.URL + "/tmdb",
		ProviderCacheTTL: cacheTTL,
	}, logger, nil)
	require.NoError(t, err)
	return client
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tmdb/search", r.URL.Path)
		assert.Equal(t, "amelie", r.URL.Query().Get("query"))
		assert.Equal(t, "movie", r.URL.Query().Get("media_type"))
		w.Write([]byte(`{"results": [
			{"tmdb_id": 194, "title": "Amélie", "release_date": "2001-04-25", "vote_average": 7.9},
			{"tmdb_id": 195, "title": "Amélie 2"}
		]}`))
	})

	results, err := client.Search(context.Background(), "  amelie ", models.MediaTypeMovie)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 194, results[0].ExternalID)
	require.NotNil(t, results[0].VoteAverage)
	assert.Equal(t, 7.9, *results[0].VoteAverage)
	assert.Nil(t, results[1].ReleaseDate)
	assert.Nil(t, results[1].PosterPath)
}

func TestSearchEmptyQueryMakesNoRequest(t *testing.T) {
	var calls int32
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.Search(context.Background(), "   ", models.MediaTypeMovie)

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSearchProviderError(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "TMDB API key not configured"}`))
	})

	_, err := client.Search(context.Background(), "heat", models.MediaTypeMovie)

	var providerErr *models.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "TMDB API key not configured", providerErr.Message)
}

func TestSearchRateLimited(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "heat", models.MediaTypeMovie)

	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestSearchIsCached(t *testing.T) {
	var calls int32
	client := newTestClient(t, time.Minute, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"results": [{"tmdb_id": 1, "title": "Heat"}]}`))
	})

	first, err := client.Search(context.Background(), "Heat", models.MediaTypeMovie)
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := client.Search(context.Background(), "heat", models.MediaTypeMovie)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "Heat", second[0].Title)

	_, err = client.Search(context.Background(), "heat", models.MediaTypeTVSeries)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDetails(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tmdb/details/194", r.URL.Path)
		assert.Equal(t, "movie", r.URL.Query().Get("media_type"))
		w.Write([]byte(`{
			"tmdb_id": 194,
			"title": "Amélie",
			"original_title": "Le Fabuleux Destin d'Amélie Poulain",
			"release_date": "2001-04-25T00:00:00",
			"runtime": 122,
			"genres": "Comedy",
			"crew": [{"name": "Jean-Pierre Jeunet", "job": "Director"}],
			"cast_list": [{"name": "Audrey Tautou", "character": "Amélie Poulain", "profile_path": "/a.jpg"}]
		}`))
	})

	details, err := client.Details(context.Background(), 194, models.MediaTypeMovie)

	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, "Le Fabuleux Destin d'Amélie Poulain", details.OriginalTitle)
	assert.Equal(t, models.StringList{"Comedy"}, details.Genres)
	require.NotNil(t, details.Runtime)
	assert.Equal(t, 122, *details.Runtime)
	assert.Equal(t, "Audrey Tautou", details.CastList[0].Name)
}

func TestDetailsNull(t *testing.T) {
	client := newTestClient(t, time.Minute, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	details, err := client.Details(context.Background(), 1, models.MediaTypeTVSeries)

	assert.NoError(t, err)
	assert.Nil(t, details)
}

func TestDetailsTimeout(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Details(ctx, 1, models.MediaTypeMovie)

	assert.ErrorIs(t, err, models.ErrTimeout)
}
