package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
)

func newTestClient() *Client {
	return NewClient(5*time.Second, 0, 2)
}

func TestGetDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Расписание</h1></body></html>"))
	}))
	defer srv.Close()

	doc, err := newTestClient().GetDocument(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Расписание", doc.Find("h1").Text())
}

func TestGetDocumentWindows1251(t *testing.T) {
	t.Parallel()

	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte("<html><body><p>Понедельник</p></body></html>"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write(encoded)
	}))
	defer srv.Close()

	doc, err := newTestClient().GetDocument(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Понедельник", doc.Find("p").Text())
}

func TestGetClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 3, 2)
	_, err := client.Get(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")

	var scraperErr *domerrors.ScraperError
	require.ErrorAs(t, err, &scraperErr)
	assert.Equal(t, http.StatusNotFound, scraperErr.StatusCode)
}

func TestGetServerErrorSurfacesScraperError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), srv.URL)

	var scraperErr *domerrors.ScraperError
	require.ErrorAs(t, err, &scraperErr)
	assert.Equal(t, http.StatusServiceUnavailable, scraperErr.StatusCode)
	assert.True(t, IsNetworkError(scraperErr))
}

func TestIsNetworkError(t *testing.T) {
	t.Parallel()

	assert.False(t, IsNetworkError(nil))
	assert.False(t, IsNetworkError(domerrors.ErrNoTimetable))
	assert.True(t, IsNetworkError(domerrors.NewScraperError("http://x", 0, context.DeadlineExceeded)))
	assert.True(t, IsNetworkError(domerrors.NewScraperError("http://x", 502, nil)))
	assert.False(t, IsNetworkError(domerrors.NewScraperError("http://x", 404, nil)))
}
