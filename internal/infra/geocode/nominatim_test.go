package geocode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/bazi-report/internal/domain/geo"
)

func TestSearchParsesFirstHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "Singapore", r.URL.Query().Get("q"))
		require.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		require.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, `[{"lat":"1.2899175","lon":"103.8519072","display_name":"Singapore"}]`)
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "test-agent", time.Second)
	place, err := client.Search(context.Background(), "Singapore")
	require.NoError(t, err)
	require.Equal(t, "Singapore", place.DisplayName)
	require.InDelta(t, 1.2899, place.Coordinates.Lat, 0.001)
	require.InDelta(t, 103.8519, place.Coordinates.Lng, 0.001)
}

func TestSearchErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		noMatch bool
	}{
		{name: "no results", status: http.StatusOK, body: `[]`, noMatch: true},
		{name: "throttled", status: http.StatusTooManyRequests, body: `slow down`},
		{name: "bad payload", status: http.StatusOK, body: `{}`},
		{name: "bad coordinate", status: http.StatusOK, body: `[{"lat":"north","lon":"1"}]`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewNominatimClient(srv.URL, "", time.Second).Search(context.Background(), "x")
			require.Error(t, err)
			require.Equal(t, tc.noMatch, errors.Is(err, geo.ErrNoMatch))
		})
	}
}
