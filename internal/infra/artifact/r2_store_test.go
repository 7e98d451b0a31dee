package artifact

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/bazi-report/internal/domain/report"
)

func TestSanitizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://acct.r2.cloudflarestorage.com":       "acct.r2.cloudflarestorage.com",
		"http://localhost:9000/bucket":                "localhost:9000",
		"  acct.r2.cloudflarestorage.com/some/path  ": "acct.r2.cloudflarestorage.com",
	}
	for in, want := range tests {
		require.Equal(t, want, sanitizeEndpoint(in), in)
	}
	require.Empty(t, sanitizeEndpoint(""))
}

func TestR2StoreKeys(t *testing.T) {
	store := newTestR2Store(t, "http://127.0.0.1:1", "/reports/")
	require.Equal(t, "reports/"+testID+"/report.pdf", store.key(testID, report.PDFFile))
	require.Equal(t, "reports/"+testID+"/", store.key(testID, ""))

	bare := newTestR2Store(t, "http://127.0.0.1:1", "")
	require.Equal(t, testID+"/report.html", bare.key(testID, report.HTMLFile))
}

func TestR2StoreReserve(t *testing.T) {
	for _, tc := range []struct {
		name    string
		listing string
		wantErr error
	}{
		{name: "free", listing: listResult("")},
		{name: "taken", listing: listResult("<Contents><Key>" + testID + "/report.html</Key><Size>3</Size><ETag>&quot;abc&quot;</ETag><LastModified>2024-01-01T00:00:00.000Z</LastModified></Contents>"), wantErr: report.ErrIDTaken},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := newFakeS3(t, tc.listing)
			store := newTestR2Store(t, srv.URL, "")

			err := store.Reserve(context.Background(), testID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestR2StorePutUploadsObject(t *testing.T) {
	fake := &fakeS3{listing: listResult("")}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	store := newTestR2Store(t, srv.URL, "reports")

	meta, err := store.Put(context.Background(), testID, report.HTMLFile, []byte("<html></html>"), report.ContentTypes[report.HTMLFile])
	require.NoError(t, err)
	require.Equal(t, "reports/"+testID+"/report.html", meta.Key)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, fake.puts, "/bazi/reports/"+testID+"/report.html")
}

func TestR2StoreGetMissing(t *testing.T) {
	srv := newFakeS3(t, listResult(""))
	store := newTestR2Store(t, srv.URL, "")

	_, _, err := store.Get(context.Background(), testID, report.PDFFile)
	require.ErrorIs(t, err, report.ErrArtifactNotFound)

	_, _, err = store.Get(context.Background(), "nope", report.PDFFile)
	require.ErrorIs(t, err, report.ErrArtifactNotFound)
}

type fakeS3 struct {
	mu      sync.Mutex
	listing string
	puts    []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/bazi":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && r.URL.Path == "/bazi" && r.URL.Query().Get("list-type") == "2":
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, f.listing)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/bazi/"):
		_, _ = io.Copy(io.Discard, r.Body)
		f.mu.Lock()
		f.puts = append(f.puts, r.URL.Path)
		f.mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFakeS3(t *testing.T, listing string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(&fakeS3{listing: listing})
	t.Cleanup(srv.Close)
	return srv
}

func listResult(contents string) string {
	count := "0"
	if contents != "" {
		count = "1"
	}
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">` +
		`<Name>bazi</Name><Prefix></Prefix><KeyCount>` + count + `</KeyCount><MaxKeys>1</MaxKeys><IsTruncated>false</IsTruncated>` +
		contents +
		`</ListBucketResult>`
}

func newTestR2Store(t *testing.T, endpoint, prefix string) *R2Store {
	t.Helper()
	store, err := NewR2Store(R2Config{
		Endpoint:  endpoint,
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "bazi",
		Prefix:    prefix,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}
