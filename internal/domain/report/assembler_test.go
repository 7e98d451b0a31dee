package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
	"github.com/yanqian/bazi-report/pkg/util"
)

func TestAssembleWritesBothArtifacts(t *testing.T) {
	store := newMemStore()
	renderer := &stubRenderer{}
	a := newTestAssembler(Config{PublicPrefix: "/reports/"}, renderer, stubConverter{pdf: []byte("%PDF-1.4")}, store)

	rep, err := a.Assemble(context.Background(), testInput(), profile.Profile{}, testSections())
	require.NoError(t, err)
	require.True(t, ValidID(rep.ID))
	require.False(t, rep.Degraded)
	require.Equal(t, "/reports/"+rep.ID+"/report.html", rep.Files.HTML)
	require.Equal(t, "/reports/"+rep.ID+"/report.pdf", rep.Files.PDF)
	require.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), rep.CreatedAt)

	require.Equal(t, []byte("<html>Li</html>"), store.files[rep.ID+"/"+HTMLFile])
	require.Equal(t, []byte("%PDF-1.4"), store.files[rep.ID+"/"+PDFFile])
	require.Equal(t, rep.ID, renderer.lastView.ID)
	require.Len(t, renderer.lastView.Sections, 1)
}

func TestAssemblePDFFailurePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy PDFPolicy
	}{
		{name: "strict", policy: PDFStrict},
		{name: "partial", policy: PDFPartial},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store := newMemStore()
			a := newTestAssembler(Config{PDFPolicy: tc.policy}, &stubRenderer{}, stubConverter{err: errors.New("chrome crashed")}, store)

			rep, err := a.Assemble(context.Background(), testInput(), profile.Profile{}, testSections())
			if tc.policy == PDFStrict {
				require.Error(t, err)
				require.True(t, apperrors.IsCode(err, apperrors.CodeReportConversion))
				require.Empty(t, rep.ID)
				return
			}
			require.NoError(t, err)
			require.True(t, rep.Degraded)
			require.NotEmpty(t, rep.Files.HTML)
			require.Empty(t, rep.Files.PDF)
			_, hasPDF := store.files[rep.ID+"/"+PDFFile]
			require.False(t, hasPDF)
		})
	}
}

func TestAssembleEmptyPDFIsAFailure(t *testing.T) {
	a := newTestAssembler(Config{}, &stubRenderer{}, stubConverter{}, newMemStore())
	_, err := a.Assemble(context.Background(), testInput(), profile.Profile{}, testSections())
	require.True(t, apperrors.IsCode(err, apperrors.CodeReportConversion))
}

func TestAssembleRenderFailure(t *testing.T) {
	a := newTestAssembler(Config{}, &stubRenderer{err: errors.New("template: bad")}, stubConverter{pdf: []byte("x")}, newMemStore())
	_, err := a.Assemble(context.Background(), testInput(), profile.Profile{}, testSections())
	require.True(t, apperrors.IsCode(err, apperrors.CodeReportRender))
}

func TestAssembleRetriesOnIDCollision(t *testing.T) {
	store := newMemStore()
	store.reserved["taken"] = true
	ids := []string{"taken", "taken", "fresh"}
	a := newTestAssembler(Config{}, &stubRenderer{}, stubConverter{pdf: []byte("x")}, store)
	a.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	rep, err := a.Assemble(context.Background(), testInput(), profile.Profile{}, testSections())
	require.NoError(t, err)
	require.Equal(t, "fresh", rep.ID)
}

func TestAssembleGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newMemStore()
	store.reserved["taken"] = true
	a := newTestAssembler(Config{}, &stubRenderer{}, stubConverter{pdf: []byte("x")}, store)
	a.newID = func() string { return "taken" }

	_, err := a.Assemble(context.Background(), testInput(), profile.Profile{}, testSections())
	require.Error(t, err)
}

func TestNewIDShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.True(t, ValidID(id), id)
		require.False(t, seen[id])
		seen[id] = true
	}
	require.False(t, ValidID("../etc/passwd"))
	require.True(t, ValidFile(PDFFile))
	require.False(t, ValidFile("data.json"))
}

func TestParsePDFPolicy(t *testing.T) {
	require.Equal(t, PDFPartial, ParsePDFPolicy("partial"))
	require.Equal(t, PDFStrict, ParsePDFPolicy("strict"))
	require.Equal(t, PDFStrict, ParsePDFPolicy(""))
}

func newTestAssembler(cfg Config, r HTMLRenderer, c PDFConverter, s ArtifactStore) *assembler {
	a := NewAssembler(cfg, r, c, s, slog.New(slog.NewTextHandler(io.Discard, nil))).(*assembler)
	a.now = util.FixedClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	return a
}

func testInput() birth.Input {
	return birth.Input{
		Date:     time.Date(1993, time.September, 28, 0, 0, 0, 0, time.UTC),
		Location: "Singapore",
		Gender:   birth.GenderMale,
		Name:     "Li",
	}
}

func testSections() []narrative.Section {
	return []narrative.Section{{Number: 1, Key: "life_paths", Title: "Three Life Path Simulations", Body: "text"}}
}

type stubRenderer struct {
	err      error
	lastView View
}

func (s *stubRenderer) Render(_ context.Context, view View) ([]byte, error) {
	s.lastView = view
	if s.err != nil {
		return nil, s.err
	}
	return []byte("<html>" + view.Name + "</html>"), nil
}

type stubConverter struct {
	pdf []byte
	err error
}

func (s stubConverter) Convert(context.Context, []byte) ([]byte, error) {
	return s.pdf, s.err
}

type memStore struct {
	mu       sync.Mutex
	reserved map[string]bool
	files    map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{reserved: make(map[string]bool), files: make(map[string][]byte)}
}

func (m *memStore) Reserve(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reserved[id] {
		return ErrIDTaken
	}
	m.reserved[id] = true
	return nil
}

func (m *memStore) Put(_ context.Context, id, name string, data []byte, contentType string) (StoredArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := id + "/" + name
	m.files[key] = data
	return StoredArtifact{Key: key, Size: int64(len(data)), ContentType: contentType}, nil
}

func (m *memStore) Get(_ context.Context, id, name string) (io.ReadCloser, StoredArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[id+"/"+name]
	if !ok {
		return nil, StoredArtifact{}, ErrArtifactNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), StoredArtifact{Key: id + "/" + name, Size: int64(len(data))}, nil
}
