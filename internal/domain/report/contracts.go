package report

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrIDTaken is returned by Reserve when an id already exists.
	ErrIDTaken = errors.New("report: id already exists")
	// ErrArtifactNotFound is returned when a requested file does not exist.
	ErrArtifactNotFound = errors.New("report: artifact not found")
)

// HTMLRenderer turns a view into a complete HTML document.
type HTMLRenderer interface {
	Render(ctx context.Context, view View) ([]byte, error)
}

// PDFConverter prints an HTML document to PDF.
type PDFConverter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
}

// ArtifactStore persists report files grouped by id.
type ArtifactStore interface {
	Reserve(ctx context.Context, id string) error
	Put(ctx context.Context, id, name string, data []byte, contentType string) (StoredArtifact, error)
	Get(ctx context.Context, id, name string) (io.ReadCloser, StoredArtifact, error)
}
