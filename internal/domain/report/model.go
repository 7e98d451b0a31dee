package report

import (
	"time"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/profile"
)

// Artifact names inside a report directory.
const (
	HTMLFile = "report.html"
	PDFFile  = "report.pdf"
)

// ContentTypes maps artifact names to their MIME type.
var ContentTypes = map[string]string{
	HTMLFile: "text/html; charset=utf-8",
	PDFFile:  "application/pdf",
}

// Files holds the public locations of the artifacts.
type Files struct {
	HTML string `json:"html"`
	PDF  string `json:"pdf"`
}

// Report is the immutable outcome of a successful assembly.
type Report struct {
	ID        string
	Input     birth.Input
	Profile   profile.Profile
	Sections  []narrative.Section
	Files     Files
	Degraded  bool
	CreatedAt time.Time
}

// View is what the HTML renderer receives.
type View struct {
	ID          string
	Name        string
	Input       birth.Input
	Profile     profile.Profile
	Sections    []narrative.Section
	GeneratedAt time.Time
}

// StoredArtifact describes a persisted file.
type StoredArtifact struct {
	Key         string
	Size        int64
	ContentType string
	ETag        string
}

// PDFPolicy decides what a failed PDF conversion does to the request.
type PDFPolicy string

const (
	// PDFStrict fails the whole request.
	PDFStrict PDFPolicy = "strict"
	// PDFPartial returns the HTML artifact and flags the report degraded.
	PDFPartial PDFPolicy = "partial"
)

// ParsePDFPolicy defaults to strict for unknown values.
func ParsePDFPolicy(raw string) PDFPolicy {
	if PDFPolicy(raw) == PDFPartial {
		return PDFPartial
	}
	return PDFStrict
}
