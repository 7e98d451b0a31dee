package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
	"github.com/yanqian/bazi-report/pkg/util"
)

const maxReserveAttempts = 5

// Assembler renders and persists a report.
type Assembler interface {
	Assemble(ctx context.Context, in birth.Input, prof profile.Profile, sections []narrative.Section) (Report, error)
}

// Config controls artifact layout and failure handling.
type Config struct {
	PublicPrefix string
	PDFPolicy    PDFPolicy
}

type assembler struct {
	cfg       Config
	renderer  HTMLRenderer
	converter PDFConverter
	store     ArtifactStore
	logger    *slog.Logger
	now       util.Clock
	newID     func() string
}

// NewAssembler is a wire provider for the report domain.
func NewAssembler(cfg Config, renderer HTMLRenderer, converter PDFConverter, store ArtifactStore, logger *slog.Logger) Assembler {
	if cfg.PublicPrefix == "" {
		cfg.PublicPrefix = "/reports"
	}
	if cfg.PDFPolicy == "" {
		cfg.PDFPolicy = PDFStrict
	}
	return &assembler{
		cfg:       cfg,
		renderer:  renderer,
		converter: converter,
		store:     store,
		logger:    logger.With("component", "report.assembler"),
		now:       util.NowUTC,
		newID:     NewID,
	}
}

func (a *assembler) Assemble(ctx context.Context, in birth.Input, prof profile.Profile, sections []narrative.Section) (Report, error) {
	id, err := a.reserve(ctx)
	if err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeReportRender, "failed to allocate report id", err)
	}
	logger := a.logger.With("report_id", id)
	start := time.Now()
	created := a.now()

	html, err := a.renderer.Render(ctx, View{
		ID:          id,
		Name:        in.DisplayName(),
		Input:       in,
		Profile:     prof,
		Sections:    sections,
		GeneratedAt: created,
	})
	if err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeReportRender, "failed to render report html", err)
	}
	if _, err := a.store.Put(ctx, id, HTMLFile, html, ContentTypes[HTMLFile]); err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeReportRender, "failed to save report html", err)
	}

	rep := Report{
		ID:        id,
		Input:     in,
		Profile:   prof,
		Sections:  sections,
		CreatedAt: created,
		Files:     Files{HTML: a.publicPath(id, HTMLFile)},
	}

	if err := a.savePDF(ctx, id, html); err != nil {
		if a.cfg.PDFPolicy != PDFPartial {
			logger.Error("pdf conversion failed", "error", err)
			return Report{}, apperrors.Wrap(apperrors.CodeReportConversion, "failed to convert report to pdf", err)
		}
		logger.Warn("pdf conversion failed, returning html only", "error", err)
		rep.Degraded = true
		return rep, nil
	}
	rep.Files.PDF = a.publicPath(id, PDFFile)

	logger.Info("report assembled", "html_bytes", len(html), "elapsed_ms", time.Since(start).Milliseconds())
	return rep, nil
}

func (a *assembler) savePDF(ctx context.Context, id string, html []byte) error {
	pdf, err := a.converter.Convert(ctx, html)
	if err != nil {
		return err
	}
	if len(pdf) == 0 {
		return errors.New("converter returned an empty document")
	}
	_, err = a.store.Put(ctx, id, PDFFile, pdf, ContentTypes[PDFFile])
	return err
}

func (a *assembler) reserve(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		id := a.newID()
		err := a.store.Reserve(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrIDTaken) {
			return "", err
		}
		a.logger.Warn("report id collision, drawing a new one", "report_id", id)
	}
	return "", fmt.Errorf("no free report id after %d attempts", maxReserveAttempts)
}

func (a *assembler) publicPath(id, name string) string {
	return strings.TrimRight(a.cfg.PublicPrefix, "/") + "/" + id + "/" + name
}
