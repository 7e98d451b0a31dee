package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	"github.com/yanqian/bazi-report/internal/domain/report"
)

// TemplateName is the entry template inside the template set.
const TemplateName = "report.html"

//go:embed templates/*.html
var embedded embed.FS

var pillarLabels = map[string]string{
	profile.PillarYear:  "Year 年柱",
	profile.PillarMonth: "Month 月柱",
	profile.PillarDay:   "Day 日柱",
	profile.PillarHour:  "Hour 时柱",
}

var (
	sectionPolicyOnce sync.Once
	sectionPolicy     *bluemonday.Policy
)

// HTMLRenderer renders report views through a pongo2 template.
type HTMLRenderer struct {
	tpl    *pongo2.Template
	logger *slog.Logger
}

var _ report.HTMLRenderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer loads the report template. A non-empty dir takes precedence
// over the embedded template so layouts can be customised without a rebuild.
func NewHTMLRenderer(dir string, logger *slog.Logger) (*HTMLRenderer, error) {
	var loaders []pongo2.TemplateLoader
	if strings.TrimSpace(dir) != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return nil, fmt.Errorf("render: template dir: %w", err)
		}
		loaders = append(loaders, loader)
	}
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: embedded templates: %w", err)
	}
	loaders = append(loaders, pongo2.NewFSLoader(sub))

	tpl, err := pongo2.NewSet("report", loaders...).FromFile(TemplateName)
	if err != nil {
		return nil, fmt.Errorf("render: load %s: %w", TemplateName, err)
	}
	return &HTMLRenderer{
		tpl:    tpl,
		logger: logger.With("component", "render.html"),
	}, nil
}

// Render produces a standalone HTML document for view.
func (r *HTMLRenderer) Render(ctx context.Context, view report.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.tpl.ExecuteWriter(viewContext(view), &buf); err != nil {
		return nil, fmt.Errorf("render: execute template: %w", err)
	}
	r.logger.Debug("report rendered", "report_id", view.ID, "bytes", buf.Len())
	return buf.Bytes(), nil
}

func viewContext(view report.View) pongo2.Context {
	prof := view.Profile

	pillars := make([]pongo2.Context, 0, len(prof.Pillars))
	for _, p := range prof.Pillars {
		pillars = append(pillars, pongo2.Context{
			"label":          pillarLabels[p.Position],
			"stem":           p.Stem,
			"branch":         p.Branch,
			"stem_element":   elementLabel(p.StemElement),
			"branch_element": elementLabel(p.BranchElement),
			"stem_colour":    p.StemElement.Colour(),
			"branch_colour":  p.BranchElement.Colour(),
		})
	}

	distribution := make([]pongo2.Context, 0, len(profile.Elements))
	for _, el := range profile.Elements {
		distribution = append(distribution, pongo2.Context{
			"name":    string(el),
			"chinese": el.Chinese(),
			"count":   prof.Distribution[el],
			"colour":  el.Colour(),
		})
	}

	sections := make([]pongo2.Context, 0, len(view.Sections))
	for _, s := range view.Sections {
		sections = append(sections, pongo2.Context{
			"number":      s.Number,
			"key":         s.Key,
			"title":       s.Title,
			"html":        SectionHTML(s),
			"placeholder": s.Placeholder,
		})
	}

	name := view.Name
	if name == "" {
		name = view.Input.DisplayName()
	}

	return pongo2.Context{
		"report_id":    view.ID,
		"name":         name,
		"birth_date":   view.Input.DateString(),
		"birth_time":   view.Input.ClockString(),
		"location":     view.Input.Location,
		"gender":       genderLabel(view.Input.Gender),
		"solar_date":   prof.SolarDate,
		"lunar_date":   prof.LunarDate,
		"pillars":      pillars,
		"day_master":   prof.DayMasterLabel(),
		"zodiac":       prof.ZodiacLabel(),
		"diagram":      Diagram(prof.Distribution, prof.DayMasterElement),
		"distribution": distribution,
		"markers":      prof.Markers,
		"sections":     sections,
		"generated_at": view.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		"year":         view.GeneratedAt.Year(),
	}
}

func genderLabel(g birth.Gender) string {
	switch g {
	case birth.GenderMale:
		return "Male"
	case birth.GenderFemale:
		return "Female"
	}
	return string(g)
}

func elementLabel(el profile.Element) string {
	return el.Chinese() + " " + string(el)
}

// SectionHTML converts a section body from markdown and strips anything the
// narrative provider should not be able to inject.
func SectionHTML(s narrative.Section) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	raw := markdown.ToHTML([]byte(s.Body), p, renderer)
	return strings.TrimSpace(string(sanitizer().SanitizeBytes(raw)))
}

func sanitizer() *bluemonday.Policy {
	sectionPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("align").OnElements("th", "td")
		sectionPolicy = policy
	})
	return sectionPolicy
}
