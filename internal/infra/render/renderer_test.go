package render

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	"github.com/yanqian/bazi-report/internal/domain/report"
)

func TestRenderIncludesChartAndSections(t *testing.T) {
	r, err := NewHTMLRenderer("", newTestLogger())
	require.NoError(t, err)

	out, err := r.Render(context.Background(), testView(t))
	require.NoError(t, err)
	html := string(out)

	require.Contains(t, html, "<!DOCTYPE html>")
	require.Contains(t, html, "Prepared for Singapore")
	require.Contains(t, html, "1993-09-28")
	require.Contains(t, html, "02:22")
	for _, ch := range []string{"癸", "酉", "辛", "戊", "寅", "丑"} {
		require.Contains(t, html, ch)
	}
	require.Contains(t, html, "戊 (Yang Earth)")
	require.Contains(t, html, "<svg")
	for _, def := range narrative.Catalogue {
		require.Contains(t, html, strings.ReplaceAll(def.Title, "&", "&amp;"))
		require.Contains(t, html, `id="section-`+def.Key+`"`)
	}
	require.Contains(t, html, "<strong>steady</strong>")
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, `class="placeholder"`)
}

func TestRenderEscapesInputFields(t *testing.T) {
	r, err := NewHTMLRenderer("", newTestLogger())
	require.NoError(t, err)

	view := testView(t)
	view.Name = `<img src=x onerror=alert(1)>`
	out, err := r.Render(context.Background(), view)
	require.NoError(t, err)
	require.NotContains(t, string(out), "<img src=x")
}

func TestRenderPrefersTemplateDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateName), []byte("custom {{ name }} {{ sections|length }}"), 0o644))

	r, err := NewHTMLRenderer(dir, newTestLogger())
	require.NoError(t, err)

	out, err := r.Render(context.Background(), testView(t))
	require.NoError(t, err)
	require.Equal(t, "custom Singapore 13", string(out))
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	r, err := NewHTMLRenderer("", newTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, testView(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSectionHTMLSanitises(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		contains []string
		excludes []string
	}{
		{
			name:     "markdown",
			body:     "A **bold** claim\n\n- one\n- two",
			contains: []string{"<strong>bold</strong>", "<li>one</li>"},
		},
		{
			name:     "script",
			body:     "hello <script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script", "alert(1)</script>"},
		},
		{
			name:     "handler attribute",
			body:     `<a href="https://example.com" onclick="steal()">link</a>`,
			contains: []string{"https://example.com"},
			excludes: []string{"onclick"},
		},
		{
			name:     "table",
			body:     "| Pillar | Years |\n|---|---|\n| 壬戌 | 1999-2008 |",
			contains: []string{"<table>", "<td>壬戌</td>"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SectionHTML(narrative.Section{Body: tc.body})
			for _, want := range tc.contains {
				require.Contains(t, got, want)
			}
			for _, bad := range tc.excludes {
				require.NotContains(t, got, bad)
			}
		})
	}
}

func TestDiagramDrawsBothCycles(t *testing.T) {
	dist := map[profile.Element]int{profile.Wood: 1, profile.Fire: 0, profile.Earth: 2, profile.Metal: 2, profile.Water: 3}
	svg := Diagram(dist, profile.Earth)

	require.True(t, strings.HasPrefix(svg, "<svg"))
	require.True(t, strings.HasSuffix(svg, "</svg>"))
	require.Equal(t, 5, strings.Count(svg, `<path d="M`))
	// five chords plus the legend sample
	require.Equal(t, 6, strings.Count(svg, `stroke-dasharray="5,3"`))
	// one arrowhead per edge plus two in the legend
	require.Equal(t, 12, strings.Count(svg, "<polygon"))
	for _, el := range profile.Elements {
		require.Contains(t, svg, el.Chinese())
	}
	require.Contains(t, svg, "Water ×3")
	require.Contains(t, svg, "Fire ×0")
	require.Equal(t, 1, strings.Count(svg, `stroke-width="5"`))
	require.Contains(t, svg, `<circle cx="320" cy="170" r="40" fill="url(#grad-earth)" stroke="#8b4513" stroke-width="5"/>`)
}

func TestArrowHeadPointsAlongAngle(t *testing.T) {
	got := arrowHead(point{100, 100}, 0, "#000")
	require.Equal(t, `<polygon points="100.0,100.0 84.0,94.0 84.0,106.0" fill="#000"/>`, got)
}

func testView(t *testing.T) report.View {
	t.Helper()

	pairs := [4][2]string{{"癸", "酉"}, {"辛", "酉"}, {"戊", "寅"}, {"癸", "丑"}}
	var pillars [4]profile.Pillar
	for i, pair := range pairs {
		p, err := profile.NewPillar(profile.PillarNames[i], pair[0], pair[1])
		require.NoError(t, err)
		pillars[i] = p
	}
	prof := profile.New(pillars, profile.Details{Markers: []string{"天乙贵人"}})

	sections := make([]narrative.Section, 0, len(narrative.Catalogue))
	for _, def := range narrative.Catalogue {
		s := narrative.Section{Number: def.Number, Key: def.Key, Title: def.Title, Body: "A **steady** path. <script>alert(1)</script>"}
		if def.Key == "celebrities" {
			s.Body = narrative.PlaceholderBody
			s.Placeholder = true
		}
		sections = append(sections, s)
	}

	return report.View{
		ID: "0123456789abcdef0123456789abcdef",
		Input: birth.Input{
			Date:     time.Date(1993, 9, 28, 0, 0, 0, 0, time.UTC),
			Hour:     2,
			Minute:   22,
			Location: "Singapore",
			Gender:   birth.GenderMale,
		},
		Profile:     prof,
		Sections:    sections,
		GeneratedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
