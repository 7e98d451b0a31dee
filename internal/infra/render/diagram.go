package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/yanqian/bazi-report/internal/domain/profile"
)

type point struct{ x, y float64 }

var (
	diagramCenter = point{200, 195}
	nodePositions = map[profile.Element]point{
		profile.Wood:  {80, 170},
		profile.Fire:  {200, 55},
		profile.Earth: {320, 170},
		profile.Metal: {265, 315},
		profile.Water: {135, 315},
	}
	nodeGradients = map[profile.Element][2]string{
		profile.Wood:  {"#66bb6a", "#2e7d32"},
		profile.Fire:  {"#ef5350", "#c62828"},
		profile.Earth: {"#bcaaa4", "#8d6e63"},
		profile.Metal: {"#f3d36b", "#c9a227"},
		profile.Water: {"#64b5f6", "#1565c0"},
	}
)

const (
	arcRadius        = 135.0
	arcGap           = 0.32
	nodeRadius       = 40.0
	edgeClearance    = 42.0
	arrowBase        = 16.0
	arrowWidth       = 12.0
	generatingColor  = "#059669"
	controllingColor = "#dc2626"
)

// Diagram draws the five-element cycle. Productive edges are solid arcs around
// the ring, destructive edges are dashed chords. Counts from the chart are
// printed under each element and the day master's node is outlined.
func Diagram(dist map[profile.Element]int, dayMaster profile.Element) string {
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400 410" width="400" height="410" class="element-cycle">` + "\n")
	b.WriteString("  <defs>\n")
	for _, el := range profile.Elements {
		g := nodeGradients[el]
		fmt.Fprintf(&b, `    <radialGradient id="grad-%s" cx="50%%" cy="50%%" r="50%%"><stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/></radialGradient>`+"\n",
			strings.ToLower(string(el)), g[0], g[1])
	}
	b.WriteString("  </defs>\n")
	fmt.Fprintf(&b, `  <circle cx="%.0f" cy="%.0f" r="175" fill="#fef9e7" stroke="#d4a574" stroke-width="2"/>`+"\n", diagramCenter.x, diagramCenter.y)

	for _, edge := range profile.ProductiveCycle() {
		writeArc(&b, nodePositions[edge.From], nodePositions[edge.To])
	}
	for _, edge := range profile.DestructiveCycle() {
		writeChord(&b, nodePositions[edge.From], nodePositions[edge.To])
	}
	for _, el := range profile.Elements {
		writeNode(&b, el, dist[el], el == dayMaster)
	}
	writeLegend(&b)
	b.WriteString("</svg>")
	return b.String()
}

func writeArc(b *strings.Builder, from, to point) {
	start := math.Atan2(from.y-diagramCenter.y, from.x-diagramCenter.x)
	end := math.Atan2(to.y-diagramCenter.y, to.x-diagramCenter.x)
	if end < start {
		end += 2 * math.Pi
	}
	start += arcGap
	end -= arcGap

	s := point{diagramCenter.x + arcRadius*math.Cos(start), diagramCenter.y + arcRadius*math.Sin(start)}
	e := point{diagramCenter.x + arcRadius*math.Cos(end), diagramCenter.y + arcRadius*math.Sin(end)}
	fmt.Fprintf(b, `  <path d="M %.1f %.1f A %.0f %.0f 0 0 1 %.1f %.1f" fill="none" stroke="%s" stroke-width="3"/>`+"\n",
		s.x, s.y, arcRadius, arcRadius, e.x, e.y, generatingColor)
	b.WriteString("  " + arrowHead(e, end+math.Pi/2, generatingColor) + "\n")
}

func writeChord(b *strings.Builder, from, to point) {
	angle := math.Atan2(to.y-from.y, to.x-from.x)
	s := point{from.x + edgeClearance*math.Cos(angle), from.y + edgeClearance*math.Sin(angle)}
	e := point{to.x - edgeClearance*math.Cos(angle), to.y - edgeClearance*math.Sin(angle)}
	fmt.Fprintf(b, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2" stroke-dasharray="5,3"/>`+"\n",
		s.x, s.y, e.x, e.y, controllingColor)
	b.WriteString("  " + arrowHead(e, angle, controllingColor) + "\n")
}

// arrowHead returns a triangle with its tip at tip pointing along angle.
func arrowHead(tip point, angle float64, colour string) string {
	base := point{tip.x - arrowBase*math.Cos(angle), tip.y - arrowBase*math.Sin(angle)}
	half := arrowWidth / 2
	left := point{base.x + half*math.Sin(angle), base.y - half*math.Cos(angle)}
	right := point{base.x - half*math.Sin(angle), base.y + half*math.Cos(angle)}
	return fmt.Sprintf(`<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`,
		tip.x, tip.y, left.x, left.y, right.x, right.y, colour)
}

func writeNode(b *strings.Builder, el profile.Element, count int, dayMaster bool) {
	p := nodePositions[el]
	stroke, width := nodeGradients[el][1], 2
	if dayMaster {
		stroke, width = "#8b4513", 5
	}
	text := "white"
	if el == profile.Metal {
		text = "#374151"
	}
	fmt.Fprintf(b, `  <circle cx="%.0f" cy="%.0f" r="%.0f" fill="url(#grad-%s)" stroke="%s" stroke-width="%d"/>`+"\n",
		p.x, p.y, nodeRadius, strings.ToLower(string(el)), stroke, width)
	fmt.Fprintf(b, `  <text x="%.0f" y="%.0f" text-anchor="middle" fill="%s" font-size="20" font-weight="bold">%s</text>`+"\n",
		p.x, p.y-7, text, el.Chinese())
	fmt.Fprintf(b, `  <text x="%.0f" y="%.0f" text-anchor="middle" fill="%s" font-size="11">%s ×%d</text>`+"\n",
		p.x, p.y+13, text, el, count)
}

func writeLegend(b *strings.Builder) {
	b.WriteString(`  <rect x="85" y="375" width="230" height="26" rx="5" fill="white" stroke="#d4a574" stroke-width="1"/>` + "\n")
	fmt.Fprintf(b, `  <line x1="100" y1="388" x2="125" y2="388" stroke="%s" stroke-width="3"/>`+"\n", generatingColor)
	fmt.Fprintf(b, `  <polygon points="126,384 132,388 126,392" fill="%s"/>`+"\n", generatingColor)
	fmt.Fprintf(b, `  <text x="137" y="392" fill="%s" font-size="9" font-weight="600">Generating</text>`+"\n", generatingColor)
	fmt.Fprintf(b, `  <line x1="210" y1="388" x2="235" y2="388" stroke="%s" stroke-width="2" stroke-dasharray="5,3"/>`+"\n", controllingColor)
	fmt.Fprintf(b, `  <polygon points="236,384 242,388 236,392" fill="%s"/>`+"\n", controllingColor)
	fmt.Fprintf(b, `  <text x="247" y="392" fill="%s" font-size="9" font-weight="600">Controlling</text>`+"\n", controllingColor)
}
