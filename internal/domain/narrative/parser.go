package narrative

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	atxHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	boldHeading = regexp.MustCompile(`^\*\*(.+?)\*\*:?\s*$`)
	tableRule   = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?\s*$`)
	leadNumber  = regexp.MustCompile(`^(?:section\s+)?(\d{1,2})\b`)
)

// bold-line headings rank below every ATX level.
const boldLevel = 7

type heading struct {
	level    int
	index    int
	numbered bool
}

// ParseSections rebuilds the catalogue from free-form markdown.
//
// Headings (ATX or a line that is entirely bold) are matched to catalogue
// entries by a leading section number that agrees with a keyword, then by
// keyword, then by number alone. The section level is the heading level
// that matches the most distinct entries, the shallowest on a tie. Deeper
// headings stay in the body. A shallower heading counts only when it is
// numbered, so a document title is never taken for a section. An unnumbered
// heading yields to a numbered heading for the same entry. A repeated section
// keeps its first occurrence and later copies fold into the preceding body.
// Entries that never appear, or appear with an empty body, become
// placeholders. The result always has len(Catalogue) entries in order.
func ParseSections(text string) []Section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	headings := scanHeadings(lines)
	sectionLevel := pickSectionLevel(headings)
	claimed := make(map[int]bool, len(Catalogue))
	for _, h := range headings {
		if h.numbered && h.level <= sectionLevel {
			claimed[h.index] = true
		}
	}

	bodies := make(map[int][]string, len(Catalogue))
	seen := make(map[int]bool, len(Catalogue))
	current := -1

	for i, line := range lines {
		if h, ok := headings[i]; ok && !seen[h.index] && acceptHeading(h, sectionLevel, claimed) {
			seen[h.index] = true
			current = h.index
			continue
		}
		if current >= 0 {
			bodies[current] = append(bodies[current], line)
		}
	}

	sections := make([]Section, 0, len(Catalogue))
	for i, def := range Catalogue {
		body := cleanBody(bodies[i])
		section := Section{Number: def.Number, Key: def.Key, Title: def.Title, Body: body}
		if body == "" {
			section.Body = PlaceholderBody
			section.Placeholder = true
		} else if def.Key == LuckCycleKey {
			section.Table = extractTable(body)
		}
		sections = append(sections, section)
	}
	return sections
}

// scanHeadings returns the catalogue headings keyed by line number, skipping
// fenced code.
func scanHeadings(lines []string) map[int]heading {
	headings := make(map[int]heading)
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if h, ok := matchHeading(trimmed); ok {
			headings[i] = h
		}
	}
	return headings
}

func pickSectionLevel(headings map[int]heading) int {
	distinct := make(map[int]map[int]bool)
	for _, h := range headings {
		if distinct[h.level] == nil {
			distinct[h.level] = make(map[int]bool)
		}
		distinct[h.level][h.index] = true
	}
	best, bestCount := 0, 0
	for level, entries := range distinct {
		n := len(entries)
		if n > bestCount || (n == bestCount && level < best) {
			best, bestCount = level, n
		}
	}
	return best
}

func acceptHeading(h heading, sectionLevel int, claimed map[int]bool) bool {
	switch {
	case h.level > sectionLevel:
		return false
	case h.level < sectionLevel:
		return h.numbered
	default:
		return h.numbered || !claimed[h.index]
	}
}

// MissingKeys lists the keys of placeholder sections.
func MissingKeys(sections []Section) []string {
	var missing []string
	for _, s := range sections {
		if s.Placeholder {
			missing = append(missing, s.Key)
		}
	}
	return missing
}

func matchHeading(line string) (heading, bool) {
	var (
		level int
		text  string
	)
	if m := atxHeading.FindStringSubmatch(line); m != nil {
		level, text = len(m[1]), m[2]
	} else if m := boldHeading.FindStringSubmatch(line); m != nil {
		level, text = boldLevel, m[1]
	} else {
		return heading{}, false
	}
	idx, numbered := classifyHeading(text)
	if idx < 0 {
		return heading{}, false
	}
	return heading{level: level, index: idx, numbered: numbered}, true
}

func catalogueIndex(text string) int {
	idx, _ := classifyHeading(text)
	return idx
}

// classifyHeading reports the catalogue entry for text and whether its
// leading number names that same entry.
func classifyHeading(text string) (int, bool) {
	norm := normalizeHeading(text)
	if norm == "" {
		return -1, false
	}

	number := 0
	if m := leadNumber.FindStringSubmatch(norm); m != nil {
		number, _ = strconv.Atoi(m[1])
	}
	if number >= 1 && number <= len(Catalogue) && hasKeyword(norm, Catalogue[number-1]) {
		return number - 1, true
	}
	for i, def := range Catalogue {
		if hasKeyword(norm, def) {
			return i, false
		}
	}
	if number >= 1 && number <= len(Catalogue) {
		return number - 1, true
	}
	return -1, false
}

func hasKeyword(norm string, def SectionDef) bool {
	for _, kw := range def.Keywords {
		if strings.Contains(norm, normalizeHeading(kw)) {
			return true
		}
	}
	return false
}

// normalizeHeading lower-cases and reduces punctuation and symbols to single spaces.
func normalizeHeading(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func cleanBody(lines []string) string {
	start, end := 0, len(lines)
	for start < end && isFiller(lines[start]) {
		start++
	}
	for end > start && isFiller(lines[end-1]) {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func isFiller(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || t == "---" || t == "***" || t == "___"
}

func extractTable(body string) *Table {
	lines := strings.Split(body, "\n")
	for i := 0; i+1 < len(lines); i++ {
		head := strings.TrimSpace(lines[i])
		if !strings.Contains(head, "|") || !tableRule.MatchString(strings.TrimSpace(lines[i+1])) {
			continue
		}
		table := &Table{Header: splitRow(head)}
		for _, line := range lines[i+2:] {
			row := strings.TrimSpace(line)
			if row == "" || !strings.Contains(row, "|") {
				break
			}
			table.Rows = append(table.Rows, splitRow(row))
		}
		return table
	}
	return nil
}

func splitRow(line string) []string {
	line = strings.TrimPrefix(strings.TrimSuffix(line, "|"), "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
