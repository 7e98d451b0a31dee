package profile

// Element is one of the five phases.
type Element string

const (
	Wood  Element = "Wood"
	Fire  Element = "Fire"
	Earth Element = "Earth"
	Metal Element = "Metal"
	Water Element = "Water"
)

// Elements lists the five phases in productive cycle order.
var Elements = []Element{Wood, Fire, Earth, Metal, Water}

// Edge is a directed relation between two elements.
type Edge struct {
	From Element
	To   Element
}

var elementColours = map[Element]string{
	Wood:  "#2e7d32",
	Fire:  "#c62828",
	Earth: "#8d6e63",
	Metal: "#c9a227",
	Water: "#1565c0",
}

var elementNames = map[Element]string{
	Wood:  "木",
	Fire:  "火",
	Earth: "土",
	Metal: "金",
	Water: "水",
}

// Colour returns the display colour for e; unknown elements render grey.
func (e Element) Colour() string {
	if c, ok := elementColours[e]; ok {
		return c
	}
	return "#9e9e9e"
}

// Chinese returns the single character name of the element.
func (e Element) Chinese() string {
	return elementNames[e]
}

// Valid reports whether e is one of the five phases.
func (e Element) Valid() bool {
	_, ok := elementColours[e]
	return ok
}

// Generates returns the element that e feeds in the productive cycle.
func (e Element) Generates() Element {
	for i, el := range Elements {
		if el == e {
			return Elements[(i+1)%len(Elements)]
		}
	}
	return ""
}

// Controls returns the element that e restrains in the destructive cycle.
func (e Element) Controls() Element {
	for i, el := range Elements {
		if el == e {
			return Elements[(i+2)%len(Elements)]
		}
	}
	return ""
}

// ProductiveCycle returns Wood→Fire→Earth→Metal→Water→Wood.
func ProductiveCycle() []Edge {
	edges := make([]Edge, 0, len(Elements))
	for _, e := range Elements {
		edges = append(edges, Edge{From: e, To: e.Generates()})
	}
	return edges
}

// DestructiveCycle returns Wood→Earth, Earth→Water, Water→Fire, Fire→Metal, Metal→Wood.
func DestructiveCycle() []Edge {
	edges := make([]Edge, 0, len(Elements))
	from := Wood
	for range Elements {
		to := from.Controls()
		edges = append(edges, Edge{From: from, To: to})
		from = to
	}
	return edges
}

// ParseElement accepts either the English or the Chinese element name.
func ParseElement(s string) (Element, bool) {
	for e, zh := range elementNames {
		if s == zh || s == string(e) {
			return e, true
		}
	}
	return "", false
}
