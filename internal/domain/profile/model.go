package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/bazi-report/internal/domain/birth"
)

// Pillar positions in reading order.
const (
	PillarYear  = "year"
	PillarMonth = "month"
	PillarDay   = "day"
	PillarHour  = "hour"
)

// PillarNames lists the four positions in order.
var PillarNames = [4]string{PillarYear, PillarMonth, PillarDay, PillarHour}

// Request is what the calculation service needs to cast a chart.
type Request struct {
	Date     time.Time
	Hour     int
	Minute   int
	Timezone string
	Gender   birth.Gender
}

// NewRequest builds a calculation request from validated input and a resolved timezone.
func NewRequest(in birth.Input, timezone string) Request {
	return Request{
		Date:     in.Date,
		Hour:     in.Hour,
		Minute:   in.Minute,
		Timezone: timezone,
		Gender:   in.Gender,
	}
}

// Pillar is one stem and branch pair.
type Pillar struct {
	Position      string  `json:"position"`
	Stem          string  `json:"stem"`
	Branch        string  `json:"branch"`
	StemElement   Element `json:"stemElement"`
	BranchElement Element `json:"branchElement"`
}

// NewPillar resolves elements for a stem and branch pair.
func NewPillar(position, stem, branch string) (Pillar, error) {
	stemEl, ok := StemElement(stem)
	if !ok {
		return Pillar{}, fmt.Errorf("unknown heavenly stem %q in %s pillar", stem, position)
	}
	branchEl, ok := BranchElement(branch)
	if !ok {
		return Pillar{}, fmt.Errorf("unknown earthly branch %q in %s pillar", branch, position)
	}
	return Pillar{
		Position:      position,
		Stem:          stem,
		Branch:        branch,
		StemElement:   stemEl,
		BranchElement: branchEl,
	}, nil
}

// String renders the pair, e.g. 癸酉.
func (p Pillar) String() string {
	return p.Stem + p.Branch
}

// LuckCycle is one ten-year luck period.
type LuckCycle struct {
	Pillar    string `json:"pillar"`
	StartYear int    `json:"startYear,omitempty"`
	EndYear   int    `json:"endYear,omitempty"`
	StartAge  int    `json:"startAge,omitempty"`
	EndAge    int    `json:"endAge,omitempty"`
}

// Profile is the immutable result of a chart calculation.
type Profile struct {
	Pillars          [4]Pillar       `json:"pillars"`
	DayMaster        string          `json:"dayMaster"`
	DayMasterElement Element         `json:"dayMasterElement"`
	Zodiac           string          `json:"zodiac"`
	ZodiacAnimal     string          `json:"zodiacAnimal"`
	SolarDate        string          `json:"solarDate,omitempty"`
	LunarDate        string          `json:"lunarDate,omitempty"`
	Distribution     map[Element]int `json:"distribution"`
	Markers          []string        `json:"markers,omitempty"`
	LuckCycles       []LuckCycle     `json:"luckCycles,omitempty"`
	LuckStartAge     int             `json:"luckStartAge,omitempty"`
}

// Details carries the optional descriptive fields returned by the calculation service.
type Details struct {
	SolarDate    string
	LunarDate    string
	Markers      []string
	LuckCycles   []LuckCycle
	LuckStartAge int
}

// New derives day master, zodiac and element distribution from the four pillars.
func New(pillars [4]Pillar, details Details) Profile {
	day := pillars[2]
	zodiac, animal, _ := ZodiacAnimal(pillars[0].Branch)

	dist := make(map[Element]int, len(Elements))
	for _, e := range Elements {
		dist[e] = 0
	}
	for _, p := range pillars {
		dist[p.StemElement]++
		dist[p.BranchElement]++
	}

	return Profile{
		Pillars:          pillars,
		DayMaster:        day.Stem,
		DayMasterElement: day.StemElement,
		Zodiac:           zodiac,
		ZodiacAnimal:     animal,
		SolarDate:        details.SolarDate,
		LunarDate:        details.LunarDate,
		Distribution:     dist,
		Markers:          append([]string(nil), details.Markers...),
		LuckCycles:       append([]LuckCycle(nil), details.LuckCycles...),
		LuckStartAge:     details.LuckStartAge,
	}
}

// PillarsString renders the four pairs separated by spaces, e.g. 癸酉 辛酉 戊寅 癸丑.
func (p Profile) PillarsString() string {
	parts := make([]string, 0, len(p.Pillars))
	for _, pillar := range p.Pillars {
		parts = append(parts, pillar.String())
	}
	return strings.Join(parts, " ")
}

// DayMasterLabel renders the day master with polarity, e.g. 戊 (Yang Earth).
func (p Profile) DayMasterLabel() string {
	polarity := Polarity(p.DayMaster)
	if polarity == "" {
		return p.DayMaster
	}
	return fmt.Sprintf("%s (%s %s)", p.DayMaster, polarity, p.DayMasterElement)
}

// ZodiacLabel renders the zodiac sign with its English name.
func (p Profile) ZodiacLabel() string {
	if p.ZodiacAnimal == "" {
		return p.Zodiac
	}
	return fmt.Sprintf("%s (%s)", p.Zodiac, p.ZodiacAnimal)
}

// Dominant returns the most and least represented elements; ties break by cycle order.
func (p Profile) Dominant() (Element, Element) {
	strongest, weakest := Elements[0], Elements[0]
	for _, e := range Elements[1:] {
		if p.Distribution[e] > p.Distribution[strongest] {
			strongest = e
		}
		if p.Distribution[e] < p.Distribution[weakest] {
			weakest = e
		}
	}
	return strongest, weakest
}

// Summary is the short chart description returned to clients.
type Summary struct {
	Pillars   string `json:"pillars"`
	DayMaster string `json:"dayMaster"`
	Zodiac    string `json:"zodiac"`
}

// Summary returns the headline chart facts.
func (p Profile) Summary() Summary {
	return Summary{
		Pillars:   p.PillarsString(),
		DayMaster: p.DayMasterLabel(),
		Zodiac:    p.ZodiacLabel(),
	}
}
