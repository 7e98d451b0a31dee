package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/profile"
)

const systemPrompt = `You are a master BaZi (八字) astrologer with decades of experience in Chinese metaphysics.
Write the text of a personalised BaZi report in Markdown.

Rules:
1. Include ALL 13 sections, in order, each introduced by a level-2 heading of the form "## N. Title".
2. Do not produce HTML or CSS.
3. Base every statement on the chart data provided.
4. Keep each section between 150 and 200 words.
5. If space runs short, shorten sections but never skip one.`

type chartPayload struct {
	Name         string              `json:"name"`
	BirthDate    string              `json:"birthDate"`
	BirthTime    string              `json:"birthTime"`
	Location     string              `json:"location"`
	Gender       string              `json:"gender"`
	Pillars      map[string]string   `json:"pillars"`
	DayMaster    string              `json:"dayMaster"`
	Zodiac       string              `json:"zodiac"`
	Distribution map[string]int      `json:"elementDistribution"`
	Markers      []string            `json:"specialMarkers,omitempty"`
	LuckCycles   []profile.LuckCycle `json:"luckCycles,omitempty"`
	LunarDate    string              `json:"lunarDate,omitempty"`
}

// BuildPrompt returns the system and user prompts for a chart.
func BuildPrompt(prof profile.Profile, in birth.Input) (string, string, error) {
	payload := chartPayload{
		Name:         in.DisplayName(),
		BirthDate:    in.DateString(),
		BirthTime:    in.ClockString(),
		Location:     in.Location,
		Gender:       string(in.Gender),
		Pillars:      make(map[string]string, len(prof.Pillars)),
		DayMaster:    prof.DayMasterLabel(),
		Zodiac:       prof.ZodiacLabel(),
		Distribution: make(map[string]int, len(prof.Distribution)),
		Markers:      prof.Markers,
		LuckCycles:   prof.LuckCycles,
		LunarDate:    prof.LunarDate,
	}
	for _, p := range prof.Pillars {
		payload.Pillars[p.Position] = p.String()
	}
	for el, n := range prof.Distribution {
		payload.Distribution[string(el)] = n
	}
	chart, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode chart: %w", err)
	}

	var b strings.Builder
	b.WriteString("Generate a complete personalised destiny report for the birth chart below.\n\n")
	b.WriteString("## Birth Chart Data\n")
	b.Write(chart)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "The reader is %s, a %s born on %s.\n\n", payload.Name, payload.Zodiac, payload.BirthDate)
	b.WriteString("Write these sections:\n\n")
	for _, def := range Catalogue {
		fmt.Fprintf(&b, "## %d. %s\n", def.Number, def.Title)
		for _, g := range def.Guidance {
			fmt.Fprintf(&b, "- %s\n", g)
		}
		b.WriteString("\n")
	}
	b.WriteString("Write in English with occasional Chinese terms. Return only the Markdown content.")
	return systemPrompt, b.String(), nil
}
