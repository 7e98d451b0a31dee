package calc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yanqian/bazi-report/internal/domain/profile"
)

type stemField struct {
	Stem string `json:"天干"`
}

type branchField struct {
	Branch string `json:"地支"`
}

type pillarData struct {
	Stem   *stemField   `json:"天干"`
	Branch *branchField `json:"地支"`
}

type luckEntry struct {
	Pillar    string `json:"干支"`
	StartYear int    `json:"开始年份"`
	EndYear   int    `json:"结束"`
	StartAge  int    `json:"开始年龄"`
	EndAge    int    `json:"结束年龄"`
}

type luckData struct {
	StartAge int         `json:"起运年龄"`
	Cycles   []luckEntry `json:"大运"`
}

type chartData struct {
	Chart     string                     `json:"八字"`
	DayMaster string                     `json:"日主"`
	Zodiac    string                     `json:"生肖"`
	Solar     string                     `json:"阳历"`
	Lunar     string                     `json:"农历"`
	Year      *pillarData                `json:"年柱"`
	Month     *pillarData                `json:"月柱"`
	Day       *pillarData                `json:"日柱"`
	Hour      *pillarData                `json:"时柱"`
	Markers   map[string]json.RawMessage `json:"神煞"`
	Luck      *luckData                  `json:"大运"`
}

var markerOrder = []string{"年柱", "月柱", "日柱", "时柱"}

func (d chartData) toProfile() (profile.Profile, error) {
	pairs, err := d.pairs()
	if err != nil {
		return profile.Profile{}, err
	}

	var pillars [4]profile.Pillar
	for i, pair := range pairs {
		p, err := profile.NewPillar(profile.PillarNames[i], pair[0], pair[1])
		if err != nil {
			return profile.Profile{}, err
		}
		pillars[i] = p
	}

	details := profile.Details{
		SolarDate: d.Solar,
		LunarDate: d.Lunar,
		Markers:   d.markers(),
	}
	if d.Luck != nil {
		details.LuckStartAge = d.Luck.StartAge
		for _, c := range d.Luck.Cycles {
			details.LuckCycles = append(details.LuckCycles, profile.LuckCycle{
				Pillar:    c.Pillar,
				StartYear: c.StartYear,
				EndYear:   c.EndYear,
				StartAge:  c.StartAge,
				EndAge:    c.EndAge,
			})
		}
	}

	prof := profile.New(pillars, details)
	if d.DayMaster != "" && d.DayMaster != prof.DayMaster {
		return profile.Profile{}, fmt.Errorf("day master %q disagrees with day pillar %s", d.DayMaster, pillars[2])
	}
	return prof, nil
}

// pairs prefers the structured pillar objects and falls back to the chart string.
func (d chartData) pairs() ([4][2]string, error) {
	var out [4][2]string
	structured := []*pillarData{d.Year, d.Month, d.Day, d.Hour}
	complete := true
	for i, p := range structured {
		if p == nil || p.Stem == nil || p.Branch == nil || p.Stem.Stem == "" || p.Branch.Branch == "" {
			complete = false
			break
		}
		out[i] = [2]string{p.Stem.Stem, p.Branch.Branch}
	}
	if complete {
		return out, nil
	}

	fields := strings.Fields(d.Chart)
	if len(fields) != 4 {
		return out, fmt.Errorf("expected four pillars in %q", d.Chart)
	}
	for i, f := range fields {
		r := []rune(f)
		if len(r) != 2 {
			return out, fmt.Errorf("pillar %q is not a stem-branch pair", f)
		}
		out[i] = [2]string{string(r[0]), string(r[1])}
	}
	return out, nil
}

// markers flattens the per-pillar marker lists, keeping first occurrences.
func (d chartData) markers() []string {
	if len(d.Markers) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, key := range markerOrder {
		raw, ok := d.Markers[key]
		if !ok {
			continue
		}
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			continue
		}
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
