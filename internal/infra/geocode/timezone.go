package geocode

import (
	"fmt"

	"github.com/ringsaturn/tzf"

	"github.com/yanqian/bazi-report/internal/domain/geo"
)

// TZFinder resolves coordinates to IANA names using embedded polygon data.
type TZFinder struct {
	finder tzf.F
}

// NewTZFinder loads the default tzf dataset.
func NewTZFinder() (*TZFinder, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("load timezone data: %w", err)
	}
	return &TZFinder{finder: finder}, nil
}

// TimezoneAt implements geo.TimezoneFinder.
func (f *TZFinder) TimezoneAt(lat, lng float64) (string, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", fmt.Errorf("coordinates out of range: %f,%f", lat, lng)
	}
	name := f.finder.GetTimezoneName(lng, lat)
	if name == "" {
		return "", fmt.Errorf("no timezone at %f,%f", lat, lng)
	}
	return name, nil
}

var _ geo.TimezoneFinder = (*TZFinder)(nil)
