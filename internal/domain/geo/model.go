package geo

import (
	"context"
	"errors"
	"strings"
	"time"
)

// FallbackTimezone is used whenever a location cannot be resolved.
const FallbackTimezone = "UTC"

// Source tells where a resolution came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// ErrNoMatch is returned by providers when the query matches no place.
var ErrNoMatch = errors.New("geo: no matching place")

// Coordinates are WGS84 degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a provider search hit.
type Place struct {
	DisplayName string
	Coordinates Coordinates
}

// Resolution maps a location text to a timezone.
type Resolution struct {
	Location    string      `json:"location"`
	DisplayName string      `json:"displayName"`
	Coordinates Coordinates `json:"coordinates"`
	Timezone    string      `json:"timezone"`
	Source      Source      `json:"source"`
	ResolvedAt  time.Time   `json:"resolvedAt"`
}

// Fallback reports whether the resolution is the degraded UTC answer.
func (r Resolution) Fallback() bool {
	return r.Source == SourceFallback
}

// CacheStats summarises the resolution cache.
type CacheStats struct {
	Count int      `json:"cachedLocations"`
	Keys  []string `json:"locations"`
}

// Provider searches a free-text location.
type Provider interface {
	Search(ctx context.Context, query string) (Place, error)
}

// TimezoneFinder maps coordinates to an IANA timezone name.
type TimezoneFinder interface {
	TimezoneAt(lat, lng float64) (string, error)
}

// Store keeps successful resolutions keyed by normalized location.
type Store interface {
	Get(ctx context.Context, key string) (Resolution, bool, error)
	Save(ctx context.Context, key string, res Resolution) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

// NormalizeKey case-folds, trims and collapses whitespace.
func NormalizeKey(location string) string {
	return strings.Join(strings.Fields(strings.ToLower(location)), " ")
}
