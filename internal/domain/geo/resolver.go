package geo

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/bazi-report/pkg/metrics"
)

// Resolver turns location text into a timezone, never failing the caller.
type Resolver interface {
	Resolve(ctx context.Context, location string) Resolution
	Invalidate(ctx context.Context, location string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (CacheStats, error)
}

// Config tunes provider calls.
type Config struct {
	Timeout time.Duration
}

type resolver struct {
	cfg      Config
	provider Provider
	finder   TimezoneFinder
	store    Store
	limiter  Limiter
	logger   *slog.Logger
	now      func() time.Time
}

// NewResolver wires the resolver dependencies.
func NewResolver(cfg Config, provider Provider, finder TimezoneFinder, store Store, limiter Limiter, logger *slog.Logger) Resolver {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	return &resolver{
		cfg:      cfg,
		provider: provider,
		finder:   finder,
		store:    store,
		limiter:  limiter,
		logger:   logger.With("component", "geo.resolver"),
		now:      time.Now,
	}
}

func (r *resolver) Resolve(ctx context.Context, location string) Resolution {
	key := NormalizeKey(location)
	if key == "" {
		return r.fallback(location, errors.New("empty location"))
	}

	if cached, ok, err := r.store.Get(ctx, key); err != nil {
		r.logger.Warn("geocode cache read failed", "location", location, "error", err)
	} else if ok {
		cached.Source = SourceCache
		metrics.GeocodeResolutions.WithLabelValues(string(SourceCache)).Inc()
		r.logger.Debug("geocode cache hit", "location", location, "timezone", cached.Timezone)
		return cached
	}

	res, err := r.lookup(ctx, location)
	if err != nil {
		return r.fallback(location, err)
	}
	if err := r.store.Save(ctx, key, res); err != nil {
		r.logger.Warn("geocode cache write failed", "location", location, "error", err)
	}
	metrics.GeocodeResolutions.WithLabelValues(string(SourceProvider)).Inc()
	r.logger.Info("geocoded location",
		"location", location,
		"timezone", res.Timezone,
		"lat", res.Coordinates.Lat,
		"lng", res.Coordinates.Lng,
	)
	return res
}

func (r *resolver) lookup(ctx context.Context, location string) (Resolution, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Resolution{}, err
	}
	callCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	place, err := r.provider.Search(callCtx, strings.TrimSpace(location))
	if err != nil {
		return Resolution{}, err
	}
	tz, err := r.finder.TimezoneAt(place.Coordinates.Lat, place.Coordinates.Lng)
	if err != nil {
		return Resolution{}, err
	}
	if tz == "" {
		return Resolution{}, errors.New("no timezone for coordinates")
	}
	return Resolution{
		Location:    location,
		DisplayName: place.DisplayName,
		Coordinates: place.Coordinates,
		Timezone:    tz,
		Source:      SourceProvider,
		ResolvedAt:  r.now().UTC(),
	}, nil
}

func (r *resolver) fallback(location string, cause error) Resolution {
	metrics.GeocodeResolutions.WithLabelValues(string(SourceFallback)).Inc()
	r.logger.Warn("geocoding fell back to UTC", "location", location, "source", SourceFallback, "error", cause)
	return Resolution{
		Location:    location,
		DisplayName: location,
		Timezone:    FallbackTimezone,
		Source:      SourceFallback,
		ResolvedAt:  r.now().UTC(),
	}
}

func (r *resolver) Invalidate(ctx context.Context, location string) error {
	return r.store.Delete(ctx, NormalizeKey(location))
}

func (r *resolver) Clear(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return err
	}
	r.logger.Info("geocode cache cleared")
	return nil
}

func (r *resolver) Stats(ctx context.Context) (CacheStats, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return CacheStats{}, err
	}
	return CacheStats{Count: len(keys), Keys: keys}, nil
}
