package tz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UTCZone is the identifier of the final fallback zone.
const UTCZone = "UTC"

// ErrZoneResolution wraps zone database lookup failures. Callers treat it
// as recoverable: conversions fall back to UTC or the system default and
// generation proceeds.
var ErrZoneResolution = errors.New("timezone resolution failed")

// UserTimezoneSource looks up a user's configured timezone identifier.
// An empty string means the user has no preference.
type UserTimezoneSource interface {
	GetTimezone(ctx context.Context, userID uuid.UUID) (string, error)
}

// Converter performs zone-database-backed conversions between naive local
// times and UTC instants. It is safe for concurrent use; the per-user
// timezone cache and the location cache are guarded by their own locks.
type Converter struct {
	source          UserTimezoneSource
	defaultTimezone string
	logger          *slog.Logger

	mu        sync.RWMutex
	userZones map[uuid.UUID]string

	locMu     sync.RWMutex
	locations map[string]*time.Location
}

// NewConverter creates a Converter backed by the given user timezone
// source. defaultTimezone is the system-wide fallback applied before UTC;
// if empty, UTC is used directly. If logger is nil, the default logger is
// used.
func NewConverter(source UserTimezoneSource, defaultTimezone string, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultTimezone == "" {
		defaultTimezone = UTCZone
	}
	return &Converter{
		source:          source,
		defaultTimezone: defaultTimezone,
		logger:          logger.With(slog.String("component", "tz_converter")),
		userZones:       make(map[uuid.UUID]string),
		locations:       make(map[string]*time.Location),
	}
}

// ResolveUserTimezone returns the timezone identifier for the given user,
// falling back to the system default and finally UTC when the user has no
// usable preference. Results are cached per user ID; entries are evicted
// only by an explicit Invalidate call.
func (c *Converter) ResolveUserTimezone(ctx context.Context, userID uuid.UUID) string {
	c.mu.RLock()
	zone, ok := c.userZones[userID]
	c.mu.RUnlock()
	if ok {
		return zone
	}

	zone = c.lookupUserTimezone(ctx, userID)

	c.mu.Lock()
	c.userZones[userID] = zone
	c.mu.Unlock()

	return zone
}

// Invalidate removes the cached timezone for the given user, forcing the
// next ResolveUserTimezone call to consult the source again. Concurrent
// resolutions for the same user are last-writer-wins.
func (c *Converter) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	delete(c.userZones, userID)
	c.mu.Unlock()
}

func (c *Converter) lookupUserTimezone(ctx context.Context, userID uuid.UUID) string {
	configured, err := c.source.GetTimezone(ctx, userID)
	if err != nil {
		c.logger.Warn("user timezone lookup failed, using default",
			slog.String("user_id", userID.String()),
			slog.String("default", c.defaultTimezone),
			slog.String("error", err.Error()))
		configured = ""
	}

	if configured == "" {
		configured = c.defaultTimezone
	}

	// Reject identifiers the zone database does not know about.
	if _, err := c.loadLocation(configured); err != nil {
		c.logger.Warn("unknown timezone identifier, falling back to UTC",
			slog.String("user_id", userID.String()),
			slog.String("timezone", configured),
			slog.String("error", err.Error()))
		return UTCZone
	}

	return configured
}

// Localize treats naive as a wall-clock time in the given zone and returns
// the equivalent UTC instant. The UTC offset is resolved from the zone
// database for naive's own calendar date, so a January and a July time in
// a DST-observing zone receive different, seasonally correct offsets.
//
// Wall-clock times that do not exist in the zone (the spring-forward gap)
// are resolved with the offset in effect before the transition and
// normalized forward; ambiguous times (the fall-back overlap) take the
// earlier offset. Both follow time.Date's in-location semantics.
func (c *Converter) Localize(naive time.Time, zoneID string) (time.Time, error) {
	loc, err := c.loadLocation(zoneID)
	if err != nil {
		return time.Time{}, err
	}

	local := time.Date(
		naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(),
		loc,
	)
	return local.UTC(), nil
}

// ToZone converts a UTC instant to the wall-clock time in the given zone.
// The offset is resolved for the instant itself, not for the caller's
// current date. This is the inverse of Localize outside DST transition
// windows.
func (c *Converter) ToZone(utc time.Time, zoneID string) (time.Time, error) {
	loc, err := c.loadLocation(zoneID)
	if err != nil {
		return time.Time{}, err
	}
	return utc.In(loc), nil
}

// IsDST reports whether the given UTC instant falls within daylight saving
// time in the given zone. Unknown zones report false.
func (c *Converter) IsDST(utc time.Time, zoneID string) bool {
	loc, err := c.loadLocation(zoneID)
	if err != nil {
		return false
	}
	return utc.In(loc).IsDST()
}

// FormatInZone renders a UTC instant as local time in the given zone,
// including the zone abbreviation and a DST marker when daylight saving
// is in effect for that instant.
func (c *Converter) FormatInZone(utc time.Time, zoneID string) (string, error) {
	local, err := c.ToZone(utc, zoneID)
	if err != nil {
		return "", err
	}

	formatted := local.Format("2006-01-02 15:04:05 MST")
	if local.IsDST() {
		formatted += " (DST)"
	}
	return formatted, nil
}

// ZoneOffset returns the UTC offset of the zone at the given instant, in
// the form "+05:30" or "-07:00".
func (c *Converter) ZoneOffset(utc time.Time, zoneID string) (string, error) {
	local, err := c.ToZone(utc, zoneID)
	if err != nil {
		return "", err
	}

	_, offsetSeconds := local.Zone()
	sign := "+"
	if offsetSeconds < 0 {
		sign = "-"
		offsetSeconds = -offsetSeconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, offsetSeconds/3600, (offsetSeconds%3600)/60), nil
}

// loadLocation resolves a zone identifier against the zone database,
// caching the result. Lookups hit the filesystem only once per zone.
func (c *Converter) loadLocation(zoneID string) (*time.Location, error) {
	c.locMu.RLock()
	loc, ok := c.locations[zoneID]
	c.locMu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrZoneResolution, zoneID, err)
	}

	c.locMu.Lock()
	c.locations[zoneID] = loc
	c.locMu.Unlock()

	return loc, nil
}
