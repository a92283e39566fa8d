// Package tz converts between naive local wall-clock times and canonical
// UTC instants using the IANA zone database, resolving the UTC offset for
// the specific date in question so conversions stay correct across DST
// transitions. It also resolves per-user timezone preferences with an
// explicitly invalidated cache.
package tz
