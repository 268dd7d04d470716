// Package kurbeln detects two pilots thermalling together.
//
// Responsibilities: projection of GPS fixes onto a local plane, the
// contiguity check, single-second gap repair, time alignment of two
// tracks, proximity classification and the co-circling window search.
// Key types: Track, Comparator, Result, ThermalMatch.
//
// Every function here is pure over its inputs. Tracks are never mutated,
// so a Comparator may be shared between goroutines. No file or database
// code is allowed in this package; parsing lives in internal/igc and
// persistence in internal/db.
package kurbeln
