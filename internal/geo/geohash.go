// Package geo provides geospatial cell utilities for proximity-aware feed ranking.
// Cells are geohash strings at a fixed resolution; truncating a geohash yields its
// parent cell, which makes prefix comparison a hierarchical containment check.
package geo

import "strings"

// CellPrecision is the geohash length used for feed proximity cells.
// Six characters is approximately ±0.61 km, coarse enough to avoid
// pinpointing a user while still being useful for local boosting.
const CellPrecision = 6

// validGeohashChars is a lookup map for valid base32 characters used in geohashes.
// Geohash uses a custom base32 alphabet excluding 'a', 'i', 'l', and 'o'.
var validGeohashChars = map[rune]bool{
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	'b': true, 'c': true, 'd': true, 'e': true, 'f': true,
	'g': true, 'h': true, 'j': true, 'k': true, 'm': true,
	'n': true, 'p': true, 'q': true, 'r': true, 's': true,
	't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,
}

// base32 is the geohash base32 alphabet.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeCell encodes latitude and longitude into a feed cell identifier
// at CellPrecision using the standard geohash algorithm.
func EncodeCell(lat, lng float64) string {
	return Encode(lat, lng, CellPrecision)
}

// Encode encodes latitude and longitude into a geohash string with the specified precision.
//
// Parameters:
//   - lat: latitude in degrees (-90 to 90)
//   - lng: longitude in degrees (-180 to 180)
//   - precision: desired geohash length (typically 5-12 characters)
func Encode(lat, lng float64, precision int) string {
	if precision < 1 {
		precision = CellPrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lngRange := [2]float64{-180.0, 180.0}

	var geohash strings.Builder
	geohash.Grow(precision)

	bits := 0
	var ch uint

	even := true
	for geohash.Len() < precision {
		if even {
			// Longitude
			mid := (lngRange[0] + lngRange[1]) / 2
			if lng > mid {
				ch |= (1 << (4 - bits))
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			// Latitude
			mid := (latRange[0] + latRange[1]) / 2
			if lat > mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		even = !even
		bits++

		if bits == 5 {
			geohash.WriteByte(base32[ch])
			bits = 0
			ch = 0
		}
	}

	return geohash.String()
}

// NormalizeCell validates and normalizes a cell identifier to CellPrecision.
// Returns the lowercased cell truncated to CellPrecision, or empty string if
// the input is empty or contains characters outside the geohash alphabet.
func NormalizeCell(cell string) string {
	if cell == "" {
		return ""
	}

	lower := strings.ToLower(cell)
	for _, c := range lower {
		if !validGeohashChars[c] {
			return ""
		}
	}

	if len(lower) <= CellPrecision {
		return lower
	}
	return lower[:CellPrecision]
}

// ParentCell returns the cell one containment level up (one trailing
// character removed). Returns empty string for cells of length <= 1.
func ParentCell(cell string) string {
	if len(cell) <= 1 {
		return ""
	}
	return cell[:len(cell)-1]
}

// ContainmentDistance returns how many levels up the cell hierarchy two
// cells first share a common ancestor: 0 means the same cell, 1 means the
// same parent one level up, and so on. Returns -1 when either cell is
// empty or invalid, meaning the distance is unknown.
func ContainmentDistance(a, b string) int {
	na := NormalizeCell(a)
	nb := NormalizeCell(b)
	if na == "" || nb == "" {
		return -1
	}

	// Compare at the shorter of the two resolutions.
	depth := len(na)
	if len(nb) < depth {
		depth = len(nb)
	}

	shared := 0
	for shared < depth && na[shared] == nb[shared] {
		shared++
	}
	return depth - shared
}
