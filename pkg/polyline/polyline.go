// Package polyline decodes and encodes the polyline format GraphHopper uses for
// route geometry when points_encoded=true.
//
// The format is Google's polyline algorithm with a configurable multiplier:
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
// Latitude is encoded before longitude for every vertex.
package polyline

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DefaultMultiplier is GraphHopper's points_encoded_multiplier (five decimal places).
const DefaultMultiplier = 1e5

// ErrTruncated is returned when the encoded string ends in the middle of a value
// or holds a latitude without its longitude.
var ErrTruncated = errors.New("polyline: truncated input")

// Decode turns an encoded string into a line string. A multiplier of zero means
// DefaultMultiplier. The returned points are orb.Point{lon, lat}.
func Decode(encoded string, multiplier float64) (orb.LineString, error) {
	if encoded == "" {
		return nil, nil
	}
	if multiplier == 0 {
		multiplier = DefaultMultiplier
	}

	var (
		line     orb.LineString
		lat, lon int
		index    int
	)

	for index < len(encoded) {
		dLat, next, ok := readValue(encoded, index)
		if !ok || next >= len(encoded) {
			return nil, ErrTruncated
		}
		dLon, next, ok := readValue(encoded, next)
		if !ok {
			return nil, ErrTruncated
		}
		index = next

		lat += dLat
		lon += dLon
		line = append(line, orb.Point{float64(lon) / multiplier, float64(lat) / multiplier})
	}

	return line, nil
}

// readValue reads one zig-zag encoded delta starting at index.
func readValue(encoded string, index int) (value, next int, ok bool) {
	var shift, result int
	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), index, true
			}
			return result >> 1, index, true
		}
	}
	return 0, index, false
}

// Encode turns a line string into its encoded form. A multiplier of zero means
// DefaultMultiplier.
func Encode(line orb.LineString, multiplier float64) string {
	if len(line) == 0 {
		return ""
	}
	if multiplier == 0 {
		multiplier = DefaultMultiplier
	}

	buf := make([]byte, 0, len(line)*6)
	var prevLat, prevLon int
	for _, p := range line {
		lat := int(math.Round(p.Lat() * multiplier))
		lon := int(math.Round(p.Lon() * multiplier))

		buf = appendValue(buf, lat-prevLat)
		buf = appendValue(buf, lon-prevLon)

		prevLat, prevLon = lat, lon
	}
	return string(buf)
}

func appendValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}
	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}

// Length returns the geodesic length of the line in meters.
func Length(line orb.LineString) float64 {
	if len(line) < 2 {
		return 0
	}
	return geo.Length(line)
}
